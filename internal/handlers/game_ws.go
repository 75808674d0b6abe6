// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/playdeal/dealer/internal/auth"
	"github.com/playdeal/dealer/internal/game"
	"github.com/playdeal/dealer/internal/middleware"
	"github.com/sirupsen/logrus"
)

// GameMessage is the structure for incoming WebSocket messages during a game
// session.
type GameMessage struct {
	Type string `json:"type"`

	// CardID identifies the card for action_choose.
	CardID string `json:"card_id,omitempty"`
}

// GameWSHandler upgrades the HTTP connection to WebSocket for a specific game
// instance. It resolves the player identity, joins them to the roster if the
// game hasn't started, registers the connection, and starts the read loop.
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Extract game name from URL path: /game/ws/{game_name}
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/game/ws/"), "/")
		if len(pathParts) < 1 || pathParts[0] == "" {
			http.Error(w, "Missing game name in path (/game/ws/{game_name})", http.StatusBadRequest)
			return
		}
		gameName := pathParts[0]

		g, ok := gs.GameStore.GetGame(gameName)
		if !ok {
			http.Error(w, "Game not found", http.StatusNotFound)
			return
		}

		playerName, err := resolvePlayer(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for game %s: %v", gameName, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "game" {
			logger.Warnf("Client for game %s connected with invalid subprotocol: %s", gameName, c.Subprotocol())
			c.Close(websocket.StatusPolicyViolation, "Client must use the 'game' subprotocol.")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		// A newcomer joins the roster here; a returning player reconnects.
		// Join is idempotent for members, so it only fails for a non-member
		// on a started game.
		if err := g.Join(playerName); err != nil {
			logger.Warnf("Player %s cannot join game %s: %v", playerName, gameName, err)
			c.Close(websocket.StatusPolicyViolation, err.Error())
			return
		}

		// Register broadcast functions if they haven't been set up yet for
		// this game instance.
		g.Mu.Lock()
		if g.BroadcastFn == nil {
			g.BroadcastFn = createBroadcastFunc(g, logger)
		}
		if g.BroadcastToPlayerFn == nil {
			g.BroadcastToPlayerFn = createBroadcastToPlayerFunc(g, logger)
		}
		g.Mu.Unlock()

		g.HandleConnect(playerName, c)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		readGameMessages(ctx, c, g, playerName, logger)

		g.HandleDisconnect(playerName)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
	}
}

// resolvePlayer determines the acting player's name: a signed session token
// (cookie or query parameter) wins; otherwise a bare ?player= name is
// accepted as a guest identity.
func resolvePlayer(r *http.Request) (string, error) {
	if token := sessionToken(r); token != "" {
		name, err := auth.AuthenticateJWT(token)
		if err != nil {
			return "", fmt.Errorf("invalid session token: %w", err)
		}
		return name, nil
	}
	if name := r.URL.Query().Get("player"); name != "" {
		return name, nil
	}
	return "", errors.New("missing player identity: provide a session token or ?player= name")
}

// createBroadcastFunc returns a function suitable for Game.BroadcastFn. It
// marshals the event and sends it asynchronously to all connected players.
func createBroadcastFunc(g *game.Game, logger *logrus.Logger) func(ev game.GameEvent) {
	return func(ev game.GameEvent) {
		// Called while the game lock is held: collect targets, then write
		// outside the lock.
		var conns []*websocket.Conn
		for _, p := range g.Players {
			if p.Connected && p.Conn != nil {
				conns = append(conns, p.Conn)
			}
		}

		msgBytes, err := json.Marshal(ev)
		if err != nil {
			logger.Errorf("Failed to marshal broadcast event (%s) for game %s: %v", ev.Type, g.Name, err)
			return
		}

		go func(conns []*websocket.Conn, data []byte) {
			for _, conn := range conns {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				err := conn.Write(ctx, websocket.MessageText, data)
				cancel()
				if err != nil {
					logger.Warnf("Failed to write broadcast message in game %s: %v", g.Name, err)
				}
			}
		}(conns, msgBytes)
	}
}

// createBroadcastToPlayerFunc returns a function suitable for
// Game.BroadcastToPlayerFn. It finds the target player's connection and sends
// the event asynchronously.
func createBroadcastToPlayerFunc(g *game.Game, logger *logrus.Logger) func(player string, ev game.GameEvent) {
	return func(player string, ev game.GameEvent) {
		// Also called while the game lock is held.
		var targetConn *websocket.Conn
		for _, p := range g.Players {
			if p.Name == player {
				if p.Connected && p.Conn != nil {
					targetConn = p.Conn
				}
				break
			}
		}
		if targetConn == nil {
			return
		}

		msgBytes, err := json.Marshal(ev)
		if err != nil {
			logger.Errorf("Failed to marshal private event (%s) for player %s in game %s: %v", ev.Type, player, g.Name, err)
			return
		}
		go func(conn *websocket.Conn, data []byte) {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := conn.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("Failed to write private message to player %s in game %s: %v", player, g.Name, err)
			}
		}(targetConn, msgBytes)
	}
}

// readGameMessages continuously reads messages from a client's WebSocket
// connection, unmarshals them, and routes them to the matching game
// transition. Rule violations are returned to the sender, never broadcast.
func readGameMessages(ctx context.Context, c *websocket.Conn, g *game.Game, player string, logger *logrus.Logger) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("WebSocket closed normally for player %s in game %s.", player, g.Name)
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("WebSocket context canceled for player %s in game %s.", player, g.Name)
			} else {
				logger.Warnf("Error reading from WebSocket for player %s in game %s: %v", player, g.Name, err)
			}
			return
		}

		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d from player %s in game %s. Ignoring.", msgType, player, g.Name)
			continue
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid JSON received from player %s in game %s: %v", player, g.Name, err)
			sendWsError(ctx, c, logger, "Invalid JSON format.")
			continue
		}

		logger.Debugf("Received action '%s' from player %s in game %s.", msg.Type, player, g.Name)

		switch msg.Type {
		case "action_deal":
			g.Deal()

		case "action_draw":
			g.DrawCards(player)

		case "action_choose":
			cardID, err := uuid.Parse(msg.CardID)
			if err != nil {
				sendWsError(ctx, c, logger, "Invalid card_id format.")
				continue
			}
			if err := g.ChooseCard(player, cardID); err != nil {
				sendWsError(ctx, c, logger, err.Error())
			}

		case "action_place_bank":
			if err := g.PlaceCardBank(player); err != nil {
				sendWsError(ctx, c, logger, err.Error())
			}

		case "action_state":
			state := playerScopedState(g, player)
			sendWsMessage(ctx, c, logger, map[string]interface{}{"type": "state", "state": state})

		case "ping":
			sendWsMessage(ctx, c, logger, map[string]string{"type": "pong"})

		default:
			logger.Warnf("Unknown action type '%s' from player %s in game %s.", msg.Type, player, g.Name)
			sendWsError(ctx, c, logger, fmt.Sprintf("Unknown action type: %s", msg.Type))
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// playerScopedState assembles the sync snapshot a client asks for explicitly.
func playerScopedState(g *game.Game, player string) game.SyncState {
	return game.SyncState{
		Game:   g.GameState(),
		Player: g.PlayerState(player),
	}
}

// sendWsMessage marshals a message and sends it to the WebSocket client with a
// write timeout.
func sendWsMessage(ctx context.Context, c *websocket.Conn, logger *logrus.Logger, message interface{}) {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		logger.Errorf("Error marshaling WebSocket message: %v", err)
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Write(writeCtx, websocket.MessageText, msgBytes); err != nil {
		logger.Warnf("Error writing WebSocket message: %v", err)
	}
}

// sendWsError sends a structured error message to the client.
func sendWsError(ctx context.Context, c *websocket.Conn, logger *logrus.Logger, message string) {
	sendWsMessage(ctx, c, logger, map[string]string{"type": "error", "message": message})
}
