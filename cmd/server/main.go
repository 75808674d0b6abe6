// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/playdeal/dealer/internal/auth"
	"github.com/playdeal/dealer/internal/cache"
	"github.com/playdeal/dealer/internal/database"
	"github.com/playdeal/dealer/internal/handlers"
	"github.com/playdeal/dealer/internal/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	auth.Init()
	database.ConnectDB()
	if err := cache.ConnectRedis(); err != nil {
		log.Printf("redis unavailable, action history disabled: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	srv := handlers.NewGameServer()

	mux := http.NewServeMux()

	// player identity endpoints
	mux.HandleFunc("/player/claim", handlers.ClaimNameHandler)
	mux.HandleFunc("/player/login", handlers.LoginHandler)

	// game endpoints
	mux.Handle("/game/create", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.CreateGameHandler(srv),
	)))
	mux.Handle("/game/state", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.GameStateHandler(srv),
	)))
	mux.Handle("/game/list", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.ListGamesHandler(srv),
	)))

	// game websocket
	mux.Handle("/game/ws/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.GameWSHandler(logger, srv),
	)))

	addr := ":8080"
	if port := os.Getenv("DEALER_SERVICE_PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
