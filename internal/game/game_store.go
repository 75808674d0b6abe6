package game

import "sync"

// GameStore is the session directory: it maps a game name to the single live
// instance for that name. Creation is an atomic test-and-insert so two
// callers can never register the same name.
type GameStore struct {
	mu    sync.Mutex
	games map[string]*Game
}

func NewGameStore() *GameStore {
	return &GameStore{
		games: make(map[string]*Game),
	}
}

// CreateGame registers a new game under name with the given founding player.
// Fails with ErrGameExists if the name is taken.
func (s *GameStore) CreateGame(name, founder string) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[name]; exists {
		return nil, ErrGameExists
	}
	g := NewGame(name, founder)
	s.games[name] = g
	return g, nil
}

// GetGame looks up a running game by name.
func (s *GameStore) GetGame(name string) (*Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, exists := s.games[name]
	return g, exists
}

// DeleteGame removes a game from the directory. The instance itself is left
// to be garbage collected once all connections drop.
func (s *GameStore) DeleteGame(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, name)
}

// Names returns the registered game names, for listing endpoints.
func (s *GameStore) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.games))
	for name := range s.games {
		names = append(names, name)
	}
	return names
}
