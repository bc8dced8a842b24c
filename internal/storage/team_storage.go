package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pmurley/afl-trade-bot/internal/models"
)

const teamFileName = "team.json"

// ErrTeamNotFound is returned by Load when no team has been saved yet.
var ErrTeamNotFound = errors.New("no saved team")

// TeamRepository persists the user's current team.
type TeamRepository interface {
	Load(ctx context.Context) ([]models.Player, error)
	Save(ctx context.Context, players []models.Player) error
}

// JSONTeamStore keeps the team in a single JSON file under the data directory
type JSONTeamStore struct {
	mu       sync.RWMutex
	filePath string
}

// NewJSONTeamStore creates the data directory if needed
func NewJSONTeamStore(dataDir string) (*JSONTeamStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &JSONTeamStore{filePath: filepath.Join(dataDir, teamFileName)}, nil
}

func (s *JSONTeamStore) Load(ctx context.Context) ([]models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read team file: %w", err)
	}

	var players []models.Player
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, fmt.Errorf("failed to decode team file: %w", err)
	}
	if err := models.ValidateRoster(players); err != nil {
		return nil, fmt.Errorf("team file is invalid: %w", err)
	}
	return players, nil
}

// Save writes to a temp file and renames it over the old team.
func (s *JSONTeamStore) Save(ctx context.Context, players []models.Player) error {
	if players == nil {
		players = []models.Player{}
	}
	data, err := json.MarshalIndent(players, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode team: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), ".team-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp team file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write team file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close team file: %w", err)
	}
	if err := os.Rename(tmpName, s.filePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace team file: %w", err)
	}
	return nil
}
