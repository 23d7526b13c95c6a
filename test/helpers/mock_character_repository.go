package helpers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/andrescamacho/eve-pi-go/internal/domain/character"
	"github.com/andrescamacho/eve-pi-go/internal/domain/shared"
)

// MockCharacterRepository is an in-memory character.Repository
type MockCharacterRepository struct {
	mu         sync.RWMutex
	characters map[int64]*character.Character
	ListErr    error
}

// NewMockCharacterRepository creates an empty repository
func NewMockCharacterRepository() *MockCharacterRepository {
	return &MockCharacterRepository{characters: make(map[int64]*character.Character)}
}

// AddCharacter links a character without validation
func (m *MockCharacterRepository) AddCharacter(id int64, name string, userID int64) *character.Character {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &character.Character{ID: shared.MustNewCharacterID(id), Name: name, UserID: userID, AccessToken: fmt.Sprintf("token-%d", id)}
	m.characters[id] = c
	return c
}

func (m *MockCharacterRepository) FindByID(ctx context.Context, characterID int64) (*character.Character, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.characters[characterID]
	if !ok {
		return nil, fmt.Errorf("character %d: %w", characterID, shared.ErrCharacterNotFound)
	}
	copy := *c
	return &copy, nil
}

func (m *MockCharacterRepository) ListAll(ctx context.Context) ([]*character.Character, error) {
	return m.list(func(*character.Character) bool { return true })
}

func (m *MockCharacterRepository) ListByUser(ctx context.Context, userID int64) ([]*character.Character, error) {
	return m.list(func(c *character.Character) bool { return c.UserID == userID })
}

func (m *MockCharacterRepository) list(keep func(*character.Character) bool) ([]*character.Character, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]*character.Character, 0, len(m.characters))
	for _, c := range m.characters {
		if keep(c) {
			copy := *c
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Value() < out[j].ID.Value() })
	return out, nil
}

func (m *MockCharacterRepository) Add(ctx context.Context, c *character.Character) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *c
	m.characters[c.ID.Value()] = &copy
	return nil
}

func (m *MockCharacterRepository) MarkSynced(ctx context.Context, characterID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.characters[characterID]
	if !ok {
		return shared.ErrCharacterNotFound
	}
	c.LastSyncedAt = &at
	return nil
}

// LastSyncedAt returns the recorded sync time of a character, nil when never synced
func (m *MockCharacterRepository) LastSyncedAt(characterID int64) *time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.characters[characterID]; ok {
		return c.LastSyncedAt
	}
	return nil
}
