package helpers

import (
	"context"
	"fmt"
	"sync"

	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
)

// MockColonyProvider is a scripted planetary.ColonyProvider
type MockColonyProvider struct {
	mu       sync.Mutex
	planets  map[int64][]planetary.Planet
	colonies map[int64]*planetary.Colony
	listErr  map[int64]error
	fetchErr map[int64]error
	blocked  map[int64]chan struct{}
	calls    map[int64]int
}

// NewMockColonyProvider creates an empty provider
func NewMockColonyProvider() *MockColonyProvider {
	return &MockColonyProvider{
		planets:  make(map[int64][]planetary.Planet),
		colonies: make(map[int64]*planetary.Colony),
		listErr:  make(map[int64]error),
		fetchErr: make(map[int64]error),
		blocked:  make(map[int64]chan struct{}),
		calls:    make(map[int64]int),
	}
}

// AddColony registers a planet of a character and its colony detail
func (m *MockColonyProvider) AddColony(characterID int64, planet planetary.Planet, colony planetary.Colony) *MockColonyProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	planet.OwnerID = characterID
	m.planets[characterID] = append(m.planets[characterID], planet)
	m.colonies[planet.PlanetID] = &colony
	return m
}

// RemovePlanet drops a planet from a character's planet list
func (m *MockColonyProvider) RemovePlanet(characterID, planetID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.planets[characterID][:0]
	for _, p := range m.planets[characterID] {
		if p.PlanetID != planetID {
			kept = append(kept, p)
		}
	}
	m.planets[characterID] = kept
}

// FailList makes ListPlanets fail for the character
func (m *MockColonyProvider) FailList(characterID int64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr[characterID] = err
}

// FailPlanet makes GetColonyDetail fail for the planet; nil clears the failure
func (m *MockColonyProvider) FailPlanet(planetID int64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fetchErr, planetID)
		return
	}
	m.fetchErr[planetID] = err
}

// BlockPlanet makes GetColonyDetail hang, ignoring its context, until the returned
// release function is called
func (m *MockColonyProvider) BlockPlanet(planetID int64) (release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan struct{})
	m.blocked[planetID] = ch
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// UpdateColony replaces the colony detail served for a planet
func (m *MockColonyProvider) UpdateColony(planetID int64, colony planetary.Colony) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.colonies[planetID] = &colony
}

// Calls returns how many detail fetches were made for a planet
func (m *MockColonyProvider) Calls(planetID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[planetID]
}

func (m *MockColonyProvider) ListPlanets(ctx context.Context, characterID int64, token string) ([]planetary.Planet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.listErr[characterID]; err != nil {
		return nil, err
	}
	out := make([]planetary.Planet, len(m.planets[characterID]))
	copy(out, m.planets[characterID])
	return out, nil
}

func (m *MockColonyProvider) GetColonyDetail(ctx context.Context, characterID, planetID int64, token string) (*planetary.Colony, error) {
	m.mu.Lock()
	m.calls[planetID]++
	blocked := m.blocked[planetID]
	err := m.fetchErr[planetID]
	colony, ok := m.colonies[planetID]
	m.mu.Unlock()

	if blocked != nil {
		<-blocked
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("planet %d not found", planetID)
	}
	out := *colony
	return &out, nil
}
