package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/eve-pi-go/internal/domain/character"
	"github.com/andrescamacho/eve-pi-go/internal/domain/planetary"
)

// account is the committed colony state of every character linked to one user
type account struct {
	characterIDs []int64
	names        map[int64]string
	snapshots    []*planetary.PlanetSnapshot
}

// loadAccount reads whatever snapshots are committed right now. A sync in flight for
// one planet never blocks reading the others.
func loadAccount(
	ctx context.Context,
	characters character.Repository,
	colonies planetary.ColonyRepository,
	userID int64,
) (*account, error) {
	linked, err := characters.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}

	acc := &account{names: make(map[int64]string, len(linked))}
	for _, c := range linked {
		acc.characterIDs = append(acc.characterIDs, c.ID.Value())
		acc.names[c.ID.Value()] = c.Name
	}
	if len(acc.characterIDs) == 0 {
		return acc, nil
	}

	acc.snapshots, err = colonies.FindByCharacters(ctx, acc.characterIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load colonies: %w", err)
	}
	return acc, nil
}

func (a *account) owns(characterID int64) bool {
	_, ok := a.names[characterID]
	return ok
}

func warningStrings(warnings []error) []string {
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, w.Error())
	}
	return out
}
