package account

import (
	"context"
	"fmt"

	"github.com/andrescamacho/eve-pi-go/internal/application/common"
	"github.com/andrescamacho/eve-pi-go/internal/domain/character"
)

// AddCharacterCommand links a character to a user. The access token comes from the
// authorization layer and is used as the upstream bearer token.
type AddCharacterCommand struct {
	CharacterID int64
	Name        string
	UserID      int64
	AccessToken string
}

// AddCharacterResponse returns the linked character
type AddCharacterResponse struct {
	Character *character.Character
}

// AddCharacterHandler handles the AddCharacter command
type AddCharacterHandler struct {
	characters character.Repository
}

// NewAddCharacterHandler creates a new AddCharacterHandler
func NewAddCharacterHandler(characters character.Repository) *AddCharacterHandler {
	return &AddCharacterHandler{characters: characters}
}

// Handle executes the AddCharacter command
func (h *AddCharacterHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AddCharacterCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *AddCharacterCommand")
	}

	c, err := character.NewCharacter(cmd.CharacterID, cmd.Name, cmd.UserID, cmd.AccessToken)
	if err != nil {
		return nil, err
	}
	if err := h.characters.Add(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to link character: %w", err)
	}

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Character linked", map[string]interface{}{
		"character_id": c.ID.Value(),
		"user_id":      c.UserID,
	})
	return &AddCharacterResponse{Character: c}, nil
}

// ListCharactersQuery lists the characters linked to a user (all users when UserID is 0)
type ListCharactersQuery struct {
	UserID int64
}

// ListCharactersResponse holds the linked characters
type ListCharactersResponse struct {
	Characters []*character.Character
}

// ListCharactersHandler handles the ListCharacters query
type ListCharactersHandler struct {
	characters character.Repository
}

// NewListCharactersHandler creates a new ListCharactersHandler
func NewListCharactersHandler(characters character.Repository) *ListCharactersHandler {
	return &ListCharactersHandler{characters: characters}
}

// Handle executes the ListCharacters query
func (h *ListCharactersHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListCharactersQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListCharactersQuery")
	}

	var (
		list []*character.Character
		err  error
	)
	if query.UserID > 0 {
		list, err = h.characters.ListByUser(ctx, query.UserID)
	} else {
		list, err = h.characters.ListAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	return &ListCharactersResponse{Characters: list}, nil
}
