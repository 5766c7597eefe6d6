package storage

import (
	"context"

	"github.com/mcoot/charsheet-go/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.ID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// Character operations
	SaveCharacter(ctx context.Context, character *model.Character) error
	GetCharacter(ctx context.Context, id model.ID) (*model.Character, error)
	DeleteCharacter(ctx context.Context, id model.ID) error

	// Roster queries. Result order is unspecified.
	ListCharactersControlledBy(ctx context.Context, userID model.ID) ([]model.Character, error)
	ListCharactersWithoutController(ctx context.Context) ([]model.Character, error)
	// ListCharactersPrivatelyControlledByOthers returns characters that have a controller
	// other than userID and are not known
	ListCharactersPrivatelyControlledByOthers(ctx context.Context, userID model.ID) ([]model.Character, error)
}
