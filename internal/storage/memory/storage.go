package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/mcoot/charsheet-go/internal/model"
	"github.com/mcoot/charsheet-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users      map[model.ID]*model.User
	emailIndex map[string]model.ID
	characters map[model.ID]*model.Character
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:      make(map[model.ID]*model.User),
		emailIndex: make(map[string]model.ID),
		characters: make(map[model.ID]*model.Character),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.users[user.ID]; ok {
		delete(s.emailIndex, emailKey(prev.Email))
	}
	u := *user
	s.users[user.ID] = &u
	s.emailIndex[emailKey(user.Email)] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.ID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[emailKey(email)]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

// Character operations

func (s *Storage) SaveCharacter(ctx context.Context, character *model.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.characters[character.ID] = character.Clone()
	return nil
}

func (s *Storage) GetCharacter(ctx context.Context, id model.ID) (*model.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	character, ok := s.characters[id]
	if !ok {
		return nil, model.ErrCharacterNotFound
	}
	return character.Clone(), nil
}

func (s *Storage) DeleteCharacter(ctx context.Context, id model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.characters, id)
	return nil
}

// Roster queries

func (s *Storage) ListCharactersControlledBy(ctx context.Context, userID model.ID) ([]model.Character, error) {
	return s.filter(func(c *model.Character) bool {
		return c.IsControlledBy(userID)
	}), nil
}

func (s *Storage) ListCharactersWithoutController(ctx context.Context) ([]model.Character, error) {
	return s.filter(func(c *model.Character) bool {
		return !c.HasController()
	}), nil
}

func (s *Storage) ListCharactersPrivatelyControlledByOthers(ctx context.Context, userID model.ID) ([]model.Character, error) {
	return s.filter(func(c *model.Character) bool {
		return c.IsPrivate() && !c.IsControlledBy(userID)
	}), nil
}

func (s *Storage) filter(keep func(c *model.Character) bool) []model.Character {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []model.Character
	for _, c := range s.characters {
		if keep(c) {
			result = append(result, *c.Clone())
		}
	}
	return result
}
