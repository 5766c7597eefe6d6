package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/charsheet-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// isMember reports set membership, treating a missing key as empty
func (s *StorageSuite) isMember(key, member string) bool {
	ok, err := s.mini.IsMember(key, member)
	return err == nil && ok
}

func character(id, name string, controller *model.UserRef, known bool) *model.Character {
	return &model.Character{
		ID:          model.MustID(id),
		Name:        model.MustCharacterName(name),
		ControlUser: controller,
		IsKnown:     known,
	}
}

func ref(id string) *model.UserRef {
	return &model.UserRef{ID: model.MustID(id), Name: model.MustName(id)}
}

func ids(characters []model.Character) []string {
	result := make([]string, len(characters))
	for i, c := range characters {
		result[i] = c.ID.String()
	}
	return result
}

// User tests

func (s *StorageSuite) TestSaveAndGetUser() {
	user := &model.User{
		ID:           model.MustID("user-1"),
		Name:         model.MustName("Alice"),
		Email:        "alice@example.com",
		PasswordHash: "hash123",
		IsMaster:     true,
		CreatedAt:    time.Now(),
	}

	err := s.storage.SaveUser(s.ctx, user)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetUser(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(user.Email, retrieved.Email)
	s.Equal(user.Name, retrieved.Name)
	s.True(retrieved.IsMaster)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, model.MustID("nonexistent"))
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestGetUserByEmail() {
	user := &model.User{ID: model.MustID("user-1"), Name: model.MustName("Alice"), Email: "Alice@Example.com"}
	s.Require().NoError(s.storage.SaveUser(s.ctx, user))

	s.True(s.mini.Exists(emailIndexKey("alice@example.com")))

	retrieved, err := s.storage.GetUserByEmail(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(user.ID, retrieved.ID)
}

func (s *StorageSuite) TestGetUserByEmailNotFound() {
	_, err := s.storage.GetUserByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestChangingEmailDropsOldIndex() {
	user := &model.User{ID: model.MustID("user-1"), Name: model.MustName("Alice"), Email: "old@example.com"}
	_ = s.storage.SaveUser(s.ctx, user)
	user.Email = "new@example.com"
	_ = s.storage.SaveUser(s.ctx, user)

	s.False(s.mini.Exists(emailIndexKey("old@example.com")))
	_, err := s.storage.GetUserByEmail(s.ctx, "new@example.com")
	s.NoError(err)
}

// Character tests

func (s *StorageSuite) TestSaveAndGetCharacter() {
	height, _ := model.NewHeight(180)
	c := character("char-1", "Zed", ref("user-1"), false)
	c.Height = &height

	s.Require().NoError(s.storage.SaveCharacter(s.ctx, c))

	retrieved, err := s.storage.GetCharacter(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal("Zed", retrieved.Name.String())
	s.Equal(180, retrieved.Height.Centimetres())
	s.True(retrieved.IsControlledBy(model.MustID("user-1")))
}

func (s *StorageSuite) TestGetCharacterNotFound() {
	_, err := s.storage.GetCharacter(s.ctx, model.MustID("nonexistent"))
	s.ErrorIs(err, model.ErrCharacterNotFound)
}

func (s *StorageSuite) TestSaveCharacterMaintainsIndexes() {
	c := character("char-1", "Zed", nil, true)
	_ = s.storage.SaveCharacter(s.ctx, c)

	members, err := s.mini.Members(uncontrolledIndexKey())
	s.Require().NoError(err)
	s.Equal([]string{"char-1"}, members)

	// Assign a controller; the character moves between indexes
	c.ControlUser = ref("user-1")
	_ = s.storage.SaveCharacter(s.ctx, c)

	s.False(s.isMember(uncontrolledIndexKey(), "char-1"))
	s.True(s.isMember(controlledByIndexKey(model.MustID("user-1")), "char-1"))
}

func (s *StorageSuite) TestDeleteCharacterRemovesIndexes() {
	c := character("char-1", "Zed", ref("user-1"), false)
	_ = s.storage.SaveCharacter(s.ctx, c)

	s.Require().NoError(s.storage.DeleteCharacter(s.ctx, c.ID))

	_, err := s.storage.GetCharacter(s.ctx, c.ID)
	s.ErrorIs(err, model.ErrCharacterNotFound)
	s.False(s.isMember(allCharactersIndexKey(), "char-1"))
	s.False(s.isMember(controlledByIndexKey(model.MustID("user-1")), "char-1"))
}

func (s *StorageSuite) TestDeleteMissingCharacterIsNoop() {
	s.NoError(s.storage.DeleteCharacter(s.ctx, model.MustID("missing")))
}

func (s *StorageSuite) seedRoster() {
	_ = s.storage.SaveCharacter(s.ctx, character("mine-private", "A", ref("me"), false))
	_ = s.storage.SaveCharacter(s.ctx, character("mine-known", "B", ref("me"), true))
	_ = s.storage.SaveCharacter(s.ctx, character("other-private", "C", ref("other"), false))
	_ = s.storage.SaveCharacter(s.ctx, character("other-known", "D", ref("other"), true))
	_ = s.storage.SaveCharacter(s.ctx, character("free-known", "E", nil, true))
	_ = s.storage.SaveCharacter(s.ctx, character("free-draft", "F", nil, false))
}

func (s *StorageSuite) TestListCharactersControlledBy() {
	s.seedRoster()

	result, err := s.storage.ListCharactersControlledBy(s.ctx, model.MustID("me"))
	s.Require().NoError(err)
	s.ElementsMatch([]string{"mine-private", "mine-known"}, ids(result))
}

func (s *StorageSuite) TestListCharactersWithoutController() {
	s.seedRoster()

	result, err := s.storage.ListCharactersWithoutController(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"free-known", "free-draft"}, ids(result))
}

func (s *StorageSuite) TestListCharactersPrivatelyControlledByOthers() {
	s.seedRoster()

	result, err := s.storage.ListCharactersPrivatelyControlledByOthers(s.ctx, model.MustID("me"))
	s.Require().NoError(err)
	s.ElementsMatch([]string{"other-private"}, ids(result))
}

func (s *StorageSuite) TestListEmptySet() {
	result, err := s.storage.ListCharactersWithoutController(s.ctx)
	s.Require().NoError(err)
	s.Empty(result)
}

func (s *StorageSuite) TestConcurrentReassignKeepsIndexesConsistent() {
	a, b := model.MustID("user-a"), model.MustID("user-b")

	for i := range 50 {
		id := fmt.Sprintf("char-%d", i)
		s.Require().NoError(s.storage.SaveCharacter(s.ctx, character(id, "Zed", nil, false)))

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for j, owner := range []string{"user-a", "user-b"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[j] = s.storage.SaveCharacter(s.ctx, character(id, "Zed", ref(owner), false))
			}()
		}
		wg.Wait()
		s.Require().NoError(errors.Join(errs...))

		stored, err := s.storage.GetCharacter(s.ctx, model.MustID(id))
		s.Require().NoError(err)
		winner, loser := a, b
		if stored.IsControlledBy(b) {
			winner, loser = b, a
		}

		s.True(s.isMember(controlledByIndexKey(winner), id), id)
		s.False(s.isMember(controlledByIndexKey(loser), id), id)
		s.False(s.isMember(uncontrolledIndexKey(), id), id)
	}

	for _, user := range []model.ID{a, b} {
		result, err := s.storage.ListCharactersControlledBy(s.ctx, user)
		s.Require().NoError(err)
		for _, c := range result {
			s.True(c.IsControlledBy(user), c.ID.String())
		}
	}
}

func (s *StorageSuite) TestListingsIgnoreLaggingIndexEntries() {
	_ = s.storage.SaveCharacter(s.ctx, character("theirs", "Zed", ref("other"), false))
	_ = s.storage.SaveCharacter(s.ctx, character("owned", "Anna", ref("me"), true))

	// Index entries that disagree with the stored document
	_, err := s.mini.SAdd(controlledByIndexKey(model.MustID("me")), "theirs")
	s.Require().NoError(err)
	_, err = s.mini.SAdd(uncontrolledIndexKey(), "owned")
	s.Require().NoError(err)

	mine, err := s.storage.ListCharactersControlledBy(s.ctx, model.MustID("me"))
	s.Require().NoError(err)
	s.Equal([]string{"owned"}, ids(mine))

	free, err := s.storage.ListCharactersWithoutController(s.ctx)
	s.Require().NoError(err)
	s.Empty(free)
}
