package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/charsheet-go/internal/model"
	"github.com/mcoot/charsheet-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// maxTxAttempts bounds optimistic-lock retries when a watched key keeps changing
const maxTxAttempts = 50

// ErrContention is returned when a write loses the optimistic lock too many times in a row
var ErrContention = errors.New("redis: too much contention on key")

// watched runs fn under WATCH on key, retrying while another client changes the key
// between the read and the EXEC. Index updates derived from the previous document
// therefore never race with a concurrent write of the same record.
func (s *Storage) watched(ctx context.Context, key string, fn func(tx *redis.Tx) error) error {
	for range maxTxAttempts {
		err := s.client.Watch(ctx, fn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("%w %s", ErrContention, key)
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	return s.watched(ctx, userKey(user.ID), func(tx *redis.Tx) error {
		prev, err := getUser(ctx, tx, user.ID)
		if err != nil && !errors.Is(err, model.ErrUserNotFound) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if prev != nil && emailIndexKey(prev.Email) != emailIndexKey(user.Email) {
				pipe.Del(ctx, emailIndexKey(prev.Email))
			}
			pipe.Set(ctx, userKey(user.ID), data, 0)
			pipe.Set(ctx, emailIndexKey(user.Email), user.ID.String(), 0)
			return nil
		})
		return err
	})
}

func (s *Storage) GetUser(ctx context.Context, id model.ID) (*model.User, error) {
	return getUser(ctx, s.client, id)
}

func getUser(ctx context.Context, c redis.Cmdable, id model.ID) (*model.User, error) {
	data, err := c.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	// Look up user ID from email index
	idStr, err := s.client.Get(ctx, emailIndexKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	id, err := model.NewID(idStr)
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// Character operations

func (s *Storage) SaveCharacter(ctx context.Context, character *model.Character) error {
	data, err := json.Marshal(character)
	if err != nil {
		return err
	}

	id := character.ID.String()
	return s.watched(ctx, characterKey(character.ID), func(tx *redis.Tx) error {
		prev, err := getCharacter(ctx, tx, character.ID)
		if err != nil && !errors.Is(err, model.ErrCharacterNotFound) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if prev != nil {
				unindex(ctx, pipe, prev)
			}
			pipe.Set(ctx, characterKey(character.ID), data, 0)
			pipe.SAdd(ctx, allCharactersIndexKey(), id)
			if character.ControlUser != nil {
				pipe.SAdd(ctx, controlledByIndexKey(character.ControlUser.ID), id)
			} else {
				pipe.SAdd(ctx, uncontrolledIndexKey(), id)
			}
			return nil
		})
		return err
	})
}

func (s *Storage) GetCharacter(ctx context.Context, id model.ID) (*model.Character, error) {
	return getCharacter(ctx, s.client, id)
}

func getCharacter(ctx context.Context, c redis.Cmdable, id model.ID) (*model.Character, error) {
	data, err := c.Get(ctx, characterKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrCharacterNotFound
		}
		return nil, err
	}

	var character model.Character
	if err := json.Unmarshal(data, &character); err != nil {
		return nil, err
	}
	return &character, nil
}

func (s *Storage) DeleteCharacter(ctx context.Context, id model.ID) error {
	return s.watched(ctx, characterKey(id), func(tx *redis.Tx) error {
		prev, err := getCharacter(ctx, tx, id)
		if err != nil {
			if errors.Is(err, model.ErrCharacterNotFound) {
				return nil
			}
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			unindex(ctx, pipe, prev)
			pipe.SRem(ctx, allCharactersIndexKey(), id.String())
			pipe.Del(ctx, characterKey(id))
			return nil
		})
		return err
	})
}

// unindex queues removal of a character from its controller indexes
func unindex(ctx context.Context, pipe redis.Pipeliner, c *model.Character) {
	id := c.ID.String()
	if c.ControlUser != nil {
		pipe.SRem(ctx, controlledByIndexKey(c.ControlUser.ID), id)
	} else {
		pipe.SRem(ctx, uncontrolledIndexKey(), id)
	}
}

// Roster queries

// Index SETs are only a candidate list; each document is checked against the query
// so an index entry that lags behind its document never leaks into a result.

func (s *Storage) ListCharactersControlledBy(ctx context.Context, userID model.ID) ([]model.Character, error) {
	return s.charactersInSet(ctx, controlledByIndexKey(userID), func(c *model.Character) bool {
		return c.IsControlledBy(userID)
	})
}

func (s *Storage) ListCharactersWithoutController(ctx context.Context) ([]model.Character, error) {
	return s.charactersInSet(ctx, uncontrolledIndexKey(), func(c *model.Character) bool {
		return !c.HasController()
	})
}

func (s *Storage) ListCharactersPrivatelyControlledByOthers(ctx context.Context, userID model.ID) ([]model.Character, error) {
	return s.charactersInSet(ctx, allCharactersIndexKey(), func(c *model.Character) bool {
		return c.IsPrivate() && !c.IsControlledBy(userID)
	})
}

// charactersInSet loads the characters whose id is a member of the given SET and that satisfy keep
func (s *Storage) charactersInSet(ctx context.Context, setKey string, keep func(*model.Character) bool) ([]model.Character, error) {
	ids, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = characterKeyFromString(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	characters := make([]model.Character, 0, len(values))
	for _, v := range values {
		// Index entries can briefly outlive a deleted document
		str, ok := v.(string)
		if !ok {
			continue
		}
		var c model.Character
		if err := json.Unmarshal([]byte(str), &c); err != nil {
			return nil, err
		}
		if keep(&c) {
			characters = append(characters, c)
		}
	}
	return characters, nil
}
