package redis

import (
	"fmt"
	"strings"

	"github.com/mcoot/charsheet-go/internal/model"
)

// Key prefix for all character sheet data
const keyPrefix = "charsheet"

// userKey returns the Redis key for a User
func userKey(id model.ID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// emailIndexKey returns the Redis key for the email -> user_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, strings.ToLower(strings.TrimSpace(email)))
}

// characterKey returns the Redis key for a Character
func characterKey(id model.ID) string {
	return characterKeyFromString(id.String())
}

// characterKeyFromString returns the Redis key for a character id read back from an index
func characterKeyFromString(id string) string {
	return fmt.Sprintf("%s:character:%s", keyPrefix, id)
}

// allCharactersIndexKey returns the Redis key for the SET of every character id
func allCharactersIndexKey() string {
	return fmt.Sprintf("%s:idx:characters", keyPrefix)
}

// controlledByIndexKey returns the Redis key for the SET of characters controlled by a user
func controlledByIndexKey(userID model.ID) string {
	return fmt.Sprintf("%s:idx:controlled_by:%s", keyPrefix, userID)
}

// uncontrolledIndexKey returns the Redis key for the SET of characters without a controller
func uncontrolledIndexKey() string {
	return fmt.Sprintf("%s:idx:uncontrolled", keyPrefix)
}
