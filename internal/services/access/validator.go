package access

import (
	"github.com/mcoot/charsheet-go/internal/model"
)

// ValidateControlAccess decides whether principal may modify character.
// Branches are evaluated in order and the first match wins:
// no principal, no character, master, owner, otherwise forbidden.
func ValidateControlAccess(character *model.Character, principal *model.Principal) error {
	switch {
	case principal == nil:
		return model.ErrUnauthenticated
	case character == nil:
		return model.ErrCharacterNotFound
	case principal.Role == model.RoleMaster:
		return nil
	case character.IsControlledBy(principal.ID):
		return nil
	default:
		return model.ErrForbidden
	}
}
