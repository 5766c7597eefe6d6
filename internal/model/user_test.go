package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleDerivedFromMasterFlag(t *testing.T) {
	for _, isMaster := range []bool{true, false} {
		u := &User{ID: GenerateID(), Email: "a@example.com", IsMaster: isMaster}
		p := NewPrincipal(u)
		assert.Equal(t, isMaster, p.Role == RoleMaster)
		assert.Equal(t, isMaster, p.IsMaster())
	}
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "PLAYER", RolePlayer.String())
	assert.Equal(t, "MASTER", RoleMaster.String())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindUnauthenticated, KindOf(ErrUnauthenticated))
	assert.Equal(t, KindNotFound, KindOf(ErrCharacterNotFound))
	assert.Equal(t, KindForbidden, KindOf(ErrForbidden))
	assert.Equal(t, KindInternal, KindOf(assert.AnError))
}
