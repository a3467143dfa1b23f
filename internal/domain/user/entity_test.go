package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole(1)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	role, err = ParseRole(2)
	require.NoError(t, err)
	assert.Equal(t, RoleStaff, role)

	for _, id := range []int{0, 3, -1} {
		_, err := ParseRole(id)
		assert.ErrorIs(t, err, ErrInvalidRole, "role id %d", id)
	}
}

func TestUser_RoleChecks(t *testing.T) {
	admin := &User{ID: "a", Role: RoleAdmin}
	staff := &User{ID: "s", Role: RoleStaff}
	var nobody *User

	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsStaff())
	assert.True(t, staff.IsStaff())
	assert.False(t, staff.IsAdmin())
	assert.False(t, nobody.IsAdmin())
	assert.False(t, nobody.IsStaff())
}

func TestFromContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))

	u := &User{ID: "u-1", Role: RoleStaff}
	ctx := WithUser(context.Background(), u)
	assert.Same(t, u, FromContext(ctx))
}
