package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, role := range Roles {
		parsed, ok := ParseRole(role.String())
		require.True(t, ok)
		require.Equal(t, role, parsed)
	}

	for _, bad := range []string{"", "Admin", "root", "ADMIN", "supervisor"} {
		_, ok := ParseRole(bad)
		require.False(t, ok, "role %q must not parse", bad)
	}
}

func TestCanInvite(t *testing.T) {
	t.Parallel()

	cases := []struct {
		issuer Role
		target Role
		want   bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleManager, true},
		{RoleAdmin, RoleDeveloper, true},
		{RoleManager, RoleAdmin, false},
		{RoleManager, RoleManager, true},
		{RoleManager, RoleDeveloper, true},
		{RoleDeveloper, RoleAdmin, false},
		{RoleDeveloper, RoleManager, false},
		{RoleDeveloper, RoleDeveloper, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.issuer.CanInvite(tc.target),
			"%s inviting %s", tc.issuer, tc.target)
	}
}
