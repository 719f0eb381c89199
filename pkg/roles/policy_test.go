package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, role := range All() {
		parsed, ok := Parse(string(role))
		assert.True(t, ok, "declared role %q must parse", role)
		assert.Equal(t, role, parsed)
	}

	for _, raw := range []string{"", "superadmin", "Tourist", "ADMIN", "guest"} {
		parsed, ok := Parse(raw)
		assert.False(t, ok, "raw %q must not parse", raw)
		assert.Equal(t, RoleUnknown, parsed)
	}
}

// Every declared role must resolve a dashboard route, a capability set and a
// navigation set that includes the base entries.
func TestPolicyTableIsTotal(t *testing.T) {
	for _, role := range All() {
		route, err := DashboardRouteOf(role)
		require.NoError(t, err, "role %q", role)
		assert.NotEmpty(t, route)

		nav := NavigationOf(role)
		require.NotEmpty(t, nav, "role %q", role)
		assert.Equal(t, "profile", nav[0].Key, "base navigation must lead for %q", role)

		assert.NotEmpty(t, DashboardFeaturesOf(role), "role %q", role)
	}
}

func TestDashboardRoutesAreOneToOne(t *testing.T) {
	seen := make(map[string]Role)
	for _, role := range All() {
		route, err := DashboardRouteOf(role)
		require.NoError(t, err)
		prev, dup := seen[route]
		assert.False(t, dup, "route %q assigned to both %q and %q", route, prev, role)
		seen[route] = role
	}
}

func TestUnknownRoleDeniesEverything(t *testing.T) {
	for _, raw := range []string{"", "manager", "root"} {
		role, _ := Parse(raw)

		caps := CapabilitiesOf(role)
		assert.Equal(t, Capabilities{}, caps, "unknown role %q must have no capabilities", raw)

		assert.Equal(t, baseNavigation(), NavigationOf(role),
			"unknown role %q must get the base navigation only", raw)

		_, err := DashboardRouteOf(role)
		assert.ErrorIs(t, err, ErrInvalidRole)

		assert.Nil(t, DashboardFeaturesOf(role))
	}
}

func TestAdminCapabilities(t *testing.T) {
	caps := CapabilitiesOf(RoleAdmin)
	assert.True(t, caps.CanAccessAdmin)
	assert.True(t, caps.CanManageUsers)
	assert.True(t, caps.CanViewReports)
}

func TestLeastPrivilege(t *testing.T) {
	tests := []struct {
		role Role
		caps Capabilities
	}{
		{RoleTourist, Capabilities{CanMakeBookings: true}},
		{RoleVet, Capabilities{CanManageAnimalCases: true}},
		{RoleCallOperator, Capabilities{CanHandleEmergencies: true}},
		{RoleEmergencyOfficer, Capabilities{CanHandleEmergencies: true, CanViewReports: true}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.caps, CapabilitiesOf(tt.role), "role %q", tt.role)
		assert.False(t, CapabilitiesOf(tt.role).CanAccessAdmin, "role %q must not reach admin", tt.role)
	}
}
