package roles

import "errors"

// ErrInvalidRole is returned when a role has no dashboard mapping. Routing
// code must surface this as an explicit invalid-role state rather than fall
// through to any default dashboard.
var ErrInvalidRole = errors.New("roles: no dashboard registered for role")

// Capabilities is the full set of capability flags the policy table can
// grant. Every role resolves every flag; there is no "undefined" capability.
type Capabilities struct {
	CanAccessAdmin       bool `json:"can_access_admin"`
	CanManageUsers       bool `json:"can_manage_users"`
	CanHandleEmergencies bool `json:"can_handle_emergencies"`
	CanManageAnimalCases bool `json:"can_manage_animal_cases"`
	CanManageTours       bool `json:"can_manage_tours"`
	CanViewReports       bool `json:"can_view_reports"`
	CanMakeBookings      bool `json:"can_make_bookings"`
}

// NavItem is a single navigation entry visible to a role.
type NavItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

// CapabilitiesOf returns the capability set for a role. The switch is total
// over the enumeration; RoleUnknown (and anything else) falls through to the
// zero value, which denies everything.
func CapabilitiesOf(role Role) Capabilities {
	switch role {
	case RoleAdmin:
		return Capabilities{
			CanAccessAdmin:       true,
			CanManageUsers:       true,
			CanHandleEmergencies: true,
			CanManageAnimalCases: true,
			CanManageTours:       true,
			CanViewReports:       true,
			CanMakeBookings:      true,
		}
	case RoleTourist:
		return Capabilities{
			CanMakeBookings: true,
		}
	case RoleTourGuide:
		return Capabilities{
			CanManageTours: true,
		}
	case RoleSafariDriver:
		return Capabilities{
			CanManageTours: true,
		}
	case RoleWildlifeOfficer:
		return Capabilities{
			CanManageAnimalCases: true,
			CanViewReports:       true,
		}
	case RoleVet:
		return Capabilities{
			CanManageAnimalCases: true,
		}
	case RoleCallOperator:
		return Capabilities{
			CanHandleEmergencies: true,
		}
	case RoleEmergencyOfficer:
		return Capabilities{
			CanHandleEmergencies: true,
			CanViewReports:       true,
		}
	}
	return Capabilities{}
}

// baseNavigation is the profile-only set every authenticated session gets,
// and the entire set an unknown role gets.
func baseNavigation() []NavItem {
	return []NavItem{
		{Key: "profile", Label: "My Profile", Path: "/profile"},
	}
}

// NavigationOf returns the ordered navigation items for a role. The base
// (profile-only) set is always present; unknown roles get nothing else.
func NavigationOf(role Role) []NavItem {
	nav := baseNavigation()
	switch role {
	case RoleAdmin:
		nav = append(nav,
			NavItem{Key: "admin", Label: "Admin Dashboard", Path: "/admin"},
			NavItem{Key: "users", Label: "User Management", Path: "/admin/users"},
			NavItem{Key: "reports", Label: "Reports", Path: "/admin/reports"},
		)
	case RoleTourist:
		nav = append(nav,
			NavItem{Key: "dashboard", Label: "Dashboard", Path: "/dashboard"},
			NavItem{Key: "bookings", Label: "My Bookings", Path: "/bookings"},
			NavItem{Key: "events", Label: "Events", Path: "/events"},
		)
	case RoleTourGuide:
		nav = append(nav,
			NavItem{Key: "tours", Label: "My Tours", Path: "/guide/tours"},
			NavItem{Key: "materials", Label: "Tour Materials", Path: "/guide/materials"},
		)
	case RoleSafariDriver:
		nav = append(nav,
			NavItem{Key: "safari", Label: "Safari Dashboard", Path: "/safari"},
			NavItem{Key: "fuel", Label: "Fuel Claims", Path: "/safari/fuel-claims"},
		)
	case RoleWildlifeOfficer:
		nav = append(nav,
			NavItem{Key: "wildlife", Label: "Wildlife Dashboard", Path: "/wildlife"},
			NavItem{Key: "cases", Label: "Animal Cases", Path: "/wildlife/cases"},
			NavItem{Key: "reports", Label: "Reports", Path: "/wildlife/reports"},
		)
	case RoleVet:
		nav = append(nav,
			NavItem{Key: "vet", Label: "Vet Dashboard", Path: "/vet"},
			NavItem{Key: "cases", Label: "Animal Cases", Path: "/vet/cases"},
		)
	case RoleCallOperator:
		nav = append(nav,
			NavItem{Key: "operator", Label: "Operator Dashboard", Path: "/operator"},
			NavItem{Key: "emergencies", Label: "Emergency Intake", Path: "/operator/emergencies"},
		)
	case RoleEmergencyOfficer:
		nav = append(nav,
			NavItem{Key: "emergency", Label: "Emergency Dashboard", Path: "/emergency"},
			NavItem{Key: "reports", Label: "Emergency Reports", Path: "/emergency/reports"},
		)
	}
	return nav
}

// DashboardFeaturesOf returns the feature tags a role's dashboard renders.
func DashboardFeaturesOf(role Role) []string {
	switch role {
	case RoleAdmin:
		return []string{"user-management", "role-assignment", "reports", "audit-logs"}
	case RoleTourist:
		return []string{"bookings", "events", "donations", "feedback"}
	case RoleTourGuide:
		return []string{"tours", "tour-materials"}
	case RoleSafariDriver:
		return []string{"tours", "fuel-claims"}
	case RoleWildlifeOfficer:
		return []string{"animal-cases", "reports", "activities"}
	case RoleVet:
		return []string{"animal-cases", "treatment-records"}
	case RoleCallOperator:
		return []string{"emergency-intake", "complaints"}
	case RoleEmergencyOfficer:
		return []string{"emergency-handling", "emergency-reports"}
	}
	return nil
}

// DashboardRouteOf returns the single dashboard route for a role. The
// mapping is strictly one-to-one; an unmapped role returns ErrInvalidRole.
func DashboardRouteOf(role Role) (string, error) {
	switch role {
	case RoleAdmin:
		return "/admin", nil
	case RoleTourist:
		return "/dashboard", nil
	case RoleTourGuide:
		return "/guide", nil
	case RoleSafariDriver:
		return "/safari", nil
	case RoleWildlifeOfficer:
		return "/wildlife", nil
	case RoleVet:
		return "/vet", nil
	case RoleCallOperator:
		return "/operator", nil
	case RoleEmergencyOfficer:
		return "/emergency", nil
	}
	return "", ErrInvalidRole
}
