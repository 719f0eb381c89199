package roles

// Role is the closed set of park staff and visitor roles. The zero value is
// RoleUnknown so that a malformed or legacy role string coming out of the
// datastore can never satisfy a role check by accident.
type Role string

const (
	RoleUnknown          Role = ""
	RoleAdmin            Role = "admin"
	RoleTourist          Role = "tourist"
	RoleTourGuide        Role = "tourGuide"
	RoleSafariDriver     Role = "safariDriver"
	RoleWildlifeOfficer  Role = "WildlifeOfficer"
	RoleVet              Role = "vet"
	RoleCallOperator     Role = "callOperator"
	RoleEmergencyOfficer Role = "EmergencyOfficer"
)

// All returns every declared role, in a stable order.
func All() []Role {
	return []Role{
		RoleAdmin,
		RoleTourist,
		RoleTourGuide,
		RoleSafariDriver,
		RoleWildlifeOfficer,
		RoleVet,
		RoleCallOperator,
		RoleEmergencyOfficer,
	}
}

// Parse maps a raw role string to a Role. Anything outside the declared
// enumeration parses to RoleUnknown with ok=false; callers must treat that
// as a denial, never as a default.
func Parse(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleTourist, RoleTourGuide, RoleSafariDriver,
		RoleWildlifeOfficer, RoleVet, RoleCallOperator, RoleEmergencyOfficer:
		return Role(s), true
	}
	return RoleUnknown, false
}

// Valid reports whether r is a member of the declared enumeration.
func (r Role) Valid() bool {
	_, ok := Parse(string(r))
	return ok
}

func (r Role) String() string {
	if r == RoleUnknown {
		return "unknown"
	}
	return string(r)
}
