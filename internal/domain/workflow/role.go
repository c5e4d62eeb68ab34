package workflow

// Role identifies the actor requesting a transition
type Role string

const (
	RoleClient Role = "client"
	RoleExpert Role = "expert"
	RoleAdmin  Role = "admin"
)

var validRoles = map[Role]bool{
	RoleClient: true,
	RoleExpert: true,
	RoleAdmin:  true,
}

// IsValid returns true if the role is a known actor role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// Roles returns every actor role in a fixed order.
func Roles() []Role {
	return []Role{RoleClient, RoleExpert, RoleAdmin}
}
