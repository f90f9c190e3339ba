package model

// Role enumerates the user roles understood by the authorization layer.
type Role string

const (
	RoleAdmin          Role = "Admin"
	RolePrincipal      Role = "Principal"
	RoleProfessor      Role = "Professor"
	RoleStudentProctor Role = "StudentProctor"
	RoleStudent        Role = "Student"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePrincipal, RoleProfessor, RoleStudentProctor, RoleStudent:
		return true
	}
	return false
}
