package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent   RoleType = "STUDENT"
	RoleFaculty   RoleType = "FACULTY"
	RoleHOD       RoleType = "HOD"
	RolePrincipal RoleType = "PRINCIPAL"
	// RoleAdmin is the operator identity. It never appears in the users table.
	RoleAdmin RoleType = "ADMIN"
)

// IsStaff reports whether the role goes through the approval workflow.
func (r RoleType) IsStaff() bool {
	switch r {
	case RoleFaculty, RoleHOD, RolePrincipal:
		return true
	}
	return false
}

// IsAdministrative reports whether the role sees institution-wide data.
func (r RoleType) IsAdministrative() bool {
	return r == RoleHOD || r == RolePrincipal
}

// UserStatus is the approval state of a user row
type UserStatus string

const (
	StatusPending  UserStatus = "PENDING"
	StatusApproved UserStatus = "APPROVED"
	StatusRejected UserStatus = "REJECTED"
)
