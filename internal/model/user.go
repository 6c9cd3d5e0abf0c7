package model

import "time"

// Role is the access level assigned to a user account.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleApprover  Role = "approver"
	RoleRequester Role = "requester"
	RoleViewer    Role = "viewer"
)

// CanApprove reports whether the role is allowed to approve or reject
// purchase requests.
func (r Role) CanApprove() bool {
	return r == RoleAdmin || r == RoleApprover
}

// CanManageUsers reports whether the role is allowed to administer
// user accounts.
func (r Role) CanManageUsers() bool {
	return r == RoleAdmin
}

// User is the authenticated account as reported by the identity service.
type User struct {
	// ID is the server-assigned account identifier.
	ID string `json:"id"`

	// Email is the login email address.
	Email string `json:"email"`

	// Name is the display name.
	Name string `json:"name"`

	// Role controls which operations the backend will accept.
	Role Role `json:"role"`

	// Department is the name of the department the user belongs to.
	Department string `json:"department"`

	// CreatedAt is when the account was created server-side.
	CreatedAt time.Time `json:"created_at"`
}
