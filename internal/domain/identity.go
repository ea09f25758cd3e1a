package domain

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
	RoleUser  Role = "user"
)

// Identity is the caller as vouched for by the session layer.
type Identity struct {
	UserID string
	Role   Role
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

func (i Identity) IsStaff() bool { return i.Role == RoleStaff }

func (i Identity) IsBackOffice() bool { return i.IsAdmin() || i.IsStaff() }
