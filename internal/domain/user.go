package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRole enumerates platform roles.
type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleOrganizer UserRole = "ORGANIZER"
	RoleStaff     UserRole = "STAFF"
	RoleAttendee  UserRole = "ATTENDEE"
)

// ParseRole maps a string onto a known role.
func ParseRole(value string) (UserRole, error) {
	switch UserRole(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleOrganizer:
		return RoleOrganizer, nil
	case RoleStaff:
		return RoleStaff, nil
	case RoleAttendee:
		return RoleAttendee, nil
	default:
		return "", newValidationError("role", "unknown role "+value)
	}
}

// UserStatus enumerates account lifecycle states.
type UserStatus string

const (
	StatusActive    UserStatus = "ACTIVE"
	StatusInactive  UserStatus = "INACTIVE"
	StatusSuspended UserStatus = "SUSPENDED"
)

// ParseStatus maps a string onto a known status.
func ParseStatus(value string) (UserStatus, error) {
	switch UserStatus(strings.ToUpper(strings.TrimSpace(value))) {
	case StatusActive:
		return StatusActive, nil
	case StatusInactive:
		return StatusInactive, nil
	case StatusSuspended:
		return StatusSuspended, nil
	default:
		return "", newValidationError("status", "unknown status "+value)
	}
}

var emailPattern = regexp.MustCompile(`^[\w.-]+@([\w-]+\.)+[\w-]{2,4}$`)

// User is the aggregate root for a platform account. It owns at most one
// Address. Values are treated as immutable: every mutation returns a new
// User, and the ID never changes after creation.
type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Role      UserRole
	Status    UserStatus
	Address   *Address
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser builds a user with a freshly generated id and ACTIVE status.
func NewUser(name, email string, role UserRole) (User, error) {
	if isBlank(name) {
		return User{}, newValidationError("name", "cannot be empty")
	}
	if isBlank(email) || !emailPattern.MatchString(email) {
		return User{}, newValidationError("email", "invalid email format")
	}
	if role == "" {
		return User{}, newValidationError("role", "cannot be empty")
	}
	if _, err := ParseRole(string(role)); err != nil {
		return User{}, err
	}
	return User{
		ID:     uuid.New(),
		Name:   name,
		Email:  email,
		Role:   role,
		Status: StatusActive,
	}, nil
}

// Initialize stamps a fresh identity onto the user, defaults the status to
// ACTIVE and re-links the owned address, if any, to the new id.
func (u User) Initialize() User {
	u.ID = uuid.New()
	u.Status = StatusActive
	if u.Address != nil {
		addr := u.Address.Initialize(u.ID)
		u.Address = &addr
	}
	return u
}

// WithName returns a copy with the name replaced.
func (u User) WithName(name string) (User, error) {
	if isBlank(name) {
		return User{}, newValidationError("name", "cannot be empty")
	}
	u.Name = name
	return u, nil
}

// WithEmail returns a copy with the email replaced.
func (u User) WithEmail(email string) (User, error) {
	if isBlank(email) {
		return User{}, newValidationError("email", "cannot be empty")
	}
	if !emailPattern.MatchString(email) {
		return User{}, newValidationError("email", "invalid email format")
	}
	u.Email = email
	return u, nil
}

// WithRole returns a copy with the role replaced.
func (u User) WithRole(role UserRole) (User, error) {
	if role == "" {
		return User{}, newValidationError("role", "cannot be empty")
	}
	if _, err := ParseRole(string(role)); err != nil {
		return User{}, err
	}
	u.Role = role
	return u, nil
}

// WithAddress returns a copy owning the given address.
func (u User) WithAddress(addr *Address) (User, error) {
	if addr == nil {
		return User{}, newValidationError("address", "cannot be empty")
	}
	a := *addr
	u.Address = &a
	return u, nil
}

// Activate returns a copy in ACTIVE status.
func (u User) Activate() User {
	u.Status = StatusActive
	return u
}

// Deactivate returns a copy in INACTIVE status.
func (u User) Deactivate() User {
	u.Status = StatusInactive
	return u
}

// Suspend returns a copy in SUSPENDED status.
func (u User) Suspend() User {
	u.Status = StatusSuspended
	return u
}

// IsActive reports whether the account is ACTIVE.
func (u User) IsActive() bool {
	return u.Status == StatusActive
}

// IsSuspended reports whether the account is SUSPENDED.
func (u User) IsSuspended() bool {
	return u.Status == StatusSuspended
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
