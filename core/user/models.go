package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/berkanmatematik/platform/core"
)

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultDisplayName is shown for accounts without a name.
const DefaultDisplayName = "Kullanıcı"

var AllRoles = []string{RoleUser, RoleAdmin}

func ValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash []byte    `json:"-"`
	TokenVersion int       `json:"-"` // bumped on sign out; older tokens are revoked
	CreatedAt    time.Time `json:"createdAt"` // UTC
	UpdatedAt    time.Time `json:"updatedAt"` // UTC
	LastLogin    time.Time `json:"lastLogin"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// IsAdmin is derived from the persisted role only.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) DisplayName() string {
	if u.Name == "" {
		return DefaultDisplayName
	}
	return u.Name
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (nu *NewUser) Clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
}

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Clean() {
	c.Email = core.CleanString(c.Email, true /* lower */)
}

// UpdateProfile defines what a user may change on their own account.
type UpdateProfile struct {
	Name string `json:"name" validate:"required,min=2"`
}

func (up *UpdateProfile) Clean() {
	up.Name = core.CleanString(up.Name)
}

// GetFilter selects one user; the first non-empty field wins.
type GetFilter struct {
	ID    string
	Email string
}

// EventKind names a change of the authentication state of a user.
type EventKind string

const (
	EventSignedIn       EventKind = "signed_in"
	EventSignedOut      EventKind = "signed_out"
	EventProfileUpdated EventKind = "profile_updated"
	EventRoleChanged    EventKind = "role_changed"
)

// Event is published by the Service whenever a session must be refreshed.
type Event struct {
	Kind EventKind
	User User
	At   time.Time // UTC
}
