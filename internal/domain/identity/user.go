package identity

import (
	"net/mail"
	"strings"

	"github.com/erp/invoicing/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the bcrypt work factor used for new password hashes.
var BcryptCost = 12

// Domain errors for the identity context
var (
	ErrUserNotFound       = shared.NewDomainError("NOT_FOUND", "User not found")
	ErrEmailRegistered    = shared.NewDomainError("EMAIL_REGISTERED", "Email already registered")
	ErrEmailTaken         = shared.NewDomainError("ALREADY_EXISTS", "Email already in use by another user")
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Incorrect email or password")
	errPasswordHashing    = shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores bytes beyond this
	maxNameLength     = 200
	maxEmailLength    = 200
)

// User represents an account that owns invoices and payments
type User struct {
	shared.BaseEntity
	Name         string
	Email        string
	PasswordHash string
	IsSuperAdmin bool
}

// NewUser creates a new user and hashes its password
func NewUser(name, email, password string, isSuperAdmin bool) (*User, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, errPasswordHashing
	}

	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         strings.TrimSpace(name),
		Email:        normalized,
		PasswordHash: hash,
		IsSuperAdmin: isSuperAdmin,
	}, nil
}

// SetName sets the user's display name
func (u *User) SetName(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	u.Name = strings.TrimSpace(name)
	u.Touch()
	return nil
}

// SetEmail sets the user's email address
func (u *User) SetEmail(email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	u.Email = normalized
	u.Touch()
	return nil
}

// SetSuperAdmin grants or revokes the super-admin role
func (u *User) SetSuperAdmin(isSuperAdmin bool) {
	u.IsSuperAdmin = isSuperAdmin
	u.Touch()
}

// SetPassword replaces the password hash
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return errPasswordHashing
	}
	u.PasswordHash = hash
	u.Touch()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// NormalizeEmail lowercases and trims an email address for lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Name cannot be empty")
	}
	if len(name) > maxNameLength {
		return shared.NewDomainErrorf("INVALID_INPUT", "Name cannot exceed %d characters", maxNameLength)
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = NormalizeEmail(email)
	if len(email) > maxEmailLength {
		return "", shared.NewDomainErrorf("INVALID_INPUT", "Email cannot exceed %d characters", maxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", shared.NewDomainError("INVALID_INPUT", "Invalid email format")
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return shared.NewDomainErrorf("INVALID_INPUT", "Password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return shared.NewDomainErrorf("INVALID_INPUT", "Password cannot exceed %d characters", maxPasswordLength)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
