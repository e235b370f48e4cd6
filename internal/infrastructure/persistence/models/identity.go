package models

import (
	"github.com/erp/invoicing/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
// Email is stored lower-cased, so the unique index is case-insensitive.
type UserModel struct {
	BaseModel
	Name           string `gorm:"type:varchar(200);not null"`
	Email          string `gorm:"type:varchar(200);not null;uniqueIndex:idx_users_email"`
	HashedPassword string `gorm:"type:varchar(255);not null"`
	IsSuperAdmin   bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:   m.BaseModel.ToDomain(),
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.HashedPassword,
		IsSuperAdmin: m.IsSuperAdmin,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Name = u.Name
	m.Email = u.Email
	m.HashedPassword = u.PasswordHash
	m.IsSuperAdmin = u.IsSuperAdmin
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
