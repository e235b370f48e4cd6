package identity

import (
	"context"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/google/uuid"
)

// UserRepository persists users. Lookups return shared.ErrNotFound for a
// missing row and emails compare case-insensitively.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, filter shared.ListFilter) ([]*User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
