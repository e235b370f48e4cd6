package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/erp/invoicing/internal/domain/identity"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// newTestDatabase opens a migrated in-memory sqlite database
func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate(context.Background()))
	return db
}

func seedUser(t *testing.T, db *Database, email string) *identity.User {
	t.Helper()
	user := &identity.User{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         "User " + email,
		Email:        email,
		PasswordHash: "$2a$04$hash",
	}
	require.NoError(t, NewGormUserRepository(db.DB).Create(context.Background(), user))
	return user
}

func seedCustomer(t *testing.T, db *Database, name string) *invoicing.Customer {
	t.Helper()
	customer, err := invoicing.NewCustomer(name, fmt.Sprintf("%s@example.com", uuid.NewString()[:8]), nil, "")
	require.NoError(t, err)
	require.NoError(t, NewGormCustomerRepository(db.DB).Create(context.Background(), customer))
	return customer
}

func seedInvoice(t *testing.T, db *Database, owner, customer uuid.UUID, prices ...string) *invoicing.Invoice {
	t.Helper()
	lines := make([]invoicing.LineItem, len(prices))
	for i, p := range prices {
		lines[i] = invoicing.LineItem{
			Description: fmt.Sprintf("line %d", i+1),
			Quantity:    1,
			UnitPrice:   decimal.RequireFromString(p),
		}
	}
	inv, err := invoicing.NewInvoice(owner, customer, "", lines)
	require.NoError(t, err)
	require.NoError(t, NewGormInvoiceRepository(db.DB).Create(context.Background(), inv))
	return inv
}

func seedPayment(t *testing.T, db *Database, user, invoiceID uuid.UUID, amount string, status invoicing.PaymentStatus) *invoicing.Payment {
	t.Helper()
	p, err := invoicing.NewPayment(user, invoiceID, decimal.RequireFromString(amount), invoicing.PaymentMethodCash, status)
	require.NoError(t, err)
	require.NoError(t, NewGormPaymentRepository(db.DB).Create(context.Background(), p))
	return p
}
