package persistence

import (
	"context"

	appidentity "github.com/erp/invoicing/internal/application/identity"
	appinvoicing "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/erp/invoicing/internal/domain/identity"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"gorm.io/gorm"
)

// GormTransactionScope runs use cases inside a single GORM transaction.
// It serves both the invoicing and the identity application services.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside a transaction. An error from fn rolls it back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinvoicing.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// Identity returns the same scope typed for the identity services.
func (s *GormTransactionScope) Identity() appidentity.TransactionScope {
	return identityTransactionScope{db: s.db}
}

type identityTransactionScope struct {
	db *gorm.DB
}

func (s identityTransactionScope) Execute(ctx context.Context, fn func(repos appidentity.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to the current transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) UserRepo() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

func (r *gormTransactionalRepositories) CustomerRepo() invoicing.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

func (r *gormTransactionalRepositories) InvoiceRepo() invoicing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

func (r *gormTransactionalRepositories) ItemRepo() invoicing.InvoiceItemRepository {
	return NewGormInvoiceItemRepository(r.tx)
}

func (r *gormTransactionalRepositories) PaymentRepo() invoicing.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

var (
	_ appinvoicing.TransactionScope          = (*GormTransactionScope)(nil)
	_ appinvoicing.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
	_ appidentity.TransactionScope           = identityTransactionScope{}
	_ appidentity.TransactionalRepositories  = (*gormTransactionalRepositories)(nil)
)
