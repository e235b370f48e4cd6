package identity

import (
	"context"

	"github.com/erp/invoicing/internal/domain/identity"
	"github.com/erp/invoicing/internal/domain/invoicing"
)

// TransactionScope runs account changes that touch the records a user owns atomically
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to the repositories sharing one transaction
type TransactionalRepositories interface {
	UserRepo() identity.UserRepository
	InvoiceRepo() invoicing.InvoiceRepository
	PaymentRepo() invoicing.PaymentRepository
}

// NoOpTransactionScope runs the function against plain repositories, for tests
type NoOpTransactionScope struct {
	userRepo    identity.UserRepository
	invoiceRepo invoicing.InvoiceRepository
	paymentRepo invoicing.PaymentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	userRepo identity.UserRepository,
	invoiceRepo invoicing.InvoiceRepository,
	paymentRepo invoicing.PaymentRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		userRepo:    userRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
	}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// UserRepo returns the user repository
func (s *NoOpTransactionScope) UserRepo() identity.UserRepository { return s.userRepo }

// InvoiceRepo returns the invoice repository
func (s *NoOpTransactionScope) InvoiceRepo() invoicing.InvoiceRepository { return s.invoiceRepo }

// PaymentRepo returns the payment repository
func (s *NoOpTransactionScope) PaymentRepo() invoicing.PaymentRepository { return s.paymentRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
