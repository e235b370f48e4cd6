package invoicing

import (
	"context"

	"github.com/erp/invoicing/internal/domain/invoicing"
)

// TransactionScope runs multi-record invoicing changes atomically
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to the repositories sharing one transaction
type TransactionalRepositories interface {
	CustomerRepo() invoicing.CustomerRepository
	InvoiceRepo() invoicing.InvoiceRepository
	ItemRepo() invoicing.InvoiceItemRepository
	PaymentRepo() invoicing.PaymentRepository
}

// Repositories bundles the invoicing repositories
type Repositories struct {
	Customers invoicing.CustomerRepository
	Invoices  invoicing.InvoiceRepository
	Items     invoicing.InvoiceItemRepository
	Payments  invoicing.PaymentRepository
}

// NoOpTransactionScope runs the function against plain repositories, for tests
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// CustomerRepo returns the customer repository
func (s *NoOpTransactionScope) CustomerRepo() invoicing.CustomerRepository { return s.repos.Customers }

// InvoiceRepo returns the invoice repository
func (s *NoOpTransactionScope) InvoiceRepo() invoicing.InvoiceRepository { return s.repos.Invoices }

// ItemRepo returns the invoice item repository
func (s *NoOpTransactionScope) ItemRepo() invoicing.InvoiceItemRepository { return s.repos.Items }

// PaymentRepo returns the payment repository
func (s *NoOpTransactionScope) PaymentRepo() invoicing.PaymentRepository { return s.repos.Payments }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
