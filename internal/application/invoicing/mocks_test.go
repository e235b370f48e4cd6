package invoicing

import (
	"context"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *invoicing.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *invoicing.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.ListFilter) ([]*invoicing.Customer, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*invoicing.Customer), args.Get(1).(int64), args.Error(2)
}

func (m *MockCustomerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*invoicing.Customer, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*invoicing.Customer), args.Error(1)
}

// MockInvoiceRepository is a mock implementation of InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, inv *invoicing.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, inv *invoicing.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter invoicing.InvoiceFilter) ([]*invoicing.Invoice, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*invoicing.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*invoicing.Invoice, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

// MockItemRepository is a mock implementation of InvoiceItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, item *invoicing.InvoiceItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockItemRepository) Update(ctx context.Context, item *invoicing.InvoiceItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.InvoiceItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.InvoiceItem), args.Error(1)
}

func (m *MockItemRepository) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	return m.Called(ctx, invoiceID).Error(0)
}

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *invoicing.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *invoicing.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAll(ctx context.Context, filter invoicing.PaymentFilter) ([]*invoicing.Payment, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*invoicing.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) SumCompletedByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	return m.Called(ctx, invoiceID).Error(0)
}

func (m *MockPaymentRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

// =============================================================================
// Fixture
// =============================================================================

type fixture struct {
	customers *MockCustomerRepository
	invoices  *MockInvoiceRepository
	items     *MockItemRepository
	payments  *MockPaymentRepository
	txScope   *NoOpTransactionScope
}

func newFixture() *fixture {
	f := &fixture{
		customers: new(MockCustomerRepository),
		invoices:  new(MockInvoiceRepository),
		items:     new(MockItemRepository),
		payments:  new(MockPaymentRepository),
	}
	f.txScope = NewNoOpTransactionScope(Repositories{
		Customers: f.customers,
		Invoices:  f.invoices,
		Items:     f.items,
		Payments:  f.payments,
	})
	return f
}

func (f *fixture) assertExpectations(t mock.TestingT) {
	f.customers.AssertExpectations(t)
	f.invoices.AssertExpectations(t)
	f.items.AssertExpectations(t)
	f.payments.AssertExpectations(t)
}
