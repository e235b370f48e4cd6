package invoicing

import (
	"context"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerRepository persists customers
type CustomerRepository interface {
	Create(ctx context.Context, customer *Customer) error
	Update(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindAll(ctx context.Context, filter shared.ListFilter) ([]*Customer, int64, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Customer, error)
}

// InvoiceFilter narrows invoice listings. A nil OwnerID lists every invoice.
type InvoiceFilter struct {
	shared.ListFilter
	OwnerID *uuid.UUID
}

// InvoiceRepository persists invoices. Update writes the invoice row only, items are
// persisted through InvoiceItemRepository.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *Invoice) error
	Update(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindAll(ctx context.Context, filter InvoiceFilter) ([]*Invoice, int64, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Invoice, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// InvoiceItemRepository persists invoice items
type InvoiceItemRepository interface {
	Create(ctx context.Context, item *InvoiceItem) error
	Update(ctx context.Context, item *InvoiceItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*InvoiceItem, error)
	DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error
}

// PaymentFilter narrows payment listings. Nil fields do not filter.
type PaymentFilter struct {
	shared.ListFilter
	OwnerID   *uuid.UUID
	InvoiceID *uuid.UUID
}

// PaymentRepository persists payments
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	Update(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindAll(ctx context.Context, filter PaymentFilter) ([]*Payment, int64, error)
	SumCompletedByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
	DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
