package invoicing

import (
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodPaypal       PaymentMethod = "paypal"
	PaymentMethodCheck        PaymentMethod = "check"
)

// IsValid checks if the method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCreditCard,
		PaymentMethodPaypal, PaymentMethodCheck:
		return true
	}
	return false
}

// PaymentStatus is the settlement state of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// IsValid checks if the status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// Payment records money received against an invoice
type Payment struct {
	shared.BaseEntity
	UserID    uuid.UUID
	InvoiceID uuid.UUID
	Date      time.Time
	Amount    decimal.Decimal
	Method    PaymentMethod
	Status    PaymentStatus
}

// PaymentPatch carries the fields of a partial payment update. Nil means unchanged.
type PaymentPatch struct {
	Amount *decimal.Decimal
	Method *PaymentMethod
	Status *PaymentStatus
}

// NewPayment creates a payment recorded by userID. An empty status defaults to pending.
func NewPayment(userID, invoiceID uuid.UUID, amount decimal.Decimal, method PaymentMethod, status PaymentStatus) (*Payment, error) {
	if status == "" {
		status = PaymentStatusPending
	}
	if !method.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_INPUT", "Invalid payment method: %s", method)
	}
	if !status.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_INPUT", "Invalid payment status: %s", status)
	}

	base := shared.NewBaseEntity()
	return &Payment{
		BaseEntity: base,
		UserID:     userID,
		InvoiceID:  invoiceID,
		Date:       base.CreatedAt,
		Amount:     amount,
		Method:     method,
		Status:     status,
	}, nil
}

// IsCompleted reports whether the payment counts toward the paid threshold
func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}

// Update applies a partial update. It does not touch the owning invoice.
func (p *Payment) Update(patch PaymentPatch) error {
	if patch.Method != nil && !patch.Method.IsValid() {
		return shared.NewDomainErrorf("INVALID_INPUT", "Invalid payment method: %s", *patch.Method)
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return shared.NewDomainErrorf("INVALID_INPUT", "Invalid payment status: %s", *patch.Status)
	}
	if patch.Amount != nil {
		p.Amount = *patch.Amount
	}
	if patch.Method != nil {
		p.Method = *patch.Method
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	p.Touch()
	return nil
}
