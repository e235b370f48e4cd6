package invoicing

import (
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsValid checks if the status is valid
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid,
		InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// InvoiceItem is a single billed line of an invoice
type InvoiceItem struct {
	shared.BaseEntity
	InvoiceID   uuid.UUID
	Position    int // 1-based order within the invoice
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// LineItem describes a line item to be added to an invoice
type LineItem struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// ItemPatch carries the fields of a partial item update. Nil means unchanged.
type ItemPatch struct {
	Description *string
	Quantity    *int
	UnitPrice   *decimal.Decimal
}

// NewInvoiceItem creates an item with total = quantity × unit price.
// Quantity and price are not range-checked here.
func NewInvoiceItem(invoiceID uuid.UUID, line LineItem) *InvoiceItem {
	item := &InvoiceItem{
		BaseEntity:  shared.NewBaseEntity(),
		InvoiceID:   invoiceID,
		Description: line.Description,
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice,
	}
	item.recalculate()
	return item
}

// LineTotal computes quantity × unit price
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

func (i *InvoiceItem) recalculate() {
	i.Total = LineTotal(i.Quantity, i.UnitPrice)
}

// apply updates the item and returns new total minus old total
func (i *InvoiceItem) apply(patch ItemPatch) decimal.Decimal {
	old := i.Total
	if patch.Description != nil {
		i.Description = *patch.Description
	}
	if patch.Quantity != nil {
		i.Quantity = *patch.Quantity
	}
	if patch.UnitPrice != nil {
		i.UnitPrice = *patch.UnitPrice
	}
	i.recalculate()
	i.Touch()
	return i.Total.Sub(old)
}

// Invoice is the aggregate that owns line items and tracks payment state.
// TotalAmount is maintained incrementally by the item operations below and
// is never recomputed from Items on read.
type Invoice struct {
	shared.BaseEntity
	UserID      uuid.UUID
	CustomerID  uuid.UUID
	Date        time.Time
	Status      InvoiceStatus
	TotalAmount decimal.Decimal
	IsPaid      bool
	Items       []InvoiceItem
}

// InvoicePatch carries the fields of a partial invoice update. Nil means unchanged.
type InvoicePatch struct {
	CustomerID *uuid.UUID
	Status     *InvoiceStatus
	IsPaid     *bool
}

// NewInvoice creates an invoice owned by userID with the given items.
// An empty status defaults to draft.
func NewInvoice(userID, customerID uuid.UUID, status InvoiceStatus, lines []LineItem) (*Invoice, error) {
	if status == "" {
		status = InvoiceStatusDraft
	}
	if !status.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_INPUT", "Invalid invoice status: %s", status)
	}

	base := shared.NewBaseEntity()
	inv := &Invoice{
		BaseEntity:  base,
		UserID:      userID,
		CustomerID:  customerID,
		Date:        base.CreatedAt,
		Status:      status,
		TotalAmount: decimal.Zero,
		Items:       make([]InvoiceItem, 0, len(lines)),
	}
	for _, line := range lines {
		inv.AddItem(line)
	}
	return inv, nil
}

// AddItem appends a new item after the last position and increases
// TotalAmount by its total
func (inv *Invoice) AddItem(line LineItem) *InvoiceItem {
	item := NewInvoiceItem(inv.ID, line)
	item.Position = inv.nextPosition()
	inv.Items = append(inv.Items, *item)
	inv.TotalAmount = inv.TotalAmount.Add(item.Total)
	inv.Touch()
	return item
}

// UpdateItem applies patch to item and shifts TotalAmount by the change in the item's total
func (inv *Invoice) UpdateItem(item *InvoiceItem, patch ItemPatch) error {
	if item.InvoiceID != inv.ID {
		return ErrItemMismatch
	}
	delta := item.apply(patch)
	inv.TotalAmount = inv.TotalAmount.Add(delta)
	inv.replaceItem(*item)
	inv.Touch()
	return nil
}

// RemoveItem decreases TotalAmount by the item's total and drops it from Items
func (inv *Invoice) RemoveItem(item *InvoiceItem) error {
	if item.InvoiceID != inv.ID {
		return ErrItemMismatch
	}
	inv.TotalAmount = inv.TotalAmount.Sub(item.Total)
	for i := range inv.Items {
		if inv.Items[i].ID == item.ID {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			break
		}
	}
	inv.Touch()
	return nil
}

func (inv *Invoice) nextPosition() int {
	last := 0
	for i := range inv.Items {
		last = max(last, inv.Items[i].Position)
	}
	return last + 1
}

func (inv *Invoice) replaceItem(item InvoiceItem) {
	for i := range inv.Items {
		if inv.Items[i].ID == item.ID {
			inv.Items[i] = item
			return
		}
	}
}

// Update applies a partial update
func (inv *Invoice) Update(patch InvoicePatch) error {
	if patch.Status != nil && !patch.Status.IsValid() {
		return shared.NewDomainErrorf("INVALID_INPUT", "Invalid invoice status: %s", *patch.Status)
	}
	if patch.CustomerID != nil {
		inv.CustomerID = *patch.CustomerID
	}
	if patch.Status != nil {
		inv.Status = *patch.Status
	}
	if patch.IsPaid != nil {
		inv.IsPaid = *patch.IsPaid
	}
	inv.Touch()
	return nil
}

// ApplyCompletedPayments marks the invoice paid when completedTotal, the sum
// of all completed payments, reaches TotalAmount. It never clears IsPaid.
// Returns true if the invoice transitioned to paid.
func (inv *Invoice) ApplyCompletedPayments(completedTotal decimal.Decimal) bool {
	if completedTotal.LessThan(inv.TotalAmount) {
		return false
	}
	wasPaid := inv.IsPaid && inv.Status == InvoiceStatusPaid
	inv.IsPaid = true
	inv.Status = InvoiceStatusPaid
	inv.Touch()
	return !wasPaid
}

// ItemsTotal sums the totals of the currently loaded items
func (inv *Invoice) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range inv.Items {
		sum = sum.Add(item.Total)
	}
	return sum
}
