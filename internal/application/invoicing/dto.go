package invoicing

import (
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	Name  string  `json:"name" binding:"required,min=1,max=200"`
	Email string  `json:"email" binding:"required,email,max=200"`
	Phone *string `json:"phone" binding:"omitempty,max=50"`
	Type  string  `json:"type" binding:"omitempty,oneof=customer client"`
}

// UpdateCustomerRequest is a partial customer update. A null phone clears it.
type UpdateCustomerRequest struct {
	Name  *string                 `json:"name" binding:"omitempty,min=1,max=200"`
	Email *string                 `json:"email" binding:"omitempty,email,max=200"`
	Phone shared.Optional[string] `json:"phone"`
	Type  *string                 `json:"type" binding:"omitempty,oneof=customer client"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     *string    `json:"phone"`
	Type      string     `json:"type"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ToCustomerResponse converts a domain customer
func ToCustomerResponse(c *invoicing.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Type:      string(c.Type),
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt(c.BaseEntity),
	}
}

// =============================================================================
// Invoice DTOs
// =============================================================================

// ItemRequest describes a line item. Quantity defaults to 1.
type ItemRequest struct {
	Description string           `json:"description" binding:"required,max=500"`
	Quantity    *int             `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price" binding:"required"`
}

func (r ItemRequest) toLineItem() invoicing.LineItem {
	quantity := 1
	if r.Quantity != nil {
		quantity = *r.Quantity
	}
	return invoicing.LineItem{
		Description: r.Description,
		Quantity:    quantity,
		UnitPrice:   *r.UnitPrice,
	}
}

// CreateInvoiceRequest represents a request to create an invoice with its items
type CreateInvoiceRequest struct {
	CustomerID uuid.UUID     `json:"customer_id" binding:"required"`
	Status     string        `json:"status" binding:"omitempty,oneof=draft sent paid overdue cancelled"`
	Items      []ItemRequest `json:"items" binding:"omitempty,dive"`
}

// UpdateInvoiceRequest is a partial invoice update. Items are managed through the item endpoints.
type UpdateInvoiceRequest struct {
	CustomerID *uuid.UUID `json:"customer_id"`
	Status     *string    `json:"status" binding:"omitempty,oneof=draft sent paid overdue cancelled"`
	IsPaid     *bool      `json:"is_paid"`
}

// UpdateItemRequest is a partial item update
type UpdateItemRequest struct {
	Description *string          `json:"description" binding:"omitempty,max=500"`
	Quantity    *int             `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// ItemResponse represents an invoice item in API responses
type ItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

// InvoiceResponse represents an invoice with its customer and items
type InvoiceResponse struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	CustomerID  uuid.UUID         `json:"customer_id"`
	Date        time.Time         `json:"date"`
	Status      string            `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	IsPaid      bool              `json:"is_paid"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   *time.Time        `json:"updated_at,omitempty"`
	Customer    *CustomerResponse `json:"customer,omitempty"`
	Items       []ItemResponse    `json:"items"`
}

// InvoiceSummary is the invoice embedded in payment responses
type InvoiceSummary struct {
	ID          uuid.UUID       `json:"id"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	IsPaid      bool            `json:"is_paid"`
}

// ToItemResponse converts a domain invoice item
func ToItemResponse(item *invoicing.InvoiceItem) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		InvoiceID:   item.InvoiceID,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Total:       item.Total,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   updatedAt(item.BaseEntity),
	}
}

// ToInvoiceResponse converts a domain invoice. customer may be nil.
func ToInvoiceResponse(inv *invoicing.Invoice, customer *invoicing.Customer) InvoiceResponse {
	resp := InvoiceResponse{
		ID:          inv.ID,
		UserID:      inv.UserID,
		CustomerID:  inv.CustomerID,
		Date:        inv.Date,
		Status:      inv.Status.String(),
		TotalAmount: inv.TotalAmount,
		IsPaid:      inv.IsPaid,
		CreatedAt:   inv.CreatedAt,
		UpdatedAt:   updatedAt(inv.BaseEntity),
		Items:       make([]ItemResponse, len(inv.Items)),
	}
	for i := range inv.Items {
		resp.Items[i] = ToItemResponse(&inv.Items[i])
	}
	if customer != nil {
		c := ToCustomerResponse(customer)
		resp.Customer = &c
	}
	return resp
}

// ToInvoiceSummary converts a domain invoice to its summary form
func ToInvoiceSummary(inv *invoicing.Invoice) InvoiceSummary {
	return InvoiceSummary{
		ID:          inv.ID,
		CustomerID:  inv.CustomerID,
		Status:      inv.Status.String(),
		TotalAmount: inv.TotalAmount,
		IsPaid:      inv.IsPaid,
	}
}

// =============================================================================
// Payment DTOs
// =============================================================================

// CreatePaymentRequest represents a request to record a payment
type CreatePaymentRequest struct {
	InvoiceID uuid.UUID        `json:"invoice_id" binding:"required"`
	Amount    *decimal.Decimal `json:"amount" binding:"required"`
	Method    string           `json:"method" binding:"required,oneof=cash bank_transfer credit_card paypal check"`
	Status    string           `json:"status" binding:"omitempty,oneof=pending completed failed refunded"`
}

// UpdatePaymentRequest is a partial payment update
type UpdatePaymentRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Method *string          `json:"method" binding:"omitempty,oneof=cash bank_transfer credit_card paypal check"`
	Status *string          `json:"status" binding:"omitempty,oneof=pending completed failed refunded"`
}

// PaymentListFilter narrows a payment listing
type PaymentListFilter struct {
	shared.ListFilter
	InvoiceID *uuid.UUID
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Date      time.Time       `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
	Invoice   *InvoiceSummary `json:"invoice,omitempty"`
}

// ToPaymentResponse converts a domain payment. inv may be nil.
func ToPaymentResponse(p *invoicing.Payment, inv *invoicing.Invoice) PaymentResponse {
	resp := PaymentResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		InvoiceID: p.InvoiceID,
		Date:      p.Date,
		Amount:    p.Amount,
		Method:    string(p.Method),
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		UpdatedAt: updatedAt(p.BaseEntity),
	}
	if inv != nil {
		summary := ToInvoiceSummary(inv)
		resp.Invoice = &summary
	}
	return resp
}

func updatedAt(e shared.BaseEntity) *time.Time {
	if !e.UpdatedAt.After(e.CreatedAt) {
		return nil
	}
	t := e.UpdatedAt
	return &t
}
