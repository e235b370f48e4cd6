package models

import (
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	BaseModel
	Name  string                 `gorm:"type:varchar(200);not null"`
	Email string                 `gorm:"type:varchar(200);not null;index"`
	Phone *string                `gorm:"type:varchar(50)"`
	Type  invoicing.CustomerType `gorm:"type:varchar(20);not null;default:'customer'"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *invoicing.Customer {
	return &invoicing.Customer{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
		Type:       m.Type,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *invoicing.Customer) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
	m.Type = c.Type
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *invoicing.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// InvoiceModel is the persistence model for the Invoice aggregate.
// Items are deleted with their invoice.
type InvoiceModel struct {
	BaseModel
	UserID      uuid.UUID               `gorm:"type:uuid;not null;index"`
	CustomerID  uuid.UUID               `gorm:"type:uuid;not null;index"`
	Date        time.Time               `gorm:"not null"`
	Status      invoicing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	TotalAmount decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	IsPaid      bool                    `gorm:"not null;default:false"`
	Items       []InvoiceItemModel      `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	User        *UserModel              `gorm:"foreignKey:UserID"`
	Customer    *CustomerModel          `gorm:"foreignKey:CustomerID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice aggregate.
// Items are included only when they were preloaded.
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	inv := &invoicing.Invoice{
		BaseEntity:  m.BaseModel.ToDomain(),
		UserID:      m.UserID,
		CustomerID:  m.CustomerID,
		Date:        m.Date,
		Status:      m.Status,
		TotalAmount: m.TotalAmount,
		IsPaid:      m.IsPaid,
		Items:       make([]invoicing.InvoiceItem, len(m.Items)),
	}
	for i := range m.Items {
		inv.Items[i] = *m.Items[i].ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice aggregate.
func (m *InvoiceModel) FromDomain(inv *invoicing.Invoice) {
	m.FromDomainBaseEntity(inv.BaseEntity)
	m.UserID = inv.UserID
	m.CustomerID = inv.CustomerID
	m.Date = inv.Date
	m.Status = inv.Status
	m.TotalAmount = inv.TotalAmount
	m.IsPaid = inv.IsPaid
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i := range inv.Items {
		m.Items[i].FromDomain(&inv.Items[i])
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice aggregate.
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is the persistence model for an invoice line item.
type InvoiceItemModel struct {
	BaseModel
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_invoice_items_position,priority:1"`
	Position    int             `gorm:"not null;default:0;index:idx_invoice_items_position,priority:2"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    int             `gorm:"not null;default:1"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Total       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem.
func (m *InvoiceItemModel) ToDomain() *invoicing.InvoiceItem {
	return &invoicing.InvoiceItem{
		BaseEntity:  m.BaseModel.ToDomain(),
		InvoiceID:   m.InvoiceID,
		Position:    m.Position,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Total:       m.Total,
	}
}

// FromDomain populates the persistence model from a domain InvoiceItem.
func (m *InvoiceItemModel) FromDomain(item *invoicing.InvoiceItem) {
	m.FromDomainBaseEntity(item.BaseEntity)
	m.InvoiceID = item.InvoiceID
	m.Position = item.Position
	m.Description = item.Description
	m.Quantity = item.Quantity
	m.UnitPrice = item.UnitPrice
	m.Total = item.Total
}

// InvoiceItemModelFromDomain creates a new persistence model from a domain InvoiceItem.
func InvoiceItemModelFromDomain(item *invoicing.InvoiceItem) *InvoiceItemModel {
	m := &InvoiceItemModel{}
	m.FromDomain(item)
	return m
}

// PaymentModel is the persistence model for the Payment domain entity.
type PaymentModel struct {
	BaseModel
	UserID    uuid.UUID               `gorm:"type:uuid;not null;index"`
	InvoiceID uuid.UUID               `gorm:"type:uuid;not null;index"`
	Date      time.Time               `gorm:"not null"`
	Amount    decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Method    invoicing.PaymentMethod `gorm:"type:varchar(20);not null"`
	Status    invoicing.PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	User      *UserModel              `gorm:"foreignKey:UserID"`
	Invoice   *InvoiceModel           `gorm:"foreignKey:InvoiceID"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *invoicing.Payment {
	return &invoicing.Payment{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		InvoiceID:  m.InvoiceID,
		Date:       m.Date,
		Amount:     m.Amount,
		Method:     m.Method,
		Status:     m.Status,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *invoicing.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.UserID = p.UserID
	m.InvoiceID = p.InvoiceID
	m.Date = p.Date
	m.Amount = p.Amount
	m.Method = p.Method
	m.Status = p.Status
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *invoicing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
