package invoicing

import (
	"net/mail"
	"strings"

	"github.com/erp/invoicing/internal/domain/shared"
)

// CustomerType classifies a customer record
type CustomerType string

const (
	CustomerTypeCustomer CustomerType = "customer"
	CustomerTypeClient   CustomerType = "client"
)

// IsValid checks if the customer type is valid
func (t CustomerType) IsValid() bool {
	switch t {
	case CustomerTypeCustomer, CustomerTypeClient:
		return true
	}
	return false
}

const maxPhoneLength = 50

// Customer is a billed party referenced by invoices
type Customer struct {
	shared.BaseEntity
	Name  string
	Email string
	Phone *string
	Type  CustomerType
}

// NewCustomer creates a new customer. An empty type defaults to CustomerTypeCustomer.
func NewCustomer(name, email string, phone *string, customerType CustomerType) (*Customer, error) {
	c := &Customer{BaseEntity: shared.NewBaseEntity()}
	patch := CustomerPatch{Name: &name, Email: &email, Phone: shared.FromPtr(phone), Type: &customerType}
	if err := c.apply(patch); err != nil {
		return nil, err
	}
	return c, nil
}

// CustomerPatch carries the fields of a partial customer update. Nil means
// unchanged. Phone can also be cleared with an explicit null.
type CustomerPatch struct {
	Name  *string
	Email *string
	Phone shared.Optional[string]
	Type  *CustomerType
}

// Update applies a partial update
func (c *Customer) Update(patch CustomerPatch) error {
	if err := c.apply(patch); err != nil {
		return err
	}
	c.Touch()
	return nil
}

func (c *Customer) apply(patch CustomerPatch) error {
	next := *c
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return shared.NewDomainError("INVALID_INPUT", "Customer name cannot be empty")
		}
		next.Name = name
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			return shared.NewDomainError("INVALID_INPUT", "Invalid email format")
		}
		next.Email = email
	}
	if patch.Phone.Set {
		phone := strings.TrimSpace(patch.Phone.Value)
		if len(phone) > maxPhoneLength {
			return shared.NewDomainErrorf("INVALID_INPUT", "Phone cannot exceed %d characters", maxPhoneLength)
		}
		if patch.Phone.Null || phone == "" {
			next.Phone = nil
		} else {
			next.Phone = &phone
		}
	}
	if patch.Type != nil {
		t := *patch.Type
		if t == "" {
			t = CustomerTypeCustomer
		}
		if !t.IsValid() {
			return shared.NewDomainErrorf("INVALID_INPUT", "Invalid customer type: %s", t)
		}
		next.Type = t
	}
	*c = next
	return nil
}
