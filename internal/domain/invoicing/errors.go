package invoicing

import "github.com/erp/invoicing/internal/domain/shared"

// Domain errors for the invoicing context
var (
	ErrCustomerNotFound = shared.NewDomainError("NOT_FOUND", "Customer not found")
	ErrInvoiceNotFound  = shared.NewDomainError("NOT_FOUND", "Invoice not found")
	ErrItemNotFound     = shared.NewDomainError("NOT_FOUND", "Invoice item not found")
	ErrPaymentNotFound  = shared.NewDomainError("NOT_FOUND", "Payment not found")
	ErrCustomerInUse    = shared.NewDomainError("CONFLICT", "Customer is referenced by existing invoices")
	ErrItemMismatch     = shared.NewDomainError("INVALID_INPUT", "Item does not belong to this invoice")
)
