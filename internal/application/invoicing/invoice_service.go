package invoicing

import (
	"context"
	"errors"

	"github.com/erp/invoicing/internal/domain/access"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceService handles invoices and their line items.
// Item mutations keep the invoice total in step by applying the delta of the
// changed item inside the same transaction.
type InvoiceService struct {
	invoiceRepo  invoicing.InvoiceRepository
	customerRepo invoicing.CustomerRepository
	txScope      TransactionScope
	policy       *access.Policy
	metrics      *telemetry.BusinessMetrics
	logger       *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo invoicing.InvoiceRepository,
	customerRepo invoicing.CustomerRepository,
	txScope TransactionScope,
	policy *access.Policy,
	metrics *telemetry.BusinessMetrics,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		txScope:      txScope,
		policy:       policy,
		metrics:      metrics,
		logger:       logger,
	}
}

// Create creates an invoice owned by the caller together with its items
func (s *InvoiceService) Create(ctx context.Context, caller access.Principal, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create")
	defer span.End()

	if err := s.policy.Authorize(caller, access.ResourceInvoice, access.ActionCreate, uuid.Nil); err != nil {
		return nil, err
	}

	lines := make([]invoicing.LineItem, len(req.Items))
	for i, item := range req.Items {
		lines[i] = item.toLineItem()
	}
	inv, err := invoicing.NewInvoice(caller.UserID, req.CustomerID, invoicing.InvoiceStatus(req.Status), lines)
	if err != nil {
		return nil, err
	}

	var customer *invoicing.Customer
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := findCustomer(ctx, repos.CustomerRepo(), req.CustomerID)
		if err != nil {
			return err
		}
		customer = c
		return repos.InvoiceRepo().Create(ctx, inv)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, inv.ID.String(),
		telemetry.SpanAttrCustomerID, inv.CustomerID.String(),
		telemetry.SpanAttrItemsCount, len(inv.Items),
	)

	s.metrics.RecordInvoiceCreated(ctx, inv.Status.String(), inv.TotalAmount)
	s.logger.Info("Invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("user_id", inv.UserID.String()),
		zap.Int("items", len(inv.Items)),
		zap.String("total_amount", inv.TotalAmount.String()))

	resp := ToInvoiceResponse(inv, customer)
	return &resp, nil
}

// Get retrieves an invoice with its customer and items
func (s *InvoiceService) Get(ctx context.Context, caller access.Principal, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := findInvoice(ctx, s.invoiceRepo, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, access.ResourceInvoice, access.ActionRead, inv.UserID); err != nil {
		return nil, err
	}
	return s.withCustomer(ctx, inv)
}

// List returns a page of invoices. Regular users only see their own.
func (s *InvoiceService) List(ctx context.Context, caller access.Principal, filter shared.ListFilter) ([]InvoiceResponse, int64, error) {
	owner, err := s.policy.ListScope(caller, access.ResourceInvoice)
	if err != nil {
		return nil, 0, err
	}

	invoices, total, err := s.invoiceRepo.FindAll(ctx, invoicing.InvoiceFilter{ListFilter: filter, OwnerID: owner})
	if err != nil {
		return nil, 0, err
	}

	customers, err := s.customersOf(ctx, invoices)
	if err != nil {
		return nil, 0, err
	}
	out := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		out[i] = ToInvoiceResponse(inv, customers[inv.CustomerID])
	}
	return out, total, nil
}

// Update applies a partial update to the invoice row
func (s *InvoiceService) Update(ctx context.Context, caller access.Principal, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	var inv *invoicing.Invoice
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inv, err = findInvoice(ctx, repos.InvoiceRepo(), id)
		if err != nil {
			return err
		}
		if err := s.policy.Authorize(caller, access.ResourceInvoice, access.ActionUpdate, inv.UserID); err != nil {
			return err
		}

		patch := invoicing.InvoicePatch{CustomerID: req.CustomerID, IsPaid: req.IsPaid}
		if req.Status != nil {
			status := invoicing.InvoiceStatus(*req.Status)
			patch.Status = &status
		}
		if req.CustomerID != nil && *req.CustomerID != inv.CustomerID {
			if _, err := findCustomer(ctx, repos.CustomerRepo(), *req.CustomerID); err != nil {
				return err
			}
		}
		if err := inv.Update(patch); err != nil {
			return err
		}
		return repos.InvoiceRepo().Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return s.withCustomer(ctx, inv)
}

// Delete removes an invoice with its items and payments
func (s *InvoiceService) Delete(ctx context.Context, caller access.Principal, id uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := findInvoice(ctx, repos.InvoiceRepo(), id)
		if err != nil {
			return err
		}
		if err := s.policy.Authorize(caller, access.ResourceInvoice, access.ActionDelete, inv.UserID); err != nil {
			return err
		}
		if err := repos.PaymentRepo().DeleteByInvoice(ctx, id); err != nil {
			return err
		}
		if err := repos.ItemRepo().DeleteByInvoice(ctx, id); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Delete(ctx, id); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return invoicing.ErrInvoiceNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Invoice deleted",
		zap.String("invoice_id", id.String()),
		zap.String("by", caller.UserID.String()))
	return nil
}

// AddItem appends an item to an invoice and raises its total by the item total
func (s *InvoiceService) AddItem(ctx context.Context, caller access.Principal, invoiceID uuid.UUID, req ItemRequest) (*ItemResponse, error) {
	var item *invoicing.InvoiceItem
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := findInvoice(ctx, repos.InvoiceRepo(), invoiceID)
		if err != nil {
			return err
		}
		if err := s.policy.Authorize(caller, access.ResourceInvoice, access.ActionAddItem, inv.UserID); err != nil {
			return err
		}

		item = inv.AddItem(req.toLineItem())
		if err := repos.ItemRepo().Create(ctx, item); err != nil {
			return err
		}
		return repos.InvoiceRepo().Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	resp := ToItemResponse(item)
	return &resp, nil
}

// UpdateItem applies a partial update to an item and shifts the invoice total by the delta
func (s *InvoiceService) UpdateItem(ctx context.Context, caller access.Principal, itemID uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	var item *invoicing.InvoiceItem
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var inv *invoicing.Invoice
		var err error
		item, inv, err = s.loadItem(ctx, repos, itemID)
		if err != nil {
			return err
		}
		if err := s.policy.Authorize(caller, access.ResourceInvoice, access.ActionUpdateItem, inv.UserID); err != nil {
			return err
		}

		patch := invoicing.ItemPatch{
			Description: req.Description,
			Quantity:    req.Quantity,
			UnitPrice:   req.UnitPrice,
		}
		if err := inv.UpdateItem(item, patch); err != nil {
			return err
		}
		if err := repos.ItemRepo().Update(ctx, item); err != nil {
			return err
		}
		return repos.InvoiceRepo().Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	resp := ToItemResponse(item)
	return &resp, nil
}

// DeleteItem removes an item and lowers the invoice total by its total
func (s *InvoiceService) DeleteItem(ctx context.Context, caller access.Principal, itemID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, inv, err := s.loadItem(ctx, repos, itemID)
		if err != nil {
			return err
		}
		if err := s.policy.Authorize(caller, access.ResourceInvoice, access.ActionDeleteItem, inv.UserID); err != nil {
			return err
		}

		if err := inv.RemoveItem(item); err != nil {
			return err
		}
		if err := repos.ItemRepo().Delete(ctx, item.ID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return invoicing.ErrItemNotFound
			}
			return err
		}
		return repos.InvoiceRepo().Update(ctx, inv)
	})
}

func (s *InvoiceService) loadItem(ctx context.Context, repos TransactionalRepositories, itemID uuid.UUID) (*invoicing.InvoiceItem, *invoicing.Invoice, error) {
	item, err := repos.ItemRepo().FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, invoicing.ErrItemNotFound
		}
		return nil, nil, err
	}
	inv, err := findInvoice(ctx, repos.InvoiceRepo(), item.InvoiceID)
	if err != nil {
		return nil, nil, err
	}
	return item, inv, nil
}

func (s *InvoiceService) withCustomer(ctx context.Context, inv *invoicing.Invoice) (*InvoiceResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, inv.CustomerID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	resp := ToInvoiceResponse(inv, customer)
	return &resp, nil
}

func (s *InvoiceService) customersOf(ctx context.Context, invoices []*invoicing.Invoice) (map[uuid.UUID]*invoicing.Customer, error) {
	out := make(map[uuid.UUID]*invoicing.Customer)
	if len(invoices) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, 0, len(invoices))
	seen := make(map[uuid.UUID]struct{}, len(invoices))
	for _, inv := range invoices {
		if _, ok := seen[inv.CustomerID]; ok {
			continue
		}
		seen[inv.CustomerID] = struct{}{}
		ids = append(ids, inv.CustomerID)
	}

	customers, err := s.customerRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range customers {
		out[c.ID] = c
	}
	return out, nil
}
