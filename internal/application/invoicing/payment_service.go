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

// PaymentService records payments against invoices.
// The paid threshold is evaluated only when a completed payment is recorded;
// updating or deleting a payment never changes the invoice.
type PaymentService struct {
	paymentRepo invoicing.PaymentRepository
	invoiceRepo invoicing.InvoiceRepository
	txScope     TransactionScope
	policy      *access.Policy
	metrics     *telemetry.BusinessMetrics
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo invoicing.PaymentRepository,
	invoiceRepo invoicing.InvoiceRepository,
	txScope TransactionScope,
	policy *access.Policy,
	metrics *telemetry.BusinessMetrics,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		txScope:     txScope,
		policy:      policy,
		metrics:     metrics,
		logger:      logger,
	}
}

// Record persists a payment. A completed payment that brings the sum of
// completed payments to the invoice total marks the invoice paid.
func (s *PaymentService) Record(ctx context.Context, caller access.Principal, req CreatePaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record")
	defer span.End()

	var (
		payment    *invoicing.Payment
		inv        *invoicing.Invoice
		markedPaid bool
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inv, err = findInvoice(ctx, repos.InvoiceRepo(), req.InvoiceID)
		if err != nil {
			return err
		}
		if err := s.policy.Authorize(caller, access.ResourcePayment, access.ActionCreate, inv.UserID); err != nil {
			return err
		}

		payment, err = invoicing.NewPayment(caller.UserID, inv.ID, *req.Amount,
			invoicing.PaymentMethod(req.Method), invoicing.PaymentStatus(req.Status))
		if err != nil {
			return err
		}
		if err := repos.PaymentRepo().Create(ctx, payment); err != nil {
			return err
		}
		if !payment.IsCompleted() {
			return nil
		}

		completed, err := repos.PaymentRepo().SumCompletedByInvoice(ctx, inv.ID)
		if err != nil {
			return err
		}
		markedPaid = inv.ApplyCompletedPayments(completed)
		if !markedPaid {
			return nil
		}
		return repos.InvoiceRepo().Update(ctx, inv)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, payment.ID.String(),
		telemetry.SpanAttrInvoiceID, inv.ID.String(),
		telemetry.SpanAttrAmount, payment.Amount.String(),
		telemetry.SpanAttrStatus, string(payment.Status),
	)

	s.metrics.RecordPaymentRecorded(ctx, string(payment.Method), string(payment.Status), payment.Amount)
	s.logger.Info("Payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("status", string(payment.Status)))
	if markedPaid {
		s.metrics.RecordInvoicePaid(ctx)
		telemetry.AddEvent(span, "invoice_marked_paid", telemetry.SpanAttrInvoiceID, inv.ID.String())
		s.logger.Info("Invoice marked paid", zap.String("invoice_id", inv.ID.String()))
	}

	resp := ToPaymentResponse(payment, inv)
	return &resp, nil
}

// Get retrieves a payment with its invoice summary
func (s *PaymentService) Get(ctx context.Context, caller access.Principal, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.findPayment(ctx, s.paymentRepo, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, access.ResourcePayment, access.ActionRead, payment.UserID); err != nil {
		return nil, err
	}
	return s.withInvoice(ctx, payment)
}

// List returns a page of payments, optionally limited to one invoice.
// Regular users only see payments they recorded.
func (s *PaymentService) List(ctx context.Context, caller access.Principal, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	owner, err := s.policy.ListScope(caller, access.ResourcePayment)
	if err != nil {
		return nil, 0, err
	}

	payments, total, err := s.paymentRepo.FindAll(ctx, invoicing.PaymentFilter{
		ListFilter: filter.ListFilter,
		OwnerID:    owner,
		InvoiceID:  filter.InvoiceID,
	})
	if err != nil {
		return nil, 0, err
	}

	invoices, err := s.invoicesOf(ctx, payments)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = ToPaymentResponse(p, invoices[p.InvoiceID])
	}
	return out, total, nil
}

// Update applies a partial update to a payment
func (s *PaymentService) Update(ctx context.Context, caller access.Principal, id uuid.UUID, req UpdatePaymentRequest) (*PaymentResponse, error) {
	payment, err := s.findPayment(ctx, s.paymentRepo, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, access.ResourcePayment, access.ActionUpdate, payment.UserID); err != nil {
		return nil, err
	}

	patch := invoicing.PaymentPatch{Amount: req.Amount}
	if req.Method != nil {
		method := invoicing.PaymentMethod(*req.Method)
		patch.Method = &method
	}
	if req.Status != nil {
		status := invoicing.PaymentStatus(*req.Status)
		patch.Status = &status
	}
	if err := payment.Update(patch); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}
	return s.withInvoice(ctx, payment)
}

// Delete removes a payment
func (s *PaymentService) Delete(ctx context.Context, caller access.Principal, id uuid.UUID) error {
	payment, err := s.findPayment(ctx, s.paymentRepo, id)
	if err != nil {
		return err
	}
	if err := s.policy.Authorize(caller, access.ResourcePayment, access.ActionDelete, payment.UserID); err != nil {
		return err
	}

	if err := s.paymentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return invoicing.ErrPaymentNotFound
		}
		return err
	}

	s.logger.Info("Payment deleted",
		zap.String("payment_id", id.String()),
		zap.String("by", caller.UserID.String()))
	return nil
}

func (s *PaymentService) findPayment(ctx context.Context, repo invoicing.PaymentRepository, id uuid.UUID) (*invoicing.Payment, error) {
	payment, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, invoicing.ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) withInvoice(ctx context.Context, payment *invoicing.Payment) (*PaymentResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, payment.InvoiceID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	resp := ToPaymentResponse(payment, inv)
	return &resp, nil
}

func (s *PaymentService) invoicesOf(ctx context.Context, payments []*invoicing.Payment) (map[uuid.UUID]*invoicing.Invoice, error) {
	out := make(map[uuid.UUID]*invoicing.Invoice)
	if len(payments) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, 0, len(payments))
	seen := make(map[uuid.UUID]struct{}, len(payments))
	for _, p := range payments {
		if _, ok := seen[p.InvoiceID]; ok {
			continue
		}
		seen[p.InvoiceID] = struct{}{}
		ids = append(ids, p.InvoiceID)
	}

	invoices, err := s.invoiceRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		out[inv.ID] = inv
	}
	return out, nil
}
