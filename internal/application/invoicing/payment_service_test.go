package invoicing

import (
	"context"
	"testing"

	"github.com/erp/invoicing/internal/domain/access"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPaymentService(f *fixture) *PaymentService {
	return NewPaymentService(f.payments, f.invoices, f.txScope, access.DefaultPolicy(), nil, zap.NewNop())
}

func invoiceTotalling(t *testing.T, owner uuid.UUID, total string) *invoicing.Invoice {
	t.Helper()
	return mustInvoice(t, owner, uuid.New(),
		invoicing.LineItem{Description: "Consulting", Quantity: 1, UnitPrice: dec(total)})
}

func TestPaymentService_Record(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		status    string
		completed string // sum of completed payments after insert, empty when not queried
		wantPaid  bool
	}{
		{name: "completed payment reaching total", status: "completed", completed: "250", wantPaid: true},
		{name: "completed payment exceeding total", status: "completed", completed: "300", wantPaid: true},
		{name: "completed payment below total", status: "completed", completed: "100"},
		{name: "pending payment", status: ""},
		{name: "failed payment", status: "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			svc := newPaymentService(f)
			owner := userPrincipal()
			inv := invoiceTotalling(t, owner.UserID, "250")

			f.invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
			f.payments.On("Create", mock.Anything, mock.AnythingOfType("*invoicing.Payment")).Return(nil)
			if tt.completed != "" {
				f.payments.On("SumCompletedByInvoice", mock.Anything, inv.ID).Return(dec(tt.completed), nil)
			}
			if tt.wantPaid {
				f.invoices.On("Update", mock.Anything, inv).Return(nil)
			}

			resp, err := svc.Record(ctx, owner, CreatePaymentRequest{
				InvoiceID: inv.ID,
				Amount:    decPtr("100"),
				Method:    "bank_transfer",
				Status:    tt.status,
			})

			require.NoError(t, err)
			assert.Equal(t, owner.UserID, resp.UserID)
			require.NotNil(t, resp.Invoice)
			assert.Equal(t, tt.wantPaid, resp.Invoice.IsPaid)
			assert.Equal(t, tt.wantPaid, inv.IsPaid)
			if tt.wantPaid {
				assert.Equal(t, "paid", resp.Invoice.Status)
			} else {
				assert.Equal(t, "draft", resp.Invoice.Status)
				f.invoices.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			}
			if tt.completed == "" {
				f.payments.AssertNotCalled(t, "SumCompletedByInvoice", mock.Anything, mock.Anything)
			}
			f.assertExpectations(t)
		})
	}
}

func TestPaymentService_Record_DefaultsToPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newPaymentService(f)
	owner := userPrincipal()
	inv := invoiceTotalling(t, owner.UserID, "10")

	f.invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	f.payments.On("Create", mock.Anything, mock.AnythingOfType("*invoicing.Payment")).Return(nil)

	resp, err := svc.Record(ctx, owner, CreatePaymentRequest{InvoiceID: inv.ID, Amount: decPtr("10"), Method: "cash"})

	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
}

func TestPaymentService_Record_MissingInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newPaymentService(f)
	id := uuid.New()

	f.invoices.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := svc.Record(ctx, userPrincipal(), CreatePaymentRequest{InvoiceID: id, Amount: decPtr("1"), Method: "cash"})

	assert.ErrorIs(t, err, invoicing.ErrInvoiceNotFound)
	f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPaymentService_Record_OtherUsersInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newPaymentService(f)
	inv := invoiceTotalling(t, uuid.New(), "10")

	f.invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)

	_, err := svc.Record(ctx, userPrincipal(), CreatePaymentRequest{InvoiceID: inv.ID, Amount: decPtr("10"), Method: "cash"})

	assert.ErrorIs(t, err, shared.ErrForbidden)
	f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPaymentService_Update_DoesNotRevisitInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newPaymentService(f)
	owner := userPrincipal()
	inv := invoiceTotalling(t, owner.UserID, "100")
	require.True(t, inv.ApplyCompletedPayments(dec("100")))

	payment, err := invoicing.NewPayment(owner.UserID, inv.ID, dec("100"), invoicing.PaymentMethodCash, invoicing.PaymentStatusCompleted)
	require.NoError(t, err)

	f.payments.On("FindByID", mock.Anything, payment.ID).Return(payment, nil)
	f.payments.On("Update", mock.Anything, payment).Return(nil)
	f.invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)

	resp, err := svc.Update(ctx, owner, payment.ID, UpdatePaymentRequest{Status: strPtr("refunded")})

	require.NoError(t, err)
	assert.Equal(t, "refunded", resp.Status)
	assert.True(t, resp.Invoice.IsPaid)
	f.invoices.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.payments.AssertNotCalled(t, "SumCompletedByInvoice", mock.Anything, mock.Anything)
}

func TestPaymentService_GetAndDelete_Ownership(t *testing.T) {
	ctx := context.Background()
	owner := userPrincipal()
	payment, err := invoicing.NewPayment(owner.UserID, uuid.New(), dec("5"), invoicing.PaymentMethodPaypal, "")
	require.NoError(t, err)

	t.Run("other user cannot read", func(t *testing.T) {
		f := newFixture()
		svc := newPaymentService(f)
		f.payments.On("FindByID", mock.Anything, payment.ID).Return(payment, nil)

		_, err := svc.Get(ctx, userPrincipal(), payment.ID)

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("super-admin deletes", func(t *testing.T) {
		f := newFixture()
		svc := newPaymentService(f)
		f.payments.On("FindByID", mock.Anything, payment.ID).Return(payment, nil)
		f.payments.On("Delete", mock.Anything, payment.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, adminPrincipal(), payment.ID))
		f.assertExpectations(t)
	})

	t.Run("missing payment", func(t *testing.T) {
		f := newFixture()
		svc := newPaymentService(f)
		id := uuid.New()
		f.payments.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		assert.ErrorIs(t, svc.Delete(ctx, owner, id), invoicing.ErrPaymentNotFound)
	})
}

func TestPaymentService_List_FiltersByInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newPaymentService(f)
	owner := userPrincipal()
	inv := invoiceTotalling(t, owner.UserID, "20")
	payment, err := invoicing.NewPayment(owner.UserID, inv.ID, dec("20"), invoicing.PaymentMethodCheck, "")
	require.NoError(t, err)

	f.payments.On("FindAll", mock.Anything, mock.MatchedBy(func(f invoicing.PaymentFilter) bool {
		return f.OwnerID != nil && *f.OwnerID == owner.UserID &&
			f.InvoiceID != nil && *f.InvoiceID == inv.ID
	})).Return([]*invoicing.Payment{payment}, int64(1), nil)
	f.invoices.On("FindByIDs", mock.Anything, []uuid.UUID{inv.ID}).Return([]*invoicing.Invoice{inv}, nil)

	out, total, err := svc.List(ctx, owner, PaymentListFilter{InvoiceID: &inv.ID})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, out, 1)
	assert.Equal(t, inv.ID, out[0].Invoice.ID)
	f.assertExpectations(t)
}
