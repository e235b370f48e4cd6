package persistence

import (
	"context"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create creates a new payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *invoicing.Payment) error {
	return translateError(r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(payment)).Error)
}

// Update writes the payment's amount, method and status
func (r *GormPaymentRepository) Update(ctx context.Context, payment *invoicing.Payment) error {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("id = ?", payment.ID).
		Updates(map[string]any{
			"amount":     payment.Amount,
			"method":     payment.Method,
			"status":     payment.Status,
			"updated_at": payment.UpdatedAt,
		})
	return affected(result)
}

// Delete deletes a payment by ID
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&models.PaymentModel{}, "id = ?", id))
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of payments and the total count
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter invoicing.PaymentFilter) ([]*invoicing.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{})
	if filter.OwnerID != nil {
		query = query.Where("user_id = ?", *filter.OwnerID)
	}
	if filter.InvoiceID != nil {
		query = query.Where("invoice_id = ?", *filter.InvoiceID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var paymentModels []models.PaymentModel
	if err := paginate(query, filter.ListFilter, PaymentSortFields).Find(&paymentModels).Error; err != nil {
		return nil, 0, err
	}

	payments := make([]*invoicing.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = paymentModels[i].ToDomain()
	}
	return payments, total, nil
}

// SumCompletedByInvoice sums the amounts of the completed payments of an invoice
func (r *GormPaymentRepository) SumCompletedByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("SUM(amount)").
		Where("invoice_id = ? AND status = ?", invoiceID, invoicing.PaymentStatusCompleted).
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// DeleteByInvoice deletes every payment made against an invoice
func (r *GormPaymentRepository) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).Delete(&models.PaymentModel{}).Error
}

// DeleteByUser deletes the payments a user recorded and those made against the user's invoices
func (r *GormPaymentRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	owned := db.Model(&models.InvoiceModel{}).Select("id").Where("user_id = ?", userID)
	return db.Where("user_id = ? OR invoice_id IN (?)", userID, owned).Delete(&models.PaymentModel{}).Error
}

var _ invoicing.PaymentRepository = (*GormPaymentRepository)(nil)
