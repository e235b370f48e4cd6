package persistence

import (
	"context"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("created_at ASC").Order("id ASC")
}

// Create inserts the invoice row followed by its items
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *invoicing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return translateError(err)
	}
	if len(model.Items) == 0 {
		return nil
	}
	return translateError(db.Create(&model.Items).Error)
}

// Update writes the invoice row only, items are persisted through InvoiceItemRepository
func (r *GormInvoiceRepository) Update(ctx context.Context, invoice *invoicing.Invoice) error {
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("id = ?", invoice.ID).
		Updates(map[string]any{
			"customer_id":  invoice.CustomerID,
			"status":       invoice.Status,
			"total_amount": invoice.TotalAmount,
			"is_paid":      invoice.IsPaid,
			"updated_at":   invoice.UpdatedAt,
		})
	return affected(result)
}

// Delete deletes an invoice by ID
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&models.InvoiceModel{}, "id = ?", id))
}

// FindByID finds an invoice with its items
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of invoices with their items and the total count
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter invoicing.InvoiceFilter) ([]*invoicing.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	if filter.OwnerID != nil {
		query = query.Where("user_id = ?", *filter.OwnerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoiceModels []models.InvoiceModel
	if err := paginate(query, filter.ListFilter, InvoiceSortFields).
		Preload("Items", preloadItems).
		Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}
	return invoicesToDomain(invoiceModels), total, nil
}

// FindByIDs loads the invoices with the given IDs, without items. Unknown IDs are skipped.
func (r *GormInvoiceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*invoicing.Invoice, error) {
	if len(ids) == 0 {
		return []*invoicing.Invoice{}, nil
	}
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(invoiceModels), nil
}

// CountByCustomer counts the invoices billed to a customer
func (r *GormInvoiceRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error
	return count, err
}

// DeleteByUser deletes every invoice owned by a user together with its items
func (r *GormInvoiceRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	owned := db.Model(&models.InvoiceModel{}).Select("id").Where("user_id = ?", userID)
	if err := db.Where("invoice_id IN (?)", owned).Delete(&models.InvoiceItemModel{}).Error; err != nil {
		return err
	}
	return db.Where("user_id = ?", userID).Delete(&models.InvoiceModel{}).Error
}

func invoicesToDomain(ms []models.InvoiceModel) []*invoicing.Invoice {
	invoices := make([]*invoicing.Invoice, len(ms))
	for i := range ms {
		invoices[i] = ms[i].ToDomain()
	}
	return invoices
}

var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
