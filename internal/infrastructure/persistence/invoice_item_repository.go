package persistence

import (
	"context"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceItemRepository implements InvoiceItemRepository using GORM
type GormInvoiceItemRepository struct {
	db *gorm.DB
}

// NewGormInvoiceItemRepository creates a new GormInvoiceItemRepository
func NewGormInvoiceItemRepository(db *gorm.DB) *GormInvoiceItemRepository {
	return &GormInvoiceItemRepository{db: db}
}

// Create creates a new item
func (r *GormInvoiceItemRepository) Create(ctx context.Context, item *invoicing.InvoiceItem) error {
	return translateError(r.db.WithContext(ctx).Create(models.InvoiceItemModelFromDomain(item)).Error)
}

// Update writes the item's description, quantity, price and total
func (r *GormInvoiceItemRepository) Update(ctx context.Context, item *invoicing.InvoiceItem) error {
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceItemModel{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"description": item.Description,
			"quantity":    item.Quantity,
			"unit_price":  item.UnitPrice,
			"total":       item.Total,
			"updated_at":  item.UpdatedAt,
		})
	return affected(result)
}

// Delete deletes an item by ID
func (r *GormInvoiceItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&models.InvoiceItemModel{}, "id = ?", id))
}

// FindByID finds an item by ID
func (r *GormInvoiceItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.InvoiceItem, error) {
	var model models.InvoiceItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// DeleteByInvoice deletes every item of an invoice
func (r *GormInvoiceItemRepository) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).Delete(&models.InvoiceItemModel{}).Error
}

var _ invoicing.InvoiceItemRepository = (*GormInvoiceItemRepository)(nil)
