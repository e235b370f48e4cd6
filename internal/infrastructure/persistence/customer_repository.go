package persistence

import (
	"context"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Create creates a new customer
func (r *GormCustomerRepository) Create(ctx context.Context, customer *invoicing.Customer) error {
	return translateError(r.db.WithContext(ctx).Create(models.CustomerModelFromDomain(customer)).Error)
}

// Update writes every mutable column, including a cleared phone
func (r *GormCustomerRepository) Update(ctx context.Context, customer *invoicing.Customer) error {
	result := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("id = ?", customer.ID).
		Updates(map[string]any{
			"name":       customer.Name,
			"email":      customer.Email,
			"phone":      customer.Phone,
			"type":       customer.Type,
			"updated_at": customer.UpdatedAt,
		})
	return affected(result)
}

// Delete deletes a customer by ID
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&models.CustomerModel{}, "id = ?", id))
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of customers and the total count
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.ListFilter) ([]*invoicing.Customer, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CustomerModel{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customerModels []models.CustomerModel
	if err := paginate(query, filter, CustomerSortFields).Find(&customerModels).Error; err != nil {
		return nil, 0, err
	}
	return customersToDomain(customerModels), total, nil
}

// FindByIDs loads the customers with the given IDs. Unknown IDs are skipped.
func (r *GormCustomerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*invoicing.Customer, error) {
	if len(ids) == 0 {
		return []*invoicing.Customer{}, nil
	}
	var customerModels []models.CustomerModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&customerModels).Error; err != nil {
		return nil, err
	}
	return customersToDomain(customerModels), nil
}

func customersToDomain(ms []models.CustomerModel) []*invoicing.Customer {
	customers := make([]*invoicing.Customer, len(ms))
	for i := range ms {
		customers[i] = ms[i].ToDomain()
	}
	return customers
}

var _ invoicing.CustomerRepository = (*GormCustomerRepository)(nil)
