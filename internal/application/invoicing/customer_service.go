package invoicing

import (
	"context"
	"errors"

	"github.com/erp/invoicing/internal/domain/access"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo invoicing.CustomerRepository
	txScope      TransactionScope
	policy       *access.Policy
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(
	customerRepo invoicing.CustomerRepository,
	txScope TransactionScope,
	policy *access.Policy,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		txScope:      txScope,
		policy:       policy,
		logger:       logger,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, caller access.Principal, req CreateCustomerRequest) (*CustomerResponse, error) {
	if err := s.policy.Authorize(caller, access.ResourceCustomer, access.ActionCreate, uuid.Nil); err != nil {
		return nil, err
	}

	customer, err := invoicing.NewCustomer(req.Name, req.Email, req.Phone, invoicing.CustomerType(req.Type))
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.logger.Info("Customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("by", caller.UserID.String()))

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// Get retrieves a customer by ID
func (s *CustomerService) Get(ctx context.Context, caller access.Principal, id uuid.UUID) (*CustomerResponse, error) {
	if err := s.policy.Authorize(caller, access.ResourceCustomer, access.ActionRead, uuid.Nil); err != nil {
		return nil, err
	}

	customer, err := findCustomer(ctx, s.customerRepo, id)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// List returns a page of customers
func (s *CustomerService) List(ctx context.Context, caller access.Principal, filter shared.ListFilter) ([]CustomerResponse, int64, error) {
	if err := s.policy.Authorize(caller, access.ResourceCustomer, access.ActionList, uuid.Nil); err != nil {
		return nil, 0, err
	}

	customers, total, err := s.customerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]CustomerResponse, len(customers))
	for i, c := range customers {
		out[i] = ToCustomerResponse(c)
	}
	return out, total, nil
}

// Update applies a partial update to a customer
func (s *CustomerService) Update(ctx context.Context, caller access.Principal, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	if err := s.policy.Authorize(caller, access.ResourceCustomer, access.ActionUpdate, uuid.Nil); err != nil {
		return nil, err
	}

	customer, err := findCustomer(ctx, s.customerRepo, id)
	if err != nil {
		return nil, err
	}

	patch := invoicing.CustomerPatch{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	if req.Type != nil {
		t := invoicing.CustomerType(*req.Type)
		patch.Type = &t
	}
	if err := customer.Update(patch); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// Delete removes a customer that no invoice references
func (s *CustomerService) Delete(ctx context.Context, caller access.Principal, id uuid.UUID) error {
	if err := s.policy.Authorize(caller, access.ResourceCustomer, access.ActionDelete, uuid.Nil); err != nil {
		return err
	}

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := findCustomer(ctx, repos.CustomerRepo(), id); err != nil {
			return err
		}
		count, err := repos.InvoiceRepo().CountByCustomer(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return invoicing.ErrCustomerInUse
		}
		if err := repos.CustomerRepo().Delete(ctx, id); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return invoicing.ErrCustomerNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Customer deleted",
		zap.String("customer_id", id.String()),
		zap.String("by", caller.UserID.String()))
	return nil
}

func findCustomer(ctx context.Context, repo invoicing.CustomerRepository, id uuid.UUID) (*invoicing.Customer, error) {
	customer, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, invoicing.ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

func findInvoice(ctx context.Context, repo invoicing.InvoiceRepository, id uuid.UUID) (*invoicing.Invoice, error) {
	inv, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, invoicing.ErrInvoiceNotFound
		}
		return nil, err
	}
	return inv, nil
}
