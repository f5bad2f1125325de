package customers

import (
	"context"
	"errors"
	"fmt"
)

// ErrDuplicateCustomer indicates a (name, contact) pair that already exists.
var ErrDuplicateCustomer = errors.New("customers: customer with same name and contact exists")

// Service owns customer catalog rules.
type Service struct {
	repo Repository
}

// NewService constructs Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a customer after checking the (name, contact) duplicate guard.
func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (Customer, error) {
	exists, err := s.repo.Exists(ctx, req.Name, req.Contact)
	if err != nil {
		return Customer{}, fmt.Errorf("customers: duplicate check: %w", err)
	}
	if exists {
		return Customer{}, ErrDuplicateCustomer
	}
	c := Customer{
		Name:          req.Name,
		Contact:       req.Contact,
		Address:       req.Address,
		ContactPerson: req.ContactPerson,
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return Customer{}, fmt.Errorf("customers: create: %w", err)
	}
	c.ID = id
	return c, nil
}

// Get fetches one customer.
func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	if id <= 0 {
		return Customer{}, errors.New("customers: invalid customer id")
	}
	return s.repo.Get(ctx, id)
}

// List returns all customers.
func (s *Service) List(ctx context.Context) ([]Customer, error) {
	return s.repo.List(ctx)
}

// BulkImport inserts tabular rows, skipping duplicates and rows missing a
// required field; the batch never fails as a whole.
func (s *Service) BulkImport(ctx context.Context, rows []ImportRow) (ImportResult, error) {
	var result ImportResult
	for i, row := range rows {
		if row.Name == "" {
			result.Skipped = append(result.Skipped, SkippedRow{Index: i, Reason: "missing customer_name"})
			continue
		}
		if row.Contact == "" {
			result.Skipped = append(result.Skipped, SkippedRow{Index: i, Reason: "missing contact"})
			continue
		}
		req := CreateCustomerRequest{Name: row.Name, Contact: row.Contact}
		if row.Address != "" {
			addr := row.Address
			req.Address = &addr
		}
		if row.ContactPerson != "" {
			person := row.ContactPerson
			req.ContactPerson = &person
		}
		if _, err := s.Create(ctx, req); err != nil {
			result.Skipped = append(result.Skipped, SkippedRow{Index: i, Reason: err.Error()})
			continue
		}
		result.Inserted++
	}
	return result, nil
}
