package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gautambamne/ECom-sub000/internal/apperror"
	"github.com/gautambamne/ECom-sub000/internal/model"
	"github.com/gautambamne/ECom-sub000/internal/repository"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ProductService is the thin catalog layer over the cached listing repo.
type ProductService struct {
	Products repository.ProductRepository
}

func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{Products: products}
}

type ProductInput struct {
	Name        string
	Description string
	PriceCents  int64
	Stock       int
}

func validateProduct(in *ProductInput) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "name is required"
	}
	if in.PriceCents < 0 {
		fields["price_cents"] = "price must not be negative"
	}
	if in.Stock < 0 {
		fields["stock"] = "stock must not be negative"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (s *ProductService) List(ctx context.Context, page, limit int) ([]model.Product, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	products, err := s.Products.List(ctx, page, limit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return products, nil
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.Products.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if product == nil {
		return nil, apperror.NotFound("Product not found")
	}
	return product, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	if fields := validateProduct(&in); fields != nil {
		return nil, apperror.Validation("Invalid product data", fields)
	}

	now := time.Now()
	product := &model.Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Stock:       in.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Products.Create(ctx, product); err != nil {
		return nil, apperror.Internal(err)
	}
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*model.Product, error) {
	if fields := validateProduct(&in); fields != nil {
		return nil, apperror.Validation("Invalid product data", fields)
	}

	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(in.Name)
	product.Description = in.Description
	product.PriceCents = in.PriceCents
	product.Stock = in.Stock
	product.UpdatedAt = time.Now()
	if err := s.Products.Update(ctx, product); err != nil {
		return nil, apperror.Internal(err)
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.Products.Delete(ctx, id); err != nil {
		return apperror.Internal(err)
	}
	return nil
}
