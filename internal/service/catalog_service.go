package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"marketplace-service/internal/models"
	"marketplace-service/internal/util"
)

// CatalogService handles the product catalog
type CatalogService struct {
	store  ProductStore
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store ProductStore) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// ProductRequest carries admin create/update fields
type ProductRequest struct {
	Name        string `json:"product_name" binding:"required"`
	Price       int64  `json:"price" binding:"required,min=1"`
	Stock       int    `json:"stock" binding:"min=0"`
	Description string `json:"description"`
}

// ListProducts returns the full catalog
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	return s.store.GetProducts(ctx)
}

// GetProduct returns one product by id
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProduct")
	defer span.End()

	return s.store.GetProductByID(ctx, id)
}

// CreateProduct adds a catalog item
func (s *CatalogService) CreateProduct(ctx context.Context, req *ProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	product := &models.Product{
		Name:        req.Name,
		Price:       req.Price,
		Stock:       req.Stock,
		Description: req.Description,
	}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("created product",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name))
	return product, nil
}

// UpdateProduct replaces the mutable fields of a product
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, req *ProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = req.Name
	product.Price = req.Price
	product.Stock = req.Stock
	product.Description = req.Description
	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return product, nil
}

// DeleteProduct removes a catalog item
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.DeleteProduct")
	defer span.End()

	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.logger.Info("deleted product", zap.Int64("product_id", id))
	return nil
}
