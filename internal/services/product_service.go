package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNameTaken       = errors.New("product name already in use")
)

// ProductService owns catalog writes. Every stock-changing path goes through
// the auditor so the history log stays consistent with the catalog.
type ProductService struct {
	products repository.ProductRepository
	history  repository.HistoryRepository
	auditor  *StockAuditor
	logger   *logrus.Entry
}

func NewProductService(products repository.ProductRepository, history repository.HistoryRepository, auditor *StockAuditor, logger *logrus.Logger) *ProductService {
	return &ProductService{
		products: products,
		history:  history,
		auditor:  auditor,
		logger:   logger.WithField("component", "product-service"),
	}
}

func (s *ProductService) Create(ctx context.Context, fields models.ProductFields) (*models.Product, error) {
	if _, err := s.products.FindByName(ctx, fields.Name); err == nil {
		return nil, ErrNameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	status := fields.Status
	if status == "" {
		status = models.StatusForStock(fields.Stock)
	}

	product := &models.Product{
		Name:     fields.Name,
		Unit:     fields.Unit,
		Category: fields.Category,
		Brand:    fields.Brand,
		Stock:    fields.Stock,
		Status:   status,
		Image:    fields.Image,
	}
	if err := s.products.Insert(ctx, product); err != nil {
		return nil, err
	}

	if err := s.auditor.Record(ctx, product.ID, product.Name, 0, product.Stock); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"productId": product.ID,
		"name":      product.Name,
	}).Info("Product created")
	return product, nil
}

// Update replaces the full editable field set of a product and audits any
// stock change against the pre-update quantity.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, fields models.ProductFields) (*models.Product, error) {
	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	oldStock := existing.Stock

	status := fields.Status
	if status == "" {
		status = models.StatusForStock(fields.Stock)
	}

	existing.Name = fields.Name
	existing.Unit = fields.Unit
	existing.Category = fields.Category
	existing.Brand = fields.Brand
	existing.Stock = fields.Stock
	existing.Status = status
	existing.Image = fields.Image

	if err := s.products.Update(ctx, existing); err != nil {
		return nil, err
	}

	if err := s.auditor.Record(ctx, existing.ID, existing.Name, oldStock, existing.Stock); err != nil {
		return nil, err
	}

	return existing, nil
}

// Delete removes a product from the catalog. Its audit entries are retained.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	s.logger.WithField("productId", id).Info("Product deleted")
	return nil
}

// BulkUpdate applies operator-confirmed updates item by item. A failing item
// is tallied and logged; the rest of the batch still goes through.
func (s *ProductService) BulkUpdate(ctx context.Context, items []models.BulkUpdateItem) *models.BulkUpdateResult {
	result := &models.BulkUpdateResult{Success: true}

	for _, item := range items {
		if err := s.applyBulkItem(ctx, item); err != nil {
			result.Failed++
			s.logger.WithFields(logrus.Fields{
				"productId": item.ID,
				"name":      item.Name,
			}).WithError(err).Warn("Bulk update item failed")
			continue
		}
		result.Updated++
	}

	s.logger.WithFields(logrus.Fields{
		"updated": result.Updated,
		"failed":  result.Failed,
	}).Info("Bulk update finished")

	return result
}

func (s *ProductService) applyBulkItem(ctx context.Context, item models.BulkUpdateItem) error {
	existing, err := s.products.FindByID(ctx, item.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	oldStock := existing.Stock

	if item.Name != "" {
		existing.Name = item.Name
	}
	if item.Unit != "" {
		existing.Unit = item.Unit
	}
	if item.Category != "" {
		existing.Category = item.Category
	}
	if item.Brand != "" {
		existing.Brand = item.Brand
	}
	if item.Image != "" {
		existing.Image = item.Image
	}
	existing.Stock = item.Stock
	if item.Status != "" {
		existing.Status = item.Status
	} else {
		existing.Status = models.StatusForStock(item.Stock)
	}

	if err := s.products.Update(ctx, existing); err != nil {
		return fmt.Errorf("failed to update %q: %w", existing.Name, err)
	}

	return s.auditor.Record(ctx, existing.ID, existing.Name, oldStock, existing.Stock)
}

// History returns one page of a product's stock audit log, newest first.
func (s *ProductService) History(ctx context.Context, id uuid.UUID, page, limit int) (*models.HistoryPage, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	entries, total, err := s.history.ListByProduct(ctx, id, page, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &models.HistoryPage{
		History:      entries,
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalEntries: total,
		Product: models.ProductSummary{
			Name:         product.Name,
			CurrentStock: product.Stock,
		},
	}, nil
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// List returns one catalog page matching the given search and category filter.
func (s *ProductService) List(ctx context.Context, opts repository.ProductListOptions) (*models.ProductPage, error) {
	products, total, err := s.products.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if opts.Limit > 0 {
		totalPages = int((total + int64(opts.Limit) - 1) / int64(opts.Limit))
	}

	return &models.ProductPage{
		Products:      products,
		CurrentPage:   opts.Page,
		TotalPages:    totalPages,
		TotalProducts: total,
	}, nil
}

func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.products.Categories(ctx)
}

// Export returns the full catalog in stable name order.
func (s *ProductService) Export(ctx context.Context) ([]models.Product, error) {
	return s.products.All(ctx)
}
