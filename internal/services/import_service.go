package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

// ImportService reconciles uploaded rows against the catalog: each row either
// creates a new product or stages a duplicate candidate for operator review.
type ImportService struct {
	products repository.ProductRepository
	auditor  *StockAuditor
	logger   *logrus.Entry
}

func NewImportService(products repository.ProductRepository, auditor *StockAuditor, logger *logrus.Logger) *ImportService {
	return &ImportService{
		products: products,
		auditor:  auditor,
		logger:   logger.WithField("component", "import-service"),
	}
}

// Reconcile processes rows strictly in input order. A failing row is tallied
// and logged but never aborts the remaining rows.
func (s *ImportService) Reconcile(ctx context.Context, rows []map[string]string) *models.ImportResult {
	result := &models.ImportResult{Success: true}

	for _, row := range rows {
		if err := s.reconcileRow(ctx, row, result); err != nil {
			result.Failed++
			s.logger.WithFields(logrus.Fields{
				"row":  row["_row"],
				"name": row["name"],
			}).WithError(err).Warn("Import row failed")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"added":   result.Added,
		"skipped": result.Skipped,
		"failed":  result.Failed,
	}).Info("Import reconciliation finished")

	return result
}

func (s *ImportService) reconcileRow(ctx context.Context, row map[string]string, result *models.ImportResult) error {
	name := strings.TrimSpace(row["name"])
	if name == "" {
		return fmt.Errorf("missing required field 'name'")
	}

	existing, err := s.products.FindByName(ctx, name)
	switch {
	case err == nil:
		candidate := mergeWithExisting(existing, row)
		// The merge is only staged for operator review, but the stock
		// comparison is audited immediately, matching the import contract.
		if err := s.auditor.Record(ctx, existing.ID, existing.Name, existing.Stock, candidate.Stock); err != nil {
			return err
		}
		result.Skipped++
		result.Duplicates = append(result.Duplicates, candidate)
		return nil

	case errors.Is(err, repository.ErrNotFound):
		product := newProductFromRow(name, row)
		if err := s.products.Insert(ctx, product); err != nil {
			return fmt.Errorf("failed to insert %q: %w", name, err)
		}
		if err := s.auditor.Record(ctx, product.ID, product.Name, 0, product.Stock); err != nil {
			return err
		}
		result.Added++
		return nil

	default:
		return fmt.Errorf("failed to look up %q: %w", name, err)
	}
}

// newProductFromRow builds a product from a row with no catalog match.
func newProductFromRow(name string, row map[string]string) *models.Product {
	stock, _ := parseStock(row["stock"])

	status := models.ProductStatus(strings.TrimSpace(row["status"]))
	if status == "" {
		status = models.StatusForStock(stock)
	}

	return &models.Product{
		Name:     name,
		Unit:     strings.TrimSpace(row["unit"]),
		Category: strings.TrimSpace(row["category"]),
		Brand:    strings.TrimSpace(row["brand"]),
		Stock:    stock,
		Status:   status,
		Image:    strings.TrimSpace(row["image"]),
	}
}

// mergeWithExisting combines an incoming row with the matched record:
// incoming non-empty values win, existing values are the fallback, and a
// status absent on both sides is derived from the resolved stock.
func mergeWithExisting(existing *models.Product, row map[string]string) models.DuplicateCandidate {
	stock := existing.Stock
	if v, ok := parseStock(row["stock"]); ok {
		stock = v
	}

	status := models.ProductStatus(strings.TrimSpace(row["status"]))
	if status == "" {
		status = existing.Status
	}
	if status == "" {
		status = models.StatusForStock(stock)
	}

	return models.DuplicateCandidate{
		ID:       existing.ID,
		Name:     existing.Name,
		Unit:     firstNonEmpty(row["unit"], existing.Unit),
		Category: firstNonEmpty(row["category"], existing.Category),
		Brand:    firstNonEmpty(row["brand"], existing.Brand),
		Stock:    stock,
		Status:   status,
		Image:    firstNonEmpty(row["image"], existing.Image),
	}
}

// parseStock reports the quantity in a stock field and whether one was
// supplied. Empty, non-numeric, and negative values count as absent; a
// literal "0" is a real zero, not an absent value.
func parseStock(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func firstNonEmpty(incoming, fallback string) string {
	if v := strings.TrimSpace(incoming); v != "" {
		return v
	}
	return fallback
}
