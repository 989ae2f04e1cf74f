package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/models"
)

func newTestImportService() (*ImportService, *fakeProductRepo, *fakeHistoryRepo) {
	products := newFakeProductRepo()
	history := &fakeHistoryRepo{}
	auditor := NewStockAuditor(history, nil, testLogger())
	return NewImportService(products, auditor, testLogger()), products, history
}

func TestReconcileAddsNewProducts(t *testing.T) {
	svc, products, history := newTestImportService()

	result := svc.Reconcile(context.Background(), []map[string]string{
		{"_row": "2", "name": "Widget", "unit": "pcs", "category": "Tools", "stock": "12"},
		{"_row": "3", "name": "Gadget", "stock": "0"},
	})

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Duplicates)

	widget, err := products.FindByName(context.Background(), "Widget")
	require.NoError(t, err)
	assert.Equal(t, 12, widget.Stock)
	assert.Equal(t, models.ProductStatusInStock, widget.Status)
	assert.Equal(t, "pcs", widget.Unit)

	gadget, err := products.FindByName(context.Background(), "Gadget")
	require.NoError(t, err)
	assert.Equal(t, 0, gadget.Stock)
	assert.Equal(t, models.ProductStatusOutOfStock, gadget.Status)

	// One audit entry each: 0 -> 12 for Widget, none for Gadget (0 -> 0)
	widgetEntries := history.forProduct(widget.ID)
	require.Len(t, widgetEntries, 1)
	assert.Equal(t, 0, widgetEntries[0].OldStock)
	assert.Equal(t, 12, widgetEntries[0].NewStock)

	assert.Empty(t, history.forProduct(gadget.ID))
}

func TestReconcileReimportIsIdempotent(t *testing.T) {
	svc, products, _ := newTestImportService()

	rows := []map[string]string{
		{"_row": "2", "name": "Widget", "stock": "12"},
		{"_row": "3", "name": "Gadget", "stock": "3"},
	}

	first := svc.Reconcile(context.Background(), rows)
	assert.Equal(t, 2, first.Added)

	second := svc.Reconcile(context.Background(), rows)
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, 2, second.Skipped)
	assert.Len(t, second.Duplicates, 2)
	assert.Len(t, products.byID, 2)
}

func TestReconcileStagesDuplicateWithMergePrecedence(t *testing.T) {
	svc, products, history := newTestImportService()
	existing := products.add(&models.Product{
		Name:     "Acme Bolt",
		Unit:     "box",
		Category: "Fasteners",
		Brand:    "Acme",
		Stock:    5,
		Status:   models.ProductStatusInStock,
		Image:    "bolt.png",
	})

	result := svc.Reconcile(context.Background(), []map[string]string{
		{"_row": "2", "name": "Acme Bolt", "unit": "crate", "brand": "", "stock": "9"},
	})

	assert.Equal(t, 0, result.Added)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Duplicates, 1)

	candidate := result.Duplicates[0]
	assert.Equal(t, existing.ID, candidate.ID)
	assert.Equal(t, "crate", candidate.Unit)        // incoming wins
	assert.Equal(t, "Acme", candidate.Brand)        // empty incoming falls back
	assert.Equal(t, "Fasteners", candidate.Category)
	assert.Equal(t, 9, candidate.Stock)
	assert.Equal(t, "bolt.png", candidate.Image)

	// Candidate is staged, never persisted
	stored, err := products.FindByID(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Stock)
	assert.Equal(t, "box", stored.Unit)

	// The stock comparison is audited at reconcile time
	entries := history.forProduct(existing.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].OldStock)
	assert.Equal(t, 9, entries[0].NewStock)
}

func TestReconcileParsedZeroStockIsHonored(t *testing.T) {
	svc, products, history := newTestImportService()
	existing := products.add(&models.Product{
		Name:   "Acme Bolt",
		Stock:  5,
		Status: models.ProductStatusInStock,
	})

	result := svc.Reconcile(context.Background(), []map[string]string{
		{"_row": "2", "name": "Acme Bolt", "stock": "0"},
	})

	require.Len(t, result.Duplicates, 1)
	assert.Equal(t, 0, result.Duplicates[0].Stock)

	entries := history.forProduct(existing.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].OldStock)
	assert.Equal(t, 0, entries[0].NewStock)
}

func TestReconcileInvalidStockFallsBackToExisting(t *testing.T) {
	svc, products, history := newTestImportService()
	existing := products.add(&models.Product{
		Name:   "Acme Bolt",
		Stock:  5,
		Status: models.ProductStatusInStock,
	})

	result := svc.Reconcile(context.Background(), []map[string]string{
		{"_row": "2", "name": "Acme Bolt", "stock": "abc"},
	})

	require.Len(t, result.Duplicates, 1)
	assert.Equal(t, 5, result.Duplicates[0].Stock)

	// Stock unchanged, so no audit entry
	assert.Empty(t, history.forProduct(existing.ID))
}

func TestReconcileDerivesStatusFromStock(t *testing.T) {
	svc, products, _ := newTestImportService()
	products.add(&models.Product{Name: "Acme Bolt", Stock: 5})

	result := svc.Reconcile(context.Background(), []map[string]string{
		{"_row": "2", "name": "Acme Bolt", "stock": "0"},
		{"_row": "3", "name": "Fresh", "stock": "3"},
	})

	require.Len(t, result.Duplicates, 1)
	assert.Equal(t, models.ProductStatusOutOfStock, result.Duplicates[0].Status)

	fresh, err := products.FindByName(context.Background(), "Fresh")
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusInStock, fresh.Status)
}

func TestReconcileRowFailureDoesNotAbort(t *testing.T) {
	svc, products, _ := newTestImportService()
	products.findErr["Broken"] = errBoom

	result := svc.Reconcile(context.Background(), []map[string]string{
		{"_row": "2", "name": ""},
		{"_row": "3", "name": "Broken"},
		{"_row": "4", "name": "Fine", "stock": "1"},
	})

	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 1, result.Added)

	_, err := products.FindByName(context.Background(), "Fine")
	assert.NoError(t, err)
}

func TestParseStock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
		ok    bool
	}{
		{"plain number", "42", 42, true},
		{"zero", "0", 0, true},
		{"whitespace padded", " 7 ", 7, true},
		{"empty", "", 0, false},
		{"non-numeric", "abc", 0, false},
		{"float", "3.5", 0, false},
		{"negative", "-4", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseStock(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
