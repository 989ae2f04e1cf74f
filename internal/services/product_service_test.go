package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/models"
)

func newTestProductService() (*ProductService, *fakeProductRepo, *fakeHistoryRepo) {
	products := newFakeProductRepo()
	history := &fakeHistoryRepo{}
	auditor := NewStockAuditor(history, nil, testLogger())
	return NewProductService(products, history, auditor, testLogger()), products, history
}

func TestCreateAuditsInitialStock(t *testing.T) {
	svc, _, history := newTestProductService()

	product, err := svc.Create(context.Background(), models.ProductFields{
		Name:  "Widget",
		Stock: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusInStock, product.Status)

	entries := history.forProduct(product.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].OldStock)
	assert.Equal(t, 8, entries[0].NewStock)
}

func TestCreateZeroStockProducesNoHistory(t *testing.T) {
	svc, _, history := newTestProductService()

	product, err := svc.Create(context.Background(), models.ProductFields{Name: "Gadget"})
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusOutOfStock, product.Status)
	assert.Empty(t, history.forProduct(product.ID))
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	svc, products, _ := newTestProductService()
	products.add(&models.Product{Name: "Widget", Stock: 1})

	_, err := svc.Create(context.Background(), models.ProductFields{Name: "Widget"})
	assert.ErrorIs(t, err, ErrNameTaken)
}

func TestUpdateAuditsStockChange(t *testing.T) {
	svc, products, history := newTestProductService()
	existing := products.add(&models.Product{Name: "Widget", Stock: 5, Status: models.ProductStatusInStock})

	updated, err := svc.Update(context.Background(), existing.ID, models.ProductFields{
		Name:  "Widget",
		Stock: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Stock)

	entries := history.forProduct(existing.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].OldStock)
	assert.Equal(t, 2, entries[0].NewStock)
}

func TestUpdateUnchangedStockProducesNoHistory(t *testing.T) {
	svc, products, history := newTestProductService()
	existing := products.add(&models.Product{Name: "Widget", Stock: 5, Status: models.ProductStatusInStock})

	_, err := svc.Update(context.Background(), existing.ID, models.ProductFields{
		Name:  "Renamed Widget",
		Brand: "Acme",
		Stock: 5,
	})
	require.NoError(t, err)

	assert.Empty(t, history.forProduct(existing.ID))
}

func TestUpdateUnknownProduct(t *testing.T) {
	svc, _, _ := newTestProductService()

	_, err := svc.Update(context.Background(), uuid.New(), models.ProductFields{Name: "X"})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestBulkUpdatePartialFailure(t *testing.T) {
	svc, products, history := newTestProductService()
	first := products.add(&models.Product{Name: "First", Stock: 1})
	third := products.add(&models.Product{Name: "Third", Stock: 3})

	result := svc.BulkUpdate(context.Background(), []models.BulkUpdateItem{
		{ID: first.ID, Stock: 10},
		{ID: uuid.New(), Stock: 20},
		{ID: third.ID, Stock: 30},
	})

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, 1, result.Failed)

	// Both surviving items were updated and audited
	stored, err := products.FindByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Stock)

	require.Len(t, history.forProduct(first.ID), 1)
	require.Len(t, history.forProduct(third.ID), 1)
}

func TestBulkUpdateUnchangedStockProducesNoHistory(t *testing.T) {
	svc, products, history := newTestProductService()
	existing := products.add(&models.Product{Name: "First", Stock: 4})

	result := svc.BulkUpdate(context.Background(), []models.BulkUpdateItem{
		{ID: existing.ID, Name: "Renamed", Stock: 4},
	})

	assert.Equal(t, 1, result.Updated)
	assert.Empty(t, history.forProduct(existing.ID))
}

func TestHistoryPagination(t *testing.T) {
	svc, products, history := newTestProductService()
	existing := products.add(&models.Product{Name: "Widget", Stock: 45})

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 45; i++ {
		history.entries = append(history.entries, models.StockHistory{
			ID:         uuid.New(),
			ProductID:  existing.ID,
			OldStock:   i,
			NewStock:   i + 1,
			ChangeDate: base.Add(time.Duration(i) * time.Minute),
		})
	}

	page, err := svc.History(context.Background(), existing.ID, 1, 20)
	require.NoError(t, err)

	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, int64(45), page.TotalEntries)
	require.Len(t, page.History, 20)

	// Newest first
	assert.Equal(t, 45, page.History[0].NewStock)
	assert.Equal(t, 26, page.History[19].NewStock)

	assert.Equal(t, "Widget", page.Product.Name)
	assert.Equal(t, 45, page.Product.CurrentStock)

	last, err := svc.History(context.Background(), existing.ID, 3, 20)
	require.NoError(t, err)
	assert.Len(t, last.History, 5)
}

func TestHistoryUnknownProduct(t *testing.T) {
	svc, _, _ := newTestProductService()

	_, err := svc.History(context.Background(), uuid.New(), 1, 20)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestDeleteRetainsHistory(t *testing.T) {
	svc, products, history := newTestProductService()
	existing := products.add(&models.Product{Name: "Widget", Stock: 5})
	history.entries = append(history.entries, models.StockHistory{
		ID:         uuid.New(),
		ProductID:  existing.ID,
		OldStock:   0,
		NewStock:   5,
		ChangeDate: time.Now(),
	})

	require.NoError(t, svc.Delete(context.Background(), existing.ID))

	_, err := products.FindByID(context.Background(), existing.ID)
	assert.Error(t, err)

	assert.Len(t, history.forProduct(existing.ID), 1)
}

func TestDeleteUnknownProduct(t *testing.T) {
	svc, _, _ := newTestProductService()

	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}
