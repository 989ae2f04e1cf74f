package services

import (
	"context"
	"errors"
	"io"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

// fakeProductRepo is an in-memory ProductRepository for service tests.
type fakeProductRepo struct {
	byID map[uuid.UUID]*models.Product

	insertErr error
	updateErr map[uuid.UUID]error
	findErr   map[string]error
}

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		byID:      make(map[uuid.UUID]*models.Product),
		updateErr: make(map[uuid.UUID]error),
		findErr:   make(map[string]error),
	}
}

func (f *fakeProductRepo) add(p *models.Product) *models.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.byID[p.ID] = p
	return p
}

func (f *fakeProductRepo) FindByName(_ context.Context, name string) (*models.Product, error) {
	if err := f.findErr[name]; err != nil {
		return nil, err
	}
	for _, p := range f.byID {
		if p.Name == name {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProductRepo) Insert(_ context.Context, product *models.Product) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.add(product)
	return nil
}

func (f *fakeProductRepo) Update(_ context.Context, product *models.Product) error {
	if err := f.updateErr[product.ID]; err != nil {
		return err
	}
	if _, ok := f.byID[product.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *product
	f.byID[product.ID] = &copied
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeProductRepo) List(_ context.Context, opts repository.ProductListOptions) ([]models.Product, int64, error) {
	all := f.sorted()
	total := int64(len(all))
	if opts.Page > 0 && opts.Limit > 0 {
		start := (opts.Page - 1) * opts.Limit
		if start > len(all) {
			start = len(all)
		}
		end := start + opts.Limit
		if end > len(all) {
			end = len(all)
		}
		all = all[start:end]
	}
	return all, total, nil
}

func (f *fakeProductRepo) All(_ context.Context) ([]models.Product, error) {
	return f.sorted(), nil
}

func (f *fakeProductRepo) Categories(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var categories []string
	for _, p := range f.byID {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (f *fakeProductRepo) sorted() []models.Product {
	out := make([]models.Product, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// fakeHistoryRepo records appended entries in order.
type fakeHistoryRepo struct {
	entries   []models.StockHistory
	appendErr error
}

var _ repository.HistoryRepository = (*fakeHistoryRepo)(nil)

func (f *fakeHistoryRepo) Append(_ context.Context, entry *models.StockHistory) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoryRepo) ListByProduct(_ context.Context, productID uuid.UUID, page, limit int) ([]models.StockHistory, int64, error) {
	var matched []models.StockHistory
	for _, e := range f.entries {
		if e.ProductID == productID {
			matched = append(matched, e)
		}
	}
	// Newest first
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].ChangeDate.After(matched[j].ChangeDate)
	})

	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakeHistoryRepo) forProduct(productID uuid.UUID) []models.StockHistory {
	var matched []models.StockHistory
	for _, e := range f.entries {
		if e.ProductID == productID {
			matched = append(matched, e)
		}
	}
	return matched
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

var errBoom = errors.New("boom")
