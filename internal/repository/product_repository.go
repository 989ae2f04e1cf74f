package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"catalog-service/internal/models"
)

var ErrNotFound = errors.New("not found")

// ProductCacheTTL bounds staleness of cached single-product reads. Writes
// invalidate eagerly, so the TTL only matters for out-of-band DB changes.
const ProductCacheTTL = 5 * time.Minute

const productCacheKeyPrefix = "catalog:product:"

// ProductListOptions narrows a catalog listing
type ProductListOptions struct {
	Search   string
	Category string
	Page     int
	Limit    int
}

// ProductRepository is the keyed record store the reconciliation engine runs
// against. An in-memory fake satisfies it in tests.
type ProductRepository interface {
	FindByName(ctx context.Context, name string) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Insert(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, opts ProductListOptions) ([]models.Product, int64, error)
	All(ctx context.Context) ([]models.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// GormProductRepository is the Postgres-backed ProductRepository with an
// optional Redis read-through cache on id lookups.
type GormProductRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

var _ ProductRepository = (*GormProductRepository)(nil)

func NewGormProductRepository(db *gorm.DB, redisClient *redis.Client) *GormProductRepository {
	return &GormProductRepository{db: db, redis: redisClient}
}

func productCacheKey(id uuid.UUID) string {
	return productCacheKeyPrefix + id.String()
}

func (r *GormProductRepository) invalidate(ctx context.Context, id uuid.UUID) {
	if r.redis == nil {
		return
	}
	_ = r.redis.Del(ctx, productCacheKey(id)).Err()
}

// FindByName performs an exact-equality lookup; duplicate detection during
// import is name-equality only.
func (r *GormProductRepository) FindByName(ctx context.Context, name string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if r.redis != nil {
		if val, err := r.redis.Get(ctx, productCacheKey(id)).Result(); err == nil {
			var cached models.Product
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(product); err == nil {
			r.redis.Set(ctx, productCacheKey(id), data, ProductCacheTTL)
		}
	}

	return &product, nil
}

func (r *GormProductRepository) Insert(ctx context.Context, product *models.Product) error {
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *GormProductRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":       product.Name,
			"unit":       product.Unit,
			"category":   product.Category,
			"brand":      product.Brand,
			"stock":      product.Stock,
			"status":     product.Status,
			"image":      product.Image,
			"updated_at": product.UpdatedAt,
		}).Error
	if err == nil {
		r.invalidate(ctx, product.ID)
	}
	return err
}

func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.invalidate(ctx, id)
	return nil
}

// List returns one catalog page, newest first. Search matches name or brand
// case-insensitively.
func (r *GormProductRepository) List(ctx context.Context, opts ProductListOptions) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Product{})

	if opts.Search != "" {
		pattern := "%" + strings.TrimSpace(opts.Search) + "%"
		query = query.Where("name ILIKE ? OR brand ILIKE ?", pattern, pattern)
	}
	if opts.Category != "" {
		query = query.Where("category = ?", opts.Category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Page > 0 && opts.Limit > 0 {
		offset := (opts.Page - 1) * opts.Limit
		query = query.Offset(offset).Limit(opts.Limit)
	}

	err := query.Order("created_at DESC").Find(&products).Error
	return products, total, err
}

// All returns the full catalog for export, in a stable name order.
func (r *GormProductRepository) All(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *GormProductRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Distinct("category").
		Where("category <> ''").
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

// RedisHealth reports the health of the Redis connection, if one is configured
func (r *GormProductRepository) RedisHealth(ctx context.Context) error {
	if r.redis == nil {
		return fmt.Errorf("redis not configured")
	}
	return r.redis.Ping(ctx).Err()
}
