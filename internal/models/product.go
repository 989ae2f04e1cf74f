package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductStatus represents the stock status of a product
type ProductStatus string

const (
	ProductStatusInStock    ProductStatus = "In Stock"
	ProductStatusOutOfStock ProductStatus = "Out of Stock"
)

// StatusForStock derives the display status from a stock quantity.
func StatusForStock(stock int) ProductStatus {
	if stock > 0 {
		return ProductStatusInStock
	}
	return ProductStatusOutOfStock
}

// Product represents a catalog item
type Product struct {
	ID       uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name     string        `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_products_name"`
	Unit     string        `json:"unit" gorm:"type:varchar(50)"`
	Category string        `json:"category" gorm:"type:varchar(100);index"`
	Brand    string        `json:"brand" gorm:"type:varchar(100)"`
	Stock    int           `json:"stock" gorm:"not null;default:0;check:stock >= 0"`
	Status   ProductStatus `json:"status" gorm:"type:varchar(20);not null;default:'In Stock'"`
	Image    string        `json:"image" gorm:"type:varchar(512)"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

// StockHistory is one immutable record of a stock-quantity change.
// ProductID is a non-owning reference: entries survive product deletion.
type StockHistory struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID  uuid.UUID `json:"productId" gorm:"type:uuid;not null;index:idx_stock_history_product_date,priority:1"`
	OldStock   int       `json:"oldStock" gorm:"not null"`
	NewStock   int       `json:"newStock" gorm:"not null"`
	ChangeDate time.Time `json:"changeDate" gorm:"not null;index:idx_stock_history_product_date,priority:2,sort:desc"`
}

func (StockHistory) TableName() string {
	return "stock_history"
}

// ProductFields is the full editable field set of a product, as submitted by
// the create/update forms.
type ProductFields struct {
	Name     string        `json:"name" binding:"required,min=1,max=255"`
	Unit     string        `json:"unit"`
	Category string        `json:"category"`
	Brand    string        `json:"brand"`
	Stock    int           `json:"stock" binding:"gte=0"`
	Status   ProductStatus `json:"status"`
	Image    string        `json:"image"`
}

// DuplicateCandidate is a merge result for an imported row whose name matched
// an existing product. It is surfaced to the operator for confirmation and is
// never persisted directly.
type DuplicateCandidate struct {
	ID       uuid.UUID     `json:"id"`
	Name     string        `json:"name"`
	Unit     string        `json:"unit"`
	Category string        `json:"category"`
	Brand    string        `json:"brand"`
	Stock    int           `json:"stock"`
	Status   ProductStatus `json:"status"`
	Image    string        `json:"image"`
}

// ImportResult is the outcome of reconciling one uploaded file.
type ImportResult struct {
	Success    bool                 `json:"success"`
	Added      int                  `json:"added"`
	Skipped    int                  `json:"skipped"`
	Failed     int                  `json:"failed"`
	Duplicates []DuplicateCandidate `json:"duplicates,omitempty"`
}

// BulkUpdateItem is one operator-confirmed or form-submitted product update.
type BulkUpdateItem struct {
	ID       uuid.UUID     `json:"id" binding:"required"`
	Name     string        `json:"name"`
	Unit     string        `json:"unit"`
	Category string        `json:"category"`
	Brand    string        `json:"brand"`
	Stock    int           `json:"stock" binding:"gte=0"`
	Status   ProductStatus `json:"status"`
	Image    string        `json:"image"`
}

// BulkUpdateRequest carries a batch of product updates
type BulkUpdateRequest struct {
	Products []BulkUpdateItem `json:"products" binding:"required,min=1"`
}

// BulkUpdateResult reports best-effort batch outcome: per-item failures never
// abort the batch.
type BulkUpdateResult struct {
	Success bool `json:"success"`
	Updated int  `json:"updated"`
	Failed  int  `json:"failed"`
}

// ProductSummary is the display header of a history page
type ProductSummary struct {
	Name         string `json:"name"`
	CurrentStock int    `json:"currentStock"`
}

// HistoryPage is one page of a product's stock history, newest first.
type HistoryPage struct {
	History      []StockHistory `json:"history"`
	CurrentPage  int            `json:"currentPage"`
	TotalPages   int            `json:"totalPages"`
	TotalEntries int64          `json:"totalEntries"`
	Product      ProductSummary `json:"product"`
}

// ProductPage is one page of the catalog listing
type ProductPage struct {
	Products      []Product `json:"products"`
	CurrentPage   int       `json:"currentPage"`
	TotalPages    int       `json:"totalPages"`
	TotalProducts int64     `json:"totalProducts"`
}

// ErrorResponse is the JSON envelope for failed requests
type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

// Error carries a machine-readable code plus a human-readable message
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse is the JSON envelope for simple successful requests
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}
