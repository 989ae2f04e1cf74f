package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/events"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

// StockAuditor is the sole writer of the stock audit log. An entry is
// appended if and only if old and new quantities differ; no other field
// change produces an entry.
type StockAuditor struct {
	history   repository.HistoryRepository
	publisher *events.StockEventPublisher
	logger    *logrus.Entry
}

// NewStockAuditor creates a StockAuditor. publisher may be nil, in which case
// audit entries are written without emitting events.
func NewStockAuditor(history repository.HistoryRepository, publisher *events.StockEventPublisher, logger *logrus.Logger) *StockAuditor {
	return &StockAuditor{
		history:   history,
		publisher: publisher,
		logger:    logger.WithField("component", "stock-auditor"),
	}
}

// Record appends an audit entry for a stock change. Event publishing is
// best-effort: a NATS failure never fails the audit itself.
func (a *StockAuditor) Record(ctx context.Context, productID uuid.UUID, productName string, oldStock, newStock int) error {
	if oldStock == newStock {
		return nil
	}

	entry := &models.StockHistory{
		ProductID:  productID,
		OldStock:   oldStock,
		NewStock:   newStock,
		ChangeDate: time.Now(),
	}
	if err := a.history.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append stock history: %w", err)
	}

	if a.publisher != nil {
		if err := a.publisher.PublishStockAdjusted(ctx, productID, productName, oldStock, newStock); err != nil {
			a.logger.WithFields(logrus.Fields{
				"productId": productID,
				"oldStock":  oldStock,
				"newStock":  newStock,
			}).WithError(err).Warn("Audit entry written but event publish failed")
		}
	}

	return nil
}
