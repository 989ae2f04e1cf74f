// Package events provides NATS event publishing for catalog-service
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const (
	streamName           = "CATALOG"
	subjectStockAdjusted = "catalog.stock.adjusted"
)

// StockAdjustedEvent is published whenever an audit entry is written
type StockAdjustedEvent struct {
	ProductID      string    `json:"productId"`
	ProductName    string    `json:"productName"`
	PreviousStock  int       `json:"previousStock"`
	CurrentStock   int       `json:"currentStock"`
	AdjustmentType string    `json:"adjustmentType"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// StockEventPublisher publishes stock-change events to NATS JetStream
type StockEventPublisher struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	logger *logrus.Entry
}

// NewStockEventPublisher connects to NATS and ensures the catalog stream
// exists. Callers treat a nil publisher as "event publishing disabled".
func NewStockEventPublisher(natsURL string, logger *logrus.Logger) (*StockEventPublisher, error) {
	if natsURL == "" {
		return nil, fmt.Errorf("NATS URL is required")
	}

	log := logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	nc, err := nats.Connect(natsURL,
		nats.Name("catalog-service-publisher"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if _, err := js.StreamInfo(streamName); err != nil {
		if _, err := js.AddStream(&nats.StreamConfig{
			Name:     streamName,
			Subjects: []string{"catalog.>"},
		}); err != nil {
			log.WithError(err).Warn("Failed to ensure catalog stream exists")
		}
	}

	return &StockEventPublisher{
		nc:     nc,
		js:     js,
		logger: log.WithField("component", "catalog-events"),
	}, nil
}

// PublishStockAdjusted publishes a catalog.stock.adjusted event
func (p *StockEventPublisher) PublishStockAdjusted(ctx context.Context, productID uuid.UUID, productName string, previousStock, currentStock int) error {
	event := StockAdjustedEvent{
		ProductID:     productID.String(),
		ProductName:   productName,
		PreviousStock: previousStock,
		CurrentStock:  currentStock,
		OccurredAt:    time.Now().UTC(),
	}
	if currentStock > previousStock {
		event.AdjustmentType = "add"
	} else {
		event.AdjustmentType = "remove"
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(subjectStockAdjusted, data, nats.Context(ctx)); err != nil {
		p.logger.WithFields(logrus.Fields{
			"productId": event.ProductID,
		}).WithError(err).Error("Failed to publish catalog.stock.adjusted event")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"productId":      event.ProductID,
		"previousStock":  previousStock,
		"currentStock":   currentStock,
		"adjustmentType": event.AdjustmentType,
	}).Debug("Published catalog.stock.adjusted event")
	return nil
}

// IsConnected returns true if connected to NATS
func (p *StockEventPublisher) IsConnected() bool {
	return p.nc.IsConnected()
}

// Close closes the NATS connection
func (p *StockEventPublisher) Close() {
	p.nc.Close()
}
