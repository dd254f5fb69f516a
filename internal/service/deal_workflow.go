// Package service holds the deal-request workflow, the statistics
// aggregator and the deal event publishers.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iliyamo/carmarket/internal/model"
	"github.com/iliyamo/carmarket/internal/platform/metrics"
	"github.com/iliyamo/carmarket/internal/queue"
	"github.com/iliyamo/carmarket/internal/repository"
)

// ErrCommentRequired is returned by Submit for a blank comment.
var ErrCommentRequired = errors.New("comment is required")

// DealWorkflow moves deal requests through their life cycle.
type DealWorkflow struct {
	cars    *repository.CarRepo
	deals   *repository.DealRequestRepo
	events  EventPublisher
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

// NewDealWorkflow wires the workflow. A nil publisher drops events and a
// nil logger discards logs.
func NewDealWorkflow(cars *repository.CarRepo, deals *repository.DealRequestRepo, events EventPublisher, m *metrics.Metrics, log *zap.Logger) *DealWorkflow {
	if cars == nil || deals == nil || m == nil {
		panic("nil dependency passed to NewDealWorkflow")
	}
	if events == nil {
		events = NoopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DealWorkflow{cars: cars, deals: deals, events: events, metrics: m, log: log, now: time.Now}
}

// Submit records a seeker's interest in a car. The car must exist; its
// availability is not checked.
func (w *DealWorkflow) Submit(ctx context.Context, carID, seekerID uint64, comment string) (*model.DealRequest, error) {
	if strings.TrimSpace(comment) == "" {
		return nil, ErrCommentRequired
	}
	if _, err := w.cars.GetByID(ctx, carID); err != nil {
		return nil, err
	}
	d := &model.DealRequest{CarID: carID, SeekerID: seekerID, Comment: comment}
	if err := w.deals.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create deal request: %w", err)
	}
	w.metrics.DealRequestsSubmitted.Inc()
	w.log.Info("deal request submitted",
		zap.Uint64("deal_request_id", d.ID),
		zap.Uint64("car_id", carID),
		zap.Uint64("seeker_id", seekerID))
	w.publish(ctx, queue.EventDealSubmitted, d.ID)
	return d, nil
}

// Approve accepts a waiting request on a car owned by actorID and takes the
// car off the market. Both writes commit together.
func (w *DealWorkflow) Approve(ctx context.Context, requestID, actorID uint64) error {
	return w.decide(ctx, requestID, actorID, model.DealApproved)
}

// Reject declines a waiting request on a car owned by actorID. The car is
// left as it is.
func (w *DealWorkflow) Reject(ctx context.Context, requestID, actorID uint64) error {
	return w.decide(ctx, requestID, actorID, model.DealRejected)
}

// decide returns repository.ErrDealRequestNotFound when the request is
// missing, belongs to another owner's car or is no longer waiting.
func (w *DealWorkflow) decide(ctx context.Context, requestID, actorID uint64, status model.DealStatus) error {
	err := w.deals.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, err := w.deals.FindDecidableTx(ctx, tx, requestID, actorID)
		if err != nil {
			return err
		}
		if err := w.deals.SetStatusTx(ctx, tx, d.ID, status); err != nil {
			return err
		}
		// date_approved is intentionally not written here.
		if status == model.DealApproved {
			if err := w.cars.MarkUnavailableTx(ctx, tx, d.CarID); err != nil {
				return fmt.Errorf("mark car %d unavailable: %w", d.CarID, err)
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, repository.ErrDealRequestNotFound) {
			w.log.Error("deal decision failed",
				zap.Uint64("deal_request_id", requestID),
				zap.String("status", string(status)),
				zap.Error(err))
		}
		return err
	}

	if status == model.DealApproved {
		w.metrics.DealRequestsApproved.Inc()
	} else {
		w.metrics.DealRequestsRejected.Inc()
	}
	w.log.Info("deal request decided",
		zap.Uint64("deal_request_id", requestID),
		zap.Uint64("owner_id", actorID),
		zap.String("status", string(status)))
	w.publish(ctx, queue.EventTypeFor(status), requestID)
	return nil
}

// publish is best effort: failures are logged and counted, never returned.
func (w *DealWorkflow) publish(ctx context.Context, typ string, requestID uint64) {
	d, err := w.deals.GetByID(ctx, requestID)
	if err == nil {
		err = w.events.Publish(ctx, queue.NewDealEvent(typ, d, w.now()))
	}
	if err != nil {
		w.metrics.EventPublishFailures.WithLabelValues(typ).Inc()
		w.log.Warn("deal event not published",
			zap.String("type", typ),
			zap.Uint64("deal_request_id", requestID),
			zap.Error(err))
	}
}
