package webhooks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/contabhub/onety-sub018/internal/models"
	"github.com/contabhub/onety-sub018/internal/queue"
	"github.com/contabhub/onety-sub018/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ===========================================================================
// Webhook Fan-Out Queue
// Turns one domain event into one pending delivery row per interested
// subscriber, committed atomically. After the commit it wakes the delivery
// worker; that signal is fire-and-forget and never affects the result.
// ===========================================================================

// Fanout enqueues delivery rows for domain events.
type Fanout struct {
	subscriptions repositories.WebhookSubscriptionRepository
	deliveries    repositories.WebhookDeliveryRepository
	enqueuer      queue.Enqueuer
	logger        *zap.Logger
}

// NewFanout creates a fan-out queue.
func NewFanout(
	subscriptions repositories.WebhookSubscriptionRepository,
	deliveries repositories.WebhookDeliveryRepository,
	enqueuer queue.Enqueuer,
	logger *zap.Logger,
) *Fanout {
	return &Fanout{
		subscriptions: subscriptions,
		deliveries:    deliveries,
		enqueuer:      enqueuer,
		logger:        logger,
	}
}

// Enqueue creates one pending delivery row per active subscription of the
// company whose event filter includes eventType, all inside one
// transaction. Returns the number of rows created; zero matches is a
// valid outcome, not an error. Repeat calls for the same source message
// always produce new rows.
func (f *Fanout) Enqueue(ctx context.Context, companyID uuid.UUID, eventType string, payload interface{}) (int, error) {
	subs, err := f.subscriptions.FindActiveByCompanyAndEvent(ctx, companyID, eventType)
	if err != nil {
		return 0, fmt.Errorf("find subscriptions: %w", err)
	}
	if len(subs) == 0 {
		f.logger.Debug("fan-out: no matching subscriptions",
			zap.String("company_id", companyID.String()),
			zap.String("event_type", eventType),
		)
		return 0, nil
	}

	snapshot, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}

	rows := make([]models.WebhookDelivery, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, models.WebhookDelivery{
			CompanyID:      companyID,
			SubscriptionID: sub.ID,
			EventType:      eventType,
			Payload:        models.EventSnapshot(snapshot),
			Status:         models.DeliveryPending,
		})
	}

	if err := f.deliveries.CreateBatch(ctx, rows); err != nil {
		return 0, fmt.Errorf("create deliveries: %w", err)
	}

	f.logger.Info("fan-out: deliveries enqueued",
		zap.String("company_id", companyID.String()),
		zap.String("event_type", eventType),
		zap.Int("count", len(rows)),
	)

	f.wakeWorker(companyID, eventType)

	return len(rows), nil
}

// wakeTask tells the worker which company has fresh pending rows.
type wakeTask struct {
	CompanyID uuid.UUID `json:"companyId"`
}

// wakeWorker signals the delivery worker off the request path. Losing the
// signal is fine: the worker also sweeps pending rows on a timer.
func (f *Fanout) wakeWorker(companyID uuid.UUID, eventType string) {
	go func() {
		payload, _ := json.Marshal(wakeTask{CompanyID: companyID})
		_, err := f.enqueuer.Enqueue(context.Background(), queue.Task{
			Type:    queue.TaskWebhookDeliver,
			Payload: payload,
		})
		if err != nil {
			f.logger.Warn("fan-out: worker wake failed",
				zap.String("event_type", eventType),
				zap.Error(err),
			)
		}
	}()
}
