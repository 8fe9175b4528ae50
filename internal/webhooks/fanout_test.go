package webhooks_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/contabhub/onety-sub018/internal/models"
	"github.com/contabhub/onety-sub018/internal/queue"
	"github.com/contabhub/onety-sub018/internal/webhooks"
	"github.com/contabhub/onety-sub018/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriptionRepo struct {
	subs []models.WebhookSubscription
	err  error
}

func (r *fakeSubscriptionRepo) FindActiveByCompanyAndEvent(ctx context.Context, companyID uuid.UUID, eventType string) ([]models.WebhookSubscription, error) {
	if r.err != nil {
		return nil, r.err
	}
	matched := make([]models.WebhookSubscription, 0, len(r.subs))
	for _, sub := range r.subs {
		if sub.CompanyID == companyID && sub.IsActive() && sub.Events.Contains(eventType) {
			matched = append(matched, sub)
		}
	}
	return matched, nil
}

func (r *fakeSubscriptionRepo) Create(ctx context.Context, sub *models.WebhookSubscription) error {
	return nil
}

type fakeDeliveryRepo struct {
	batches [][]models.WebhookDelivery
	err     error
}

func (r *fakeDeliveryRepo) CreateBatch(ctx context.Context, deliveries []models.WebhookDelivery) error {
	if r.err != nil {
		return r.err
	}
	r.batches = append(r.batches, deliveries)
	return nil
}

type recordingEnqueuer struct {
	mu    sync.Mutex
	tasks []queue.Task
	err   error
	woken chan struct{}
}

func newRecordingEnqueuer(err error) *recordingEnqueuer {
	return &recordingEnqueuer{err: err, woken: make(chan struct{}, 8)}
}

func (e *recordingEnqueuer) Enqueue(ctx context.Context, task queue.Task) (string, error) {
	e.mu.Lock()
	e.tasks = append(e.tasks, task)
	e.mu.Unlock()
	e.woken <- struct{}{}
	if e.err != nil {
		return "", e.err
	}
	return "task-1", nil
}

func (e *recordingEnqueuer) Close() error { return nil }

func (e *recordingEnqueuer) waitForWake(t *testing.T) queue.Task {
	t.Helper()
	select {
	case <-e.woken:
	case <-time.After(2 * time.Second):
		t.Fatal("worker was never woken")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasks[len(e.tasks)-1]
}

func subscription(companyID uuid.UUID, status models.SubscriptionStatus, events ...string) models.WebhookSubscription {
	sub := models.WebhookSubscription{
		CompanyID: companyID,
		URL:       "https://crm.example.com/hooks",
		Status:    status,
		Events:    models.EventTypes(events),
	}
	sub.ID = uuid.New()
	return sub
}

func TestFanoutEnqueuesOneRowPerMatch(t *testing.T) {
	companyID := uuid.New()
	subA := subscription(companyID, models.SubscriptionActive, "MESSAGE_RECEIVED")
	subB := subscription(companyID, models.SubscriptionActive, "MESSAGE_RECEIVED", "CONVERSATION_CLOSED")

	subs := &fakeSubscriptionRepo{subs: []models.WebhookSubscription{
		subA,
		subB,
		subscription(companyID, models.SubscriptionInactive, "MESSAGE_RECEIVED"),
		subscription(companyID, models.SubscriptionActive, "CONVERSATION_CLOSED"),
		subscription(uuid.New(), models.SubscriptionActive, "MESSAGE_RECEIVED"),
	}}
	deliveries := &fakeDeliveryRepo{}
	enqueuer := newRecordingEnqueuer(nil)
	fanout := webhooks.NewFanout(subs, deliveries, enqueuer, logger.NewNop())

	payload := map[string]string{"eventType": "MESSAGE_RECEIVED"}
	count, err := fanout.Enqueue(context.Background(), companyID, "MESSAGE_RECEIVED", payload)

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, deliveries.batches, 1)

	batch := deliveries.batches[0]
	require.Len(t, batch, 2)
	assert.ElementsMatch(t,
		[]uuid.UUID{subA.ID, subB.ID},
		[]uuid.UUID{batch[0].SubscriptionID, batch[1].SubscriptionID},
	)
	for _, row := range batch {
		assert.Equal(t, companyID, row.CompanyID)
		assert.Equal(t, "MESSAGE_RECEIVED", row.EventType)
		assert.Equal(t, models.DeliveryPending, row.Status)
		assert.Zero(t, row.Attempts)

		var decoded map[string]string
		require.NoError(t, json.Unmarshal(row.Payload, &decoded))
		assert.Equal(t, "MESSAGE_RECEIVED", decoded["eventType"])
	}

	task := enqueuer.waitForWake(t)
	assert.Equal(t, queue.TaskWebhookDeliver, task.Type)

	var wake struct {
		CompanyID uuid.UUID `json:"companyId"`
	}
	require.NoError(t, json.Unmarshal(task.Payload, &wake))
	assert.Equal(t, companyID, wake.CompanyID)
}

func TestFanoutZeroMatchesIsNotAnError(t *testing.T) {
	deliveries := &fakeDeliveryRepo{}
	fanout := webhooks.NewFanout(&fakeSubscriptionRepo{}, deliveries, newRecordingEnqueuer(nil), logger.NewNop())

	count, err := fanout.Enqueue(context.Background(), uuid.New(), "MESSAGE_RECEIVED", map[string]string{})

	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, deliveries.batches)
}

func TestFanoutBatchFailureFailsTheCall(t *testing.T) {
	companyID := uuid.New()
	subs := &fakeSubscriptionRepo{subs: []models.WebhookSubscription{
		subscription(companyID, models.SubscriptionActive, "MESSAGE_RECEIVED"),
	}}
	deliveries := &fakeDeliveryRepo{err: errors.New("deadlock detected")}
	fanout := webhooks.NewFanout(subs, deliveries, newRecordingEnqueuer(nil), logger.NewNop())

	count, err := fanout.Enqueue(context.Background(), companyID, "MESSAGE_RECEIVED", map[string]string{})

	assert.Error(t, err)
	assert.Zero(t, count)
}

func TestFanoutWakeFailureDoesNotAffectResult(t *testing.T) {
	companyID := uuid.New()
	subs := &fakeSubscriptionRepo{subs: []models.WebhookSubscription{
		subscription(companyID, models.SubscriptionActive, "MESSAGE_RECEIVED"),
	}}
	enqueuer := newRecordingEnqueuer(errors.New("redis down"))
	fanout := webhooks.NewFanout(subs, &fakeDeliveryRepo{}, enqueuer, logger.NewNop())

	count, err := fanout.Enqueue(context.Background(), companyID, "MESSAGE_RECEIVED", map[string]string{})

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	enqueuer.waitForWake(t)
}

func TestFanoutRepeatCallsCreateNewRows(t *testing.T) {
	companyID := uuid.New()
	subs := &fakeSubscriptionRepo{subs: []models.WebhookSubscription{
		subscription(companyID, models.SubscriptionActive, "MESSAGE_RECEIVED"),
	}}
	deliveries := &fakeDeliveryRepo{}
	fanout := webhooks.NewFanout(subs, deliveries, newRecordingEnqueuer(nil), logger.NewNop())

	for i := 0; i < 2; i++ {
		count, err := fanout.Enqueue(context.Background(), companyID, "MESSAGE_RECEIVED", map[string]string{})
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	}

	assert.Len(t, deliveries.batches, 2)
}
