package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskorganizer/internal/models"
)

type fakeTaskStore struct {
	task *models.Task
	err  error
}

func (f *fakeTaskStore) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	return f.task, f.err
}

type fakeUserStore struct {
	user *models.User
	err  error
}

func (f *fakeUserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return f.user, f.err
}

type fakeNotificationStore struct {
	stored   []*models.Notification
	updated  []*models.Notification
	storeErr error
}

func (f *fakeNotificationStore) Store(ctx context.Context, n *models.Notification) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	n.ID = int64(len(f.stored) + 1)
	f.stored = append(f.stored, n)
	return nil
}

func (f *fakeNotificationStore) Update(ctx context.Context, n *models.Notification) error {
	f.updated = append(f.updated, n)
	return nil
}

type fakeSubscriptionStore struct {
	subs []models.PushSubscription
	err  error
}

func (f *fakeSubscriptionStore) ListByUser(ctx context.Context, userID int64) ([]models.PushSubscription, error) {
	return f.subs, f.err
}

type fakeEmailSender struct {
	sentTo []string
	err    error
}

func (f *fakeEmailSender) SendTaskReminder(to string, task *models.Task) error {
	f.sentTo = append(f.sentTo, to)
	return f.err
}

type fakePushSender struct {
	sent []models.PushSubscription
	err  error
}

func (f *fakePushSender) Send(sub models.PushSubscription, payload []byte) error {
	f.sent = append(f.sent, sub)
	return f.err
}

type dispatcherFixture struct {
	tasks         *fakeTaskStore
	users         *fakeUserStore
	notifications *fakeNotificationStore
	subscriptions *fakeSubscriptionStore
	email         *fakeEmailSender
	push          *fakePushSender
	dispatcher    *Dispatcher
}

func newDispatcherFixture() *dispatcherFixture {
	f := &dispatcherFixture{
		tasks:         &fakeTaskStore{},
		users:         &fakeUserStore{},
		notifications: &fakeNotificationStore{},
		subscriptions: &fakeSubscriptionStore{},
		email:         &fakeEmailSender{},
		push:          &fakePushSender{},
	}
	f.dispatcher = NewDispatcher(f.tasks, f.users, f.notifications, f.subscriptions, f.email, f.push)
	return f
}

func TestDispatchDeliversToAllChannels(t *testing.T) {
	f := newDispatcherFixture()
	remind := time.Now().Add(-time.Second)
	f.tasks.task = &models.Task{
		ID:          42,
		UserID:      7,
		Title:       "file taxes",
		Description: "before the deadline",
		Status:      models.StatusTodo,
		RemindAt:    &remind,
	}
	f.users.user = &models.User{ID: 7, Email: "kate@example.com"}
	f.subscriptions.subs = []models.PushSubscription{
		{ID: 1, UserID: 7, Endpoint: "https://push.example.com/a"},
		{ID: 2, UserID: 7, Endpoint: "https://push.example.com/b"},
	}

	f.dispatcher.Dispatch(42)

	require.Len(t, f.notifications.stored, 1)
	n := f.notifications.stored[0]
	assert.Equal(t, int64(7), n.UserID)
	require.NotNil(t, n.TaskID)
	assert.Equal(t, int64(42), *n.TaskID)
	assert.Equal(t, models.ChannelWebPush, n.Channel)
	assert.True(t, n.ScheduledFor.Equal(remind))

	var payload models.NotificationPayload
	require.NoError(t, json.Unmarshal(n.Payload, &payload))
	assert.Equal(t, "Reminder: file taxes", payload.Title)
	assert.Equal(t, "before the deadline", payload.Body)
	assert.Equal(t, int64(42), payload.TaskID)

	assert.Len(t, f.push.sent, 2)
	assert.Equal(t, []string{"kate@example.com"}, f.email.sentTo)

	require.Len(t, f.notifications.updated, 1)
	require.NotNil(t, f.notifications.updated[0].DeliveredAt)
}

func TestDispatchMissingTaskHasNoSideEffects(t *testing.T) {
	f := newDispatcherFixture()

	f.dispatcher.Dispatch(404)

	assert.Empty(t, f.notifications.stored)
	assert.Empty(t, f.push.sent)
	assert.Empty(t, f.email.sentTo)
}

func TestDispatchFetchErrorHasNoSideEffects(t *testing.T) {
	f := newDispatcherFixture()
	f.tasks.err = errors.New("connection refused")

	f.dispatcher.Dispatch(1)

	assert.Empty(t, f.notifications.stored)
	assert.Empty(t, f.push.sent)
	assert.Empty(t, f.email.sentTo)
}

func TestDispatchStoreErrorSkipsDelivery(t *testing.T) {
	f := newDispatcherFixture()
	f.tasks.task = &models.Task{ID: 1, UserID: 7, Title: "t", Status: models.StatusTodo}
	f.notifications.storeErr = errors.New("disk full")

	f.dispatcher.Dispatch(1)

	assert.Empty(t, f.push.sent)
	assert.Empty(t, f.email.sentTo)
	assert.Empty(t, f.notifications.updated)
}

func TestDispatchNoSubscriptionsNoUser(t *testing.T) {
	f := newDispatcherFixture()
	f.tasks.task = &models.Task{ID: 1, UserID: 7, Title: "t", Status: models.StatusTodo}

	f.dispatcher.Dispatch(1)

	// still records the notification and marks it delivered
	require.Len(t, f.notifications.stored, 1)
	require.Len(t, f.notifications.updated, 1)
	assert.NotNil(t, f.notifications.updated[0].DeliveredAt)
	assert.Empty(t, f.push.sent)
	assert.Empty(t, f.email.sentTo)
}

func TestDispatchChannelFailureIsContained(t *testing.T) {
	f := newDispatcherFixture()
	f.tasks.task = &models.Task{ID: 1, UserID: 7, Title: "t", Status: models.StatusTodo}
	f.users.user = &models.User{ID: 7, Email: "kate@example.com"}
	f.subscriptions.subs = []models.PushSubscription{{ID: 1, UserID: 7, Endpoint: "https://push.example.com/a"}}
	f.push.err = errors.New("410 gone")
	f.email.err = errors.New("smtp timeout")

	f.dispatcher.Dispatch(1)

	// both channels were attempted and the notification is still marked delivered
	assert.Len(t, f.push.sent, 1)
	assert.Len(t, f.email.sentTo, 1)
	require.Len(t, f.notifications.updated, 1)
	assert.NotNil(t, f.notifications.updated[0].DeliveredAt)
}

func TestDispatchSharedRemindTimeIndependentRecords(t *testing.T) {
	f := newDispatcherFixture()
	remind := time.Now().Add(-time.Second)

	f.tasks.task = &models.Task{ID: 1, UserID: 7, Title: "a", Status: models.StatusTodo, RemindAt: &remind}
	f.dispatcher.Dispatch(1)
	f.tasks.task = &models.Task{ID: 2, UserID: 7, Title: "b", Status: models.StatusTodo, RemindAt: &remind}
	f.dispatcher.Dispatch(2)

	// two tasks sharing a remind time produce two independent records
	require.Len(t, f.notifications.stored, 2)
	assert.NotEqual(t, f.notifications.stored[0].ID, f.notifications.stored[1].ID)
	assert.Equal(t, int64(1), *f.notifications.stored[0].TaskID)
	assert.Equal(t, int64(2), *f.notifications.stored[1].TaskID)
	assert.Len(t, f.notifications.updated, 2)
}

func TestDispatchScheduledForFallsBackToDue(t *testing.T) {
	f := newDispatcherFixture()
	due := time.Now().Add(time.Hour)
	f.tasks.task = &models.Task{ID: 1, UserID: 7, Title: "t", Status: models.StatusTodo, DueAt: &due}

	f.dispatcher.Dispatch(1)

	require.Len(t, f.notifications.stored, 1)
	assert.True(t, f.notifications.stored[0].ScheduledFor.Equal(due))
}

func TestDispatchEmptyDescriptionDefaultBody(t *testing.T) {
	f := newDispatcherFixture()
	f.tasks.task = &models.Task{ID: 1, UserID: 7, Title: "t", Status: models.StatusTodo}

	f.dispatcher.Dispatch(1)

	require.Len(t, f.notifications.stored, 1)
	var payload models.NotificationPayload
	require.NoError(t, json.Unmarshal(f.notifications.stored[0].Payload, &payload))
	assert.Equal(t, "Task reminder", payload.Body)
}
