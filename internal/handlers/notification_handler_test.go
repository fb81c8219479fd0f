package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskorganizer/internal/models"
)

type fakeSubscriptionRepo struct {
	subs   map[string]models.PushSubscription // keyed by endpoint
	nextID int64
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[string]models.PushSubscription), nextID: 1}
}

func (f *fakeSubscriptionRepo) Upsert(ctx context.Context, sub *models.PushSubscription) error {
	if existing, ok := f.subs[sub.Endpoint]; ok {
		sub.ID = existing.ID
	} else {
		sub.ID = f.nextID
		f.nextID++
	}
	f.subs[sub.Endpoint] = *sub
	return nil
}

func (f *fakeSubscriptionRepo) ListByUser(ctx context.Context, userID int64) ([]models.PushSubscription, error) {
	var out []models.PushSubscription
	for _, s := range f.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubscriptionRepo) DeleteByEndpoint(ctx context.Context, userID int64, endpoint string) error {
	if s, ok := f.subs[endpoint]; ok && s.UserID == userID {
		delete(f.subs, endpoint)
	}
	return nil
}

type fakeNotificationRepo struct{}

func (f *fakeNotificationRepo) Store(ctx context.Context, n *models.Notification) error  { return nil }
func (f *fakeNotificationRepo) Update(ctx context.Context, n *models.Notification) error { return nil }
func (f *fakeNotificationRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	return nil, nil
}

type fakeWebPush struct{}

func (f *fakeWebPush) Send(sub models.PushSubscription, payload []byte) error { return nil }
func (f *fakeWebPush) PublicKey() string                                      { return "test-public-key" }

func performJSON(handler gin.HandlerFunc, method, body string, userID int64) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set("user_id", userID)
	handler(c)
	return w
}

func TestSubscribeThenUnsubscribe(t *testing.T) {
	subs := newFakeSubscriptionRepo()
	h := NewNotificationHandler(subs, &fakeNotificationRepo{}, &fakeWebPush{})

	w := performJSON(h.Subscribe, http.MethodPost,
		`{"endpoint":"https://push.example.com/a","keys":{"p256dh":"pk","auth":"ak"}}`, 7)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, subs.subs, 1)
	assert.Equal(t, "pk", subs.subs["https://push.example.com/a"].P256dh)
	assert.Equal(t, "ak", subs.subs["https://push.example.com/a"].Auth)

	w = performJSON(h.Unsubscribe, http.MethodDelete,
		`{"endpoint":"https://push.example.com/a"}`, 7)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, subs.subs)
}

func TestUnsubscribeForeignEndpointIsNoop(t *testing.T) {
	subs := newFakeSubscriptionRepo()
	subs.subs["https://push.example.com/a"] = models.PushSubscription{
		ID: 1, UserID: 1, Endpoint: "https://push.example.com/a",
	}
	h := NewNotificationHandler(subs, &fakeNotificationRepo{}, &fakeWebPush{})

	w := performJSON(h.Unsubscribe, http.MethodDelete,
		`{"endpoint":"https://push.example.com/a"}`, 2)
	assert.Equal(t, http.StatusOK, w.Code)
	// the other user's credential row is untouched
	assert.Len(t, subs.subs, 1)
}

func TestUnsubscribeRequiresEndpoint(t *testing.T) {
	subs := newFakeSubscriptionRepo()
	h := NewNotificationHandler(subs, &fakeNotificationRepo{}, &fakeWebPush{})

	w := performJSON(h.Unsubscribe, http.MethodDelete, `{}`, 7)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscribeRefreshesKeys(t *testing.T) {
	subs := newFakeSubscriptionRepo()
	h := NewNotificationHandler(subs, &fakeNotificationRepo{}, &fakeWebPush{})

	performJSON(h.Subscribe, http.MethodPost,
		`{"endpoint":"https://push.example.com/a","keys":{"p256dh":"old","auth":"old"}}`, 7)
	performJSON(h.Subscribe, http.MethodPost,
		`{"endpoint":"https://push.example.com/a","keys":{"p256dh":"new","auth":"new"}}`, 7)

	require.Len(t, subs.subs, 1)
	assert.Equal(t, "new", subs.subs["https://push.example.com/a"].P256dh)
}
