package notification

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/NoamFav/Laundry/internal/model"
)

// mockSender records sent notifications instead of hitting the push
// service.
type mockSender struct {
	mu       sync.Mutex
	sent     []string
	response func(endpoint string) *http.Response
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, _ *webpush.Options) (*http.Response, error) {
	m.mu.Lock()
	m.sent = append(m.sent, sub.Endpoint)
	m.mu.Unlock()

	if m.response != nil {
		return m.response(sub.Endpoint), nil
	}
	return okResponse(), nil
}

func (m *mockSender) endpoints() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.sent...)
}

func okResponse() *http.Response {
	return &http.Response{StatusCode: http.StatusCreated, Body: io.NopCloser(bytes.NewReader(nil))}
}

func goneResponse() *http.Response {
	return &http.Response{StatusCode: http.StatusGone, Body: io.NopCloser(bytes.NewReader(nil))}
}

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.PushSubscription{}))
	return db
}

func TestDispatchDoesNotBlockWhenSaturated(t *testing.T) {
	wp := NewWorkerPool(1, nil, &webpush.Options{})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			wp.Dispatch("washer")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a saturated pool")
	}
}

func TestNotifyForAppliance(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&model.PushSubscription{
		Endpoint: "https://push.example/washer-sub", P256DH: "k", Auth: "a", Appliance: "washer", RoomID: "2C",
	}).Error)
	require.NoError(t, db.Create(&model.PushSubscription{
		Endpoint: "https://push.example/dryer-sub", P256DH: "k", Auth: "a", Appliance: "dryer", RoomID: "3C",
	}).Error)

	sender := &mockSender{}
	wp := NewWorkerPool(1, db, &webpush.Options{})
	wp.sender = sender

	wp.notifyForAppliance(context.Background(), "washer")

	// Only the washer subscriber is notified.
	assert.Equal(t, []string{"https://push.example/washer-sub"}, sender.endpoints())
}

// Without VAPID keys the pool must stay inert even when subscriptions
// exist; a dispatch must never take the process down.
func TestNotifySkippedWithoutWebPushConfig(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&model.PushSubscription{
		Endpoint: "https://push.example/washer-sub", P256DH: "k", Auth: "a", Appliance: "washer",
	}).Error)

	sender := &mockSender{}
	wp := NewWorkerPool(1, db, nil)
	wp.sender = sender

	assert.NotPanics(t, func() {
		wp.notifyForAppliance(context.Background(), "washer")
	})
	assert.Empty(t, sender.endpoints())
}

func TestExpiredSubscriptionIsPruned(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&model.PushSubscription{
		Endpoint: "https://push.example/stale", P256DH: "k", Auth: "a", Appliance: "dryer",
	}).Error)

	sender := &mockSender{response: func(string) *http.Response { return goneResponse() }}
	wp := NewWorkerPool(1, db, &webpush.Options{})
	wp.sender = sender

	wp.notifyForAppliance(context.Background(), "dryer")

	var count int64
	require.NoError(t, db.Model(&model.PushSubscription{}).Count(&count).Error)
	assert.Zero(t, count, "410 response deletes the subscription")
}

func TestWorkerProcessesDispatchedJobs(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&model.PushSubscription{
		Endpoint: "https://push.example/washer-sub", P256DH: "k", Auth: "a", Appliance: "washer",
	}).Error)

	sender := &mockSender{}
	wp := NewWorkerPool(2, db, &webpush.Options{})
	wp.sender = sender

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	wp.Dispatch("washer")

	assert.Eventually(t, func() bool {
		return len(sender.endpoints()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
