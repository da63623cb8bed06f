package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/NoamFav/Laundry/internal/api"
	"github.com/NoamFav/Laundry/internal/directory"
	"github.com/NoamFav/Laundry/internal/history"
	"github.com/NoamFav/Laundry/internal/laundry"
	"github.com/NoamFav/Laundry/internal/model"
	"github.com/NoamFav/Laundry/internal/presence"
	"github.com/NoamFav/Laundry/internal/session"
	"github.com/NoamFav/Laundry/internal/store"
	"github.com/NoamFav/Laundry/internal/tasks"
)

// TestHouseholdLifecycle drives the full stack over a real database:
// login, chore completion, a washer cycle with a queued follow-up, and
// the history trail the actions leave behind.
func TestHouseholdLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	require.NoError(t, testDB.AutoMigrate(
		&model.Record{},
		&model.LaundryEvent{},
		&model.TaskEvent{},
		&model.PushSubscription{},
	))

	dir := directory.Default()
	appStore := store.NewGormStore(testDB)
	hist := history.NewRecorder(testDB)

	router := api.NewRouter(api.Deps{
		Directory: dir,
		Store:     appStore,
		Sessions:  session.NewManager(dir, []byte("integration-secret"), 0),
		Presence:  presence.NewService(appStore, dir),
		Tasks:     tasks.NewService(appStore, dir, hist),
		Laundry:   laundry.NewScheduler(appStore, dir, hist),
		History:   hist,
		DB:        testDB,
		WebPush: &webpush.Options{
			VAPIDPublicKey:  "test-public-key",
			VAPIDPrivateKey: "test-private-key",
			Subscriber:      "mailto:test@example.com",
		},
	}, api.RouterConfig{})

	do := func(method, path, token string, body any) *httptest.ResponseRecorder {
		var raw []byte
		if body != nil {
			raw, err = json.Marshal(body)
			require.NoError(t, err)
		}
		req := httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// --- Login two residents ---
	login := func(code string) string {
		w := do(http.MethodPost, "/api/login", "", gin.H{"code": code})
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.Token
	}
	giorgio := login("ALPHA-1001") // 1C
	lesli := login("BETA-1002")    // 2C

	// --- Kitchen chore: 1C holds the opening turn and completes it ---
	w := do(http.MethodPost, "/api/tasks/kitchens/lower/trash/complete", giorgio, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var kitchenState tasks.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &kitchenState))
	assert.Equal(t, "2C", kitchenState.CurrentRoom)
	require.NotNil(t, kitchenState.LastCompleted)
	require.NotNil(t, kitchenState.NextDue)
	assert.Equal(t, *kitchenState.LastCompleted+7*24*60*60*1000, *kitchenState.NextDue)

	// The record survives a fresh store over the same database.
	reread := store.NewGormStore(testDB)
	raw, err := reread.Read(context.Background(), "tasks/kitchens/lower/trash")
	require.NoError(t, err)
	var persisted tasks.State
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Equal(t, "2C", persisted.CurrentRoom)

	// --- Washer: 1C starts, 2C queues, then the cycle is cleared ---
	w = do(http.MethodPost, "/api/laundry/washer/request", giorgio, gin.H{"programId": "quick"})
	require.Equal(t, http.StatusOK, w.Code)

	var machine laundry.MachineState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &machine))
	assert.Equal(t, laundry.StatusRunning, machine.Status)
	assert.Equal(t, "1C", machine.CurrentUser)

	w = do(http.MethodPost, "/api/laundry/washer/request", lesli, gin.H{"programId": "normal"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &machine))
	require.Len(t, machine.Queue, 1)
	assert.Equal(t, "2C", machine.Queue[0].RoomID)

	w = do(http.MethodPost, "/api/laundry/washer/stop", giorgio, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &machine))
	assert.Equal(t, laundry.StatusDone, machine.Status)

	w = do(http.MethodPost, "/api/laundry/washer/stop", giorgio, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &machine))
	assert.Equal(t, laundry.StatusRunning, machine.Status)
	assert.Equal(t, "2C", machine.CurrentUser)
	assert.Empty(t, machine.Queue)

	// --- History recorded every step ---
	var laundryEvents []model.LaundryEvent
	require.NoError(t, testDB.Find(&laundryEvents).Error)
	actions := make([]string, len(laundryEvents))
	for i, e := range laundryEvents {
		actions[i] = e.Action
	}
	assert.ElementsMatch(t, []string{"started", "queued", "stopped", "promoted"}, actions)

	var taskEvents []model.TaskEvent
	require.NoError(t, testDB.Find(&taskEvents).Error)
	require.Len(t, taskEvents, 1)
	assert.Equal(t, "kitchens/lower", taskEvents[0].Facility)
	assert.Equal(t, "1C", taskEvents[0].RoomID)

	// --- Push subscription round-trip against the real table ---
	w = do(http.MethodPut, "/api/subscriptions", lesli, gin.H{
		"endpoint":  "https://push.example/lesli",
		"p256dh":    "key",
		"auth":      "auth",
		"appliance": "washer",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var sub model.PushSubscription
	require.NoError(t, testDB.First(&sub, "endpoint = ?", "https://push.example/lesli").Error)
	assert.Equal(t, "2C", sub.RoomID)

	w = do(http.MethodDelete, "/api/subscriptions", lesli, gin.H{
		"endpoint": "https://push.example/lesli",
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	var count int64
	require.NoError(t, testDB.Model(&model.PushSubscription{}).Count(&count).Error)
	assert.Zero(t, count)
}
