package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pingwards-backend/application/ports"
	"pingwards-backend/application/services"
	"pingwards-backend/domain/core/entities"
	"pingwards-backend/domain/core/valueobjects"
	"pingwards-backend/domain/events"
	"pingwards-backend/infrastructure/config"
	"pingwards-backend/infrastructure/di"
	"pingwards-backend/infrastructure/notifications/local"
	"pingwards-backend/interfaces/http/rest"
	"pingwards-backend/pkg/auth"
	pkgerrors "pingwards-backend/pkg/errors"
	"pingwards-backend/pkg/observability"
)

const testJWTSecret = "integration-test-secret"

// memoryRepo backs the full stack in place of DynamoDB
type memoryRepo struct {
	mu    sync.Mutex
	items map[string]*entities.Reminder
}

func (r *memoryRepo) Create(ctx context.Context, reminder *entities.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := reminder.ID().String()
	if _, exists := r.items[key]; exists {
		return pkgerrors.NewConflictError("reminder already exists")
	}
	r.items[key] = reminder
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id valueobjects.ReminderID) (*entities.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reminder, ok := r.items[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("reminder")
	}
	return reminder, nil
}

func (r *memoryRepo) Update(ctx context.Context, id valueobjects.ReminderID, changes ports.ReminderChanges) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reminder, ok := r.items[id.String()]
	if !ok {
		return pkgerrors.NewNotFoundError("reminder")
	}

	text := reminder.Text()
	if changes.Text != nil {
		t, err := valueobjects.NewReminderText(*changes.Text)
		if err != nil {
			return err
		}
		text = t
	}
	notificationDate := reminder.NotificationDate()
	if changes.NotificationDate != nil {
		nd, err := valueobjects.NewNotificationTime(*changes.NotificationDate)
		if err != nil {
			return err
		}
		notificationDate = nd
	}
	completed := reminder.Completed()
	if changes.Completed != nil {
		completed = *changes.Completed
	}
	completedAt := reminder.CompletedAt()
	if changes.CompletedAt != nil {
		completedAt = changes.CompletedAt
	}
	if changes.ClearCompletedAt {
		completedAt = nil
	}
	metadata := entities.Metadata{
		Category: reminder.Category(),
		Priority: reminder.Priority(),
		Tags:     reminder.Tags(),
	}
	if changes.Category != nil {
		metadata.Category = *changes.Category
	}
	if changes.Priority != nil {
		metadata.Priority = *changes.Priority
	}
	if changes.Tags != nil {
		metadata.Tags = *changes.Tags
	}
	notificationID := reminder.NotificationID()
	if changes.NotificationID != nil {
		notificationID = *changes.NotificationID
	}

	updated, err := entities.ReconstructReminder(
		reminder.ID(), reminder.UserID(), text, reminder.CreatedDate(),
		notificationDate, completed, completedAt, metadata, notificationID,
	)
	if err != nil {
		return err
	}
	r.items[id.String()] = updated
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id valueobjects.ReminderID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id.String())
	return nil
}

func (r *memoryRepo) ListByUser(ctx context.Context, userID string) ([]*entities.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Reminder
	for _, reminder := range r.items {
		if reminder.UserID() == userID {
			out = append(out, reminder)
		}
	}
	return out, nil
}

func (r *memoryRepo) ListScheduled(ctx context.Context) ([]*entities.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Reminder
	for _, reminder := range r.items {
		if reminder.NotificationID() != "" {
			out = append(out, reminder)
		}
	}
	return out, nil
}

type nopEventBus struct{}

func (nopEventBus) Publish(ctx context.Context, event events.DomainEvent) error { return nil }
func (nopEventBus) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	return nil
}

type testEnv struct {
	server    *httptest.Server
	scheduler *local.Scheduler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	cfg := &config.Config{
		Environment:      "test",
		SchedulerBackend: "local",
		JWTSecret:        testJWTSecret,
		JWTIssuer:        "pingwards-backend",
	}

	repo := &memoryRepo{items: make(map[string]*entities.Reminder)}
	scheduler := local.NewScheduler(logger)
	service := services.NewReminderLifecycleService(
		repo,
		scheduler,
		nopEventBus{},
		nil,
		logger,
		observability.NewMetrics("Test", nil),
		observability.NewTracer("test", false),
	)

	cache := di.ProvideInMemoryCache()
	commandBus := di.ProvideCommandBus(service)
	queryBus := di.ProvideQueryBus(repo, scheduler, cache, logger)

	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: testJWTSecret,
		Issuer:    "pingwards-backend",
	})
	require.NoError(t, err)

	router := rest.NewRouter(cfg, commandBus, queryBus, cache, service, validator, logger)
	server := httptest.NewServer(router.Setup())
	t.Cleanup(server.Close)

	return &testEnv{server: server, scheduler: scheduler}
}

func signToken(t *testing.T, userID string) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"iss": "pingwards-backend",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

type reminderResp struct {
	ID               string    `json:"id"`
	Text             string    `json:"text"`
	NotificationDate time.Time `json:"notificationDate"`
	Completed        bool      `json:"completed"`
	Category         string    `json:"category"`
	Priority         string    `json:"priority"`
	NotificationID   string    `json:"notificationId"`
}

func decode(t *testing.T, resp *http.Response, into interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func TestReminderLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, "user123")
	fireAt := time.Now().Add(2 * time.Hour).Truncate(time.Second)

	// create
	resp := env.do(t, http.MethodPost, "/api/v1/reminders", token, map[string]interface{}{
		"text":             "pay the electricity bill",
		"notificationDate": fireAt.Format(time.RFC3339),
		"priority":         "High",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created reminderResp
	decode(t, resp, &created)
	assert.Equal(t, "pay the electricity bill", created.Text)
	assert.Equal(t, "High", created.Priority)
	assert.Equal(t, "General", created.Category)
	assert.NotEmpty(t, created.NotificationID)

	// list
	resp = env.do(t, http.MethodGet, "/api/v1/reminders", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []reminderResp
	decode(t, resp, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	// reschedule: the notification is reissued under a new id
	newDate := fireAt.Add(24 * time.Hour)
	resp = env.do(t, http.MethodPatch, "/api/v1/reminders/"+created.ID, token, map[string]interface{}{
		"notificationDate": newDate.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated reminderResp
	decode(t, resp, &updated)
	assert.NotEmpty(t, updated.NotificationID)
	assert.NotEqual(t, created.NotificationID, updated.NotificationID)

	// complete: pending queue drains
	resp = env.do(t, http.MethodPost, "/api/v1/reminders/"+created.ID+"/toggle-complete", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var completed reminderResp
	decode(t, resp, &completed)
	assert.True(t, completed.Completed)
	assert.Empty(t, completed.NotificationID)

	pending, err := env.scheduler.ListPending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)

	// reopen: a fresh notification appears
	resp = env.do(t, http.MethodPost, "/api/v1/reminders/"+created.ID+"/toggle-complete", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reopened reminderResp
	decode(t, resp, &reopened)
	assert.False(t, reopened.Completed)
	assert.NotEmpty(t, reopened.NotificationID)

	// snooze pushes the delivery time forward
	resp = env.do(t, http.MethodPost, "/api/v1/reminders/"+created.ID+"/snooze", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snoozed reminderResp
	decode(t, resp, &snoozed)
	assert.WithinDuration(t, newDate.Add(10*time.Minute), snoozed.NotificationDate, time.Second)

	// delete, then the record is gone
	resp = env.do(t, http.MethodDelete, "/api/v1/reminders/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/reminders/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	pending, err = env.scheduler.ListPending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestAuthenticationRequired(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/v1/reminders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/reminders", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// health stays open
	resp = env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRemindersAreScopedToTheirOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := signToken(t, "owner")
	intruder := signToken(t, "intruder")

	resp := env.do(t, http.MethodPost, "/api/v1/reminders", owner, map[string]interface{}{
		"text":             "private note",
		"notificationDate": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created reminderResp
	decode(t, resp, &created)

	// another user's reads and writes see nothing
	resp = env.do(t, http.MethodGet, "/api/v1/reminders/"+created.ID, intruder, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/reminders/"+created.ID+"/toggle-complete", intruder, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/reminders", intruder, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []reminderResp
	decode(t, resp, &listed)
	assert.Empty(t, listed)
}

func TestPendingNotificationsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, "user123")
	now := time.Now()

	for _, offset := range []time.Duration{3 * time.Hour, time.Hour} {
		resp := env.do(t, http.MethodPost, "/api/v1/reminders", token, map[string]interface{}{
			"text":             "staggered",
			"notificationDate": now.Add(offset).Format(time.RFC3339),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := env.do(t, http.MethodGet, "/api/v1/notifications/pending", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pending []struct {
		ID     string    `json:"id"`
		Title  string    `json:"title"`
		FireAt time.Time `json:"fireAt"`
	}
	decode(t, resp, &pending)
	require.Len(t, pending, 2)
	assert.Equal(t, "PingWards Reminder", pending[0].Title)
	assert.True(t, pending[0].FireAt.Before(pending[1].FireAt))

	// logout wipes the queue
	resp = env.do(t, http.MethodDelete, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/notifications/pending", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pending = pending[:0]
	decode(t, resp, &pending)
	assert.Empty(t, pending)
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, "user123")

	// missing text
	resp := env.do(t, http.MethodPost, "/api/v1/reminders", token, map[string]interface{}{
		"notificationDate": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// unparseable date
	resp = env.do(t, http.MethodPost, "/api/v1/reminders", token, map[string]interface{}{
		"text":             "bad date",
		"notificationDate": "next tuesday",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// unknown priority
	resp = env.do(t, http.MethodPost, "/api/v1/reminders", token, map[string]interface{}{
		"text":             "bad priority",
		"notificationDate": time.Now().Add(time.Hour).Format(time.RFC3339),
		"priority":         "Urgent",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
