package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/healthscope/internal/repository"
	"github.com/vcscsvcscs/healthscope/pkg/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakePusher struct {
	mu   sync.Mutex
	msgs []Message
	fail map[string]bool
}

func (p *fakePusher) Push(_ context.Context, msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail[msg.To] {
		return errors.New("device unreachable")
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

type countingObserver struct {
	counts map[string]int
}

func (o *countingObserver) ObserveReminder(kind, outcome string) {
	o.counts[kind+"/"+outcome]++
}

func seedStore(t *testing.T) repository.Store {
	t.Helper()
	store, err := repository.OpenBadger(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.UpsertPushToken(ctx, "asha", "token-asha"))
	require.NoError(t, store.UpsertPushToken(ctx, "ravi", "token-ravi"))

	_, err = store.CreateMedication(ctx, "asha", model.MedicationReminder{Name: "Metformin", Time: model.ClockTime{Hour: 8, Minute: 0}})
	require.NoError(t, err)
	_, err = store.CreateMedication(ctx, "ravi", model.MedicationReminder{Name: "Vitamin D", Time: model.ClockTime{Hour: 8, Minute: 0}})
	require.NoError(t, err)
	_, err = store.CreateMedication(ctx, "asha", model.MedicationReminder{Name: "Iron", Time: model.ClockTime{Hour: 20, Minute: 0}})
	require.NoError(t, err)
	_, err = store.CreateAppointment(ctx, "asha", model.Appointment{
		Title: "Gynecologist",
		Date:  openapi_types.Date{Time: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)},
		Time:  model.ClockTime{Hour: 8, Minute: 0},
	})
	require.NoError(t, err)
	// no push token, never notified
	_, err = store.CreateMedication(ctx, "mona", model.MedicationReminder{Name: "Aspirin", Time: model.ClockTime{Hour: 8, Minute: 0}})
	require.NoError(t, err)
	return store
}

func TestDispatcher_TickPushesDueReminders(t *testing.T) {
	// Arrange
	store := seedStore(t)
	pusher := &fakePusher{}
	obs := &countingObserver{counts: map[string]int{}}
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	d := NewDispatcher(store, pusher, loc, obs, zap.NewNop())
	// 02:30 UTC is 08:00 in Kolkata
	d.now = func() time.Time { return time.Date(2026, 3, 14, 2, 30, 20, 0, time.UTC) }

	// Act
	sent, err := d.Tick(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	bodies := map[string]bool{}
	for _, m := range pusher.msgs {
		bodies[m.To+": "+m.Body] = true
	}
	assert.True(t, bodies["token-asha: Time to take Metformin (8:00 AM)"])
	assert.True(t, bodies["token-ravi: Time to take Vitamin D (8:00 AM)"])
	assert.True(t, bodies["token-asha: Gynecologist at 8:00 AM"])
	assert.Equal(t, 2, obs.counts["medication/sent"])
	assert.Equal(t, 1, obs.counts["appointment/sent"])
}

func TestDispatcher_FailedPushIsLoggedNotRetried(t *testing.T) {
	store := seedStore(t)
	pusher := &fakePusher{fail: map[string]bool{"token-ravi": true}}
	core, logs := observer.New(zapcore.ErrorLevel)
	d := NewDispatcher(store, pusher, time.UTC, nil, zap.New(core))
	d.now = func() time.Time { return time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC) }

	sent, err := d.Tick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, 1, logs.FilterMessage("failed to push reminder").Len())
}

func TestDispatcher_NothingDue(t *testing.T) {
	store := seedStore(t)
	pusher := &fakePusher{}
	d := NewDispatcher(store, pusher, time.UTC, nil, zap.NewNop())
	d.now = func() time.Time { return time.Date(2026, 3, 14, 13, 37, 0, 0, time.UTC) }

	sent, err := d.Tick(context.Background())

	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, pusher.msgs)
}

func TestDispatcher_StartStop(t *testing.T) {
	d := NewDispatcher(seedStore(t), &fakePusher{}, time.UTC, nil, zap.NewNop())

	require.NoError(t, d.Start())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	d.Stop(ctx)
}

func TestWebhookPusher(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	msg := MessageFor(model.DueReminder{
		PushToken: "ExponentPushToken[abc]",
		Kind:      model.ReminderMedication,
		RefID:     "m-1",
		Title:     "Metformin",
		Time:      model.ClockTime{Hour: 21, Minute: 5},
	})
	err := NewWebhookPusher(srv.URL, srv.Client(), zap.NewNop()).Push(context.Background(), msg)

	require.NoError(t, err)
	assert.Equal(t, "ExponentPushToken[abc]", got.To)
	assert.Equal(t, "Time to take Metformin (9:05 PM)", got.Body)
	assert.Equal(t, map[string]string{"kind": "medication", "id": "m-1"}, got.Data)
}

func TestWebhookPusher_Non2xxIsError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewWebhookPusher(srv.URL, nil, zap.NewNop()).Push(context.Background(), Message{To: "t"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, 1, calls)
}
