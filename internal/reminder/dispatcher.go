package reminder

import (
	"context"
	"fmt"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/robfig/cron/v3"
	"github.com/vcscsvcscs/healthscope/internal/repository"
	"github.com/vcscsvcscs/healthscope/pkg/model"
	"go.uber.org/zap"
)

// EveryMinute is the dispatcher schedule
const EveryMinute = "* * * * *"

// Pusher delivers one reminder to a device
type Pusher interface {
	Push(ctx context.Context, msg Message) error
}

// Observer receives one observation per push attempt
type Observer interface {
	ObserveReminder(kind, outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveReminder(string, string) {}

// Message is a push notification for a due reminder
type Message struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// MessageFor renders the notification for a due reminder
func MessageFor(r model.DueReminder) Message {
	msg := Message{
		To: r.PushToken,
		Data: map[string]string{
			"kind": string(r.Kind),
			"id":   r.RefID,
		},
	}
	switch r.Kind {
	case model.ReminderMedication:
		msg.Title = "Medication reminder"
		msg.Body = fmt.Sprintf("Time to take %s (%s)", r.Title, r.Time.Display())
	default:
		msg.Title = "Appointment reminder"
		msg.Body = fmt.Sprintf("%s at %s", r.Title, r.Time.Display())
	}
	return msg
}

// Dispatcher pushes reminders that fall due at the current local minute
type Dispatcher struct {
	source   repository.ReminderSource
	pusher   Pusher
	location *time.Location
	observer Observer
	now      func() time.Time
	cron     *cron.Cron
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher evaluating due times in loc. A nil observer disables metrics.
func NewDispatcher(source repository.ReminderSource, pusher Pusher, loc *time.Location, observer Observer, logger *zap.Logger) *Dispatcher {
	if observer == nil {
		observer = nopObserver{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Dispatcher{
		source:   source,
		pusher:   pusher,
		location: loc,
		observer: observer,
		now:      time.Now,
		logger:   logger,
	}
}

// Start schedules Tick every minute
func (d *Dispatcher) Start() error {
	c := cron.New(cron.WithLocation(d.location))
	if _, err := c.AddFunc(EveryMinute, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
		defer cancel()
		if _, err := d.Tick(ctx); err != nil {
			d.logger.Error("reminder tick failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}
	c.Start()
	d.cron = c

	d.logger.Info("reminder dispatcher started", zap.String("timezone", d.location.String()))
	return nil
}

// Stop waits for a running tick to finish or ctx to expire
func (d *Dispatcher) Stop(ctx context.Context) {
	if d.cron == nil {
		return
	}
	select {
	case <-d.cron.Stop().Done():
	case <-ctx.Done():
	}
	d.logger.Info("reminder dispatcher stopped")
}

// Tick pushes every reminder due now and returns how many were delivered.
// A failed push is logged and not retried.
func (d *Dispatcher) Tick(ctx context.Context) (int, error) {
	now := d.now().In(d.location)
	date := openapi_types.Date{Time: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)}
	at := model.ClockTimeOf(now)

	due, err := d.source.DueReminders(ctx, date, at)
	if err != nil {
		return 0, fmt.Errorf("failed to load due reminders: %w", err)
	}

	sent := 0
	for _, r := range due {
		if err := d.pusher.Push(ctx, MessageFor(r)); err != nil {
			d.observer.ObserveReminder(string(r.Kind), "failed")
			d.logger.Error("failed to push reminder",
				zap.Error(err),
				zap.String("user_id", r.UserID),
				zap.String("kind", string(r.Kind)),
				zap.String("ref_id", r.RefID),
			)
			continue
		}
		d.observer.ObserveReminder(string(r.Kind), "sent")
		sent++
	}

	if len(due) > 0 {
		d.logger.Info("reminders dispatched",
			zap.String("date", date.String()),
			zap.String("time", at.String()),
			zap.Int("due", len(due)),
			zap.Int("sent", sent),
		)
	}
	return sent, nil
}
