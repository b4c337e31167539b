// Package reminder covers push notification permission on the device side and
// delivery of due medication and appointment reminders on the server side.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Advisory shown once when notification permission is denied
const (
	PermissionTitle = "Permission required"
	PermissionBody  = "Enable notification permissions to receive reminders."
)

// PermissionState is the lifecycle of the notification permission prompt
type PermissionState int

const (
	StateUnrequested PermissionState = iota
	StateRequesting
	StateGranted
	StateDenied
)

func (s PermissionState) String() string {
	switch s {
	case StateUnrequested:
		return "unrequested"
	case StateRequesting:
		return "requesting"
	case StateGranted:
		return "granted"
	case StateDenied:
		return "denied"
	default:
		return fmt.Sprintf("PermissionState(%d)", int(s))
	}
}

// AuthorizationStatus is the platform's answer to a permission request
type AuthorizationStatus int

const (
	StatusNotDetermined AuthorizationStatus = iota
	StatusDenied
	StatusAuthorized
	StatusProvisional
)

// Enabled reports whether notifications may be delivered
func (s AuthorizationStatus) Enabled() bool {
	return s == StatusAuthorized || s == StatusProvisional
}

// Messaging is the device push messaging service
type Messaging interface {
	RequestPermission(ctx context.Context) (AuthorizationStatus, error)
	Token(ctx context.Context) (string, error)
}

// TokenRegistrar persists the device push token for the signed-in user
type TokenRegistrar interface {
	RegisterDeviceToken(ctx context.Context, token string) error
}

// Alerter shows a modal alert to the user
type Alerter interface {
	Alert(title, body string)
}

// Notification is a message received while the app is in the foreground
type Notification struct {
	Title string
	Body  string
}

// ErrAlreadyMounted is returned when Mount is called more than once
var ErrAlreadyMounted = errors.New("permission flow already mounted")

// PermissionFlow requests notification permission once per mount and
// registers the device token when granted
type PermissionFlow struct {
	mu        sync.Mutex
	state     PermissionState
	messaging Messaging
	registrar TokenRegistrar
	alerter   Alerter
	logger    *zap.Logger
}

// NewPermissionFlow creates a flow in StateUnrequested
func NewPermissionFlow(messaging Messaging, registrar TokenRegistrar, alerter Alerter, logger *zap.Logger) *PermissionFlow {
	return &PermissionFlow{
		state:     StateUnrequested,
		messaging: messaging,
		registrar: registrar,
		alerter:   alerter,
		logger:    logger,
	}
}

// State returns the current state
func (f *PermissionFlow) State() PermissionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *PermissionFlow) setState(s PermissionState) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// Mount asks for permission. On grant the device token is registered; on denial or
// a failed request the advisory is shown once and the user is never prompted again.
// A token registration failure is returned but leaves the flow granted.
func (f *PermissionFlow) Mount(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateUnrequested {
		f.mu.Unlock()
		return ErrAlreadyMounted
	}
	f.state = StateRequesting
	f.mu.Unlock()

	status, err := f.messaging.RequestPermission(ctx)
	if err != nil {
		f.logger.Warn("notification permission request failed", zap.Error(err))
	}
	if err != nil || !status.Enabled() {
		f.setState(StateDenied)
		f.alerter.Alert(PermissionTitle, PermissionBody)
		return nil
	}

	f.setState(StateGranted)

	token, err := f.messaging.Token(ctx)
	if err != nil {
		f.logger.Error("failed to fetch device token", zap.Error(err))
		return fmt.Errorf("failed to fetch device token: %w", err)
	}
	if token == "" {
		return nil
	}
	if err := f.registrar.RegisterDeviceToken(ctx, token); err != nil {
		f.logger.Error("failed to register device token", zap.Error(err))
		return fmt.Errorf("failed to register device token: %w", err)
	}

	f.logger.Info("device token registered")
	return nil
}

// HandleForeground alerts the user with an incoming message. Messages are dropped
// unless permission was granted; nothing is queued.
func (f *PermissionFlow) HandleForeground(n Notification) bool {
	if f.State() != StateGranted {
		return false
	}
	f.alerter.Alert(n.Title, n.Body)
	return true
}
