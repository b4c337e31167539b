package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/vcscsvcscs/healthscope/internal/apperr"
	"github.com/vcscsvcscs/healthscope/pkg/model"
	"go.uber.org/zap"
)

// Key layout:
//
//	users/{uid}                     userRecord
//	users/{uid}/appointments/{id}   model.Appointment
//	users/{uid}/medications/{id}    model.MedicationReminder
const (
	usersPrefix       = "users/"
	appointmentsChild = "appointments"
	medicationsChild  = "medications"
)

type userRecord struct {
	Profile   model.UserProfile `json:"profile"`
	PushToken string            `json:"pushToken,omitempty"`
}

// BadgerStore implements Store on an embedded badger database
type BadgerStore struct {
	db     *badger.DB
	logger *zap.Logger
}

// OpenBadger opens (or creates) a badger database in dir
func OpenBadger(dir string, logger *zap.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).
		WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	return NewBadgerStore(db, logger), nil
}

// NewBadgerStore wraps an open badger database
func NewBadgerStore(db *badger.DB, logger *zap.Logger) *BadgerStore {
	return &BadgerStore{
		db:     db,
		logger: logger,
	}
}

// Ping reports whether the database is still open
func (s *BadgerStore) Ping(context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

// Close closes the database. Closing twice is a no-op.
func (s *BadgerStore) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

func userKey(userID string) []byte {
	return []byte(usersPrefix + url.PathEscape(userID))
}

func childPrefix(userID, child string) []byte {
	return []byte(usersPrefix + url.PathEscape(userID) + "/" + child + "/")
}

func childKey(userID, child, id string) []byte {
	return append(childPrefix(userID, child), url.PathEscape(id)...)
}

// listChildren decodes every value under a user's child collection
func listChildren[T any](db *badger.DB, prefix []byte) ([]T, error) {
	items := []T{}
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var v T
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &v)
			}); err != nil {
				return err
			}
			items = append(items, v)
		}
		return nil
	})
	return items, err
}

func putJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// replaceExisting overwrites key only when it already exists
func replaceExisting(db *badger.DB, key []byte, v any, notFound string) error {
	return db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperr.NotFound(notFound)
			}
			return err
		}
		return putJSON(txn, key, v)
	})
}

func deleteExisting(db *badger.DB, key []byte, notFound string) error {
	return db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperr.NotFound(notFound)
			}
			return err
		}
		return txn.Delete(key)
	})
}

// storeErr passes apperr values through and wraps anything else as a store failure
func (s *BadgerStore) storeErr(msg string, err error, fields ...zap.Field) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	s.logger.Error(msg, append(fields, zap.Error(err))...)
	return apperr.Store(msg, err)
}

func (s *BadgerStore) ListAppointments(ctx context.Context, userID string) ([]model.Appointment, error) {
	appointments, err := listChildren[model.Appointment](s.db, childPrefix(userID, appointmentsChild))
	if err != nil {
		return nil, s.storeErr("failed to list appointments", err, zap.String("user_id", userID))
	}
	for i := range appointments {
		appointments[i].UserID = userID
	}
	return appointments, nil
}

func (s *BadgerStore) CreateAppointment(ctx context.Context, userID string, appt model.Appointment) (string, error) {
	appt.ID = uuid.NewString()
	err := s.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, childKey(userID, appointmentsChild, appt.ID), appt)
	})
	if err != nil {
		return "", s.storeErr("failed to create appointment", err, zap.String("user_id", userID))
	}
	return appt.ID, nil
}

func (s *BadgerStore) UpdateAppointment(ctx context.Context, userID string, appt model.Appointment) error {
	err := replaceExisting(s.db, childKey(userID, appointmentsChild, appt.ID), appt, "appointment not found")
	return s.storeErr("failed to update appointment", err, zap.String("appointment_id", appt.ID))
}

func (s *BadgerStore) DeleteAppointment(ctx context.Context, userID, id string) error {
	err := deleteExisting(s.db, childKey(userID, appointmentsChild, id), "appointment not found")
	return s.storeErr("failed to delete appointment", err, zap.String("appointment_id", id))
}

func (s *BadgerStore) ListMedications(ctx context.Context, userID string) ([]model.MedicationReminder, error) {
	medications, err := listChildren[model.MedicationReminder](s.db, childPrefix(userID, medicationsChild))
	if err != nil {
		return nil, s.storeErr("failed to list medications", err, zap.String("user_id", userID))
	}
	for i := range medications {
		medications[i].UserID = userID
	}
	return medications, nil
}

func (s *BadgerStore) CreateMedication(ctx context.Context, userID string, med model.MedicationReminder) (string, error) {
	med.ID = uuid.NewString()
	err := s.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, childKey(userID, medicationsChild, med.ID), med)
	})
	if err != nil {
		return "", s.storeErr("failed to create medication", err, zap.String("user_id", userID))
	}
	return med.ID, nil
}

func (s *BadgerStore) UpdateMedication(ctx context.Context, userID string, med model.MedicationReminder) error {
	err := replaceExisting(s.db, childKey(userID, medicationsChild, med.ID), med, "medication not found")
	return s.storeErr("failed to update medication", err, zap.String("medication_id", med.ID))
}

func (s *BadgerStore) DeleteMedication(ctx context.Context, userID, id string) error {
	err := deleteExisting(s.db, childKey(userID, medicationsChild, id), "medication not found")
	return s.storeErr("failed to delete medication", err, zap.String("medication_id", id))
}

func getUser(txn *badger.Txn, userID string) (userRecord, error) {
	var rec userRecord
	item, err := txn.Get(userKey(userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return rec, nil
	}
	if err != nil {
		return rec, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	return rec, err
}

func (s *BadgerStore) GetProfile(ctx context.Context, userID string) (model.UserProfile, error) {
	var rec userRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = getUser(txn, userID)
		return err
	})
	if err != nil {
		return model.UserProfile{}, s.storeErr("failed to load profile", err, zap.String("user_id", userID))
	}
	return rec.Profile, nil
}

func (s *BadgerStore) MergeProfile(ctx context.Context, userID string, patch model.UserProfile) (model.UserProfile, error) {
	var merged model.UserProfile
	err := s.db.Update(func(txn *badger.Txn) error {
		rec, err := getUser(txn, userID)
		if err != nil {
			return err
		}
		rec.Profile = rec.Profile.Merge(patch)
		merged = rec.Profile
		return putJSON(txn, userKey(userID), rec)
	})
	if err != nil {
		return model.UserProfile{}, s.storeErr("failed to save profile", err, zap.String("user_id", userID))
	}
	return merged, nil
}

func (s *BadgerStore) UpsertPushToken(ctx context.Context, userID, token string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		rec, err := getUser(txn, userID)
		if err != nil {
			return err
		}
		rec.PushToken = token
		return putJSON(txn, userKey(userID), rec)
	})
	return s.storeErr("failed to save device token", err, zap.String("user_id", userID))
}

// DeleteUserData removes the user record and every key below it
func (s *BadgerStore) DeleteUserData(ctx context.Context, userID string) error {
	prefix := []byte(usersPrefix + url.PathEscape(userID) + "/")
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		keys = append(keys, userKey(userID))
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	return s.storeErr("failed to delete user data", err, zap.String("user_id", userID))
}

// DueReminders scans every user. Keys sort so that a user record precedes its children.
func (s *BadgerStore) DueReminders(ctx context.Context, date openapi_types.Date, at model.ClockTime) ([]model.DueReminder, error) {
	var due []model.DueReminder
	day := date.String()

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		tokens := map[string]string{}
		prefix := []byte(usersPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			parts := strings.Split(strings.TrimPrefix(string(item.Key()), usersPrefix), "/")
			userID, err := url.PathUnescape(parts[0])
			if err != nil {
				continue
			}

			switch {
			case len(parts) == 1:
				var rec userRecord
				if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
					return err
				}
				if rec.PushToken != "" {
					tokens[userID] = rec.PushToken
				}

			case len(parts) == 3 && parts[1] == medicationsChild:
				token, ok := tokens[userID]
				if !ok {
					continue
				}
				var med model.MedicationReminder
				if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &med) }); err != nil {
					return err
				}
				if med.Time == at {
					due = append(due, model.DueReminder{
						UserID: userID, PushToken: token, Kind: model.ReminderMedication,
						RefID: med.ID, Title: med.Name, Time: at,
					})
				}

			case len(parts) == 3 && parts[1] == appointmentsChild:
				token, ok := tokens[userID]
				if !ok {
					continue
				}
				var appt model.Appointment
				if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &appt) }); err != nil {
					return err
				}
				if appt.Time == at && appt.Date.String() == day {
					due = append(due, model.DueReminder{
						UserID: userID, PushToken: token, Kind: model.ReminderAppointment,
						RefID: appt.ID, Title: appt.Title, Time: at,
					})
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.storeErr("failed to query due reminders", err, zap.String("at", at.String()))
	}
	return due, nil
}
