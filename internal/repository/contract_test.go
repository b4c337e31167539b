package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/healthscope/internal/apperr"
	"github.com/vcscsvcscs/healthscope/pkg/model"
)

func date(y int, m time.Month, d int) openapi_types.Date {
	return openapi_types.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func strPtr(s string) *string { return &s }

// testStoreContract exercises the behaviour every Store backend must share
func testStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("create then list returns the created appointment", func(t *testing.T) {
		store := newStore(t)
		userID := "user-" + uuid.NewString()

		id, err := store.CreateAppointment(ctx, userID, model.Appointment{
			Title: "Dentist",
			Date:  date(2026, 3, 14),
			Time:  model.ClockTime{Hour: 15, Minute: 30},
		})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		list, err := store.ListAppointments(ctx, userID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, id, list[0].ID)
		assert.Equal(t, "Dentist", list[0].Title)
		assert.Equal(t, "2026-03-14", list[0].Date.String())
		assert.Equal(t, model.ClockTime{Hour: 15, Minute: 30}, list[0].Time)
	})

	t.Run("update keeps the id", func(t *testing.T) {
		store := newStore(t)
		userID := "user-" + uuid.NewString()

		id, err := store.CreateAppointment(ctx, userID, model.Appointment{Title: "Checkup", Date: date(2026, 1, 2), Time: model.ClockTime{Hour: 9, Minute: 0}})
		require.NoError(t, err)

		err = store.UpdateAppointment(ctx, userID, model.Appointment{ID: id, Title: "Annual checkup", Date: date(2026, 1, 3), Time: model.ClockTime{Hour: 10, Minute: 15}})
		require.NoError(t, err)

		list, err := store.ListAppointments(ctx, userID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, id, list[0].ID)
		assert.Equal(t, "Annual checkup", list[0].Title)
		assert.Equal(t, model.ClockTime{Hour: 10, Minute: 15}, list[0].Time)
	})

	t.Run("foreign or missing ids are not found", func(t *testing.T) {
		store := newStore(t)
		owner := "owner-" + uuid.NewString()
		other := "other-" + uuid.NewString()

		id, err := store.CreateAppointment(ctx, owner, model.Appointment{Title: "Physio", Date: date(2026, 5, 1), Time: model.ClockTime{Hour: 8, Minute: 0}})
		require.NoError(t, err)

		err = store.UpdateAppointment(ctx, other, model.Appointment{ID: id, Title: "hijack", Date: date(2026, 5, 1), Time: model.ClockTime{Hour: 8, Minute: 0}})
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

		err = store.DeleteAppointment(ctx, other, id)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

		err = store.DeleteAppointment(ctx, owner, uuid.NewString())
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

		err = store.UpdateMedication(ctx, owner, model.MedicationReminder{ID: "not-a-uuid", Name: "x"})
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

		list, err := store.ListAppointments(ctx, other)
		require.NoError(t, err)
		assert.Empty(t, list)

		require.NoError(t, store.DeleteAppointment(ctx, owner, id))
		list, err = store.ListAppointments(ctx, owner)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("medication reminders support full crud", func(t *testing.T) {
		store := newStore(t)
		userID := "user-" + uuid.NewString()

		id, err := store.CreateMedication(ctx, userID, model.MedicationReminder{Name: "Metformin", Time: model.ClockTime{Hour: 8, Minute: 0}})
		require.NoError(t, err)

		require.NoError(t, store.UpdateMedication(ctx, userID, model.MedicationReminder{ID: id, Name: "Metformin 500mg", Time: model.ClockTime{Hour: 20, Minute: 0}}))

		list, err := store.ListMedications(ctx, userID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, id, list[0].ID)
		assert.Equal(t, "Metformin 500mg", list[0].Name)
		assert.Equal(t, model.ClockTime{Hour: 20, Minute: 0}, list[0].Time)

		require.NoError(t, store.DeleteMedication(ctx, userID, id))
		list, err = store.ListMedications(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("profile merge and push token never clobber each other", func(t *testing.T) {
		store := newStore(t)
		userID := "user-" + uuid.NewString()

		empty, err := store.GetProfile(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, model.UserProfile{}, empty)

		age := 29
		_, err = store.MergeProfile(ctx, userID, model.UserProfile{Name: strPtr("Priya"), Age: &age})
		require.NoError(t, err)

		require.NoError(t, store.UpsertPushToken(ctx, userID, "token-1"))

		merged, err := store.MergeProfile(ctx, userID, model.UserProfile{BloodType: strPtr("B+")})
		require.NoError(t, err)
		require.NotNil(t, merged.Name)
		assert.Equal(t, "Priya", *merged.Name)
		assert.Equal(t, 29, *merged.Age)
		assert.Equal(t, "B+", *merged.BloodType)

		_, err = store.CreateMedication(ctx, userID, model.MedicationReminder{Name: "Vitamin D", Time: model.ClockTime{Hour: 7, Minute: 45}})
		require.NoError(t, err)

		due, err := store.DueReminders(ctx, date(2026, 1, 1), model.ClockTime{Hour: 7, Minute: 45})
		require.NoError(t, err)
		var found bool
		for _, r := range due {
			if r.UserID == userID {
				found = true
				assert.Equal(t, "token-1", r.PushToken)
			}
		}
		assert.True(t, found, "profile merge must not drop the push token")
	})

	t.Run("due reminders match date and minute", func(t *testing.T) {
		store := newStore(t)
		userID := "user-" + uuid.NewString()
		silent := "silent-" + uuid.NewString()

		require.NoError(t, store.UpsertPushToken(ctx, userID, "device-abc"))
		_, err := store.CreateMedication(ctx, userID, model.MedicationReminder{Name: "Aspirin", Time: model.ClockTime{Hour: 21, Minute: 0}})
		require.NoError(t, err)
		_, err = store.CreateMedication(ctx, userID, model.MedicationReminder{Name: "Later", Time: model.ClockTime{Hour: 21, Minute: 1}})
		require.NoError(t, err)
		_, err = store.CreateAppointment(ctx, userID, model.Appointment{Title: "Cardiology", Date: date(2026, 2, 10), Time: model.ClockTime{Hour: 21, Minute: 0}})
		require.NoError(t, err)
		_, err = store.CreateAppointment(ctx, userID, model.Appointment{Title: "Other day", Date: date(2026, 2, 11), Time: model.ClockTime{Hour: 21, Minute: 0}})
		require.NoError(t, err)
		_, err = store.CreateMedication(ctx, silent, model.MedicationReminder{Name: "No token", Time: model.ClockTime{Hour: 21, Minute: 0}})
		require.NoError(t, err)

		due, err := store.DueReminders(ctx, date(2026, 2, 10), model.ClockTime{Hour: 21, Minute: 0})
		require.NoError(t, err)

		titles := map[string]model.ReminderKind{}
		for _, r := range due {
			if r.UserID == silent {
				t.Fatalf("user without a push token must not be reminded")
			}
			if r.UserID == userID {
				titles[r.Title] = r.Kind
				assert.Equal(t, "device-abc", r.PushToken)
			}
		}
		assert.Equal(t, map[string]model.ReminderKind{
			"Aspirin":    model.ReminderMedication,
			"Cardiology": model.ReminderAppointment,
		}, titles)
	})
	t.Run("deleting user data leaves other users alone", func(t *testing.T) {
		store := newStore(t)
		gone := "gone-" + uuid.NewString()
		kept := gone + "0"

		for _, userID := range []string{gone, kept} {
			require.NoError(t, store.UpsertPushToken(ctx, userID, "token-"+userID))
			_, err := store.MergeProfile(ctx, userID, model.UserProfile{Name: strPtr("Asha")})
			require.NoError(t, err)
			_, err = store.CreateMedication(ctx, userID, model.MedicationReminder{Name: "Iron", Time: model.ClockTime{Hour: 6, Minute: 10}})
			require.NoError(t, err)
			_, err = store.CreateAppointment(ctx, userID, model.Appointment{Title: "Scan", Date: date(2026, 4, 4), Time: model.ClockTime{Hour: 6, Minute: 10}})
			require.NoError(t, err)
		}

		require.NoError(t, store.DeleteUserData(ctx, gone))
		require.NoError(t, store.DeleteUserData(ctx, gone), "erasing twice is not an error")

		profile, err := store.GetProfile(ctx, gone)
		require.NoError(t, err)
		assert.Equal(t, model.UserProfile{}, profile)
		meds, err := store.ListMedications(ctx, gone)
		require.NoError(t, err)
		assert.Empty(t, meds)
		appts, err := store.ListAppointments(ctx, gone)
		require.NoError(t, err)
		assert.Empty(t, appts)

		meds, err = store.ListMedications(ctx, kept)
		require.NoError(t, err)
		assert.Len(t, meds, 1)
		profile, err = store.GetProfile(ctx, kept)
		require.NoError(t, err)
		require.NotNil(t, profile.Name)

		due, err := store.DueReminders(ctx, date(2026, 4, 4), model.ClockTime{Hour: 6, Minute: 10})
		require.NoError(t, err)
		for _, r := range due {
			assert.NotEqual(t, gone, r.UserID)
		}
	})
}
