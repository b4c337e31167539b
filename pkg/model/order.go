package model

import "sort"

// SortAppointments orders appointments by date, then time, then title
func SortAppointments(list []Appointment) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.Date.Time.Equal(b.Date.Time) {
			return a.Date.Time.Before(b.Date.Time)
		}
		if a.Time != b.Time {
			return a.Time.Minutes() < b.Time.Minutes()
		}
		return a.Title < b.Title
	})
}

// SortMedications orders reminders by time of day, then name
func SortMedications(list []MedicationReminder) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Time != list[j].Time {
			return list[i].Time.Minutes() < list[j].Time.Minutes()
		}
		return list[i].Name < list[j].Name
	})
}
