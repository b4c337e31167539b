package model

import (
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// TimestampLayout is the format of every envelope timestamp (RFC 3339, UTC, milliseconds)
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// VitalsReading holds the optional vital sign measurements submitted for analysis
type VitalsReading struct {
	HeartRate        *float64 `json:"heartRate,omitempty"`
	SystolicBP       *float64 `json:"systolicBP,omitempty"`
	DiastolicBP      *float64 `json:"diastolicBP,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	OxygenSaturation *float64 `json:"oxygenSaturation,omitempty"`
}

// IsEmpty reports whether no measurement is present
func (v VitalsReading) IsEmpty() bool {
	return v.HeartRate == nil &&
		v.SystolicBP == nil &&
		v.DiastolicBP == nil &&
		v.Temperature == nil &&
		v.OxygenSaturation == nil
}

// AnalysisResult is the envelope returned for a vitals analysis
type AnalysisResult struct {
	Vitals    VitalsReading `json:"vitals"`
	Analysis  string        `json:"analysis"`
	Timestamp string        `json:"timestamp"`
}

// MoodTag is one of the moods offered by the mood tracker
type MoodTag string

const (
	MoodHappy     MoodTag = "happy"
	MoodStressed  MoodTag = "stressed"
	MoodTired     MoodTag = "tired"
	MoodEnergetic MoodTag = "energetic"
	MoodAnxious   MoodTag = "anxious"
	MoodCalm      MoodTag = "calm"
)

// MoodTags lists the known moods in display order
var MoodTags = []MoodTag{MoodHappy, MoodStressed, MoodTired, MoodEnergetic, MoodAnxious, MoodCalm}

// Known reports whether the tag belongs to the fixed mood set
func (m MoodTag) Known() bool {
	for _, t := range MoodTags {
		if t == m {
			return true
		}
	}
	return false
}

// MoodEntry is a mood submission
type MoodEntry struct {
	Mood        MoodTag `json:"mood"`
	Description string  `json:"description,omitempty"`
}

// MoodRecommendation is the envelope returned for a mood submission
type MoodRecommendation struct {
	Mood            MoodTag `json:"mood"`
	Description     string  `json:"description,omitempty"`
	Recommendations string  `json:"recommendations"`
	Timestamp       string  `json:"timestamp"`
}

// ChatRole identifies the author of a chat turn
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is a single turn of an assistant conversation
type ChatMessage struct {
	Role      ChatRole `json:"role"`
	Content   string   `json:"content"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// ChatReply is the envelope returned for a chat turn
type ChatReply struct {
	Message   string `json:"message"`
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

// Coordinates is a geographic position in decimal degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Hospital is a nearby facility suggested by the assistant
type Hospital struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone,omitempty"`
	Distance string `json:"distance"`
	Type     string `json:"type"`
}

// HospitalSearchResult is the envelope returned for a nearby hospital lookup
type HospitalSearchResult struct {
	Coordinates Coordinates `json:"coordinates"`
	Hospitals   []Hospital  `json:"hospitals"`
	Timestamp   string      `json:"timestamp"`
}

// Appointment is a user's scheduled visit
type Appointment struct {
	ID     string             `json:"id"`
	UserID string             `json:"-"`
	Title  string             `json:"title"`
	Date   openapi_types.Date `json:"date"`
	Time   ClockTime          `json:"time"`
}

// MedicationReminder is a daily reminder to take a medication
type MedicationReminder struct {
	ID     string    `json:"id"`
	UserID string    `json:"-"`
	Name   string    `json:"name"`
	Time   ClockTime `json:"time"`
}

// UserProfile holds the editable profile of a user.
// Nil fields are left untouched when a profile is merged.
type UserProfile struct {
	Name      *string  `json:"name,omitempty"`
	Email     *string  `json:"email,omitempty"`
	PhotoURL  *string  `json:"photoURL,omitempty"`
	Age       *int     `json:"age,omitempty"`
	Height    *float64 `json:"height,omitempty"`
	Weight    *float64 `json:"weight,omitempty"`
	BloodType *string  `json:"bloodType,omitempty"`
	Allergies *string  `json:"allergies,omitempty"`
}

// Merge returns p with every non-nil field of patch applied
func (p UserProfile) Merge(patch UserProfile) UserProfile {
	if patch.Name != nil {
		p.Name = patch.Name
	}
	if patch.Email != nil {
		p.Email = patch.Email
	}
	if patch.PhotoURL != nil {
		p.PhotoURL = patch.PhotoURL
	}
	if patch.Age != nil {
		p.Age = patch.Age
	}
	if patch.Height != nil {
		p.Height = patch.Height
	}
	if patch.Weight != nil {
		p.Weight = patch.Weight
	}
	if patch.BloodType != nil {
		p.BloodType = patch.BloodType
	}
	if patch.Allergies != nil {
		p.Allergies = patch.Allergies
	}
	return p
}

// UserDataExport bundles everything stored for a user
type UserDataExport struct {
	Profile      UserProfile          `json:"profile"`
	Appointments []Appointment        `json:"appointments"`
	Medications  []MedicationReminder `json:"medications"`
	ExportedAt   string               `json:"exportedAt"`
}

// EmergencyContact is a public helpline shown on the emergency screen
type EmergencyContact struct {
	Name        string `json:"name" mapstructure:"name"`
	Number      string `json:"number" mapstructure:"number"`
	Description string `json:"description,omitempty" mapstructure:"description"`
}

// ReminderKind distinguishes the sources of a due reminder
type ReminderKind string

const (
	ReminderMedication  ReminderKind = "medication"
	ReminderAppointment ReminderKind = "appointment"
)

// DueReminder is a reminder that fires at the current minute for a user with a push token
type DueReminder struct {
	UserID    string
	PushToken string
	Kind      ReminderKind
	RefID     string
	Title     string
	Time      ClockTime
}
