// Package prompt turns domain records into prompts for the generative model.
// Every function is pure and never returns an empty string.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vcscsvcscs/healthscope/pkg/model"
)

// ChatContextWindow is the number of history turns forwarded with a chat message
const ChatContextWindow = 6

const sakhiPersona = "You are Sakhi, a friendly and knowledgeable AI health assistant."

// Vitals builds the vitals analysis prompt. Only present measurements are listed.
func Vitals(v model.VitalsReading, locale model.Locale) string {
	var b strings.Builder
	b.WriteString("As a health AI assistant, analyze these vital signs and provide brief, general health suggestions: ")
	b.WriteString(vitalsText(v))
	b.WriteString(".\n\n")
	b.WriteString("Please provide:\n")
	b.WriteString("1. A brief assessment of whether these readings appear within normal ranges\n")
	b.WriteString("2. General health suggestions or lifestyle recommendations\n")
	b.WriteString("3. Any recommendations to consult with healthcare professionals if needed\n\n")
	b.WriteString("Keep the response concise, helpful, and emphasize that this is general information, not medical diagnosis.")
	b.WriteString(languageInstruction(locale))
	return b.String()
}

func vitalsText(v model.VitalsReading) string {
	var parts []string
	if v.HeartRate != nil {
		parts = append(parts, fmt.Sprintf("Heart Rate: %s BPM", number(*v.HeartRate)))
	}
	switch {
	case v.SystolicBP != nil && v.DiastolicBP != nil:
		parts = append(parts, fmt.Sprintf("Blood Pressure: %s/%s mmHg (systolic/diastolic)",
			number(*v.SystolicBP), number(*v.DiastolicBP)))
	case v.SystolicBP != nil:
		parts = append(parts, fmt.Sprintf("Systolic Blood Pressure: %s mmHg", number(*v.SystolicBP)))
	case v.DiastolicBP != nil:
		parts = append(parts, fmt.Sprintf("Diastolic Blood Pressure: %s mmHg", number(*v.DiastolicBP)))
	}
	if v.Temperature != nil {
		parts = append(parts, fmt.Sprintf("Body Temperature: %s°F", number(*v.Temperature)))
	}
	if v.OxygenSaturation != nil {
		parts = append(parts, fmt.Sprintf("Oxygen Saturation: %s%%", number(*v.OxygenSaturation)))
	}
	if len(parts) == 0 {
		return "no measurements recorded"
	}
	return strings.Join(parts, ", ")
}

// Mood builds the activity recommendation prompt
func Mood(entry model.MoodEntry, locale model.Locale) string {
	var b strings.Builder
	fmt.Fprintf(&b, "As a wellness AI assistant, suggest personalized activities, exercises, or yoga poses based on this mood: %q", string(entry.Mood))
	if d := strings.TrimSpace(entry.Description); d != "" {
		fmt.Fprintf(&b, " with additional context: %q", d)
	}
	b.WriteString(".\n\n")
	b.WriteString("Please provide 3-4 specific, actionable suggestions that would be appropriate for someone feeling this way. Include:\n")
	b.WriteString("1. Physical activities or exercises\n")
	b.WriteString("2. Mindfulness or relaxation techniques\n")
	b.WriteString("3. Social or creative activities if appropriate\n\n")
	b.WriteString("Keep suggestions practical, positive, and focused on improving wellbeing.")
	b.WriteString(languageInstruction(locale))
	return b.String()
}

// Chat builds the assistant prompt for a new user message.
// At most the last ChatContextWindow history turns are embedded, oldest first.
func Chat(message string, history []model.ChatMessage, locale model.Locale) string {
	recent := LastTurns(history, ChatContextWindow)

	var b strings.Builder
	if len(recent) == 0 {
		b.WriteString(sakhiPersona)
		b.WriteString(" You provide helpful, accurate health and wellness information while emphasizing that you're not a replacement for professional medical advice. ")
		b.WriteString("Keep responses conversational, supportive, and informative.\n\n")
		fmt.Fprintf(&b, "User question: %q", message)
		b.WriteString(languageInstruction(locale))
		return b.String()
	}

	b.WriteString(sakhiPersona)
	b.WriteString(" Here's our recent conversation:\n\n")
	for _, turn := range recent {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
	}
	fmt.Fprintf(&b, "\nUser question: %q\n\n", message)
	b.WriteString("Please respond in a helpful, conversational manner while maintaining context from our discussion.")
	b.WriteString(languageInstruction(locale))
	return b.String()
}

// LastTurns returns the trailing n entries of history without copying
func LastTurns(history []model.ChatMessage, n int) []model.ChatMessage {
	if n <= 0 {
		return nil
	}
	if len(history) > n {
		return history[len(history)-n:]
	}
	return history
}

// Hospitals builds the nearby hospital lookup prompt. The model is asked for a JSON array.
func Hospitals(c model.Coordinates, locale model.Locale) string {
	var b strings.Builder
	fmt.Fprintf(&b, "List hospitals and medical facilities near latitude %s, longitude %s.\n\n",
		strconv.FormatFloat(c.Latitude, 'f', 6, 64), strconv.FormatFloat(c.Longitude, 'f', 6, 64))
	b.WriteString("Return between 5 and 10 entries, nearest first, as a JSON array only. ")
	b.WriteString("Each entry must be an object with exactly these fields:\n")
	b.WriteString(`{"name": string, "address": string, "phone": string, "distance": string, "type": string}`)
	b.WriteString("\n\n")
	b.WriteString(`"distance" is a human-readable approximate distance such as "2.3 km". `)
	b.WriteString(`"type" is one of "Government Hospital", "Private Hospital", "Clinic" or "Emergency Center". `)
	b.WriteString(`Use an empty string for "phone" when it is unknown. Do not include any text outside the JSON array.`)
	if locale != model.LocaleEnglish && locale != "" {
		fmt.Fprintf(&b, " Write the name and address values in %s where a common local name exists; keep the JSON keys in English.", locale.LanguageName())
	}
	return b.String()
}

func languageInstruction(locale model.Locale) string {
	if locale == "" || locale == model.LocaleEnglish {
		return ""
	}
	return fmt.Sprintf("\n\nReply in %s.", locale.LanguageName())
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
