package model

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockTimeJSONRoundTripsEveryMinute(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			in := ClockTime{Hour: h, Minute: m}
			data, err := json.Marshal(in)
			require.NoError(t, err)

			var out ClockTime
			require.NoError(t, json.Unmarshal(data, &out))
			require.Equal(t, in, out)
		}
	}
}

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		in      string
		want    ClockTime
		wantErr bool
	}{
		{in: "00:00", want: ClockTime{0, 0}},
		{in: "09:05", want: ClockTime{9, 5}},
		{in: "23:59", want: ClockTime{23, 59}},
		{in: "9:05", wantErr: true},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "3:30 PM", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClockTime(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClockTimeDisplay(t *testing.T) {
	assert.Equal(t, "12:00 AM", ClockTime{0, 0}.Display())
	assert.Equal(t, "9:05 AM", ClockTime{9, 5}.Display())
	assert.Equal(t, "12:30 PM", ClockTime{12, 30}.Display())
	assert.Equal(t, "11:59 PM", ClockTime{23, 59}.Display())
}

func TestClockTimeUnmarshalRejectsNumbers(t *testing.T) {
	var c ClockTime
	assert.Error(t, json.Unmarshal([]byte(`930`), &c))
}

func TestProperty_ClockTimeStringParses(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("String output always parses back to the same value", prop.ForAll(
		func(h, m int) bool {
			c, err := NewClockTime(h, m)
			if err != nil {
				return false
			}
			parsed, err := ParseClockTime(c.String())
			return err == nil && parsed == c && parsed.Minutes() == h*60+m
		},
		gen.IntRange(0, 23),
		gen.IntRange(0, 59),
	))

	properties.TestingRun(t)
}
