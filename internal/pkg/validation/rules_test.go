package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Date string  `validate:"isodate"`
	Time *string `validate:"omitempty,hhmm"`
	Role string  `validate:"role"`
}

func strPtr(s string) *string { return &s }

func TestRegisterRules(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterRules(v))

	tests := []struct {
		name  string
		input sample
		ok    bool
	}{
		{name: "valid", input: sample{Date: "2025-05-01", Time: strPtr("17:30"), Role: "coach"}, ok: true},
		{name: "nil time is optional", input: sample{Date: "2025-05-01", Role: "student"}, ok: true},
		{name: "bad date", input: sample{Date: "2025-13-01", Role: "admin"}, ok: false},
		{name: "date with time", input: sample{Date: "2025-05-01T10:00", Role: "admin"}, ok: false},
		{name: "bad clock", input: sample{Date: "2025-05-01", Time: strPtr("24:00"), Role: "staff"}, ok: false},
		{name: "clock without padding", input: sample{Date: "2025-05-01", Time: strPtr("9:30"), Role: "staff"}, ok: false},
		{name: "unknown role", input: sample{Date: "2025-05-01", Role: "parent"}, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
