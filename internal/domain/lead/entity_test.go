package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare ten digits", "9876543210", "9876543210"},
		{"country code", "919876543210", "9876543210"},
		{"plus country code", "+91 98765 43210", "9876543210"},
		{"trunk zero", "09876543210", "9876543210"},
		{"formatted", "98765-43210", "9876543210"},
		{"overlong keeps last ten", "00919876543210", "9876543210"},
		{"short stays short", "12345", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	inputs := []string{"+919876543210", "09876543210", "98765 43210", "12345"}
	for _, in := range inputs {
		once := NormalizePhone(in)
		assert.Equal(t, once, NormalizePhone(once), "input %q", in)
	}
}
