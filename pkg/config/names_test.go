package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name, input, exp string
	}{
		{"AlreadyNormal", "laba", "laba"},
		{"Mixed", "LabA", "laba"},
		{"Whitespace", "  Alice\n", "alice"},
		{"Domain", "Alice@AD.WISC.EDU", "alice@ad.wisc.edu"},
		{"NonASCII", "ÅSA", "åsa"},
		{"Empty", "", ""},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.exp, NormalizeName(test.input))
		})
	}
}
