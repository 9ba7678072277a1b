package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "spaces and punctuation collapse to hyphens",
			input:    "Tech Conference 2025!",
			expected: "tech-conference-2025",
		},
		{
			name:     "already clean",
			input:    "summit",
			expected: "summit",
		},
		{
			name:     "uppercase is lowered",
			input:    "HACKATHON",
			expected: "hackathon",
		},
		{
			name:     "consecutive separators collapse",
			input:    "a  --  b",
			expected: "a-b",
		},
		{
			name:     "leading and trailing separators trimmed",
			input:    "  launch party  ",
			expected: "launch-party",
		},
		{
			name:     "non-ascii stripped",
			input:    "café night",
			expected: "caf-night",
		},
		{
			name:     "only punctuation yields empty",
			input:    "!!!",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveSlug(tt.input))
		})
	}
}

func TestDeriveSlugDeterministic(t *testing.T) {
	first := DeriveSlug("Annual Gala: Winter Edition")
	second := DeriveSlug("Annual Gala: Winter Edition")
	assert.Equal(t, first, second)
}
