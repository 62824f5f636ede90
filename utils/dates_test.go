package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlexibleDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"iso", "2020-03-15", time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"compact", "20200315", time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "15/03/2020", time.Time{}, false},
		{"partial", "2020-03", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFlexibleDate(tt.input)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			}
		})
	}
}

func TestAgeAt(t *testing.T) {
	birth := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 30, AgeAt(birth, time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC)), "birthday itself counts")
	assert.Equal(t, 29, AgeAt(birth, time.Date(2020, 6, 14, 0, 0, 0, 0, time.UTC)), "day before birthday")
	assert.Equal(t, 30, AgeAt(birth, time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestAgeBracket(t *testing.T) {
	tests := []struct {
		age  int
		want string
	}{
		{-1, AgeBracketUnknown},
		{0, "<18"},
		{17, "<18"},
		{18, "18-24"},
		{24, "18-24"},
		{25, "25-34"},
		{34, "25-34"},
		{35, "35-44"},
		{44, "35-44"},
		{45, "45-54"},
		{54, "45-54"},
		{55, "55-64"},
		{64, "55-64"},
		{65, "65+"},
		{90, "65+"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AgeBracket(tt.age), "age %d", tt.age)
	}
}
