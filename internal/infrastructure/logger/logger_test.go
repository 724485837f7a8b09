package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseLogLevel(tc.in), "level %q", tc.in)
	}
}

func TestNew_SetsGlobalLevel(t *testing.T) {
	New("error", "groupwarden")
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())

	New("debug", "groupwarden")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
