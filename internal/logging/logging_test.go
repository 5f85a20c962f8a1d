package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_ParsesLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, New(Options{Level: "warn"}).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, New(Options{Level: " DEBUG "}).GetLevel())
}

func TestNew_FallsBackToInfo(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, New(Options{}).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New(Options{Level: "loud"}).GetLevel())
}
