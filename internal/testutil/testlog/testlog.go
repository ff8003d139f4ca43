package testlog

import (
	"testing"

	"github.com/rs/zerolog"
)

// Start returns a logger that writes through t.Log, so output is only shown
// for failing or verbose tests.
func Start(t *testing.T) zerolog.Logger {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	logger.Info().Msgf("test=%s", t.Name())
	return logger
}
