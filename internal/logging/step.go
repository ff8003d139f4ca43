package logging

import "github.com/rs/zerolog"

const Separator = "===================================================="

// Step prints a separator-framed banner announcing one pipeline step.
func Step(logger zerolog.Logger, name string) {
	logger.Log().Msg(Separator)
	logger.Info().Msgf("Build Step: %s", name)
	logger.Log().Msg(Separator)
}
