package cliargs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// Pair is one named argument. Set is false when the argument was never
// supplied, which is distinct from an explicitly empty value.
type Pair struct {
	Name  string
	Value string
	Set   bool
}

// Value returns a pair that is present.
func Value(name, value string) Pair {
	return Pair{Name: name, Value: value, Set: true}
}

// Absent returns a pair that was not supplied.
func Absent(name string) Pair {
	return Pair{Name: name}
}

// Parse parses argv into fs. Unknown flags and malformed values are argument
// errors.
func Parse(fs *pflag.FlagSet, argv []string) error {
	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return fmt.Errorf("%w: help requested", ErrArgument)
		}
		return fmt.Errorf("%w: incorrect arguments passed: %v", ErrArgument, err)
	}
	return nil
}

// FromFlags collects the named flags in order. A flag is Set only when it was
// passed on the command line.
func FromFlags(fs *pflag.FlagSet, names ...string) []Pair {
	out := make([]Pair, 0, len(names))
	for _, name := range names {
		f := fs.Lookup(name)
		if f == nil {
			out = append(out, Absent(name))
			continue
		}
		out = append(out, Pair{Name: name, Value: f.Value.String(), Set: f.Changed})
	}
	return out
}

// Required fails when any pair is absent. Every missing name is logged before
// the error is returned.
func Required(logger zerolog.Logger, pairs ...Pair) error {
	names := make([]string, 0, len(pairs))
	for _, p := range pairs {
		names = append(names, p.Name)
	}
	logger.Info().Msgf("Checking required arguments: %s", strings.Join(names, ", "))

	var missing []string
	for _, p := range pairs {
		if p.Set {
			continue
		}
		logger.Error().Msgf("%s is a required argument and was not provided. Exiting...", p.Name)
		missing = append(missing, p.Name)
	}
	if len(missing) > 0 {
		return &MissingError{Names: missing}
	}
	return nil
}

// OneOf validates an enumerated option against its allowed set.
func OneOf(name, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s must be one of the following values: [%s]", ErrArgument, name, strings.Join(allowed, ", "))
}

// Int converts a numeric option. Negative values are rejected.
func Int(name, raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrArgument, name, raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative, got %d", ErrArgument, name, v)
	}
	return v, nil
}

// Clean strips spaces and newlines that CI parameter plumbing tends to leave
// in folder and bucket names.
func Clean(s string) string {
	return strings.NewReplacer(" ", "", "\n", "", "\r", "").Replace(s)
}

// LogArgs logs the effective arguments as --name = value lines.
func LogArgs(logger zerolog.Logger, pairs ...Pair) {
	logger.Info().Msg("Command line arguments: ")
	for _, p := range pairs {
		if !p.Set {
			logger.Info().Msgf("--%s = <unset>", p.Name)
			continue
		}
		logger.Info().Msgf("--%s = %s", p.Name, p.Value)
	}
}
