package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Template renders Defaults as a TOML document users can start editing from.
func Template() (string, error) {
	var buf bytes.Buffer
	buf.WriteString("# fleetctl pipeline configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(Defaults()); err != nil {
		return "", fmt.Errorf("encode config template: %w", err)
	}
	return buf.String(), nil
}

func WriteTemplate(path string, overwrite bool) error {
	template, err := Template()
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o644)
}
