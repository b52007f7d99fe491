package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// reads a json5 configuration file, then merges `<name>.local.<ext>` on top
// of it (last-write-wins) so machine-specific values and credentials can stay
// out of version control. returns os.ErrNotExist when neither file exists.
func ReadConfig[T any](name string) (T, error) {
	var config T

	ext := filepath.Ext(name)
	localName := fmt.Sprintf("%s.local%s", name[:len(name)-len(ext)], ext)

	found := false
	for _, path := range []string{name, localName} {
		contents, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return config, err
		}

		var layer T
		err = json5.Unmarshal(contents, &layer)
		if err != nil {
			return config, fmt.Errorf("%s: %w", path, err)
		}

		if found {
			err = mergo.Merge(&config, layer, mergo.WithOverride)
			if err != nil {
				return config, err
			}
			slog.Info("merging config with local overrides", "local", path)
		} else {
			config = layer
		}
		found = true
	}

	if !found {
		return config, os.ErrNotExist
	}
	return config, nil
}

// ReadConfig, but walks up parent directories from the cwd until a matching
// configuration file is found.
func ReadRecursively[T any](name string) (T, error) {
	var zero T

	dir, err := os.Getwd()
	if err != nil {
		return zero, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(dir, name))
		if !errors.Is(err, os.ErrNotExist) {
			return config, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return zero, os.ErrNotExist
		}
		dir = parent
	}
}
