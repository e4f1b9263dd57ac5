package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value, usually read from the environment.
	Value string
	// File points to a file containing the secret value, such as a mounted
	// Docker or Kubernetes secret. When set it takes precedence over Value.
	File string
}

// Load resolves the secret from src. The result is always trimmed, and an
// error is returned when neither File nor Value contain a usable secret.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		src.Value = string(data)
		src.File = file
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		if src.File != "" {
			return "", fmt.Errorf("%s file %q is empty", name, src.File)
		}
		return "", fmt.Errorf("%s is not configured", name)
	}

	return secret, nil
}

// Optional behaves like Load but treats a secret that is not configured at
// all as empty instead of an error.
func Optional(src Source) (string, error) {
	if strings.TrimSpace(src.Value) == "" && strings.TrimSpace(src.File) == "" {
		return "", nil
	}
	return Load(src)
}
