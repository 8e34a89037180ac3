// Package config reads process settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// InitConfig loads the given .env files (".env" when none are named). A
// missing file is not an error; a malformed one is.
func InitConfig(logger *log.Logger, files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", f, err)
		}
		if logger != nil {
			logger.Printf("loaded environment from %s", f)
		}
	}
	return nil
}

func GetEnvVariable(v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("input param empty")
	}
	b := os.Getenv(v)
	if b == "" {
		return "", fmt.Errorf("failed to get variable for %s", v)
	}
	return b, nil
}

// String returns the variable or def when it is unset or empty.
func String(name, def string) string {
	if v, err := GetEnvVariable(name); err == nil {
		return v
	}
	return def
}

// Int is String for integers; unparsable values fall back to def.
func Int(name string, def int) int {
	v, err := GetEnvVariable(name)
	if err != nil {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Bool accepts the strconv.ParseBool spellings.
func Bool(name string, def bool) bool {
	v, err := GetEnvVariable(name)
	if err != nil {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
