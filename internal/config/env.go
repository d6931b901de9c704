package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override settings values.
const (
	EnvBaseURL  = "STOREFRONT_BASE_URL"
	EnvBrowser  = "STOREFRONT_BROWSER"
	EnvHeadless = "STOREFRONT_HEADLESS"
)

// LoadEnvFile seeds the process environment from a .env file. Variables
// already set win over the file. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return &Error{Code: ErrCodeEnv, Path: path, Message: "failed to load env file", Err: err}
	}
	return nil
}

func applyEnv(s *Settings, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvBaseURL); ok && strings.TrimSpace(v) != "" {
		s.URLs.BaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvBrowser); ok && strings.TrimSpace(v) != "" {
		s.Environment.Browser = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvHeadless); ok && strings.TrimSpace(v) != "" {
		headless, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return &Error{Code: ErrCodeEnv, Message: EnvHeadless + " must be a boolean", Err: err}
		}
		s.Environment.Headless = headless
	}
	return nil
}
