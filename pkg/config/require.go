package config

import (
	"fmt"
	"strings"
)

func NonEmpty(value, envName string) error {
	if trim(value) == "" {
		return fmt.Errorf("missing required env %s", envName)
	}
	return nil
}

func trim(s string) string { return strings.TrimSpace(s) }
