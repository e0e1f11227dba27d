package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type ConfigValidator struct{}

func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

func (v *ConfigValidator) Validate(cfg *RunConfig) error {
	if strings.TrimSpace(cfg.Command) == "" {
		return errors.New("command cannot be empty")
	}

	for _, pattern := range cfg.Watch {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid watch pattern %q", pattern)
		}
	}

	if len(cfg.Watch) > 0 && cfg.Interval <= 0 {
		return errors.New("watch interval must be positive")
	}

	return nil
}
