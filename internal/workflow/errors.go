// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package workflow

import "fmt"

// ConfigError reports an invalid workflow configuration. Section names the
// part of the configuration at fault, such as a graph recurrence.
type ConfigError struct {
	Section string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("workflow config: %v", e.Err)
	}
	return fmt.Sprintf("workflow config [%s]: %v", e.Section, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configErrorf(section, format string, args ...any) *ConfigError {
	return &ConfigError{Section: section, Err: fmt.Errorf(format, args...)}
}
