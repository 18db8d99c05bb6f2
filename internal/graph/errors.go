// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package graph

import (
	"fmt"
	"strings"
)

// ParseError reports malformed graph text. Lines, when set, lists every
// offending line or node.
type ParseError struct {
	Msg   string
	Lines []string
}

func (e *ParseError) Error() string {
	if len(e.Lines) == 0 {
		return "graph parse error: " + e.Msg
	}
	return fmt.Sprintf("graph parse error: %s:\n  %s", e.Msg, strings.Join(e.Lines, "\n  "))
}

func parseErrorf(format string, args ...any) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}
