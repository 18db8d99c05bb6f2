// internal/taskid/parser.go
package taskid

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	nameRegex  = regexp.MustCompile(`^\w[\w\-+%@]*$`)
	pointRegex = regexp.MustCompile(`^[\w\-+:]+$`)
)

// Parse creates an ID from `name.point` or `point/name`.
func Parse(raw string) (ID, error) {
	if raw == "" {
		return ID{}, fmt.Errorf("task identifier cannot be empty")
	}

	var name, point string
	if i := strings.Index(raw, "/"); i >= 0 {
		point, name = raw[:i], raw[i+1:]
	} else {
		i := strings.LastIndex(raw, ".")
		if i < 0 {
			return ID{}, fmt.Errorf("task identifier %q has no cycle point", raw)
		}
		name, point = raw[:i], raw[i+1:]
	}

	if !nameRegex.MatchString(name) {
		return ID{}, fmt.Errorf("invalid task name: %q", name)
	}
	if !pointRegex.MatchString(point) {
		return ID{}, fmt.Errorf("invalid cycle point: %q", point)
	}
	return ID{Name: name, Point: point}, nil
}
