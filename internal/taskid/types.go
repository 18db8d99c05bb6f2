// internal/taskid/types.go
package taskid

// ID is the structured representation of a task instance identifier.
type ID struct {
	Name  string
	Point string
}

// New builds an ID from a task name and a cycle point string.
func New(name, point string) ID {
	return ID{Name: name, Point: point}
}
