// internal/taskid/id.go
package taskid

// String serializes the ID into its canonical `name.point` form.
func (id ID) String() string {
	return id.Name + "." + id.Point
}

// Relative returns the `point/name` form.
func (id ID) Relative() string {
	return id.Point + "/" + id.Name
}

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool {
	return id.Name == "" && id.Point == ""
}
