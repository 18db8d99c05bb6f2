// internal/taskid/doc.go

/*
Package taskid provides a structured representation for task instance
identifiers, based on the canonical format `name.point`.

A task instance is one task definition at one cycle point, e.g.
`sim_m01.20250101T0000Z` or `prep.5`. The alternative `point/name` form is
accepted on input. Cycle point strings never contain dots, so the last dot
separates name and point.

This package enforces the identifier schema and centralizes all formatting
and parsing logic.
*/
package taskid
