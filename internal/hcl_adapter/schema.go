package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// --- Workflow Structures ---

// fileRoot decodes every top-level construct any workflow file may hold.
type fileRoot struct {
	Scheduling         *Scheduling    `hcl:"scheduling,block"`
	Parameters         []*Parameter   `hcl:"parameter,block"`
	Families           []*Family      `hcl:"family,block"`
	Tasks              []*Task        `hcl:"task,block"`
	ParameterTemplates hcl.Expression `hcl:"parameter_templates,optional"`
}

// Scheduling represents the `scheduling` block.
type Scheduling struct {
	CyclingMode       string          `hcl:"cycling_mode,optional"`
	InitialCyclePoint string          `hcl:"initial_cycle_point,optional"`
	FinalCyclePoint   string          `hcl:"final_cycle_point,optional"`
	RunaheadLimit     string          `hcl:"runahead_limit,optional"`
	HoldAfterPoint    string          `hcl:"hold_after_point,optional"`
	Graphs            []*GraphSection `hcl:"graph,block"`
}

// GraphSection represents a `graph "RECURRENCE" { ... }` block.
type GraphSection struct {
	Recurrence   string `hcl:"recurrence,label"`
	Dependencies string `hcl:"dependencies"`
}

// Parameter represents a `parameter "name" { ... }` block. Exactly one of
// values and range must be set.
type Parameter struct {
	Name   string         `hcl:"name,label"`
	Values hcl.Expression `hcl:"values,optional"`
	Range  string         `hcl:"range,optional"`
}

// Family represents a `family "NAME" { ... }` block.
type Family struct {
	Name    string   `hcl:"name,label"`
	Inherit []string `hcl:"inherit,optional"`
}

// Task represents a `task "name" { ... }` block.
type Task struct {
	Name             string         `hcl:"name,label"`
	Inherit          []string       `hcl:"inherit,optional"`
	Sequential       bool           `hcl:"sequential,optional"`
	Outputs          hcl.Expression `hcl:"outputs,optional"`
	ExternalTriggers []string       `hcl:"external_triggers,optional"`
}
