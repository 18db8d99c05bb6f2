package config

import "github.com/zclconf/go-cty/cty"

// Model is the unified, format-agnostic representation of one workflow.
type Model struct {
	Scheduling *Scheduling
	// Parameters are kept in declaration order.
	Parameters []*Parameter
	// ParameterTemplates overrides the default name template per parameter.
	ParameterTemplates map[string]string
	Families           []*Family
	Tasks              []*Task
}

// Scheduling holds the cycling settings and the graph.
type Scheduling struct {
	CyclingMode       string
	InitialCyclePoint string
	FinalCyclePoint   string
	RunaheadLimit     string
	HoldAfterPoint    string
	Graphs            []*GraphSection
}

// GraphSection is the graph text of one recurrence.
type GraphSection struct {
	Recurrence   string
	Dependencies string
}

// Parameter defines the values of one task parameter, either as an
// explicit list or as a range expression "start..stop[..step]".
type Parameter struct {
	Name   string
	Values []cty.Value
	Range  string
}

// Family is a named group of tasks. Members inherit from it.
type Family struct {
	Name    string
	Inherit []string
}

// Task is the runtime definition of a task. Name may be parameterized, as
// in "sim<i,j>".
type Task struct {
	Name             string
	Inherit          []string
	Sequential       bool
	Outputs          map[string]string
	ExternalTriggers []string
}

// NewModel returns an empty model with an empty scheduling section.
func NewModel() *Model {
	return &Model{
		Scheduling:         &Scheduling{},
		ParameterTemplates: map[string]string{},
	}
}
