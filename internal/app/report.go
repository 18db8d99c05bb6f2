package app

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/cyclegrid/internal/scheduler"
	"gopkg.in/yaml.v3"
)

// Summary is the report of the validate command.
type Summary struct {
	CyclingMode  string              `yaml:"cycling_mode"`
	InitialPoint string              `yaml:"initial_cycle_point"`
	FinalPoint   string              `yaml:"final_cycle_point,omitempty"`
	Runahead     string              `yaml:"runahead_limit,omitempty"`
	Sections     []string            `yaml:"graph_sections"`
	Tasks        []string            `yaml:"tasks"`
	Families     map[string][]string `yaml:"families,omitempty"`
}

// TriggerReport lists the trigger expressions of one task in one section.
type TriggerReport struct {
	Task     string   `yaml:"task"`
	Triggers []string `yaml:"triggers,omitempty"`
	Suicides []string `yaml:"suicide_triggers,omitempty"`
	Polls    string   `yaml:"polls,omitempty"`
}

// SectionReport is the report of the graph command for one section.
type SectionReport struct {
	Recurrence string          `yaml:"recurrence"`
	Tasks      []TriggerReport `yaml:"tasks"`
}

// RunReport is the report of a simulated run.
type RunReport struct {
	Steps []scheduler.Event    `yaml:"events"`
	Pool  []scheduler.TaskInfo `yaml:"pool"`
}

func (a *App) writeYAML(v any) error {
	enc := yaml.NewEncoder(a.outW)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return enc.Close()
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
