package app

import (
	"fmt"

	"github.com/specialistvlad/cyclegrid/internal/ctxlog"
)

// Validate writes a summary of the loaded workflow.
func (a *App) Validate() error {
	logger := ctxlog.FromContext(a.ctx)
	wf := a.workflow

	s := Summary{
		CyclingMode:  string(wf.System().Mode()),
		InitialPoint: wf.InitialPoint().String(),
		Tasks:        wf.TaskNames(),
		Families:     wf.Families(),
	}
	if wf.FinalPoint() != nil {
		s.FinalPoint = wf.FinalPoint().String()
	}
	if wf.Runahead() != nil {
		s.Runahead = wf.Runahead().String()
	}
	for _, sec := range wf.Sections() {
		s.Sections = append(s.Sections, sec.Recurrence)
	}
	logger.Info("Workflow is valid.", "tasks", len(s.Tasks), "sections", len(s.Sections))
	return a.writeYAML(s)
}

// Graph writes the trigger map of every section, or of the one section
// whose recurrence equals only.
func (a *App) Graph(only string) error {
	var out []SectionReport
	for _, sec := range a.workflow.Sections() {
		if only != "" && sec.Recurrence != only {
			continue
		}
		rep := SectionReport{Recurrence: sec.Recurrence}
		for _, task := range sortedKeys(sec.Triggers) {
			tr := TriggerReport{Task: task}
			for _, key := range sortedKeys(sec.Triggers[task]) {
				switch {
				case key == "":
				case sec.Triggers[task][key].Suicide:
					tr.Suicides = append(tr.Suicides, key)
				default:
					tr.Triggers = append(tr.Triggers, key)
				}
			}
			if poll, ok := sec.Polling[task]; ok {
				tr.Polls = fmt.Sprintf("%s::%s:%s", poll.Workflow, poll.Task, poll.Status)
			}
			rep.Tasks = append(rep.Tasks, tr)
		}
		out = append(out, rep)
	}
	if only != "" && len(out) == 0 {
		return fmt.Errorf("no graph section %q", only)
	}
	return a.writeYAML(out)
}

// Points writes up to limit cycle points of task.
func (a *App) Points(task string, limit int) error {
	pts, err := a.workflow.Points(task, limit)
	if err != nil {
		return err
	}
	out := make([]string, 0, len(pts))
	for _, p := range pts {
		out = append(out, p.String())
	}
	return a.writeYAML(map[string][]string{task: out})
}
