// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package taskstate

import "sort"

// Standard output labels every task carries.
const (
	OutputExpired      = "expired"
	OutputSubmitted    = "submitted"
	OutputSubmitFailed = "submit-failed"
	OutputStarted      = "started"
	OutputSucceeded    = "succeeded"
	OutputFailed       = "failed"
)

var standardOutputs = []string{
	OutputExpired,
	OutputSubmitted,
	OutputSubmitFailed,
	OutputStarted,
	OutputSucceeded,
	OutputFailed,
}

// IsStandardOutput reports whether label is one of the built-in outputs.
func IsStandardOutput(label string) bool {
	for _, s := range standardOutputs {
		if s == label {
			return true
		}
	}
	return false
}

// Outputs records which outputs of one task instance have completed.
// Custom outputs map a label to the message a job reports for it.
type Outputs struct {
	order     []string
	messages  map[string]string
	completed map[string]bool
}

// NewOutputs returns the standard outputs plus the custom ones, all
// incomplete. Custom labels follow the standard ones in sorted order.
func NewOutputs(custom map[string]string) *Outputs {
	o := &Outputs{
		messages:  map[string]string{},
		completed: map[string]bool{},
	}
	for _, label := range standardOutputs {
		o.add(label, label)
	}
	labels := make([]string, 0, len(custom))
	for label := range custom {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		o.add(label, custom[label])
	}
	return o
}

func (o *Outputs) add(label, message string) {
	if _, ok := o.messages[label]; !ok {
		o.order = append(o.order, label)
	}
	o.messages[label] = message
	o.completed[label] = false
}

// Exists reports whether label is a known output.
func (o *Outputs) Exists(label string) bool {
	_, ok := o.messages[label]
	return ok
}

// Message returns the job message associated with label.
func (o *Outputs) Message(label string) string { return o.messages[label] }

// LabelFor returns the output label whose message is msg.
func (o *Outputs) LabelFor(msg string) (string, bool) {
	for _, label := range o.order {
		if o.messages[label] == msg {
			return label, true
		}
	}
	return "", false
}

// SetCompletion marks label complete or incomplete. It returns false for an
// unknown label.
func (o *Outputs) SetCompletion(label string, done bool) bool {
	if !o.Exists(label) {
		return false
	}
	o.completed[label] = done
	return true
}

// IsCompleted reports whether label has completed.
func (o *Outputs) IsCompleted(label string) bool { return o.completed[label] }

// SetAllIncomplete clears every output, standard and custom.
func (o *Outputs) SetAllIncomplete() {
	for label := range o.completed {
		o.completed[label] = false
	}
}

// SetAllCompleted marks every output complete.
func (o *Outputs) SetAllCompleted() {
	for label := range o.completed {
		o.completed[label] = true
	}
}

// Labels lists every output label, standard first.
func (o *Outputs) Labels() []string { return append([]string(nil), o.order...) }

// Completed lists the completed labels in declaration order.
func (o *Outputs) Completed() []string { return o.filter(true) }

// Incomplete lists the incomplete labels in declaration order.
func (o *Outputs) Incomplete() []string { return o.filter(false) }

func (o *Outputs) filter(done bool) []string {
	var out []string
	for _, label := range o.order {
		if o.completed[label] == done {
			out = append(out, label)
		}
	}
	return out
}
