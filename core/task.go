package core

import "strings"

// Task identifies which specialized agent and result schema apply to a request.
type Task string

const (
	// TaskUnclassified is the zero value before the Router runs.
	TaskUnclassified Task = ""
	// TaskICD10 extracts ICD-10 codes from a clinical note.
	TaskICD10 Task = "icd10"
	// TaskSOAP turns a clinical transcript into a SOAP note.
	TaskSOAP Task = "soap"
	// TaskImageAnalysis produces a radiology report for a medical image.
	TaskImageAnalysis Task = "image_analysis"
)

// Tasks lists every routable task in a stable order.
var Tasks = []Task{TaskICD10, TaskSOAP, TaskImageAnalysis}

// String implements fmt.Stringer.
func (t Task) String() string { return string(t) }

// Valid reports whether t is one of the routable tasks.
func (t Task) Valid() bool {
	switch t {
	case TaskICD10, TaskSOAP, TaskImageAnalysis:
		return true
	default:
		return false
	}
}

// NormalizeLabel lower-cases and trims a raw classifier completion.
func NormalizeLabel(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ParseTask maps an already normalized label to a Task using exact matching.
func ParseTask(label string) (Task, bool) {
	t := Task(label)
	if !t.Valid() {
		return TaskUnclassified, false
	}
	return t, true
}
