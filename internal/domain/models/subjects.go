// internal/domain/models/subjects.go
package models

import (
	"errors"
	"fmt"
)

// Subject is the teaching area a resource belongs to. The set is closed:
// anything outside Subjects is rejected at the form boundary.
type Subject string

const (
	SubjectSEL                       Subject = "SEL"
	SubjectPositiveDiscipline        Subject = "Positive Discipline"
	SubjectPlayBasedLearning         Subject = "Play-based Learning"
	SubjectDifferentiatedInstruction Subject = "Differentiated Instruction"
)

// Subjects lists every valid subject in display order.
var Subjects = []Subject{
	SubjectSEL,
	SubjectPositiveDiscipline,
	SubjectPlayBasedLearning,
	SubjectDifferentiatedInstruction,
}

var ErrUnknownSubject = errors.New("unknown subject")

// ParseSubject maps a submitted value onto the closed Subject set.
func ParseSubject(s string) (Subject, error) {
	switch Subject(s) {
	case SubjectSEL, SubjectPositiveDiscipline, SubjectPlayBasedLearning, SubjectDifferentiatedInstruction:
		return Subject(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSubject, s)
}

// Valid reports whether s is one of Subjects.
func (s Subject) Valid() bool {
	_, err := ParseSubject(string(s))
	return err == nil
}

// Badge returns the card colour for the subject. ok is false for values
// that are not part of the closed set (e.g. legacy documents).
func (s Subject) Badge() (color string, ok bool) {
	switch s {
	case SubjectSEL:
		return "blue", true
	case SubjectPositiveDiscipline:
		return "green", true
	case SubjectPlayBasedLearning:
		return "purple", true
	case SubjectDifferentiatedInstruction:
		return "orange", true
	}
	return "", false
}

// SubjectSelector is the subject filter control: a Subject or SelectAll.
type SubjectSelector string

// SelectAll disables subject filtering.
const SelectAll SubjectSelector = "All"

// SubjectSelectors lists the filter choices in display order.
func SubjectSelectors() []SubjectSelector {
	out := make([]SubjectSelector, 0, len(Subjects)+1)
	out = append(out, SelectAll)
	for _, s := range Subjects {
		out = append(out, SubjectSelector(s))
	}
	return out
}

// ParseSubjectSelector accepts "All", a valid Subject, or "" (treated as All).
func ParseSubjectSelector(s string) (SubjectSelector, error) {
	if s == "" || SubjectSelector(s) == SelectAll {
		return SelectAll, nil
	}
	subj, err := ParseSubject(s)
	if err != nil {
		return "", err
	}
	return SubjectSelector(subj), nil
}

// Admits reports whether a resource with subject s passes the selector.
func (sel SubjectSelector) Admits(s Subject) bool {
	return sel == SelectAll || Subject(sel) == s
}
