package events

import (
	"strings"
	"time"
)

// DefaultSlow is the duration above which a test is considered slow.
const DefaultSlow = 75 * time.Millisecond

// Speed classifies how long a test took relative to its slow threshold
type Speed int

const (
	Fast Speed = iota
	Medium
	Slow
)

func (s Speed) String() string {
	switch s {
	case Medium:
		return "medium"
	case Slow:
		return "slow"
	default:
		return "fast"
	}
}

// Suite is a named, nestable group of tests
type Suite struct {
	Title  string
	Parent *Suite
	Root   bool
}

// FullTitle returns the dotted path of suite titles from the outermost
// named suite down to this one.
func (s *Suite) FullTitle() string {
	if s == nil {
		return ""
	}
	var parts []string
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Root || cur.Title == "" {
			continue
		}
		parts = append(parts, cur.Title)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// Test is a single executed test as reported by the engine
type Test struct {
	Title    string
	Parent   *Suite
	Duration time.Duration
	// Slow overrides DefaultSlow when non-zero.
	Slow time.Duration
}

// ClassName is the full classifier path of the suite owning the test.
func (t *Test) ClassName() string {
	return t.Parent.FullTitle()
}

// FullTitle joins the class name and the test title with a space.
func (t *Test) FullTitle() string {
	if cn := t.ClassName(); cn != "" {
		return cn + " " + t.Title
	}
	return t.Title
}

// Elapsed returns the duration clamped to zero.
func (t *Test) Elapsed() time.Duration {
	if t.Duration < 0 {
		return 0
	}
	return t.Duration
}

// Speed classifies the test against its slow threshold.
func (t *Test) Speed() Speed {
	slow := t.Slow
	if slow <= 0 {
		slow = DefaultSlow
	}
	d := t.Elapsed()
	switch {
	case d > slow:
		return Slow
	case d > slow/2:
		return Medium
	default:
		return Fast
	}
}

// Failure carries the error details of a failed test
type Failure struct {
	Message  string
	Stack    string
	Actual   *string
	Expected *string
	// ShowDiff disables diff rendering when explicitly false.
	ShowDiff *bool
}

// HasDiff reports whether both sides of a comparison are known and a diff
// was not suppressed.
func (f *Failure) HasDiff() bool {
	if f == nil || f.Actual == nil || f.Expected == nil {
		return false
	}
	if f.ShowDiff != nil && !*f.ShowDiff {
		return false
	}
	return true
}

// Listener receives test lifecycle events in the order they occurred.
type Listener interface {
	OnRunBegin()
	OnSuiteBegin(s *Suite)
	OnSuiteEnd(s *Suite)
	OnTestPass(t *Test)
	OnTestFail(t *Test, f *Failure)
	OnTestPending(t *Test)
	OnRunEnd()
}
