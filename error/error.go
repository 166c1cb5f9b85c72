package error

import (
	"fmt"
	"strings"
)

// SpecErrors collects every problem found in a grammar model so that a user can fix them at once.
type SpecErrors []*SpecError

func (e SpecErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%v", e[0])
	for _, err := range e[1:] {
		fmt.Fprintf(&b, "\n%v", err)
	}

	return b.String()
}

// SpecError is a problem of a grammar model. Rule is the 1-origin position of the rule in the
// model and Symbol is the name the problem is about. Both are optional.
type SpecError struct {
	Cause      error
	Detail     string
	SourceName string
	Rule       int
	Symbol     string
}

func (e *SpecError) Error() string {
	var b strings.Builder
	if e.SourceName != "" {
		fmt.Fprintf(&b, "%v: ", e.SourceName)
	}
	if e.Rule != 0 {
		fmt.Fprintf(&b, "rule %v: ", e.Rule)
	}
	fmt.Fprintf(&b, "error: %v", e.Cause)
	if e.Symbol != "" {
		fmt.Fprintf(&b, ": '%v'", e.Symbol)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %v", e.Detail)
	}

	return b.String()
}

func (e *SpecError) Unwrap() error {
	return e.Cause
}
