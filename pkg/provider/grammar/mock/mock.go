// Package mock provides a test double for the grammar.Checker interface.
package mock

import (
	"context"
	"sync"

	"github.com/careervani/careervani/pkg/provider/grammar"
)

// CheckCall records a single invocation of Check.
type CheckCall struct {
	Ctx  context.Context
	Text string
}

// Checker is a mock implementation of grammar.Checker. It returns Issues and
// CheckErr for every call.
type Checker struct {
	mu sync.Mutex

	// Issues is returned by Check.
	Issues []grammar.Issue

	// CheckErr, if non-nil, is returned as the error from Check.
	CheckErr error

	// Calls records every invocation of Check in order.
	Calls []CheckCall
}

// Check records the call and returns a copy of Issues, CheckErr.
func (c *Checker) Check(ctx context.Context, text string) ([]grammar.Issue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, CheckCall{Ctx: ctx, Text: text})
	if c.CheckErr != nil {
		return nil, c.CheckErr
	}
	out := make([]grammar.Issue, len(c.Issues))
	copy(out, c.Issues)
	return out, nil
}

// CallCount returns the number of recorded Check calls.
func (c *Checker) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Calls)
}

var _ grammar.Checker = (*Checker)(nil)
