package events

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	ErrIncompleteRun   = errors.New("event stream ended before run end")
	ErrUnbalancedSuite = errors.New("suite end without matching suite")
	ErrEventAfterEnd   = errors.New("event after run end")
)

// Source yields decoded records; Decoder is the usual implementation.
type Source interface {
	Next() (Record, error)
}

// Replay feeds the records of src to em. Runs are wrapped in a root suite
// the way a live engine reports them, so top-level suites sit one level
// below it. Replay stops at the first decode error, and returns
// ErrIncompleteRun if the stream is exhausted before its end event.
func Replay(ctx context.Context, src Source, em *Emitter) error {
	var (
		stack   []*Suite
		started bool
		ended   bool
	)

	begin := func() {
		if started {
			return
		}
		started = true
		root := &Suite{Root: true}
		stack = append(stack, root)
		em.EmitRunBegin()
		em.EmitSuiteBegin(root)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if ended {
			return fmt.Errorf("line %d: %w", rec.Line, ErrEventAfterEnd)
		}

		begin()
		parent := stack[len(stack)-1]

		switch rec.Kind {
		case KindStart:
			// already begun
		case KindSuite:
			s := &Suite{Title: rec.Title, Parent: parent}
			stack = append(stack, s)
			em.EmitSuiteBegin(s)
		case KindSuiteEnd:
			if len(stack) < 2 {
				return fmt.Errorf("line %d: %w", rec.Line, ErrUnbalancedSuite)
			}
			stack = stack[:len(stack)-1]
			em.EmitSuiteEnd(parent)
		case KindPass:
			em.EmitTestPass(newTest(rec, parent))
		case KindFail:
			f := rec.Failure
			if f == nil {
				f = &Failure{}
			}
			em.EmitTestFail(newTest(rec, parent), f)
		case KindPending:
			em.EmitTestPending(newTest(rec, parent))
		case KindEnd:
			for len(stack) > 0 {
				s := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				em.EmitSuiteEnd(s)
			}
			em.EmitRunEnd()
			ended = true
		}
	}

	if !ended {
		return ErrIncompleteRun
	}
	return nil
}

func newTest(rec Record, parent *Suite) *Test {
	return &Test{
		Title:    rec.Title,
		Parent:   parent,
		Duration: rec.Duration,
		Slow:     rec.Slow,
	}
}
