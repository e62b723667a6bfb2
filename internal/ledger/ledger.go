// Package ledger is a tiny durable queue of "next step" task names. The
// authorization flow crosses a process restart between "send user to the
// IdP" and "user comes back with a code"; an in-memory call stack cannot
// carry the follow-up action across that boundary, so it is recorded here
// before navigating away and popped by whichever process finishes the flow.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gdconnect/internal/store"
	"gdconnect/pkg/logging"
)

// DefaultKey is the storage key the task sequence is persisted under.
const DefaultKey = "next_tasks"

// MismatchError reports a Complete call whose task name does not match the
// tail of the ledger. It signals a desynchronized flow, not a recoverable
// condition.
type MismatchError struct {
	Expected string // tail of the ledger
	Got      string // name supplied by the caller
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("continuation ledger desynchronized: completing %q but next task is %q", e.Got, e.Expected)
}

// Ledger stores an ordered sequence of pending task names in the durable
// store as a JSON array.
type Ledger struct {
	store store.Store
	key   string
}

// New creates a ledger over the given store.
func New(s store.Store) *Ledger {
	return &Ledger{store: s, key: DefaultKey}
}

// Schedule appends taskName to the persisted sequence, creating it if
// necessary.
func (l *Ledger) Schedule(ctx context.Context, taskName string) error {
	tasks, err := l.load(ctx)
	if err != nil {
		return err
	}
	tasks = append(tasks, taskName)

	logging.Debug("Ledger", "scheduled task %q (%d pending)", taskName, len(tasks))
	return l.save(ctx, tasks)
}

// PeekNext returns the last-scheduled task name, or "" when the ledger is
// empty.
func (l *Ledger) PeekNext(ctx context.Context) (string, error) {
	tasks, err := l.load(ctx)
	if err != nil {
		return "", err
	}
	if len(tasks) == 0 {
		return "", nil
	}
	return tasks[len(tasks)-1], nil
}

// Complete removes taskName from the tail of the ledger. The popped name
// must match the caller-supplied one; a mismatch means the flow and the
// ledger disagree about what happens next and is returned as a
// MismatchError.
func (l *Ledger) Complete(ctx context.Context, taskName string) error {
	tasks, err := l.load(ctx)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		err := &MismatchError{Expected: "", Got: taskName}
		logging.Error("Ledger", err, "completing task on an empty ledger")
		return err
	}

	tail := tasks[len(tasks)-1]
	if tail != taskName {
		err := &MismatchError{Expected: tail, Got: taskName}
		logging.Error("Ledger", err, "task completion mismatch")
		return err
	}

	tasks = tasks[:len(tasks)-1]
	if len(tasks) == 0 {
		return l.store.Delete(ctx, l.key)
	}
	return l.save(ctx, tasks)
}

func (l *Ledger) load(ctx context.Context) ([]string, error) {
	raw, err := l.store.Get(ctx, l.key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read continuation ledger: %w", err)
	}

	var tasks []string
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("continuation ledger is corrupt: %w", err)
	}
	return tasks, nil
}

func (l *Ledger) save(ctx context.Context, tasks []string) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to marshal continuation ledger: %w", err)
	}
	return l.store.Set(ctx, l.key, string(data))
}
