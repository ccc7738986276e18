// Package reorder persists a user-chosen order of sibling entities.
//
// A reorder runs in two phases. The caller first rearranges its local copy of
// the siblings (Move); Reconcile then writes the new positions one row at a
// time and, if any write fails, reloads the authoritative list so the caller
// never keeps a half-applied order.
package reorder

import (
	"context"
	"errors"
	"fmt"
)

// OtherID marks the client-synthesized "other" catch-all. It has no row and
// no persisted position, so it never takes part in a reorder.
const OtherID int64 = 0

// Item is one sibling as currently displayed, carrying the sort order it was
// last loaded with.
type Item struct {
	ID        int64 `json:"id"`
	SortOrder int   `json:"sortOrder"`
}

// Change is a single pending write.
type Change struct {
	ID        int64 `json:"id"`
	SortOrder int   `json:"sortOrder"`
}

// UpdateFunc persists the sort order of one entity.
type UpdateFunc func(ctx context.Context, id int64, sortOrder int) error

// ReloadFunc refetches the authoritative sibling list after a failed run.
type ReloadFunc func(ctx context.Context) error

// Result reports what a Reconcile run did.
type Result struct {
	Planned  int
	Applied  int
	Reloaded bool
}

// WriteError is returned when one of the sequential writes fails. Writes
// after it were never issued.
type WriteError struct {
	ID        int64
	SortOrder int
	Index     int
	Err       error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("reorder: update %d to sort order %d (write %d) failed: %v",
		e.ID, e.SortOrder, e.Index+1, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Move removes the item at from and reinserts it at to, keeping every other
// item in its relative order. The input slice is left untouched. Dropping an
// item on its own position, or passing an index out of range, returns the
// order unchanged.
func Move(items []Item, from, to int) []Item {
	out := make([]Item, len(items))
	copy(out, items)

	if from == to || from < 0 || to < 0 || from >= len(items) || to >= len(items) {
		return out
	}

	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]Item{moved}, out[to:]...)...)
	return out
}

// Plan returns the writes needed so that every item's persisted sort order
// equals its index, in ascending index order. Synthetic items are dropped
// before indices are assigned.
func Plan(items []Item) []Change {
	var changes []Change
	index := 0
	for _, it := range items {
		if it.ID == OtherID {
			continue
		}
		if it.SortOrder != index {
			changes = append(changes, Change{ID: it.ID, SortOrder: index})
		}
		index++
	}
	return changes
}

// Reconcile applies Plan(items) through update, strictly one write at a
// time. The first failing write aborts the run and reload is called exactly
// once; the returned error is a *WriteError, joined with the reload error
// when that fails too.
func Reconcile(ctx context.Context, items []Item, update UpdateFunc, reload ReloadFunc) (Result, error) {
	changes := Plan(items)
	res := Result{Planned: len(changes)}

	for i, ch := range changes {
		if err := ctx.Err(); err != nil {
			return res, rollback(ctx, &res, reload, &WriteError{ID: ch.ID, SortOrder: ch.SortOrder, Index: i, Err: err})
		}
		if err := update(ctx, ch.ID, ch.SortOrder); err != nil {
			return res, rollback(ctx, &res, reload, &WriteError{ID: ch.ID, SortOrder: ch.SortOrder, Index: i, Err: err})
		}
		res.Applied++
	}

	return res, nil
}

func rollback(ctx context.Context, res *Result, reload ReloadFunc, writeErr *WriteError) error {
	if reload == nil {
		return writeErr
	}
	// reload runs even if ctx was the cause of the failure
	res.Reloaded = true
	if err := reload(context.WithoutCancel(ctx)); err != nil {
		return errors.Join(writeErr, fmt.Errorf("reorder: reload failed: %w", err))
	}
	return writeErr
}
