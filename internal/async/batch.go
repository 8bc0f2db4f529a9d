package async

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Outcome is the settled result of one batch item: a value or an error,
// never both meaningful at once.
type Outcome[R any] struct {
	Value R
	Err   error
}

// OK reports whether the item settled successfully.
func (o Outcome[R]) OK() bool { return o.Err == nil }

// Batch runs items through Worker with at most Concurrency in flight.
//
// Items are partitioned into consecutive chunks of Concurrency; every item
// of a chunk is launched together and the whole chunk must settle before the
// next chunk starts. This is a fixed-window bound, not a work-stealing pool:
// one slow item delays the following chunk. Worker errors, panics, timeouts
// and context cancellation all settle as failure outcomes; Run never loses
// an item and never propagates a panic.
type Batch[T, R any] struct {
	// Concurrency caps in-flight workers per chunk. Values below 1 mean 1.
	Concurrency int

	// ItemTimeout bounds each worker call. Zero disables the bound.
	ItemTimeout time.Duration

	// Worker processes one item. Required.
	Worker func(ctx context.Context, item T) (R, error)

	// OnSettle, when set, observes each outcome as it settles, before Run
	// returns. It may be called concurrently by items of the same chunk.
	OnSettle func(index int, out Outcome[R])
}

// Run executes every item and returns exactly len(items) outcomes in input
// order, regardless of completion order or individual failures.
func (b *Batch[T, R]) Run(ctx context.Context, items []T) []Outcome[R] {
	width := b.Concurrency
	if width < 1 {
		width = 1
	}
	outcomes := make([]Outcome[R], len(items))

	for start := 0; start < len(items); start += width {
		end := start + width
		if end > len(items) {
			end = len(items)
		}

		// A cancelled context settles the remaining items immediately
		// instead of launching workers that would ignore it.
		if err := ctx.Err(); err != nil {
			for i := start; i < len(items); i++ {
				outcomes[i] = Outcome[R]{Err: err}
				b.settle(i, outcomes[i])
			}
			return outcomes
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				outcomes[idx] = b.runOne(ctx, items[idx])
				b.settle(idx, outcomes[idx])
			}(i)
		}
		wg.Wait()
	}
	return outcomes
}

// runOne invokes the worker for a single item, converting panics and
// timeouts into failure outcomes. With ItemTimeout set the item settles at
// the deadline even if the worker ignores its context; the abandoned call
// finishes on its own and its result is dropped.
func (b *Batch[T, R]) runOne(ctx context.Context, item T) Outcome[R] {
	if b.ItemTimeout <= 0 {
		return b.invoke(ctx, item)
	}

	ctx, cancel := context.WithTimeout(ctx, b.ItemTimeout)
	defer cancel()

	done := make(chan Outcome[R], 1)
	go func() {
		done <- b.invoke(ctx, item)
	}()

	select {
	case out := <-done:
		return out
	case <-ctx.Done():
		return Outcome[R]{Err: ctx.Err()}
	}
}

// invoke calls the worker, capturing panics as errors.
func (b *Batch[T, R]) invoke(ctx context.Context, item T) (out Outcome[R]) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome[R]{Err: fmt.Errorf("batch worker panic: %v", r)}
		}
	}()

	value, err := b.Worker(ctx, item)
	if err != nil {
		return Outcome[R]{Err: err}
	}
	return Outcome[R]{Value: value}
}

func (b *Batch[T, R]) settle(index int, out Outcome[R]) {
	if b.OnSettle != nil {
		b.OnSettle(index, out)
	}
}
