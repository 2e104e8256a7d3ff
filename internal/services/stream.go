package services

import "context"

// TextStream is a pull iterator over upstream text deltas.
//
//	for s.Next() {
//		write(s.Current())
//	}
//	if err := s.Err(); err != nil { ... }
//
// Next returns false once on clean termination or failure; Err tells the two
// apart. Close releases the upstream connection and is safe to call twice.
type TextStream interface {
	Next() bool
	Current() string
	Err() error
	Close() error
}

// chanStream adapts a push-style producer (a callback invoked per delta) to
// TextStream. The producer runs in its own goroutine bound to a cancellable
// context; its return value becomes the stream's terminal error.
type chanStream struct {
	deltas <-chan string
	done   <-chan error
	cancel context.CancelFunc

	cur      string
	err      error
	finished bool
}

func newChanStream(ctx context.Context, produce func(ctx context.Context, emit func(string) error) error) *chanStream {
	ctx, cancel := context.WithCancel(ctx)
	deltas := make(chan string)
	done := make(chan error, 1)

	go func() {
		defer close(deltas)
		done <- produce(ctx, func(text string) error {
			select {
			case deltas <- text:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	return &chanStream{deltas: deltas, done: done, cancel: cancel}
}

func (s *chanStream) Next() bool {
	if s.finished {
		return false
	}
	if d, ok := <-s.deltas; ok {
		s.cur = d
		return true
	}
	// done is written before deltas is closed
	s.err = <-s.done
	s.finished = true
	return false
}

func (s *chanStream) Current() string { return s.cur }

func (s *chanStream) Err() error { return s.err }

func (s *chanStream) Close() error {
	s.cancel()
	return nil
}

// SliceStream replays fixed deltas, then ends with Failure (nil for a clean end).
type SliceStream struct {
	Deltas   []string
	Failure  error
	i        int
	cur      string
	closed   bool
	finished bool
}

func (s *SliceStream) Next() bool {
	if s.closed || s.i >= len(s.Deltas) {
		s.finished = true
		return false
	}
	s.cur = s.Deltas[s.i]
	s.i++
	return true
}

func (s *SliceStream) Current() string { return s.cur }

func (s *SliceStream) Err() error {
	if s.finished {
		return s.Failure
	}
	return nil
}

func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *SliceStream) Closed() bool { return s.closed }
