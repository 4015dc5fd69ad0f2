package console

import (
	"bufio"
	"context"
	"io"
)

// lineQueue is a bounded channel of operator input lines. One goroutine
// fills it from the terminal; the single UI loop and its prompts drain it.
type lineQueue struct {
	ch   chan string
	done chan struct{}
	err  error
}

func newLineQueue(size int) *lineQueue {
	if size <= 0 {
		size = 1
	}
	return &lineQueue{ch: make(chan string, size), done: make(chan struct{})}
}

// pump reads r line by line until EOF or ctx is cancelled.
func (q *lineQueue) pump(ctx context.Context, r io.Reader) {
	defer close(q.done)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := q.publish(ctx, sc.Text()); err != nil {
			q.err = err
			return
		}
	}
	q.err = sc.Err()
}

func (q *lineQueue) publish(ctx context.Context, line string) error {
	select {
	case q.ch <- line:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// next blocks for the next line. It returns io.EOF once input is
// exhausted and every queued line has been consumed.
func (q *lineQueue) next(ctx context.Context) (string, error) {
	select {
	case line := <-q.ch:
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-q.done:
		select {
		case line := <-q.ch:
			return line, nil
		default:
		}
		if q.err != nil {
			return "", q.err
		}
		return "", io.EOF
	}
}
