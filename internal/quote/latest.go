package quote

import (
	"context"
	"errors"
	"sync"

	"pushLaunch/internal/model"
)

// ErrSuperseded is returned for a quote whose request was overtaken by a newer one.
var ErrSuperseded = errors.New("quote superseded by a newer request")

// Latest applies only the result of the most recently issued request, so a slow early
// request cannot overwrite a faster later one.
type Latest struct {
	engine *Engine

	mu      sync.Mutex
	issued  uint64
	current *model.Quote
	applied uint64
}

func NewLatest(engine *Engine) *Latest {
	return &Latest{engine: engine}
}

// Quote issues a request and returns its result if no newer request was issued meanwhile.
func (l *Latest) Quote(ctx context.Context, req Request) (*model.Quote, error) {
	l.mu.Lock()
	l.issued++
	seq := l.issued
	l.mu.Unlock()

	q, err := l.engine.Quote(ctx, req)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.issued {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}
	l.current = q
	l.applied = seq
	return q, nil
}

// Current returns the last applied quote and its request sequence number.
func (l *Latest) Current() (*model.Quote, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current, l.applied
}
