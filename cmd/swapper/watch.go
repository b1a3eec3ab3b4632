package main

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"pushLaunch/internal/model"
	"pushLaunch/internal/quote"
)

type watchedQuote struct {
	Seq uint64 `json:"seq"`
	*model.Quote
}

// watchQuotes re-quotes req every interval until ctx ends. Requests overlap; only the
// result of the newest one is printed.
func watchQuotes(ctx context.Context, w io.Writer, logger *zap.Logger, latest *quote.Latest, req quote.Request, every time.Duration) error {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	issue := func() {
		defer wg.Done()
		q, err := latest.Quote(ctx, req)
		switch {
		case errors.Is(err, quote.ErrSuperseded):
			logger.Debug("quote superseded")
			return
		case err != nil:
			if ctx.Err() == nil {
				logger.Warn("quote failed", zap.Error(err))
			}
			return
		case q == nil:
			return
		}

		mu.Lock()
		defer mu.Unlock()
		current, seq := latest.Current()
		if current != q {
			return
		}
		if err := writeJSON(w, watchedQuote{Seq: seq, Quote: q}); err != nil {
			logger.Warn("write quote", zap.Error(err))
		}
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	wg.Add(1)
	go issue()
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil
		case <-ticker.C:
			wg.Add(1)
			go issue()
		}
	}
}
