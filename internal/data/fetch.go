package data

import (
	"context"
	"fmt"
	"sync"

	"github.com/mohamedkhairy/signal-monitor/internal/models"
)

// FetchResult is the outcome of fetching one symbol
type FetchResult struct {
	Symbol string
	Bars   []models.Bar
	Err    error
}

// FetchAll fetches every symbol with at most workers concurrent requests.
// Results keep the order of symbols; one symbol failing does not affect the others.
func FetchAll(ctx context.Context, provider Provider, symbols []string, workers int) []FetchResult {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(symbols) {
		workers = len(symbols)
	}

	results := make([]FetchResult, len(symbols))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = fetchOne(ctx, provider, symbols[i])
			}
		}()
	}

	for i := range symbols {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// fetchOne turns a provider panic into an error for that symbol only
func fetchOne(ctx context.Context, provider Provider, symbol string) (result FetchResult) {
	result.Symbol = symbol
	defer func() {
		if rv := recover(); rv != nil {
			result.Bars = nil
			result.Err = fmt.Errorf("provider %s panicked fetching %s: %v", provider.GetName(), symbol, rv)
		}
	}()
	result.Bars, result.Err = provider.FetchBars(ctx, symbol)
	return result
}
