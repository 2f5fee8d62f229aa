package data

import (
	"context"

	"github.com/mohamedkhairy/signal-monitor/internal/cache"
	"github.com/mohamedkhairy/signal-monitor/internal/models"
	"github.com/mohamedkhairy/signal-monitor/pkg/logger"
)

// CachedProvider serves fetches from a BarCache and falls back to the wrapped provider.
// Cache failures are logged and never fail a fetch.
type CachedProvider struct {
	provider Provider
	cache    cache.BarCache
}

// NewCachedProvider wraps a provider with a cache
func NewCachedProvider(provider Provider, c cache.BarCache) *CachedProvider {
	return &CachedProvider{provider: provider, cache: c}
}

// GetName returns the wrapped provider's name
func (p *CachedProvider) GetName() string {
	return p.provider.GetName()
}

// FetchBars returns cached bars when fresh, otherwise fetches and stores them
func (p *CachedProvider) FetchBars(ctx context.Context, symbol string) ([]models.Bar, error) {
	bars, ok, err := p.cache.Get(ctx, symbol)
	if err != nil {
		logger.Warn("Bar cache read failed",
			logger.Symbol(symbol),
			logger.ErrorField(err),
		)
	}
	if ok {
		return bars, nil
	}

	bars, err = p.provider.FetchBars(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, symbol, bars); err != nil {
		logger.Warn("Bar cache write failed",
			logger.Symbol(symbol),
			logger.ErrorField(err),
		)
	}
	return bars, nil
}
