package data

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mohamedkhairy/signal-monitor/internal/models"
)

var (
	// ErrUnknownProvider is returned when no factory is registered for a provider type
	ErrUnknownProvider = errors.New("unknown provider type")
	// ErrSymbolNotFound is returned when a provider has no data source for a symbol
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrDuplicateProvider is returned when a provider type is registered twice
	ErrDuplicateProvider = errors.New("provider type already registered")
)

// Provider defines the interface for bar data sources
type Provider interface {
	// FetchBars returns the most recent bars for a symbol, oldest first.
	// An empty slice is a valid answer for a symbol with no data.
	FetchBars(ctx context.Context, symbol string) ([]models.Bar, error)

	// GetName returns the name/type of the provider (e.g., "mock", "csv")
	GetName() string
}

// Constructor builds a provider from its configuration
type Constructor func(ProviderConfig) (Provider, error)

// ProviderFactory creates provider instances
type ProviderFactory interface {
	// CreateProvider creates a new provider instance based on the provider type
	CreateProvider(providerType string, config ProviderConfig) (Provider, error)

	// RegisterProvider adds a constructor under a new provider type
	RegisterProvider(providerType string, ctor Constructor) error

	// ListProviders returns the available provider types in sorted order
	ListProviders() []string
}

// ProviderConfig holds configuration for a provider
type ProviderConfig struct {
	BarInterval time.Duration // bar size of generated data
	Bars        int           // bars returned per fetch; 0 means all available
	CSVDir      string        // directory holding {SYMBOL}.csv files
}

// DefaultProviderFactory knows the built-in "mock" and "csv" providers
type DefaultProviderFactory struct {
	ctors map[string]Constructor
}

func NewProviderFactory() *DefaultProviderFactory {
	return &DefaultProviderFactory{
		ctors: map[string]Constructor{
			"mock": NewMockProvider,
			"csv":  NewCSVProvider,
		},
	}
}

func (f *DefaultProviderFactory) CreateProvider(providerType string, config ProviderConfig) (Provider, error) {
	ctor, ok := f.ctors[providerType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, providerType)
	}
	return ctor(config)
}

func (f *DefaultProviderFactory) RegisterProvider(providerType string, ctor Constructor) error {
	if _, ok := f.ctors[providerType]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, providerType)
	}
	f.ctors[providerType] = ctor
	return nil
}

func (f *DefaultProviderFactory) ListProviders() []string {
	names := make([]string, 0, len(f.ctors))
	for name := range f.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
