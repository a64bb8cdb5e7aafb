// Package store provides read access to the SBS volumes and their tag annotations.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kart-io/sbs-x/internal/model"
	mongodbopts "github.com/kart-io/sbs-x/pkg/options/mongodb"
)

// ErrNotFound is returned when a volume document does not exist.
var ErrNotFound = errors.New("document not found")

// Backend names.
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Factory defines the factory interface for creating stores.
type Factory interface {
	Volumes() VolumeStore
	Tags() TagStore
	Ping(ctx context.Context) error
	Close() error
}

// Reloader is implemented by factories whose content can change while the
// server runs.
type Reloader interface {
	// OnReload registers fn to run after every successful reload.
	OnReload(fn func())
}

// VolumeStore reads Volume documents.
type VolumeStore interface {
	// List returns every volume summary, ascending by volume.
	List(ctx context.Context) ([]model.VolumeSummary, error)
	Get(ctx context.Context, volume int) (*model.Volume, error)
	// SearchText preselects volumes whose question or answer text may contain term.
	SearchText(ctx context.Context, term string) ([]*model.Volume, error)
}

// TagStore reads VolumeTags documents.
type TagStore interface {
	Get(ctx context.Context, volume int) (*model.VolumeTags, error)
	// SearchByField preselects annotations where any value of field contains term.
	SearchByField(ctx context.Context, field model.TagField, term string) ([]*model.VolumeTags, error)
	// Distinct returns the sorted distinct values of field.
	Distinct(ctx context.Context, field model.TagField) ([]string, error)
}

// Config selects and configures the backend.
type Config struct {
	Backend  string
	DataFile string
	Mongo    *mongodbopts.Options
}

var (
	clientFactory Factory
	factoryErr    error
	once          sync.Once
)

// GetFactory returns the process wide storage factory, creating it on first use.
func GetFactory(ctx context.Context, cfg *Config) (Factory, error) {
	once.Do(func() {
		clientFactory, factoryErr = NewFactory(ctx, cfg)
	})

	if factoryErr != nil {
		return nil, fmt.Errorf("failed to get store factory: %w", factoryErr)
	}

	return clientFactory, nil
}

// NewFactory builds a factory for cfg.Backend without touching the shared instance.
func NewFactory(ctx context.Context, cfg *Config) (Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store config cannot be nil")
	}

	switch cfg.Backend {
	case BackendMongo:
		return NewMongoFactory(ctx, cfg.Mongo)
	case BackendMemory:
		return NewMemoryFactory(cfg.DataFile)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
