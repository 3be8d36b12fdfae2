package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kaotoio/kaoto/internal/config"
	"github.com/kaotoio/kaoto/pkg/api"
)

type (
	// Record is one archived flow state
	Record struct {
		State     *api.FlowsState `json:"state"`
		CreatedAt time.Time       `json:"createdAt"`
		ID        string          `json:"id"`
		Version   int64           `json:"version"`
	}

	// Store persists records keyed by state version
	Store interface {
		Put(ctx context.Context, rec *Record) error
		Get(ctx context.Context, version int64) (*Record, error)
		Latest(ctx context.Context) (*Record, error)
		Delete(ctx context.Context, version int64) error
		Close() error
	}
)

var (
	ErrNotFound      = errors.New("snapshot not found")
	ErrStoreDisabled = errors.New("snapshot store disabled")
	ErrNilState      = errors.New("snapshot state is nil")
)

// NewRecord wraps a published state for archiving
func NewRecord(s *api.FlowsState) *Record {
	return &Record{
		State:     s,
		CreatedAt: time.Now().UTC(),
		ID:        uuid.New().String(),
		Version:   s.Version,
	}
}

// Archiver returns a state handler that writes every state it receives
// to the store
func Archiver(store Store) func(context.Context, *api.FlowsState) error {
	return func(ctx context.Context, s *api.FlowsState) error {
		if s == nil {
			return ErrNilState
		}
		return store.Put(ctx, NewRecord(s))
	}
}

// Open connects the store selected by the configuration
func Open(ctx context.Context, cfg *config.SnapshotConfig) (Store, error) {
	switch cfg.Store {
	case config.StoreBlob:
		return NewBlobStore(ctx, cfg.BlobURL, cfg.Prefix)
	case config.StoreRedis:
		return NewRedisStore(ctx, cfg)
	case config.StoreNone, "":
		return nil, ErrStoreDisabled
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrInvalidStore, cfg.Store)
	}
}
