// Package snapshot persists the whole care state as one JSON document.
// State is small (one ward) and mutations are serialized, so whole-state
// write-through is simpler and safer than row-level persistence.
package snapshot

import (
	"context"

	"github.com/wardflow/wardflow/internal/domain/care"
)

// Store loads and saves the full care state. Load returns (nil, nil) when
// no snapshot exists yet; callers seed a fresh state in that case.
type Store interface {
	Load(ctx context.Context) (*care.State, error)
	Save(ctx context.Context, st *care.State) error
}
