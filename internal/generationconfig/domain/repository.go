package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Repository is the scheduler's view of generation configurations.
type Repository interface {
	// LoadActiveDueCandidates returns every active config of an active
	// tenant with a non-null next generation date, in deterministic order.
	// Date comparison happens in the caller because "due" depends on the
	// tenant's timezone, not the database clock.
	LoadActiveDueCandidates(ctx context.Context) ([]DueCandidate, error)

	// UpdateNextGenerationDate moves a single config's schedule forward.
	UpdateNextGenerationDate(ctx context.Context, configID snowflake.ID, next time.Time) error

	Get(ctx context.Context, configID snowflake.ID) (*GenerationConfig, error)
	Create(ctx context.Context, cfg *GenerationConfig) error
	Update(ctx context.Context, cfg *GenerationConfig) error
}
