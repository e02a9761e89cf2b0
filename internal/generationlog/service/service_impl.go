package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	logdomain "github.com/smallbiznis/rebill/internal/generationlog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  logdomain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  logdomain.Repository
}

func New(p Params) logdomain.Service {
	return &Service{
		log:   p.Log.Named("generationlog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// Append stamps the entry with an ID and timestamp and persists it. Entries
// are immutable once written.
func (s *Service) Append(ctx context.Context, entry *logdomain.GenerationLog) error {
	if entry == nil {
		return nil
	}
	if entry.ID == 0 {
		entry.ID = s.genID.Generate()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Metadata == nil {
		entry.Metadata = datatypes.JSONMap{}
	}
	return s.repo.Insert(ctx, entry)
}

func (s *Service) List(ctx context.Context, filter logdomain.ListFilter) ([]logdomain.GenerationLog, error) {
	return s.repo.List(ctx, filter)
}
