package generationlog

import (
	"github.com/smallbiznis/rebill/internal/generationlog/repository"
	"github.com/smallbiznis/rebill/internal/generationlog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("generationlog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
