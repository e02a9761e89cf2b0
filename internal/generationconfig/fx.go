package generationconfig

import (
	"github.com/smallbiznis/rebill/internal/generationconfig/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("generationconfig",
	fx.Provide(repository.Provide),
)
