package catalog

import (
	"github.com/smallbiznis/salesledger/internal/catalog/domain"
	"github.com/smallbiznis/salesledger/internal/catalog/repository"
	"github.com/smallbiznis/salesledger/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(svc domain.Service) domain.Lookup { return svc }),
)
