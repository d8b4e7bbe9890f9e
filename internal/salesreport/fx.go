package salesreport

import (
	"github.com/smallbiznis/salesledger/internal/salesreport/repository"
	"github.com/smallbiznis/salesledger/internal/salesreport/service"
	"go.uber.org/fx"
)

var Module = fx.Module("salesreport.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
