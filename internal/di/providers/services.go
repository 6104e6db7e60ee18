package providers

import (
	"github.com/samber/do/v2"

	"github.com/readmateapp/readmate-server/internal/insight"
	"github.com/readmateapp/readmate-server/internal/logger"
	"github.com/readmateapp/readmate-server/internal/service"
)

// ProvideInsightService provides the insights dashboard service.
func ProvideInsightService(i do.Injector) (*service.InsightService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	aggregator := do.MustInvoke[*insight.Aggregator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewInsightService(storeHandle.Store, aggregator, log.Logger), nil
}
