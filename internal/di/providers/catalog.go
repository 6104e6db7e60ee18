package providers

import (
	"github.com/samber/do/v2"

	"github.com/readmateapp/readmate-server/internal/catalog"
	"github.com/readmateapp/readmate-server/internal/config"
	"github.com/readmateapp/readmate-server/internal/insight"
	"github.com/readmateapp/readmate-server/internal/logger"
)

// ProvideCatalogClient provides the external book catalog client.
func ProvideCatalogClient(i do.Injector) (*catalog.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return catalog.NewClient(catalog.Config{
		BaseURL:           cfg.Catalog.BaseURL,
		RequestTimeout:    cfg.Catalog.RequestTimeout,
		CacheTTL:          cfg.Catalog.CacheTTL,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		Burst:             cfg.Catalog.Burst,
	}, log.Logger), nil
}

// ProvideAggregator provides the recommendation candidate aggregator
// with the configured pass thresholds.
func ProvideAggregator(i do.Injector) (*insight.Aggregator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	client := do.MustInvoke[*catalog.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	return insight.NewAggregator(client, insight.AggregatorConfig{
		TopicPassCap:      cfg.Insight.TopicPassCap,
		TopicLimit:        cfg.Insight.TopicLimit,
		TopicTarget:       cfg.Insight.TopicTarget,
		KeywordPassCap:    cfg.Insight.KeywordPassCap,
		KeywordLimit:      cfg.Insight.KeywordLimit,
		KeywordTarget:     cfg.Insight.KeywordTarget,
		FallbackThreshold: cfg.Insight.FallbackThreshold,
		FallbackLimit:     cfg.Insight.FallbackLimit,
	}, log.Logger), nil
}
