package rates

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/ndelgado/cargotrack/internal/config"
)

// Module exposes the currency pair and the ordered provider chain to the
// fx graph.
var Module = fx.Provide(newPair, newSources)

func newPair(cfg *config.Config) PairConfig {
	return PairConfig{
		Base:  cfg.PairBase,
		Quote: cfg.PairQuote,
		Min:   cfg.RateMin,
		Max:   cfg.RateMax,
	}
}

type sourcesParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// newSources builds the chain in priority order; providers without a
// configured URL are left out so a partial configuration still works.
func newSources(p sourcesParams) ([]Source, error) {
	var sources []Source

	if p.Config.BCVProviderURL != "" {
		src, err := NewBCVSource(p.Config.BCVProviderURL, p.Config.ProviderTimeout, p.Logger)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	if p.Config.DolarAPIProviderURL != "" {
		src, err := NewDolarAPISource(p.Config.DolarAPIProviderURL, p.Config.ProviderTimeout, p.Logger)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	if p.Config.ERAPIProviderURL != "" {
		src, err := NewERAPISource(p.Config.ERAPIProviderURL, p.Config.PairQuote, p.Config.ProviderTimeout, p.Logger)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	return sources, nil
}
