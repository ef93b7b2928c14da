package wiring

import (
	"github.com/felixgeelhaar/architect/internal/infrastructure/config"
	infraai "github.com/felixgeelhaar/architect/pkg/ai"
	domainai "github.com/felixgeelhaar/architect/pkg/domain/ai"
)

func LoadAIProvider(root string) (domainai.Provider, error) {
	cfg, err := config.LoadAIConfig(root)
	if err != nil {
		return nil, err
	}

	providerName := "gemini"
	modelName := ""

	if cfg != nil {
		if cfg.Provider != "" {
			providerName = cfg.Provider
		}
		if cfg.Model != "" {
			modelName = cfg.Model
		}
	}

	return infraai.NewProvider(providerName, modelName)
}
