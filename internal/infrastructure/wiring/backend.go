package wiring

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/architect/internal/infrastructure/config"
	"github.com/felixgeelhaar/architect/pkg/domain"
	infraPlugin "github.com/felixgeelhaar/architect/pkg/plugin"
	"github.com/felixgeelhaar/architect/pkg/todoist"
)

// LoadBackend resolves the configured task backend. The default is the
// Todoist REST client; ai.yaml may point at a plugin binary instead. The
// returned cleanup stops a plugin subprocess and is a no-op otherwise.
func LoadBackend(root string) (domain.TaskBackend, func(), error) {
	cfg, err := config.LoadAIConfig(root)
	if err != nil {
		return nil, nil, err
	}

	if cfg != nil && cfg.Backend != "" && cfg.Backend != "todoist" {
		if cfg.PluginBinary == "" {
			return nil, nil, fmt.Errorf("backend %q has no plugin_binary configured in ai.yaml", cfg.Backend)
		}
		loader := infraPlugin.NewLoader()
		impl, err := loader.Load(cfg.PluginBinary)
		if err != nil {
			return nil, nil, fmt.Errorf("load backend plugin: %w", err)
		}
		if err := impl.Init(map[string]string{"workspace": root}); err != nil {
			loader.Cleanup()
			return nil, nil, fmt.Errorf("init backend plugin: %w", err)
		}
		return infraPlugin.NewBackendAdapter(impl), loader.Cleanup, nil
	}

	token := os.Getenv("TODOIST_API_TOKEN")
	if token == "" {
		return nil, nil, fmt.Errorf("TODOIST_API_TOKEN is not set")
	}
	return todoist.NewClient(token), func() {}, nil
}
