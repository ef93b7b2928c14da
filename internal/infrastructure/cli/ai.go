package cli

import (
	"fmt"

	"github.com/felixgeelhaar/architect/internal/infrastructure/config"
	"github.com/felixgeelhaar/architect/pkg/storage"
	"github.com/spf13/cobra"
)

var (
	aiProvider     string
	aiModel        string
	aiBackend      string
	aiPluginBinary string
)

var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "Manage AI and backend configuration",
}

var aiConfigureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Configure the AI provider and task backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getWorkspaceRoot()
		if err != nil {
			return err
		}
		repo := storage.NewFilesystemRepository(root)
		if !repo.IsInitialized() {
			return fmt.Errorf("architect is not initialized in this directory (run 'architect init')")
		}

		cfg, err := config.LoadAIConfig(root)
		if err != nil {
			return fmt.Errorf("failed to load AI config: %w", err)
		}
		if cfg == nil {
			cfg = &config.AIConfig{}
		}

		if cmd.Flags().Changed("provider") {
			cfg.Provider = aiProvider
		}
		if cmd.Flags().Changed("model") {
			cfg.Model = aiModel
		}
		if cmd.Flags().Changed("backend") {
			cfg.Backend = aiBackend
		}
		if cmd.Flags().Changed("plugin-binary") {
			cfg.PluginBinary = aiPluginBinary
		}

		switch cfg.Provider {
		case "", "gemini", "anthropic", "openai":
		default:
			return fmt.Errorf("unknown provider %q (want gemini, anthropic, or openai)", cfg.Provider)
		}

		if err := config.SaveAIConfig(root, cfg); err != nil {
			return fmt.Errorf("failed to save AI config: %w", err)
		}

		fmt.Println("Configuration saved to .architect/ai.yaml")
		return nil
	},
}

var aiShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current AI configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getWorkspaceRoot()
		if err != nil {
			return err
		}
		cfg, err := config.LoadAIConfig(root)
		if err != nil {
			return err
		}
		if cfg == nil {
			fmt.Println("No AI configuration found; using defaults (gemini).")
			return nil
		}
		fmt.Printf("Provider: %s\n", valueOr(cfg.Provider, "gemini (default)"))
		fmt.Printf("Model:    %s\n", valueOr(cfg.Model, "(provider default)"))
		fmt.Printf("Backend:  %s\n", valueOr(cfg.Backend, "todoist (default)"))
		if cfg.PluginBinary != "" {
			fmt.Printf("Plugin:   %s\n", cfg.PluginBinary)
		}
		return nil
	},
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func init() {
	aiConfigureCmd.Flags().StringVar(&aiProvider, "provider", "", "AI provider (gemini, anthropic, openai)")
	aiConfigureCmd.Flags().StringVar(&aiModel, "model", "", "model name")
	aiConfigureCmd.Flags().StringVar(&aiBackend, "backend", "", "task backend (todoist or a plugin name)")
	aiConfigureCmd.Flags().StringVar(&aiPluginBinary, "plugin-binary", "", "path to the backend plugin binary")

	aiCmd.AddCommand(aiConfigureCmd)
	aiCmd.AddCommand(aiShowCmd)
	RootCmd.AddCommand(aiCmd)
}
