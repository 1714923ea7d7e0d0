// Package cli implements the kbridge command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kbridge/kbridge/internal/adapters/driven/config/file"
	"github.com/kbridge/kbridge/internal/adapters/driven/embedding/openai"
	"github.com/kbridge/kbridge/internal/adapters/driven/extract"
	"github.com/kbridge/kbridge/internal/adapters/driven/storage/postgres"
	visionopenai "github.com/kbridge/kbridge/internal/adapters/driven/vision/openai"
	"github.com/kbridge/kbridge/internal/adapters/driving/mcp"
	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/core/ports/driven"
	"github.com/kbridge/kbridge/internal/core/services"
	"github.com/kbridge/kbridge/internal/logger"
	"github.com/kbridge/kbridge/internal/postprocessors"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose bool
	envFile string

	configStore *file.ConfigStore
	promptStore *file.PromptStore
)

var rootCmd = &cobra.Command{
	Use:   "kbridge",
	Short: "Knowledge-base bridge: MCP tools and a REST layer over pgvector",
	Long: `kbridge exposes a document knowledge base (Postgres + pgvector) to LLMs.

It runs as an MCP tool server (stdio or HTTP with per-session credentials),
as a REST middle layer for web clients, or as a drop-folder watcher that
ingests files automatically.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)

		// Missing env file is fine; the environment may already be set.
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("loading %s: %w", envFile, err)
			}
		} else {
			godotenv.Load() //nolint:errcheck
		}

		var err error
		configStore, err = file.NewConfigStore(os.Getenv("KBRIDGE_CONFIG_DIR"))
		if err != nil {
			return fmt.Errorf("opening config store: %w", err)
		}
		promptStore, err = file.NewPromptStore("")
		if err != nil {
			return fmt.Errorf("opening prompt store: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment from this file")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// envSnapshot flattens the process environment into a map for credential
// resolution.
func envSnapshot() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// buildPorts wires one set of knowledge-base services from a resolved
// credential triple. Used once for stdio mode and per session in HTTP
// mode.
func buildPorts(creds domain.Credentials) (*mcp.Ports, error) {
	store, err := postgres.NewStore(postgres.Config{
		URL:        creds.StoreURL,
		ServiceKey: creds.StoreKey,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to store: %w", err)
	}

	embedder, err := openai.NewEmbeddingService(openai.Config{
		APIKey: creds.ProviderKey,
		Model:  configStore.GetString("openai.embedding_model"),
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	pipeline, err := postprocessors.FromConfig(configStore)
	if err != nil {
		store.Close()
		return nil, err
	}

	visionPrompt, _ := promptStore.Load(driven.PromptImageDescribe)
	vision, err := visionopenai.NewVisionService(visionopenai.Config{
		APIKey: creds.ProviderKey,
		Model:  configStore.GetString("openai.vision_model"),
		Prompt: visionPrompt,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	documents := services.NewDocumentService(
		store,
		extract.NewDefaultMux(),
		pipeline,
		embedder,
		vision,
		domain.Platform{HasFilesystem: true},
	)
	search := services.NewSearchService(store, embedder)

	return &mcp.Ports{
		Document: documents,
		Search:   search,
		Closers:  []io.Closer{store, embedder, vision},
	}, nil
}
