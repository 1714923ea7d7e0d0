package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kbridge/kbridge/internal/adapters/driven/history/sqlite"
	llmopenai "github.com/kbridge/kbridge/internal/adapters/driven/llm/openai"
	"github.com/kbridge/kbridge/internal/adapters/driven/mcpclient"
	"github.com/kbridge/kbridge/internal/adapters/driving/httpapi"
	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/core/ports/driven"
	"github.com/kbridge/kbridge/internal/core/services"
)

var (
	apiPort    int
	apiMCPURL  string
	apiHistory string
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST middle layer",
	Long: `Start the REST API that lets a web client chat with the knowledge base.

Chat turns run a tool loop against the LLM; tool calls are dispatched to a
kbridge MCP server (see --mcp-url), and conversation history is persisted
per session in a local SQLite database.

Credentials come from the environment (KB_STORE_URL, KB_STORE_KEY,
OPENAI_API_KEY) and are forwarded to the MCP server as headers.`,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().IntVarP(&apiPort, "port", "p", 3001, "HTTP port")
	apiCmd.Flags().StringVar(&apiMCPURL, "mcp-url", "http://localhost:8080/mcp", "MCP server endpoint")
	apiCmd.Flags().StringVar(&apiHistory, "history-db", "", "SQLite conversation history path (default ~/.kbridge/conversations.db)")
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, _ []string) error {
	creds, err := domain.ResolveCredentials(nil, envSnapshot())
	if err != nil {
		return err
	}

	historyPath := apiHistory
	if historyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		historyPath = filepath.Join(home, ".kbridge", "conversations.db")
	}
	if err := os.MkdirAll(filepath.Dir(historyPath), 0700); err != nil {
		return err
	}

	history, err := sqlite.NewStore(historyPath)
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}

	llm, err := llmopenai.NewLLMService(llmopenai.Config{
		APIKey: creds.ProviderKey,
		Model:  configStore.GetString("openai.chat_model"),
	})
	if err != nil {
		history.Close()
		return err
	}

	tools, err := mcpclient.Connect(cmd.Context(), mcpclient.Config{
		Endpoint: apiMCPURL,
		Headers: map[string]string{
			domain.HeaderStoreURL:    creds.StoreURL,
			domain.HeaderStoreKey:    creds.StoreKey,
			domain.HeaderProviderKey: creds.ProviderKey,
		},
	})
	if err != nil {
		history.Close()
		llm.Close()
		return fmt.Errorf("connecting to MCP server at %s: %w", apiMCPURL, err)
	}
	defer closeAll([]io.Closer{history, llm, tools})

	systemPrompt, _ := promptStore.Load(driven.PromptChatSystem)
	chat := services.NewChatService(llm, tools, history, systemPrompt)

	// File operations go straight to the store rather than through the
	// MCP round trip.
	ports, err := buildPorts(creds)
	if err != nil {
		return err
	}
	defer closeAll(ports.Closers)

	server := httpapi.NewServer(chat, ports.Document)

	addr := fmt.Sprintf(":%d", apiPort)
	fmt.Fprintf(cmd.ErrOrStderr(), "REST API listening on http://localhost%s\n", addr)
	return server.Start(cmd.Context(), addr)
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		c.Close() //nolint:errcheck
	}
}
