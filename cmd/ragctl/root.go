package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	ragate "github.com/kailas-cloud/ragate/pkg/sdk"
)

// gateway is the part of the SDK client the commands use.
type gateway interface {
	Query(ctx context.Context, req ragate.QueryRequest) (ragate.QueryResult, error)
	Ingest(ctx context.Context, docs []ragate.Document) (int, error)
	Stats(ctx context.Context) (ragate.Stats, error)
	Close()
}

type globalOptions struct {
	driver         string
	addr           string
	password       string
	collection     string
	dimensions     int
	apiKey         string
	baseURL        string
	embeddingModel string
	chatModel      string
	verbose        bool
}

var (
	opts globalOptions

	// client is set by PersistentPreRunE; tests replace newGateway.
	client     gateway
	newGateway = connect
)

var rootCmd = &cobra.Command{
	Use:           "ragctl",
	Short:         "Ingest and query commercial data through the ragate pipeline",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		g, err := newGateway(cmd.Context(), &opts)
		if err != nil {
			return err
		}
		client = g
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if client != nil {
			client.Close()
			client = nil
		}
	},
}

func init() {
	// .env is optional; flags and real environment win.
	_ = godotenv.Load()

	f := rootCmd.PersistentFlags()
	f.StringVar(&opts.driver, "driver", envOr("DB_DRIVER", "valkey"), "store driver: valkey or redis")
	f.StringVar(&opts.addr, "addr", envOr("DB_ADDR", "localhost:6379"), "store address")
	f.StringVar(&opts.password, "password", os.Getenv("DB_PASSWORD"), "store password")
	f.StringVar(&opts.collection, "collection", "commercial_data", "document collection")
	f.IntVar(&opts.dimensions, "dimensions", 3072, "embedding dimensions")
	f.StringVar(&opts.apiKey, "openai-api-key", os.Getenv("OPENAI_API_KEY"), "OpenAI API key")
	f.StringVar(&opts.baseURL, "openai-base-url", os.Getenv("ORACLE_BASE_URL"), "OpenAI-compatible base URL")
	f.StringVar(&opts.embeddingModel, "embedding-model", envOr("EMBEDDING_MODEL", "text-embedding-3-large"), "embedding model")
	f.StringVar(&opts.chatModel, "chat-model", envOr("CHAT_MODEL", "gpt-4-turbo"), "chat model")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log SDK operations to stderr")
}

func connect(ctx context.Context, o *globalOptions) (gateway, error) {
	if o.apiKey == "" {
		return nil, errors.New("OpenAI API key required (--openai-api-key or OPENAI_API_KEY)")
	}
	emb, chat := openAIProviders(o)

	clientOpts := []ragate.Option{
		ragate.WithEmbedder(emb),
		ragate.WithCompleter(chat),
		ragate.WithCollection(o.collection),
		ragate.WithVectorDimensions(o.dimensions),
	}
	switch o.driver {
	case "valkey":
		clientOpts = append(clientOpts, ragate.WithValkey(o.addr, o.password))
	case "redis":
		clientOpts = append(clientOpts, ragate.WithRedis(o.addr, o.password))
	default:
		return nil, fmt.Errorf("unknown driver %q (want valkey or redis)", o.driver)
	}
	if o.verbose {
		clientOpts = append(clientOpts, ragate.WithLogger(
			slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})),
		))
	}

	c, err := ragate.New(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return c, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
