package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"spendchat/internal/adapters/embedding"
	"spendchat/internal/adapters/filewatcher"
	"spendchat/internal/adapters/llm"
	"spendchat/internal/adapters/source"
	"spendchat/internal/adapters/vectordb"
	"spendchat/internal/app"
	"spendchat/internal/config"
	"spendchat/internal/domain/entities"
	"spendchat/internal/domain/ports"
)

func main() {
	var cfgPath string
	var rebuild bool
	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to YAML config file")
	flag.BoolVar(&rebuild, "rebuild", false, "Force a full re-embed of the index")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	embedder := buildEmbedder(ctx, cfg)
	generator := buildGenerator(ctx, cfg)
	store := buildStore(cfg)

	application := app.New(
		source.NewCSVSource(cfg.Data.CSVPath),
		embedder,
		store,
		generator,
		app.Options{
			TopK:            cfg.Retriever.TopK,
			EmbedBatchSize:  cfg.Retriever.BatchSize,
			GenerateTimeout: time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
		},
	)

	log.Printf("[INFO] building index from %s", cfg.Data.CSVPath)
	if rebuild {
		err = application.Rebuild(ctx)
	} else {
		err = application.BuildIndex(ctx)
	}
	if err != nil {
		log.Fatalf("index build failed: %v", err)
	}

	stats := application.Stats()
	log.Printf("[INFO] %d records indexed, total spend $%.2f, avg price $%.2f/KG",
		stats.Records, stats.TotalSpendUSD, stats.AvgPricePerKG)

	if cfg.Data.Watch {
		watchSource(ctx, application, cfg.Data.CSVPath)
	}

	runREPL(ctx, application)
}

func buildEmbedder(ctx context.Context, cfg *config.AppConfig) ports.EmbeddingService {
	switch cfg.Embedder.Type {
	case "gemini":
		adapter, err := embedding.NewGeminiAdapter(ctx, apiKey(cfg.Embedder.Gemini), cfg.Embedder.Gemini.Model)
		if err != nil {
			log.Fatalf("gemini embedder init failed: %v", err)
		}
		return adapter
	case "ollama":
		if cfg.Embedder.Ollama == nil {
			log.Fatalf("ollama embedder config missing")
		}
		return embedding.NewOllamaAdapter(cfg.Embedder.Ollama.BaseURL, cfg.Embedder.Ollama.Model)
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
		return nil
	}
}

func buildGenerator(ctx context.Context, cfg *config.AppConfig) ports.GenerationService {
	switch cfg.Generator.Type {
	case "gemini":
		adapter, err := llm.NewGeminiAdapter(ctx, apiKey(cfg.Generator.Gemini), cfg.Generator.Gemini.Model)
		if err != nil {
			log.Fatalf("gemini generator init failed: %v", err)
		}
		return adapter
	case "ollama":
		if cfg.Generator.Ollama == nil {
			log.Fatalf("ollama generator config missing")
		}
		return llm.NewOllamaAdapter(cfg.Generator.Ollama.BaseURL, cfg.Generator.Ollama.Model)
	default:
		log.Fatalf("unknown generator: %s", cfg.Generator.Type)
		return nil
	}
}

func buildStore(cfg *config.AppConfig) ports.VectorStore {
	switch cfg.VectorStore.Type {
	case "chromem":
		store, err := vectordb.NewChromemStore(cfg.VectorStore.Path, cfg.VectorStore.Collection)
		if err != nil {
			log.Fatalf("chromem store init failed: %v", err)
		}
		return store
	case "sqlite":
		store, err := vectordb.NewSQLiteStore(cfg.VectorStore.Path)
		if err != nil {
			log.Fatalf("sqlite store init failed: %v", err)
		}
		return store
	case "memory":
		return vectordb.NewMemoryStore()
	default:
		log.Fatalf("unknown vector store: %s", cfg.VectorStore.Type)
		return nil
	}
}

func apiKey(cfg *config.GeminiConfig) string {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		log.Fatalf("environment variable %s is not set", cfg.APIKeyEnv)
	}
	return key
}

// watchSource rebuilds the index whenever the source file settles after a
// change. Queries block during a rebuild and resume against the new index.
func watchSource(ctx context.Context, application *app.App, path string) {
	watcher, err := filewatcher.New(0)
	if err != nil {
		log.Fatalf("file watcher init failed: %v", err)
	}

	signals, err := watcher.Watch(ctx, path)
	if err != nil {
		log.Fatalf("watching %s failed: %v", path, err)
	}
	log.Printf("[INFO] watching %s for changes", path)

	go func() {
		for range signals {
			log.Printf("[INFO] %s changed, rebuilding index", path)
			if err := application.Rebuild(ctx); err != nil {
				log.Printf("[ERROR] rebuild failed: %v", err)
				continue
			}
			stats := application.Stats()
			log.Printf("[INFO] rebuilt index with %d records", stats.Records)
		}
	}()
}

func runREPL(ctx context.Context, application *app.App) {
	fmt.Println("Ask questions about the spend data. Type 'exit' to quit.")

	var history []entities.ConversationTurn
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			break
		}

		answer, err := application.Answer(ctx, query, history)
		if err != nil {
			log.Printf("[ERROR] query failed: %v", err)
			continue
		}

		fmt.Println()
		fmt.Println(answer.Text)
		fmt.Println()

		history = append(history,
			entities.ConversationTurn{Role: "user", Content: query},
			entities.ConversationTurn{Role: "assistant", Content: answer.Text},
		)
	}

	if err := scanner.Err(); err != nil {
		log.Printf("[ERROR] reading input: %v", err)
	}
}
