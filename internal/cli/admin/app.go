package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/inbox/internal/config"
	"github.com/cloo-solutions/inbox/internal/openai"
	"github.com/cloo-solutions/inbox/internal/repository"
	"github.com/cloo-solutions/inbox/internal/scraper"
	"github.com/cloo-solutions/inbox/internal/service"
	"github.com/cloo-solutions/inbox/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// app holds the services shared by serve and the maintenance commands.
type app struct {
	mockMode  bool
	items     *service.ItemService
	retriever *service.Retriever
	asker     *service.AskService
	backfill  *service.EmbeddingService
	prober    *openai.Prober
}

type appOptions struct {
	// resolveModel probes CHAT_MODELS at startup; maintenance commands skip it.
	resolveModel bool
}

func newApp(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, opts appOptions) (*app, error) {
	itemRepo := repository.NewItemRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	a := &app{mockMode: !cfg.HasProvider()}

	var (
		client    *openai.Client
		generator service.Generator
		chatAPI   openai.API
		chatModel string
	)
	if a.mockMode {
		log.Println("no valid OPENAI_API_KEY: running in mock mode with keyword search only")
	} else {
		client = openai.NewClientWithConfig(openai.Config{
			APIKey:              cfg.OpenAIAPIKey,
			BaseURL:             cfg.OpenAIBaseURL,
			EmbeddingModel:      cfg.EmbeddingModel,
			EmbeddingDimensions: cfg.EmbeddingDimensions,
			CacheSize:           cfg.QueryCacheSize,
		})
		chatAPI = client.API()

		models := cfg.ChatModelList()
		if len(models) == 0 {
			return nil, fmt.Errorf("INBOX_CHAT_MODELS must name at least one model")
		}
		chatModel = models[0]
		if opts.resolveModel {
			resolved, err := openai.ResolveChatModel(ctx, chatAPI, models, cfg.ProbeTimeout)
			if err != nil {
				log.Printf("no chat model responded (%v): answers will fall back to keyword search when generation fails", err)
			}
			chatModel = resolved
		}
		generator = openai.NewGenerator(chatAPI, chatModel)
	}

	embedder := openai.NewEmbedder(client)
	embeddingModel := ""
	if client != nil {
		embeddingModel = client.Model()
	}

	itemOpts := []service.ItemServiceOption{
		service.WithChunkConfig(service.ChunkConfig{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap}),
		service.WithExtractor(scraper.New(scraper.Config{
			Timeout:   cfg.ScrapeTimeout,
			RateLimit: cfg.ScrapeRate,
		})),
	}
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready for page snapshots", cfg.S3Bucket)
		itemOpts = append(itemOpts, service.WithArchiver(s3Client))
	}

	a.items = service.NewItemService(itemRepo, txRunner, embedder, itemOpts...)
	a.retriever = service.NewRetriever(chunkRepo, itemRepo, embedder)
	a.asker = service.NewAskService(a.retriever, service.NewSynthesizer(generator, a.retriever, cfg.GenerationTimeout))
	a.prober = openai.NewProber(chatAPI, chatModel, cfg.ProbeTimeout)
	if !a.mockMode {
		a.backfill = service.NewEmbeddingService(embedder, chunkRepo, embeddingModel)
	}

	return a, nil
}
