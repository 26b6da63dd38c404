package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/Vibhav-Deo/documentation-assistant/internal/ai"
	"github.com/Vibhav-Deo/documentation-assistant/internal/config"
	"github.com/Vibhav-Deo/documentation-assistant/internal/fieldcrypt"
	"github.com/Vibhav-Deo/documentation-assistant/internal/handler"
	"github.com/Vibhav-Deo/documentation-assistant/internal/job"
	"github.com/Vibhav-Deo/documentation-assistant/internal/middleware"
	"github.com/Vibhav-Deo/documentation-assistant/internal/repo"
	"github.com/Vibhav-Deo/documentation-assistant/internal/schedule"
	"github.com/Vibhav-Deo/documentation-assistant/internal/service"
	"github.com/Vibhav-Deo/documentation-assistant/internal/vectorstore"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "docassist",
		Short: "documentation assistant backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the docassist server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			db, err := repo.Open(cfg.Database.DSN())
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := repo.ApplyMigrations(db, cfg.MigrationsDir); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, db)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func buildEmbedder(cfg config.EmbeddingConfig) (ai.IEmbedder, error) {
	provider, err := ai.NewEmbedProvider(cfg.Provider, cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("init embed provider: %w", err)
	}
	primary := ai.NewEmbedder(provider, cfg.Model)
	if cfg.Fallback == nil {
		return primary, nil
	}
	fallbackProvider, err := ai.NewEmbedProvider(cfg.Fallback.Provider, cfg.Fallback.Data)
	if err != nil {
		return nil, fmt.Errorf("init fallback embed provider: %w", err)
	}
	return ai.NewGroupEmbedder([]ai.EmbedderEntry{
		{Name: cfg.Provider, Embedder: primary},
		{Name: cfg.Fallback.Provider, Embedder: ai.NewEmbedder(fallbackProvider, cfg.Fallback.Model)},
	}), nil
}

func runServer(cfg *config.Config, db *sql.DB) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logutil.GetLogger(ctx).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("db_host", cfg.Database.Host),
		zap.String("embed_provider", cfg.Embedding.Provider),
		zap.Int("embed_dimension", cfg.Embedding.Dimension),
	)

	orgRepo := repo.NewOrganizationRepo(db)
	repositoryRepo := repo.NewRepositoryRepo(db)
	ticketRepo := repo.NewTicketRepo(db)
	commitRepo := repo.NewCommitRepo(db)
	pullRepo := repo.NewPullRequestRepo(db)
	codeFileRepo := repo.NewCodeFileRepo(db)
	decisionRepo := repo.NewDecisionRepo(db)

	index := vectorstore.NewPgIndex(db, cfg.Embedding.Dimension)
	for _, collection := range vectorstore.SharedCollections() {
		if err := index.EnsureCollection(ctx, collection); err != nil {
			return fmt.Errorf("ensure collection %s: %w", collection, err)
		}
	}

	embedder, err := buildEmbedder(cfg.Embedding)
	if err != nil {
		return err
	}

	crypt, err := fieldcrypt.New(ctx, cfg.EncryptionKey)
	if err != nil {
		return fmt.Errorf("init encryption gateway: %w", err)
	}

	indexerService := service.NewIndexerService(orgRepo, ticketRepo, commitRepo, pullRepo, codeFileRepo, index, embedder)
	documentService := service.NewDocumentService(orgRepo, index, embedder, crypt)
	searchService := service.NewSearchService(
		index, embedder, crypt,
		cfg.Search.EmbedCacheSize,
		time.Duration(cfg.Search.EmbedCacheTTLMin)*time.Minute,
		cfg.Search.DefaultLimit,
	)
	queryRouter := service.NewQueryRouter(searchService, orgRepo, cfg.Search.MaxContextItems, cfg.Search.MaxItemChars)
	relationshipService := service.NewRelationshipService(ticketRepo, commitRepo, pullRepo, repositoryRepo, codeFileRepo, index, crypt)
	gapService := service.NewGapService(
		ticketRepo, commitRepo, pullRepo,
		time.Duration(cfg.Gaps.OrphanLookbackDays)*24*time.Hour,
		time.Duration(cfg.Gaps.StaleAfterDays)*24*time.Hour,
	)
	impactService := service.NewImpactService(ticketRepo, commitRepo)
	orgService := service.NewOrgService(orgRepo, repositoryRepo, ticketRepo, decisionRepo, index)

	deps := handler.RouterDeps{
		Orgs:          handler.NewOrgHandler(orgService),
		Index:         handler.NewIndexHandler(indexerService, documentService),
		Search:        handler.NewSearchHandler(searchService, queryRouter),
		Relationships: handler.NewRelationshipHandler(relationshipService),
		Gaps:          handler.NewGapHandler(gapService),
		Impact:        handler.NewImpactHandler(impactService),
		JWTSecret:     []byte(cfg.JWTSecret),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewGapScanJob(orgRepo, gapService), cfg.Jobs.GapScanSpec); err != nil {
		return fmt.Errorf("schedule gap scan: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(ctx).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(ctx).Info("server stopping...")
	return nil
}
