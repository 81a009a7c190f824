package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damilare-ak/clinicnote/internal/async"
	"github.com/damilare-ak/clinicnote/internal/common"
	"github.com/damilare-ak/clinicnote/internal/dropbox"
	"github.com/damilare-ak/clinicnote/internal/export"
	"github.com/damilare-ak/clinicnote/internal/extract"
	"github.com/damilare-ak/clinicnote/internal/format"
	"github.com/damilare-ak/clinicnote/internal/ingest"
	"github.com/damilare-ak/clinicnote/internal/llm"
	"github.com/damilare-ak/clinicnote/internal/llm/anthropic"
	"github.com/damilare-ak/clinicnote/internal/llm/gemini"
	"github.com/damilare-ak/clinicnote/internal/llm/openai"
	"github.com/damilare-ak/clinicnote/internal/metadata"
	"github.com/damilare-ak/clinicnote/internal/notion"
	"github.com/damilare-ak/clinicnote/internal/pipeline"
	"github.com/damilare-ak/clinicnote/internal/repository"
	"github.com/damilare-ak/clinicnote/internal/web"
)

func main() {
	cfg := common.LoadConfig()
	logger, closeLog := common.SetupLogger(cfg.Logging.File, cfg.Logging.Level)
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open history database", "path", cfg.Database.Path, "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	repo := repository.NewSessionRepo(db, logger)

	template, err := llm.LoadPromptTemplate(cfg.LLM.PromptPath)
	if err != nil {
		logger.Error("failed to load prompt template", "path", cfg.LLM.PromptPath, "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: cfg.LLM.Timeout}
	var providers []llm.Provider
	if cfg.LLM.OpenAI.APIKey != "" {
		providers = append(providers, openai.NewClient(cfg.LLM.OpenAI, httpClient, logger))
	}
	if cfg.LLM.Anthropic.APIKey != "" {
		providers = append(providers, anthropic.NewClient(cfg.LLM.Anthropic, httpClient, logger))
	}
	if cfg.LLM.Gemini.APIKey != "" {
		providers = append(providers, gemini.NewClient(cfg.LLM.Gemini, httpClient, logger))
	}
	orch := llm.NewOrchestrator(providers, template, cfg.LLM.Timeout, logger)

	notionClient := notion.NewClient(cfg.Notion, &http.Client{Timeout: cfg.Notion.Timeout}, logger)
	store := notion.NewStore(notionClient, cfg.Notion.ChunkLimit, logger)

	status := pipeline.NewStatus()
	processor := pipeline.NewProcessor(
		extract.NewExtractor(logger),
		metadata.NewExtractor(logger),
		orch,
		format.NewFormatter(),
		store,
		repo,
		status,
		logger,
	)

	queue := async.NewTaskQueue(logger,
		async.WithQueueSize(512),
		async.WithTaskTimeout(5*time.Minute),
	)

	var monitor *dropbox.Monitor
	if cfg.Dropbox.Token != "" {
		source := dropbox.NewClient(cfg.Dropbox, &http.Client{}, logger)
		monitor = dropbox.NewMonitor(source, func(entry dropbox.FileEntry, localPath string) error {
			result := processor.ProcessOne(ctx, localPath)
			if !result.Success {
				return errors.New(result.Error)
			}
			return nil
		}, cfg.Dropbox.PollInterval, os.TempDir(), cfg.Dropbox.LongPollTimeout > 0, logger)
		monitor.SetOnCheck(status.SetLastCheck)
		monitor.Start(ctx)
		status.SetRunning(true)
	}

	if cfg.Ingest.InboxDir != "" {
		evCh, errCh, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Root:        cfg.Ingest.InboxDir,
			InitialScan: cfg.Ingest.InitialScan,
			Debounce:    cfg.Ingest.Debounce,
		}, logger)
		if err != nil {
			logger.Error("failed to start inbox watcher", "dir", cfg.Ingest.InboxDir, "error", err)
			os.Exit(1)
		}
		go func() {
			for path := range evCh {
				p := path
				_ = queue.Enqueue(ctx, async.Task{
					Name: "inbox:" + p,
					Run: func(taskCtx context.Context) error {
						result := processor.ProcessOne(taskCtx, p)
						if !result.Success {
							return errors.New(result.Error)
						}
						return nil
					},
				})
			}
		}()
		go func() {
			for err := range errCh {
				logger.Warn("inbox watcher error", "error", err)
			}
		}()
	}

	srv := web.NewServer(cfg.Server.HTTPAddr, processor, queue, repo, export.NewService(repo, logger), logger)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("web server failed", "error", err)
			stop()
		}
	}()

	logger.Info("clinicnoted started",
		"http_addr", cfg.Server.HTTPAddr,
		"providers", cfg.ConfiguredProviders(),
		"dropbox", cfg.Dropbox.Token != "",
		"inbox", cfg.Ingest.InboxDir,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	if monitor != nil {
		monitor.Stop()
		status.SetRunning(false)
	}
	queue.Shutdown(context.Background())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("web server shutdown error", "error", err)
	}
}
