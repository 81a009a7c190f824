package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/damilare-ak/clinicnote/internal/common"
	"github.com/damilare-ak/clinicnote/internal/extract"
	"github.com/damilare-ak/clinicnote/internal/format"
	"github.com/damilare-ak/clinicnote/internal/llm"
	"github.com/damilare-ak/clinicnote/internal/llm/anthropic"
	"github.com/damilare-ak/clinicnote/internal/llm/gemini"
	"github.com/damilare-ak/clinicnote/internal/llm/openai"
	"github.com/damilare-ak/clinicnote/internal/metadata"
	"github.com/damilare-ak/clinicnote/internal/notion"
	"github.com/damilare-ak/clinicnote/internal/pipeline"
	"github.com/damilare-ak/clinicnote/internal/repository"
)

// clinicnote processes a single transcript file synchronously and prints the
// result as JSON. Useful for manual reprocessing and smoke tests.
func main() {
	var (
		filePath = flag.String("file", "", "path to a transcript file (pdf or text)")
		noStore  = flag.Bool("dry-run", false, "generate the note but skip the document store")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: clinicnote -file <transcript> [-dry-run]")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	logger, closeLog := common.SetupLogger(cfg.Logging.File, cfg.Logging.Level)
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil && !*noStore {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := repository.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open history database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	repo := repository.NewSessionRepo(db, logger)

	template, err := llm.LoadPromptTemplate(cfg.LLM.PromptPath)
	if err != nil {
		logger.Error("failed to load prompt template", "error", err)
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

	var store pipeline.NoteStore
	if *noStore {
		store = printStore{}
	} else {
		client := notion.NewClient(cfg.Notion, &http.Client{Timeout: cfg.Notion.Timeout}, logger)
		store = notion.NewStore(client, cfg.Notion.ChunkLimit, logger)
	}

	processor := pipeline.NewProcessor(
		extract.NewExtractor(logger),
		metadata.NewExtractor(logger),
		orch,
		format.NewFormatter(),
		store,
		repo,
		pipeline.NewStatus(),
		logger,
	)

	result := processor.ProcessOne(ctx, *filePath)

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
	if !result.Success {
		os.Exit(1)
	}
}

// printStore writes the formatted note to stdout instead of persisting it.
type printStore struct{}

func (printStore) AddEntry(ctx context.Context, clientName, filename string, note format.Note) (notion.EntryRef, error) {
	fmt.Printf("--- %s ---\n%s\n", note.Title, note.PlainText)
	return notion.EntryRef{PageID: "dry-run", Title: note.Title}, nil
}
