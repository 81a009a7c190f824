package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/damilare-ak/clinicnote/internal/common"
	"github.com/damilare-ak/clinicnote/internal/export"
	"github.com/damilare-ak/clinicnote/internal/repository"
)

// notes-export writes the processing history as an XLSX workbook.
func main() {
	var out = flag.String("out", "sessions.xlsx", "output file path")
	flag.Parse()

	cfg := common.LoadConfig()
	logger, closeLog := common.SetupLogger(cfg.Logging.File, cfg.Logging.Level)
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	db, err := repository.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open history database", "path", cfg.Database.Path, "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	repo := repository.NewSessionRepo(db, logger)
	svc := export.NewService(repo, logger)

	data, err := svc.ExportHistoryXLSX(context.Background())
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Error("failed to write output file", "path", *out, "error", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s (%d bytes)\n", *out, len(data))
}
