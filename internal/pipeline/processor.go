package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/damilare-ak/clinicnote/constants"
	"github.com/damilare-ak/clinicnote/internal/extract"
	"github.com/damilare-ak/clinicnote/internal/format"
	"github.com/damilare-ak/clinicnote/internal/llm"
	"github.com/damilare-ak/clinicnote/internal/metadata"
	"github.com/damilare-ak/clinicnote/internal/notion"
	"github.com/damilare-ak/clinicnote/internal/repository"
)

// UnknownClient is the placeholder substituted when no client name resolves.
const UnknownClient = "Unknown Client"

// The processor's collaborators, narrowed to what it calls so tests can
// substitute fakes.
type (
	ContentExtractor interface {
		Extract(ctx context.Context, path string) (extract.TextExtractionResult, error)
	}
	MetadataExtractor interface {
		Extract(filename, content string) metadata.Metadata
	}
	NoteGenerator interface {
		Process(ctx context.Context, transcript string) (llm.Note, error)
	}
	NoteFormatter interface {
		Format(raw, clientName string, sessionDate time.Time) format.Note
	}
	NoteStore interface {
		AddEntry(ctx context.Context, clientName, filename string, note format.Note) (notion.EntryRef, error)
	}
	History interface {
		AlreadyProcessed(ctx context.Context, contentHash string) (bool, error)
		Insert(ctx context.Context, rec repository.SessionRecord) (repository.SessionRecord, error)
	}
)

// Result is the per-file outcome handed back to callers (web, CLI, monitor).
type Result struct {
	Success    bool   `json:"success"`
	Duplicate  bool   `json:"duplicate,omitempty"`
	Filename   string `json:"filename"`
	ClientName string `json:"client_name,omitempty"`
	Provider   string `json:"provider,omitempty"`
	StoreRef   string `json:"store_reference,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Processor wires extraction, metadata inference, note generation,
// formatting, and persistence into one per-file workflow. No error from any
// stage escapes ProcessOne; everything is folded into the Result.
type Processor struct {
	extractor ContentExtractor
	metadata  MetadataExtractor
	generator NoteGenerator
	formatter NoteFormatter
	store     NoteStore
	history   History
	status    *Status
	logger    *slog.Logger
}

func NewProcessor(
	extractor ContentExtractor,
	md MetadataExtractor,
	generator NoteGenerator,
	formatter NoteFormatter,
	store NoteStore,
	history History,
	status *Status,
	logger *slog.Logger,
) *Processor {
	if status == nil {
		status = NewStatus()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		extractor: extractor,
		metadata:  md,
		generator: generator,
		formatter: formatter,
		store:     store,
		history:   history,
		status:    status,
		logger:    logger,
	}
}

func (p *Processor) Status() *Status { return p.status }

// ProcessOne runs the full workflow for a single local file. Panics from any
// stage are recovered into a failure result.
func (p *Processor) ProcessOne(ctx context.Context, filePath string) (result Result) {
	filename := filepath.Base(filePath)
	result = Result{Filename: filename}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result = p.fail(result, fmt.Sprintf("internal error: %v", r))
		}
	}()

	p.logger.Info("pipeline.process.start", "filename", filename)

	extracted, err := p.extractor.Extract(ctx, filePath)
	if err != nil {
		return p.fail(result, fmt.Sprintf("content extraction failed: %v", err))
	}
	if strings.TrimSpace(extracted.Text) == "" {
		return p.fail(result, "no text could be extracted from the document")
	}

	contentHash := repository.HashContent(extracted.Text)
	if p.history != nil {
		if seen, err := p.history.AlreadyProcessed(ctx, contentHash); err != nil {
			p.logger.Warn("pipeline.process.dedup_check_failed", "filename", filename, "error", err)
		} else if seen {
			p.logger.Info("pipeline.process.duplicate_skipped", "filename", filename)
			result.Success = true
			result.Duplicate = true
			return result
		}
	}

	md := p.metadata.Extract(filename, extracted.Text)
	clientName := md.ClientName
	if clientName == "" {
		clientName = UnknownClient
	}
	result.ClientName = clientName

	note, err := p.generator.Process(ctx, extracted.Text)
	if err != nil {
		return p.recordAndFail(ctx, result, contentHash, md, fmt.Sprintf("note generation failed: %v", err))
	}
	result.Provider = note.Provider

	formatted := p.formatter.Format(note.RawText, clientName, md.SessionDate)

	ref, err := p.store.AddEntry(ctx, clientName, filename, formatted)
	if err != nil {
		return p.recordAndFail(ctx, result, contentHash, md, fmt.Sprintf("document store persistence failed: %v", err))
	}
	result.StoreRef = ref.PageID
	result.Success = true

	p.recordHistory(ctx, result, contentHash, md, constants.SessionStatusProcessed, "")
	p.status.RecordSuccess(filename, clientName)
	p.logger.Info("pipeline.process.ok",
		"filename", filename,
		"client", clientName,
		"provider", result.Provider,
		"page_id", result.StoreRef,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result
}

func (p *Processor) fail(result Result, reason string) Result {
	result.Success = false
	result.Error = reason
	p.status.RecordFailure(result.Filename, result.ClientName, reason)
	p.logger.Error("pipeline.process.failed",
		"filename", result.Filename,
		"client", result.ClientName,
		"reason", reason,
	)
	return result
}

func (p *Processor) recordAndFail(ctx context.Context, result Result, contentHash string, md metadata.Metadata, reason string) Result {
	result = p.fail(result, reason)
	p.recordHistory(ctx, result, contentHash, md, constants.SessionStatusFailed, reason)
	return result
}

func (p *Processor) recordHistory(ctx context.Context, result Result, contentHash string, md metadata.Metadata, status constants.SessionStatus, reason string) {
	if p.history == nil {
		return
	}
	_, err := p.history.Insert(ctx, repository.SessionRecord{
		ClientName:  result.ClientName,
		SessionDate: md.SessionDate.Format("2006-01-02"),
		Filename:    result.Filename,
		ContentHash: contentHash,
		Provider:    result.Provider,
		Status:      status,
		Error:       reason,
		PageID:      result.StoreRef,
	})
	if err != nil {
		p.logger.Warn("pipeline.process.history_write_failed", "filename", result.Filename, "error", err)
	}
}
