package pdfrows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/nstp-roster/internal/common"
	"github.com/joseph-ayodele/nstp-roster/internal/entity"
)

// NormalizedRow is one logical record after continuation merging.
type NormalizedRow struct {
	Page   int
	Tokens []string
}

type Result struct {
	Rows    []NormalizedRow
	Records []entity.SerialNumberRecord
	// RecordRows holds the 1-based position in Rows of each record.
	RecordRows []int
	// Dropped lists rows that fit no layout, indexed by position in Rows.
	Dropped    []common.RowIssue
	Pages      int
	Terminated bool
}

// Extractor rebuilds CHED serial-number rows from positioned PDF text.
type Extractor struct {
	cfg     Config
	start   *regexp.Regexp
	filter  rowFilter
	decoder Decoder
	logger  *slog.Logger
}

func New(cfg Config, decoder Decoder, logger *slog.Logger) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	start, err := regexp.Compile(cfg.RecordStart)
	if err != nil {
		return nil, fmt.Errorf("record start pattern: %w", err)
	}
	if decoder == nil {
		decoder = NewPDFDecoder(cfg.RunGap)
	}
	return &Extractor{
		cfg:     cfg,
		start:   start,
		filter:  newRowFilter(cfg),
		decoder: decoder,
		logger:  logger,
	}, nil
}

func (e *Extractor) Extract(ctx context.Context, blob []byte) (Result, error) {
	log := common.LoggerFromContext(ctx, e.logger)

	if len(blob) == 0 {
		return Result{}, &common.DecodeError{Format: "pdf", Cause: errors.New("empty file")}
	}
	pages, err := e.decoder.Decode(blob)
	if err != nil {
		log.Warn("pdfrows.decode_failed", "bytes", len(blob), "err", err)
		return Result{}, &common.DecodeError{Format: "pdf", Cause: err}
	}

	res := Result{Pages: len(pages)}
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		stop := e.page(log, page, &res)
		if stop {
			res.Terminated = true
			log.Debug("pdfrows.terminator", "page", page.Number)
			break
		}
	}

	for i, row := range res.Rows {
		rec, layout, ok := e.mapRecord(row.Tokens)
		if !ok {
			res.Dropped = append(res.Dropped, common.RowIssue{
				Index:  i + 1,
				Reason: fmt.Sprintf("%d tokens on page %d fit no layout (%s)", len(row.Tokens), row.Page, strings.Join(e.layoutNames(), ", ")),
			})
			log.Debug("pdfrows.row.dropped", "page", row.Page, "tokens", len(row.Tokens))
			continue
		}
		if layout != e.cfg.Layout.Name {
			log.Debug("pdfrows.row.layout", "page", row.Page, "layout", layout)
		}
		res.Records = append(res.Records, rec)
		res.RecordRows = append(res.RecordRows, i+1)
	}

	log.Info("pdfrows.ok",
		"pages", res.Pages,
		"rows", len(res.Rows),
		"records", len(res.Records),
		"dropped", len(res.Dropped),
		"terminated", res.Terminated,
	)
	return res, nil
}

// mapRecord maps tokens with the first layout they fit.
func (e *Extractor) mapRecord(tokens []string) (entity.SerialNumberRecord, string, bool) {
	for _, l := range append([]Layout{e.cfg.Layout}, e.cfg.Alternates...) {
		if !l.Fits(tokens) {
			continue
		}
		if rec, ok := l.Map(tokens); ok {
			return rec, l.Name, true
		}
	}
	return entity.SerialNumberRecord{}, "", false
}

func (e *Extractor) layoutNames() []string {
	names := []string{e.cfg.Layout.Name}
	for _, l := range e.cfg.Alternates {
		names = append(names, l.Name)
	}
	return names
}

// page appends the page's logical rows to res and reports whether the
// terminator was reached.
func (e *Extractor) page(log *slog.Logger, page Page, res *Result) bool {
	merger := &recordMerger{start: e.start}
	terminated := false

	for _, row := range groupRuns(page.Runs, e.cfg.YTolerance) {
		text := row.text()
		if e.filter.terminates(text) {
			terminated = true
			break
		}
		if phrase, ok := e.filter.boilerplateIn(text); ok {
			log.Debug("pdfrows.row.boilerplate", "page", page.Number, "phrase", phrase)
			continue
		}
		if !merger.add(row) {
			log.Debug("pdfrows.row.orphan", "page", page.Number, "text", text)
		}
	}

	for _, tokens := range merger.take() {
		res.Rows = append(res.Rows, NormalizedRow{Page: page.Number, Tokens: tokens})
	}
	return terminated
}
