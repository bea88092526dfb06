package catalogimport

import (
	"context"
	"errors"
	"fmt"

	"sky-catalog/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Created is one dish created by an import.
type Created struct {
	Line int   `json:"line"`
	ID   int64 `json:"id"`
}

// Failure is one record an import could not create.
type Failure struct {
	Line   int    `json:"line"`
	Name   string `json:"name,omitempty"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// Report summarises an import. Created and Failed are ordered by line.
type Report struct {
	Total   int       `json:"total"`
	Created []Created `json:"created"`
	Failed  []Failure `json:"failed"`
}

// Importer creates dishes from import records with bounded concurrency. Every
// record is created in its own transaction, so one bad line never blocks the rest.
type Importer struct {
	creator     Creator
	concurrency int
	logger      zerolog.Logger
}

// NewImporter creates an importer running at most concurrency creates at a time.
func NewImporter(creator Creator, concurrency int, logger zerolog.Logger) *Importer {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Importer{
		creator:     creator,
		concurrency: concurrency,
		logger:      logger.With().Str("component", "catalog-importer").Logger(),
	}
}

// ImportFile loads path with loader and imports its records.
func (im *Importer) ImportFile(ctx context.Context, loader Loader, path string) (Report, error) {
	records, err := loader.Load(ctx, path)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load import file: %w", err)
	}
	return im.Import(ctx, records)
}

// Import creates every decodable record. A cancelled context stops scheduling
// new creates; the partial report is returned with the context error.
func (im *Importer) Import(ctx context.Context, records []Record) (Report, error) {
	im.logger.Info().
		Int("records", len(records)).
		Int("concurrency", im.concurrency).
		Msg("starting catalog import")

	type outcome struct {
		id  int64
		err error
		ran bool
	}
	outcomes := make([]outcome, len(records))

	g := new(errgroup.Group)
	g.SetLimit(im.concurrency)

	for i := range records {
		if ctx.Err() != nil {
			break
		}
		if records[i].Err != nil {
			outcomes[i] = outcome{err: model.InvalidRequest(records[i].Err), ran: true}
			continue
		}

		g.Go(func() error {
			req := records[i].Request
			id, err := im.creator.CreateWithFlavors(ctx, &req)
			outcomes[i] = outcome{id: id, err: err, ran: true}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{
		Total:   len(records),
		Created: []Created{},
		Failed:  []Failure{},
	}
	for i, o := range outcomes {
		if !o.ran {
			continue
		}
		record := records[i]
		if o.err == nil {
			report.Created = append(report.Created, Created{Line: record.Line, ID: o.id})
			continue
		}
		report.Failed = append(report.Failed, failure(record, o.err))
		im.logger.Warn().
			Err(o.err).
			Int("line", record.Line).
			Str("name", record.Request.Name).
			Msg("import record failed")
	}

	im.logger.Info().
		Int("total", report.Total).
		Int("created", len(report.Created)).
		Int("failed", len(report.Failed)).
		Msg("catalog import finished")

	return report, ctx.Err()
}

func failure(record Record, err error) Failure {
	f := Failure{
		Line:   record.Line,
		Name:   record.Request.Name,
		Code:   model.ErrCodeInternalError,
		Reason: err.Error(),
	}
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		f.Code = domainErr.Code
	}
	return f
}
