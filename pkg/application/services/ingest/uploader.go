package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vsinha/bomplan/pkg/application/dto"
	"github.com/vsinha/bomplan/pkg/application/services/planning"
	"github.com/vsinha/bomplan/pkg/domain/entities"
	"github.com/vsinha/bomplan/pkg/domain/repositories"
	"github.com/vsinha/bomplan/pkg/infrastructure/events"
)

// DefaultBatchSize is the number of rows committed per transaction
const DefaultBatchSize = 20

// Row is one stock-on-hand record with its position in the source file
type Row struct {
	Number int
	Input  planning.SOHInput
}

// RowSource yields stock-on-hand rows. Next returns io.EOF after the last
// row. A *RowError skips the row; any other error aborts the upload.
type RowSource interface {
	Next() (Row, error)
}

// RowError marks one unreadable row
type RowError struct {
	Row  int
	Code string
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Options tune one upload
type Options struct {
	BatchSize int
	// WeekOverride replaces every row's week commencing when set
	WeekOverride time.Time
}

// Uploader applies stock-on-hand rows in committed batches
type Uploader struct {
	store     repositories.Store
	soh       *planning.SOHService
	publisher *events.Publisher
	log       zerolog.Logger
}

// NewUploader creates an uploader applying rows through soh
func NewUploader(store repositories.Store, soh *planning.SOHService, publisher *events.Publisher, log zerolog.Logger) *Uploader {
	return &Uploader{
		store:     store,
		soh:       soh,
		publisher: publisher,
		log:       log.With().Str("component", "soh_uploader").Logger(),
	}
}

// Upload reads every row of src and applies it. Each batch commits on its
// own, so an upload aborted by a storage failure keeps the batches already
// committed. Rows naming unknown items or carrying invalid values are
// skipped and listed in the report.
func (u *Uploader) Upload(ctx context.Context, src RowSource, opts Options) (*dto.UploadReport, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	report := &dto.UploadReport{UploadID: uuid.NewString()}
	log := u.log.With().Str("upload_id", report.UploadID).Logger()

	batch := make([]Row, 0, batchSize)
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			report.RowsRead++
			u.skip(report, rowErr.Row, rowErr.Code, rowErr.Err)
			continue
		}
		if err != nil {
			return report, fmt.Errorf("failed to read rows: %w", err)
		}

		report.RowsRead++
		if !opts.WeekOverride.IsZero() {
			row.Input.WeekCommencing = opts.WeekOverride
		}
		batch = append(batch, row)

		if len(batch) == batchSize {
			if err := u.commit(ctx, batch, report, log); err != nil {
				return report, err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := u.commit(ctx, batch, report, log); err != nil {
			return report, err
		}
	}

	log.Info().
		Int("rows", report.RowsRead).
		Int("processed", report.Processed).
		Int("skipped", report.Skipped).
		Int("batches", report.Batches).
		Msg("stock on hand upload finished")
	u.publisher.Publish(events.UploadStream(report.UploadID), events.SOHUploadedEvent, events.SOHUploaded{
		UploadID:  report.UploadID,
		Processed: report.Processed,
		Skipped:   report.Skipped,
	})
	return report, nil
}

// commit applies one batch in a transaction. Row-level failures are
// recorded and skipped; anything else rolls the batch back.
func (u *Uploader) commit(ctx context.Context, batch []Row, report *dto.UploadReport, log zerolog.Logger) error {
	var processed, downstream int
	var issues []dto.RowIssue

	err := u.store.Transaction(ctx, func(tx repositories.Store) error {
		for _, p := range batch {
			var result *dto.SOHResult
			// savepoint per row; a rejected row leaves no writes behind
			err := tx.Transaction(ctx, func(rowTx repositories.Store) error {
				var err error
				result, err = u.soh.Apply(ctx, rowTx, p.Input)
				return err
			})
			if errors.Is(err, entities.ErrNotFound) || errors.Is(err, entities.ErrValidation) {
				issues = append(issues, dto.RowIssue{Row: p.Number, Code: p.Input.ItemCode, Reason: err.Error()})
				continue
			}
			if err != nil {
				return fmt.Errorf("row %d (%s): %w", p.Number, p.Input.ItemCode, err)
			}
			processed++
			if result.FillingCreated || result.ProductionCreated {
				downstream++
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Int("batch", report.Batches+1).Msg("upload batch rolled back")
		return err
	}

	report.Batches++
	report.Processed += processed
	report.DownstreamOK += downstream
	report.Skipped += len(issues)
	report.Issues = append(report.Issues, issues...)
	for _, issue := range issues {
		log.Warn().Int("row", issue.Row).Str("item_code", issue.Code).Msg(issue.Reason)
	}
	log.Debug().Int("batch", report.Batches).Int("processed", processed).Msg("upload batch committed")
	return nil
}

func (u *Uploader) skip(report *dto.UploadReport, row int, code string, err error) {
	report.Skipped++
	report.Issues = append(report.Issues, dto.RowIssue{Row: row, Code: code, Reason: err.Error()})
	u.log.Warn().Int("row", row).Str("item_code", code).Err(err).Msg("skipping unreadable row")
}
