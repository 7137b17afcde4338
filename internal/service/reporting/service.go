package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cognitionx/trackerx/internal/repository/mongodb"
	repo "github.com/cognitionx/trackerx/internal/repository/sheets"
)

const (
	dateLayout        = "2006-01-02"
	auditSummaryRange = "AQL Summary!A:E"
)

// DailySummary aggregates one day of audit submissions.
type DailySummary struct {
	Date       time.Time
	Total      int
	Passed     int
	Failed     int
	Inspectors []string
}

// Ledger is the slice of the submission store this service reads.
type Ledger interface {
	SubmissionsSince(ctx context.Context, since time.Time) ([]mongodb.SubmissionRecord, error)
}

// Service aggregates audit submissions and exports daily summaries to the
// tracking spreadsheet.
type Service struct {
	sheets repo.Repository
	ledger Ledger
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(sheets repo.Repository, ledger Ledger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sheets: sheets, ledger: ledger, logger: logger}
}

// SummarizeDay aggregates all submissions recorded on the given day.
func (s *Service) SummarizeDay(ctx context.Context, day time.Time) (DailySummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	records, err := s.ledger.SubmissionsSince(ctx, start)
	if err != nil {
		return DailySummary{}, fmt.Errorf("load submissions: %w", err)
	}

	summary := DailySummary{Date: start}
	inspectors := map[string]bool{}

	for _, rec := range records {
		if !rec.SubmittedAt.Before(start.AddDate(0, 0, 1)) {
			continue
		}
		summary.Total++
		switch strings.ToLower(rec.AuditResult) {
		case "pass":
			summary.Passed++
		case "fail":
			summary.Failed++
		}
		if rec.InspectedBy != "" && !inspectors[rec.InspectedBy] {
			inspectors[rec.InspectedBy] = true
			summary.Inspectors = append(summary.Inspectors, rec.InspectedBy)
		}
	}

	return summary, nil
}

// ExportDailySummary appends the day's aggregate as one spreadsheet row.
// Days without submissions are skipped.
func (s *Service) ExportDailySummary(ctx context.Context, day time.Time) error {
	summary, err := s.SummarizeDay(ctx, day)
	if err != nil {
		return err
	}

	if summary.Total == 0 {
		s.logger.Info("no audit submissions to export", zap.String("date", summary.Date.Format(dateLayout)))
		return nil
	}

	// The scheduler may fire more than once for the same day (restarts,
	// overlapping deploys); a day that already has a row is not appended again.
	exported, err := s.dayAlreadyExported(ctx, summary.Date)
	if err != nil {
		return err
	}
	if exported {
		s.logger.Info("daily summary already exported", zap.String("date", summary.Date.Format(dateLayout)))
		return nil
	}

	row := []interface{}{
		summary.Date.Format(dateLayout),
		summary.Total,
		summary.Passed,
		summary.Failed,
		strings.Join(summary.Inspectors, ", "),
	}

	if err := s.sheets.AppendRow(ctx, auditSummaryRange, row); err != nil {
		return fmt.Errorf("export daily summary: %w", err)
	}

	s.logger.Info("daily audit summary exported",
		zap.String("date", summary.Date.Format(dateLayout)),
		zap.Int("total", summary.Total),
		zap.Int("passed", summary.Passed),
		zap.Int("failed", summary.Failed))
	return nil
}

// dayAlreadyExported scans column A of the summary sheet for the date.
func (s *Service) dayAlreadyExported(ctx context.Context, date time.Time) (bool, error) {
	rows, err := s.sheets.ReadRange(ctx, auditSummaryRange)
	if err != nil {
		return false, fmt.Errorf("read summary sheet: %w", err)
	}

	want := date.Format(dateLayout)
	for _, row := range rows {
		if len(row) > 0 && fmt.Sprint(row[0]) == want {
			return true, nil
		}
	}
	return false, nil
}
