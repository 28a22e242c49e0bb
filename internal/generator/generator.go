// Package generator defines the content-generation collaborator invoked by
// the Process operation. The engine treats generation as a black box: it
// hands over a summary and receives a title and body (or a failure that
// feeds the retry budget).
//
// MarkdownGenerator is the built-in reference implementation. It aggregates
// the user's tasks and activity logs for the summary's period into a small
// markdown report. Richer generators (LLM-backed, templated) can be swapped
// in behind the same interface.
package generator

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-task-backend/internal/domain"
	"github.com/tbourn/go-task-backend/internal/repo"
)

// Content is the produced report.
type Content struct {
	Title string
	Body  string
}

// Generator produces the report content for one summary.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts. A returned error counts as
// one failed processing attempt against the summary's retry budget.
type Generator interface {
	Generate(ctx context.Context, s *domain.Summary) (Content, error)
}

// MarkdownGenerator aggregates Task and TaskLog rows into markdown.
type MarkdownGenerator struct {
	// DB is the GORM handle used for task reads.
	DB *gorm.DB

	titleCaser cases.Caser
}

// NewMarkdownGenerator constructs a generator reading from db.
func NewMarkdownGenerator(db *gorm.DB) *MarkdownGenerator {
	return &MarkdownGenerator{
		DB:         db,
		titleCaser: cases.Title(language.English),
	}
}

// Generate builds the report for s. The aggregation window is derived from
// the summary's period fields; malformed periods surface as
// domain.ErrInvalidPeriod-wrapped errors.
func (g *MarkdownGenerator) Generate(ctx context.Context, s *domain.Summary) (Content, error) {
	startKey, endKey, label, err := periodWindow(s)
	if err != nil {
		return Content{}, err
	}

	tasks, err := repo.TasksDueInRange(ctx, g.DB, startKey, endKey)
	if err != nil {
		return Content{}, fmt.Errorf("load tasks for %s: %w", s.PeriodKey, err)
	}
	completed, err := repo.CountTasksCompletedInRange(ctx, g.DB, startKey, endKey)
	if err != nil {
		return Content{}, fmt.Errorf("count completed tasks for %s: %w", s.PeriodKey, err)
	}
	logs, err := repo.LogsInRange(ctx, g.DB, startKey, endKey)
	if err != nil {
		return Content{}, fmt.Errorf("load logs for %s: %w", s.PeriodKey, err)
	}

	title := fmt.Sprintf("%s Summary %s", g.titleCaser.String(string(s.Type)), label)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Tasks due: %d\n", len(tasks))
	fmt.Fprintf(&b, "- Tasks completed: %d\n", completed)
	fmt.Fprintf(&b, "- Activity entries: %d\n", len(logs))

	if len(tasks) > 0 {
		b.WriteString("\n## Tasks\n\n")
		for _, t := range tasks {
			status := " "
			if t.Status == "done" {
				status = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s (%s)\n", status, t.Title, t.DueDate)
		}
	}

	if len(logs) > 0 {
		b.WriteString("\n## Activity\n\n")
		for _, l := range logs {
			fmt.Fprintf(&b, "- %s: %s\n", l.LogDate, l.Note)
		}
	}

	if len(s.RelatedSummaryIDs) > 0 {
		fmt.Fprintf(&b, "\nAggregated from %d %s summaries.\n", len(s.RelatedSummaryIDs), childTier(s.Type))
	}

	return Content{Title: title, Body: b.String()}, nil
}

// periodWindow maps a summary's period identity onto an inclusive day-key
// range plus a human label for the title.
func periodWindow(s *domain.Summary) (startKey, endKey, label string, err error) {
	switch s.Type {
	case domain.SummaryDaily:
		if _, err = domain.ParseDay(s.Date); err != nil {
			return "", "", "", err
		}
		return s.Date, s.Date, s.Date, nil
	case domain.SummaryWeekly:
		if err = domain.ValidateWeek(s.WeekStart, s.WeekEnd); err != nil {
			return "", "", "", err
		}
		return s.WeekStart, s.WeekEnd, fmt.Sprintf("%s – %s", s.WeekStart, s.WeekEnd), nil
	case domain.SummaryMonthly:
		first, perr := domain.ParseMonth(s.Month)
		if perr != nil {
			return "", "", "", perr
		}
		last := first.AddDate(0, 1, -1)
		return domain.DayKey(first), domain.DayKey(last), s.Month, nil
	default:
		return "", "", "", fmt.Errorf("%w: unknown summary type %q", domain.ErrInvalidPeriod, s.Type)
	}
}

func childTier(t domain.SummaryType) string {
	switch t {
	case domain.SummaryWeekly:
		return "daily"
	case domain.SummaryMonthly:
		return "weekly"
	default:
		return ""
	}
}
