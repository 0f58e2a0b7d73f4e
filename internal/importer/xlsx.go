// Package importer reads question banks from spreadsheets and writes computed
// orderings back out.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/swipe-quiz-service/internal/models"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/ordering"
	"github.com/SAP-F-2025/swipe-quiz-service/internal/validator"
)

const (
	OrderingSheet = "Ordering"
	SummarySheet  = "Summary"
)

var (
	ErrMissingColumn   = errors.New("missing required column")
	ErrInvalidWorkbook = errors.New("invalid workbook")
)

// RowError describes a spreadsheet row that could not be parsed
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ParsedRow is a question request read from one spreadsheet row
type ParsedRow struct {
	Row      int
	Question validator.QuestionCreateRequest
}

var requiredColumns = []string{"text", "framework", "category"}

var weightColumns = map[string]models.SwipeDirection{
	"weight_up":    models.SwipeUp,
	"weight_right": models.SwipeRight,
	"weight_left":  models.SwipeLeft,
	"weight_down":  models.SwipeDown,
}

// ReadQuestions parses the first sheet of a workbook. The first row is a
// header; columns are matched by name, case-insensitively. Blank rows are
// skipped and malformed rows are reported without aborting the read.
func ReadQuestions(r io.Reader) ([]ParsedRow, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: no sheets", ErrInvalidWorkbook)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: sheet %q is empty", ErrMissingColumn, sheets[0])
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var parsed []ParsedRow
	var rowErrors []RowError
	for i, cells := range rows[1:] {
		rowNum := i + 2
		if isBlank(cells) {
			continue
		}

		question, err := parseRow(cells, columns)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		parsed = append(parsed, ParsedRow{Row: rowNum, Question: question})
	}

	return parsed, rowErrors, nil
}

func parseRow(cells []string, columns map[string]int) (validator.QuestionCreateRequest, error) {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx])
	}

	req := validator.QuestionCreateRequest{
		Text:      cell("text"),
		Framework: models.Framework(strings.ToLower(cell("framework"))),
		Category:  cell("category"),
		Weight:    make(map[models.SwipeDirection]float64, len(weightColumns)),
	}

	if v := cell("reverse"); v != "" {
		reverse, err := strconv.ParseBool(strings.ToLower(v))
		if err != nil {
			return req, fmt.Errorf("reverse: %q is not a boolean", v)
		}
		req.Reverse = reverse
	}

	for column, direction := range weightColumns {
		v := cell(column)
		if v == "" {
			continue
		}
		weight, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("%s: %q is not a number", column, v)
		}
		req.Weight[direction] = weight
	}

	for _, tag := range strings.Split(cell("tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			req.Tags = append(req.Tags, tag)
		}
	}

	return req, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// WriteOrdering writes the plan as a workbook with an ordering sheet and a
// summary of the options and repair statistics. Questions are looked up by id
// to fill in the descriptive columns.
func WriteOrdering(w io.Writer, plan ordering.Plan, opts ordering.Options, questions []models.Question) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", OrderingSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	byID := make(map[uint]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	header := []interface{}{"display_order", "id", "framework", "category", "tags", "text"}
	if err := f.SetSheetRow(OrderingSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, entry := range plan.Orders {
		q := byID[entry.ID]
		row := []interface{}{entry.DisplayOrder, entry.ID, string(q.Framework), q.Category, strings.Join(q.Tags, ","), q.Text}
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(OrderingSheet, cellName, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	summary := [][]interface{}{
		{"seed", opts.Seed},
		{"max_run", opts.MaxRun},
		{"warmup_count", opts.WarmupCount},
		{"finale_count", opts.FinaleCount},
		{"deferred", plan.Deferred},
		{"flushed", plan.Flushed},
		{"longest_run", plan.LongestRun},
	}
	for i, row := range summary {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cellName, &row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
