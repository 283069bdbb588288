// Package timesheet reads Clockify "detailed" CSV exports into typed rows.
//
// Columns are located by header name, so column order is free and unknown
// columns are ignored. Rows are produced lazily in a single pass.
package timesheet

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"iter"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// MaxProjectIDLength bounds external project identifiers.
	MaxProjectIDLength = 50
	// MaxNameLength bounds project, client and employee names in characters.
	MaxNameLength = 255
)

// DefaultOnsiteTags are the tags that mark an entry as worked on-site.
var DefaultOnsiteTags = []string{"onsite", "on-site", "vor ort", "vor-ort"}

// Row is one validated time entry.
type Row struct {
	Line        int
	ProjectID   string
	ProjectName string
	Client      string
	Employee    string
	Description string
	Date        time.Time
	StartTime   Clock
	EndTime     Clock
	Duration    decimal.Decimal
	IsOnsite    bool
}

// Month returns the YYYY-MM bucket of the entry date.
func (r Row) Month() string {
	return r.Date.Format("2006-01")
}

type Options struct {
	// OnsiteTags overrides DefaultOnsiteTags when non-empty.
	OnsiteTags []string
}

type column int

const (
	colProjectID column = iota
	colProject
	colClient
	colEmployee
	colDescription
	colStartDate
	colStartTime
	colEndTime
	colDurationH
	colDurationDecimal
	colTags
	colOnsite
	numColumns
)

var headerAliases = map[string]column{
	"project id":         colProjectID,
	"project":            colProject,
	"client":             colClient,
	"user":               colEmployee,
	"employee":           colEmployee,
	"description":        colDescription,
	"start date":         colStartDate,
	"date":               colStartDate,
	"start time":         colStartTime,
	"end time":           colEndTime,
	"duration (h)":       colDurationH,
	"duration (decimal)": colDurationDecimal,
	"tags":               colTags,
	"on-site":            colOnsite,
	"onsite":             colOnsite,
}

// Parser yields rows from a CSV whose header has already been validated.
type Parser struct {
	r          *csv.Reader
	index      [numColumns]int
	onsiteTags map[string]struct{}
	used       bool
}

// NewParser reads and validates the header row of r.
func NewParser(r io.Reader, opts Options) (*Parser, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && string(bom) == "\xef\xbb\xbf" {
		_, _ = br.Discard(3)
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, malformed(1, "", "missing header row")
		}
		return nil, csvError(err)
	}

	p := &Parser{r: cr, onsiteTags: tagSet(opts.OnsiteTags)}
	for i := range p.index {
		p.index[i] = -1
	}
	for i, name := range header {
		if col, ok := headerAliases[normalizeHeader(name)]; ok && p.index[col] < 0 {
			p.index[col] = i
		}
	}

	switch {
	case p.index[colProjectID] < 0 && p.index[colProject] < 0:
		return nil, malformed(1, "Project", "missing required column")
	case p.index[colEmployee] < 0:
		return nil, malformed(1, "User", "missing required column")
	case p.index[colStartDate] < 0:
		return nil, malformed(1, "Start Date", "missing required column")
	case p.index[colDurationDecimal] < 0 && p.index[colDurationH] < 0:
		return nil, malformed(1, "Duration (decimal)", "missing required column")
	}
	return p, nil
}

// Parse is NewParser followed by Rows.
func Parse(r io.Reader, opts Options) (iter.Seq2[Row, error], error) {
	p, err := NewParser(r, opts)
	if err != nil {
		return nil, err
	}
	return p.Rows(), nil
}

// Rows returns the remaining rows. Invalid rows yield a *RowError wrapping
// ErrInvalidRow and iteration continues; CSV syntax errors yield a
// *RowError wrapping ErrMalformedInput and end the sequence.
// The sequence can be ranged over once.
func (p *Parser) Rows() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		if p.used {
			return
		}
		p.used = true
		for {
			record, err := p.r.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Row{}, csvError(err))
				return
			}
			line, _ := p.r.FieldPos(0)
			row, rowErr := p.parseRecord(line, record)
			if rowErr != nil {
				if !yield(Row{}, rowErr) {
					return
				}
				continue
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

func (p *Parser) field(record []string, col column) string {
	i := p.index[col]
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (p *Parser) parseRecord(line int, record []string) (Row, error) {
	row := Row{
		Line:        line,
		Client:      p.field(record, colClient),
		Employee:    p.field(record, colEmployee),
		Description: p.field(record, colDescription),
	}

	projectID, projectName := splitProject(p.field(record, colProject), p.field(record, colProjectID))
	if projectID == "" {
		return Row{}, invalidRow(line, "Project", "missing project")
	}
	if len(projectID) > MaxProjectIDLength {
		return Row{}, invalidRow(line, "Project", "project id longer than %d characters", MaxProjectIDLength)
	}
	row.ProjectID, row.ProjectName = projectID, projectName

	if row.Employee == "" {
		return Row{}, invalidRow(line, "User", "missing employee")
	}
	if err := checkText(line, "Project", row.ProjectName, MaxNameLength); err != nil {
		return Row{}, err
	}
	if err := checkText(line, "Client", row.Client, MaxNameLength); err != nil {
		return Row{}, err
	}
	if err := checkText(line, "User", row.Employee, MaxNameLength); err != nil {
		return Row{}, err
	}
	if err := checkText(line, "Description", row.Description, 0); err != nil {
		return Row{}, err
	}

	dateStr := p.field(record, colStartDate)
	if dateStr == "" {
		return Row{}, invalidRow(line, "Start Date", "missing date")
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return Row{}, invalidRow(line, "Start Date", "%v", err)
	}
	row.Date = date

	if row.StartTime, err = parseClock(p.field(record, colStartTime)); err != nil {
		return Row{}, invalidRow(line, "Start Time", "%v", err)
	}
	if row.EndTime, err = parseClock(p.field(record, colEndTime)); err != nil {
		return Row{}, invalidRow(line, "End Time", "%v", err)
	}

	durField, durStr := "Duration (decimal)", p.field(record, colDurationDecimal)
	if durStr == "" {
		durField, durStr = "Duration (h)", p.field(record, colDurationH)
	}
	if durStr == "" {
		return Row{}, invalidRow(line, durField, "missing duration")
	}
	if row.Duration, err = parseDuration(durStr); err != nil {
		return Row{}, invalidRow(line, durField, "%v", err)
	}

	row.IsOnsite = isTruthy(p.field(record, colOnsite)) || p.hasOnsiteTag(p.field(record, colTags))
	return row, nil
}

// checkText rejects values the database cannot store. A zero limit means
// unbounded length.
func checkText(line int, field, value string, limit int) error {
	if strings.ContainsRune(value, 0) {
		return invalidRow(line, field, "contains a NUL character")
	}
	if limit > 0 && utf8.RuneCountInString(value) > limit {
		return invalidRow(line, field, "longer than %d characters", limit)
	}
	return nil
}

func (p *Parser) hasOnsiteTag(tags string) bool {
	if tags == "" {
		return false
	}
	for _, tag := range strings.FieldsFunc(tags, func(r rune) bool { return r == ',' || r == ';' }) {
		if _, ok := p.onsiteTags[normalizeHeader(tag)]; ok {
			return true
		}
	}
	return false
}

// splitProject derives the external id and display name. Clockify appends
// the id to the project name as a final " - " segment.
func splitProject(project, explicitID string) (id, name string) {
	if explicitID != "" {
		name = strings.TrimSpace(strings.TrimSuffix(project, " - "+explicitID))
		if name == "" {
			name = explicitID
		}
		return explicitID, name
	}
	if project == "" {
		return "", ""
	}
	i := strings.LastIndex(project, " - ")
	if i < 0 {
		return project, project
	}
	return strings.TrimSpace(project[i+3:]), strings.TrimSpace(project[:i])
}

func normalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func tagSet(tags []string) map[string]struct{} {
	if len(tags) == 0 {
		tags = DefaultOnsiteTags
	}
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[normalizeHeader(t)] = struct{}{}
	}
	return set
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return malformed(pe.Line, "", "%v", pe.Err)
	}
	return malformed(0, "", "%v", err)
}
