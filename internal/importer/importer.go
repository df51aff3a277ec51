// Package importer reads word lists from spreadsheets.
package importer

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vytor/lexiflash/internal/errors"
	"github.com/vytor/lexiflash/internal/models"
	"github.com/xuri/excelize/v2"
)

// ListSeparator splits multi-value cells such as sentences and synonyms.
const ListSeparator = "|"

// Columns maps each field to a zero-based column index; -1 means absent.
type Columns struct {
	English   int
	Italian   int
	Category  int
	Chapter   int
	Sentences int
	Synonyms  int
	Antonyms  int
	Notes     int
}

// DefaultColumns is the layout of the bundled template:
// english, italian, category, chapter, sentences, synonyms, antonyms, notes.
func DefaultColumns() Columns {
	return Columns{English: 0, Italian: 1, Category: 2, Chapter: 3, Sentences: 4, Synonyms: 5, Antonyms: 6, Notes: 7}
}

var headerNames = map[string]func(*Columns, int){
	"english":   func(c *Columns, i int) { c.English = i },
	"italian":   func(c *Columns, i int) { c.Italian = i },
	"category":  func(c *Columns, i int) { c.Category = i },
	"chapter":   func(c *Columns, i int) { c.Chapter = i },
	"sentences": func(c *Columns, i int) { c.Sentences = i },
	"synonyms":  func(c *Columns, i int) { c.Synonyms = i },
	"antonyms":  func(c *Columns, i int) { c.Antonyms = i },
	"notes":     func(c *Columns, i int) { c.Notes = i },
}

// columnsFromHeader recognises a header row. ok is false when the row holds
// data instead.
func columnsFromHeader(row []string) (Columns, bool) {
	cols := Columns{-1, -1, -1, -1, -1, -1, -1, -1}
	found := false
	for i, cell := range row {
		if set, ok := headerNames[strings.ToLower(strings.TrimSpace(cell))]; ok {
			set(&cols, i)
			found = true
		}
	}
	if !found || cols.English < 0 || cols.Italian < 0 {
		return Columns{}, false
	}
	return cols, true
}

// Result holds the parsed rows and the rows that were skipped.
type Result struct {
	Words   []models.WordInput
	Skipped []string
}

// Parse reads an .xlsx or .csv word list. The format is picked from the file
// name. A header row, when present, decides the column order.
func Parse(r io.Reader, filename string) (*Result, error) {
	var rows [][]string
	var err error
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx":
		rows, err = readXLSX(r)
	case ".csv":
		rows, err = readCSV(r)
	default:
		return nil, errors.NewBadRequestError(fmt.Sprintf("unsupported file type %q, use .xlsx or .csv", ext))
	}
	if err != nil {
		return nil, err
	}
	return parseRows(rows), nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewBadRequestError(fmt.Sprintf("failed to open spreadsheet: %v", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewBadRequestError("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewBadRequestError(fmt.Sprintf("failed to read rows: %v", err))
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.NewBadRequestError(fmt.Sprintf("error reading CSV: %v", err))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRows(rows [][]string) *Result {
	res := &Result{Words: []models.WordInput{}, Skipped: []string{}}
	cols := DefaultColumns()
	for i, row := range rows {
		if i == 0 {
			if header, ok := columnsFromHeader(row); ok {
				cols = header
				continue
			}
		}
		if blank(row) {
			continue
		}
		in, err := parseRow(row, cols)
		if err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		res.Words = append(res.Words, in)
	}
	return res
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func list(row []string, i int) []string {
	raw := cell(row, i)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ListSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseRow(row []string, cols Columns) (models.WordInput, error) {
	in := models.WordInput{
		English:   cell(row, cols.English),
		Italian:   cell(row, cols.Italian),
		Category:  models.Category(strings.ToUpper(cell(row, cols.Category))),
		Chapter:   cell(row, cols.Chapter),
		Sentences: list(row, cols.Sentences),
		Synonyms:  list(row, cols.Synonyms),
		Antonyms:  list(row, cols.Antonyms),
		Notes:     cell(row, cols.Notes),
	}
	if in.English == "" || in.Italian == "" {
		return in, fmt.Errorf("english and italian are required")
	}
	if !in.Category.Valid() {
		return in, fmt.Errorf("unknown category %q", in.Category)
	}
	return in, nil
}
