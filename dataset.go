package sentiment

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Column names of the reference tweet datasets.
const (
	TextColumn  = "text"
	LabelColumn = "sentiment"
)

// DroppedColumns lists the dataset columns that carry no signal for training.
var DroppedColumns = []string{
	"textID",
	"Time of Tweet",
	"Age of User",
	"Country",
	"Population -2020",
	"Land Area (Km²)",
	"Density (P/Km²)",
}

// DatasetStats describes what ReadCorpus kept and discarded.
type DatasetStats struct {
	Rows           int      // Data rows read.
	Kept           int      // Complete rows.
	DroppedRows    int      // Rows with an empty required column.
	DroppedColumns []string // Documented columns present in the file.
	Columns        []string // Remaining columns.
}

func (s *DatasetStats) merge(other DatasetStats) {
	s.Rows += other.Rows
	s.Kept += other.Kept
	s.DroppedRows += other.DroppedRows
	for _, c := range other.DroppedColumns {
		if !slices.Contains(s.DroppedColumns, c) {
			s.DroppedColumns = append(s.DroppedColumns, c)
		}
	}
	for _, c := range other.Columns {
		if !slices.Contains(s.Columns, c) {
			s.Columns = append(s.Columns, c)
		}
	}
}

type datasetOptions struct {
	required []string
}

// A DatasetOption changes how rows are cleaned.
type DatasetOption func(*datasetOptions)

// RequireColumns limits the completeness check to names. By default a row is
// dropped when any remaining column is empty or absent from its file. The
// text and label columns are always required.
func RequireColumns(names ...string) DatasetOption {
	return func(o *datasetOptions) {
		o.required = append([]string{}, names...)
	}
}

// table is one CSV file with the documented columns removed.
type table struct {
	columns []string
	index   map[string]int
	rows    [][]string
	stats   DatasetStats
}

func readTable(r io.Reader) (*table, error) {
	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dataset has no header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := &table{index: make(map[string]int)}
	for i, name := range header {
		name = strings.TrimSpace(name)
		switch {
		case slices.Contains(DroppedColumns, name):
			t.stats.DroppedColumns = append(t.stats.DroppedColumns, name)
		case name != "":
			t.columns = append(t.columns, name)
			t.index[name] = i
		}
	}
	t.stats.Columns = t.columns
	if _, ok := t.index[TextColumn]; !ok {
		return nil, fmt.Errorf("dataset needs %q and %q columns, got %v", TextColumn, LabelColumn, header)
	}
	if _, ok := t.index[LabelColumn]; !ok {
		return nil, fmt.Errorf("dataset needs %q and %q columns, got %v", TextColumn, LabelColumn, header)
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.rows)+1, err)
		}
		t.rows = append(t.rows, row)
	}
	t.stats.Rows = len(t.rows)
	return t, nil
}

// corpus keeps the rows where every required column is present and non-empty.
func (t *table) corpus(required []string) (Corpus, DatasetStats) {
	stats := t.stats
	var corpus Corpus
rows:
	for _, row := range t.rows {
		for _, name := range required {
			idx, ok := t.index[name]
			if !ok || field(row, idx) == "" {
				stats.DroppedRows++
				continue rows
			}
		}
		corpus = append(corpus, Example{
			Text:  field(row, t.index[TextColumn]),
			Label: strings.ToLower(field(row, t.index[LabelColumn])),
		})
	}
	stats.Kept = len(corpus)
	return corpus, stats
}

func requiredColumns(o datasetOptions, columns []string) []string {
	required := columns
	if o.required != nil {
		required = o.required
	}
	for _, name := range []string{TextColumn, LabelColumn} {
		if !slices.Contains(required, name) {
			required = append(slices.Clip(required), name)
		}
	}
	return required
}

// ReadCorpus reads a Latin-1 encoded CSV with a header row. The documented
// columns are dropped, then every row with an empty remaining column.
func ReadCorpus(r io.Reader, opts ...DatasetOption) (Corpus, DatasetStats, error) {
	var o datasetOptions
	for _, applyOpt := range opts {
		applyOpt(&o)
	}
	t, err := readTable(r)
	if err != nil {
		return nil, DatasetStats{}, err
	}
	corpus, stats := t.corpus(requiredColumns(o, t.columns))
	return corpus, stats, nil
}

func field(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// LoadCorpus reads the CSV files at paths and concatenates them in order.
// Completeness is judged over the union of their columns, so rows from a file
// lacking a column that another file has are dropped.
func LoadCorpus(paths []string, opts ...DatasetOption) (Corpus, DatasetStats, error) {
	var o datasetOptions
	for _, applyOpt := range opts {
		applyOpt(&o)
	}

	var (
		tables  []*table
		columns []string
	)
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return nil, DatasetStats{}, fmt.Errorf("open dataset: %w", err)
		}
		t, err := readTable(file)
		file.Close()
		if err != nil {
			return nil, DatasetStats{}, fmt.Errorf("%s: %w", path, err)
		}
		tables = append(tables, t)
		for _, c := range t.columns {
			if !slices.Contains(columns, c) {
				columns = append(columns, c)
			}
		}
	}

	required := requiredColumns(o, columns)
	var (
		all   Corpus
		total DatasetStats
	)
	for _, t := range tables {
		corpus, stats := t.corpus(required)
		all = append(all, corpus...)
		total.merge(stats)
	}
	return all, total, nil
}
