package feed

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Table is a header-keyed sheet read once into memory. Reads never create
// columns; EnsureColumn and Record.Set are the only write path.
type Table struct {
	mu      sync.Mutex
	name    string
	headers []string
	index   map[string]int
	rows    [][]string
	pending []cellWrite
}

type cellWrite struct {
	row   int // 0 is the header row
	col   int
	value interface{}
}

// NewTable builds a table from a header row and data rows.
func NewTable(name string, headers []string, rows [][]string) *Table {
	t := &Table{name: name, index: map[string]int{}}
	for i, h := range headers {
		h = strings.TrimSpace(h)
		t.headers = append(t.headers, h)
		if _, dup := t.index[h]; !dup && h != "" {
			t.index[h] = i
		}
	}
	for _, r := range rows {
		t.rows = append(t.rows, append([]string(nil), r...))
	}
	return t
}

func (t *Table) Name() string { return t.name }

func (t *Table) Headers() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.headers...)
}

// Len is the number of data rows.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// Has reports whether the header row names col.
func (t *Table) Has(col string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.index[col]
	return ok
}

// EnsureColumn appends col to the header row if missing and returns its index.
func (t *Table) EnsureColumn(col string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ensure(col)
}

func (t *Table) ensure(col string) int {
	if i, ok := t.index[col]; ok {
		return i
	}
	i := len(t.headers)
	t.headers = append(t.headers, col)
	t.index[col] = i
	t.pending = append(t.pending, cellWrite{row: 0, col: i, value: col})
	return i
}

// Record returns data row i (0-based).
func (t *Table) Record(i int) *Record {
	return &Record{t: t, i: i}
}

// Records returns every data row in sheet order.
func (t *Table) Records() []*Record {
	n := t.Len()
	out := make([]*Record, n)
	for i := range out {
		out[i] = t.Record(i)
	}
	return out
}

func (t *Table) takePending() []cellWrite {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.pending
	t.pending = nil
	return p
}

// Record is one data row. Values are read through the table so writes made
// by Set are visible to later reads.
type Record struct {
	t *Table
	i int
}

// Line is the 1-based sheet row number; the header is line 1.
func (r *Record) Line() int { return r.i + 2 }

// Get returns the trimmed value of col and whether the column exists.
func (r *Record) Get(col string) (string, bool) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	c, ok := r.t.index[col]
	if !ok {
		return "", false
	}
	row := r.t.rows[r.i]
	if c >= len(row) {
		return "", true
	}
	return strings.TrimSpace(row[c]), true
}

// Value is Get without the presence flag.
func (r *Record) Value(col string) string {
	v, _ := r.Get(col)
	return v
}

// Int parses col as an integer; absent or malformed values give false.
func (r *Record) Int(col string) (int, bool) {
	v := r.Value(col)
	if v == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f == float64(int(f)) {
		return int(f), true
	}
	return 0, false
}

// Set writes value to col, appending the column if needed.
func (r *Record) Set(col string, value interface{}) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	c := r.t.ensure(col)
	row := r.t.rows[r.i]
	for len(row) <= c {
		row = append(row, "")
	}
	switch v := value.(type) {
	case string:
		row[c] = v
	case int:
		row[c] = strconv.Itoa(v)
	default:
		row[c] = fmt.Sprint(v)
	}
	r.t.rows[r.i] = row
	r.t.pending = append(r.t.pending, cellWrite{row: r.Line() - 1, col: c, value: value})
}
