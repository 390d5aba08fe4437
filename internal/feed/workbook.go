package feed

import (
	"strings"
	"sync"
	"unicode"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"WooFeedSync/pkg/logging"
)

var ErrSheetNotFound = errors.New("sheet not found")

// Workbook is an xlsx file holding the product feed and the rule table.
type Workbook struct {
	mu   sync.Mutex
	path string
	f    *excelize.File
}

func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed in excelize.OpenFile(%s)", path)
	}
	return &Workbook{path: path, f: f}, nil
}

func (w *Workbook) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

// Reload rereads the file from disk, so edits made since Open are seen by
// the next Sheet. Sheets read earlier save into the reloaded copy.
func (w *Workbook) Reload() error {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return errors.Wrapf(err, "failed in excelize.OpenFile(%s)", w.path)
	}
	w.mu.Lock()
	old := w.f
	w.f = f
	w.mu.Unlock()
	return old.Close()
}

// fold lowercases s and strips diacritics so "CATEGORÍAS" matches "categorias".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	r, _, err := transform.String(t, s)
	if err != nil {
		r = s
	}
	return strings.ToLower(strings.TrimSpace(r))
}

func (w *Workbook) sheetName(name string) (string, error) {
	names := w.f.GetSheetList()
	if name == "" {
		if len(names) == 0 {
			return "", ErrSheetNotFound
		}
		return names[0], nil
	}
	for _, n := range names {
		if n == name {
			return n, nil
		}
	}
	for _, n := range names {
		if fold(n) == fold(name) {
			return n, nil
		}
	}
	return "", errors.Wrap(ErrSheetNotFound, name)
}

// Sheet reads a sheet into a Table. An empty name selects the first sheet.
func (w *Workbook) Sheet(name string) (*Sheet, error) {
	logger := logging.GetLogger()
	w.mu.Lock()
	defer w.mu.Unlock()

	sheet, err := w.sheetName(name)
	if err != nil {
		return nil, err
	}
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed in GetRows(%s)", sheet)
	}
	var headers []string
	if len(rows) > 0 {
		headers = rows[0]
		rows = rows[1:]
	}
	logger.Debugf("sheet %s: %d columns, %d rows", sheet, len(headers), len(rows))
	return &Sheet{Table: NewTable(sheet, headers, rows), wb: w}, nil
}

// Sheet is a Table bound to the workbook it was read from.
type Sheet struct {
	*Table
	wb *Workbook
}

// MemorySheet wraps a table that has no backing file.
func MemorySheet(t *Table) *Sheet {
	return &Sheet{Table: t}
}

// Save writes pending cell changes into the workbook and saves the file.
func (s *Sheet) Save() error {
	pending := s.takePending()
	if s.wb == nil {
		return nil
	}
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()

	for _, c := range pending {
		cell, err := excelize.CoordinatesToCellName(c.col+1, c.row+1)
		if err != nil {
			return errors.Wrap(err, "failed in CoordinatesToCellName")
		}
		if err := s.wb.f.SetCellValue(s.Name(), cell, c.value); err != nil {
			return errors.Wrapf(err, "failed in SetCellValue(%s)", cell)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	if err := s.wb.f.SaveAs(s.wb.path); err != nil {
		return errors.Wrapf(err, "failed in SaveAs(%s)", s.wb.path)
	}
	return nil
}
