// Package history keeps the append-only CSV log of classification results.
package history

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caiomaz/ovoscan/internal/classify"
	"github.com/caiomaz/ovoscan/pkg/events"
)

// Events emits a ChangeEvent for every appended row so interested parties
// (the follow command, the tray menu) can observe results live.
var Events events.Manager

// ChangeEvent is emitted whenever a row is appended.
type ChangeEvent struct {
	Row Row
}

// Row is one persisted classification.
type Row struct {
	ProcessedAt string
	ImagePath   string
	Label       string
}

const timeFormat = "2006-01-02 15:04:05"

var header = []string{"processed_at", "image_path", "label"}

// Logger appends classification results to a CSV file. The header row is
// written when the file is first created; data rows are only ever appended,
// newest last.
type Logger struct {
	pathname string
}

// New ensures the CSV file exists with its header and returns a Logger for
// it.
func New(pathname string) (*Logger, error) {
	_, err := os.Stat(pathname)
	if err == nil {
		return &Logger{pathname: pathname}, nil
	}

	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("unable to stat %s: %w", pathname, err)
	}

	f, err := os.OpenFile(pathname, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to create %s: %w", pathname, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write(header)
	w.Flush()

	if w.Error() != nil {
		return nil, fmt.Errorf("unable to write header to %s: %w", pathname, w.Error())
	}

	return &Logger{pathname: pathname}, nil
}

// Append records one successful classification. The image path is stored
// relative to the working directory when possible so rows stay meaningful if
// the project tree moves.
func (l *Logger) Append(result classify.Result) error {
	row := Row{
		ProcessedAt: time.Now().Format(timeFormat),
		ImagePath:   relativize(result.Path),
		Label:       result.Label,
	}

	f, err := os.OpenFile(l.pathname, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", l.pathname, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{row.ProcessedAt, row.ImagePath, row.Label})
	w.Flush()

	if w.Error() != nil {
		return fmt.Errorf("unable to append to %s: %w", l.pathname, w.Error())
	}

	Events.Emit(ChangeEvent{Row: row})
	return nil
}

// ReadAll returns every data row in append order, skipping the header. A
// missing file is an empty history, not an error.
func (l *Logger) ReadAll() ([]Row, error) {
	f, err := os.Open(l.pathname)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("unable to open %s: %w", l.pathname, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", l.pathname, err)
	}

	var rows []Row
	for i, record := range records {
		if i == 0 {
			continue // header
		}

		rows = append(rows, Row{ProcessedAt: record[0], ImagePath: record[1], Label: record[2]})
	}

	return rows, nil
}

func relativize(pathname string) string {
	wd, err := os.Getwd()
	if err != nil {
		return pathname
	}

	rel, err := filepath.Rel(wd, pathname)
	if err != nil {
		return pathname
	}

	return rel
}
