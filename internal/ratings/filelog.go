package ratings

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// csv columns: title,rating,timestamp (ISO-8601).
const fileHeader = "title,rating,timestamp"

// FileLog is the flat-file rating log. A mutex serializes appends so a
// record's bytes are never interleaved with another writer's.
type FileLog struct {
	path string
	mu   sync.Mutex
}

// NewFileLog creates the log file (with header) if it does not exist yet.
func NewFileLog(path string) (*FileLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ratings directory: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(fileHeader+"\n"), 0o644); err != nil {
			return nil, fmt.Errorf("creating ratings log %s: %w", path, err)
		}
	}
	return &FileLog{path: path}, nil
}

// Append validates the event and writes it as a single CSV record.
func (l *FileLog) Append(ctx context.Context, event Event) error {
	if err := ValidateRating(event.Rating); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening ratings log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	record := []string{
		event.Title,
		strconv.Itoa(event.Rating),
		event.Timestamp.UTC().Format(time.RFC3339),
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("writing rating record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing rating record: %w", err)
	}
	return f.Sync()
}

// All reads the complete log in append order. Malformed rows are skipped
// rather than failing the whole read.
func (l *FileLog) All(ctx context.Context) ([]Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("opening ratings log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3

	var events []Event
	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if first {
			first = false
			if record[0] == "title" {
				continue
			}
		}
		rating, err := strconv.Atoi(record[1])
		if err != nil {
			continue
		}
		ts, err := time.Parse(time.RFC3339, record[2])
		if err != nil {
			continue
		}
		events = append(events, Event{
			Title:     record[0],
			Rating:    rating,
			Timestamp: ts,
		})
	}
	return events, nil
}
