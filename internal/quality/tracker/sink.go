package tracker

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const partitionLayout = "2006-01-02"

// Sink appends quality records to one JSONL file per UTC day.
// It is owned by the tracker's single writer goroutine; readers scan the
// partition files independently and never contend with the writer.
type Sink struct {
	dir  string
	file *os.File
	day  string
}

// NewSink creates a sink rooted at dir, creating it if needed
func NewSink(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create quality log directory: %w", err)
	}
	return &Sink{dir: dir}, nil
}

// Append writes one record to the partition for its UTC day
func (s *Sink) Append(rec Record) error {
	day := rec.Timestamp.UTC().Format(partitionLayout)
	if s.file == nil || day != s.day {
		if err := s.rotate(day); err != nil {
			return err
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal quality record: %w", err)
	}

	if _, err := s.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append quality record: %w", err)
	}
	return nil
}

func (s *Sink) rotate(day string) error {
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}

	path := s.partitionPath(day)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open partition %s: %w", path, err)
	}

	s.file = file
	s.day = day
	return nil
}

// Close releases the current partition file
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *Sink) partitionPath(day string) string {
	return filepath.Join(s.dir, fmt.Sprintf("quality_%s.jsonl", day))
}

// Scan invokes fn for every record in [from, to], optionally restricted to
// one symbol (empty string matches all). It reads only the partition files
// whose day overlaps the range, skips malformed lines, and tolerates
// missing partitions, so it can run concurrently with the writer.
func (s *Sink) Scan(from, to time.Time, symbol string, fn func(Record) error) error {
	from = from.UTC()
	to = to.UTC()
	if to.Before(from) {
		return nil
	}

	for day := from.Truncate(24 * time.Hour); !day.After(to); day = day.Add(24 * time.Hour) {
		path := s.partitionPath(day.Format(partitionLayout))
		if err := s.scanPartition(path, from, to, symbol, fn); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) scanPartition(path string, from, to time.Time, symbol string, fn func(Record) error) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open partition %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			// A torn or partial line from a concurrent write is not fatal
			continue
		}

		if rec.Timestamp.Before(from) || rec.Timestamp.After(to) {
			continue
		}
		if symbol != "" && rec.Symbol != symbol {
			continue
		}

		if err := fn(rec); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to scan partition %s: %w", path, err)
	}
	return nil
}
