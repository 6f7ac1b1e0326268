package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Sink is a destination for exported tables.
type Sink interface {
	Write(ctx context.Context, t Table) error
}

// FileSink writes each table to Dir/<name>.<format>.
type FileSink struct {
	Dir    string
	Format string
}

// Path returns where t will be written.
func (s *FileSink) Path(t Table) string {
	return filepath.Join(s.Dir, t.Name+"."+s.Format)
}

func (s *FileSink) Write(ctx context.Context, t Table) error {
	var encode func(io.Writer, Table) error
	switch s.Format {
	case "csv":
		encode = WriteCSV
	case "xlsx":
		encode = WriteXLSX
	default:
		return fmt.Errorf("export: unsupported format %q", s.Format)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("export: create dir: %w", err)
	}
	path := s.Path(t)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	if err := encode(f, t); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: close %s: %w", path, err)
	}
	slog.Info("table exported", "table", t.Name, "rows", len(t.Rows), "path", path)
	return nil
}

// MultiSink fans a table out to every sink. Every sink is attempted; the
// first error is returned.
type MultiSink []Sink

func (m MultiSink) Write(ctx context.Context, t Table) error {
	var first error
	for _, s := range m {
		if err := s.Write(ctx, t); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close closes every sink that holds a connection.
func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if c, ok := s.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
