// Package csvstore keeps a translation table in a local CSV file, for
// offline work or for handing a table to a translator without sheet access.
package csvstore

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/teranos/i18n-sheets/errors"
	"github.com/teranos/i18n-sheets/logger"
	"github.com/teranos/i18n-sheets/table"
)

// Store is a table.TableStore backed by one CSV file.
type Store struct {
	fs        afero.Fs
	path      string
	delimiter rune
	logger    *zap.SugaredLogger
}

var _ table.TableStore = (*Store)(nil)

// Option configures a Store
type Option func(*Store)

// WithFs sets the file system (default: the OS file system)
func WithFs(fs afero.Fs) Option {
	return func(s *Store) { s.fs = fs }
}

// WithDelimiter sets the field delimiter (default: ',')
func WithDelimiter(d rune) Option {
	return func(s *Store) { s.delimiter = d }
}

// New creates a store for the CSV file at path.
func New(path string, opts ...Option) *Store {
	s := &Store{
		fs:        afero.NewOsFs(),
		path:      path,
		delimiter: ',',
		logger:    logger.ComponentLogger("csv"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the CSV file path
func (s *Store) Path() string {
	return s.path
}

// Fetch reads the whole file. A missing file is an empty table, like an
// empty sheet.
func (s *Store) Fetch(ctx context.Context) (table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.fs.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return table.Table{}, nil
		}
		return nil, errors.Wrapf(err, "failed to open %s", s.path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = s.delimiter
	// Rows may be short, the same as sheet rows with trailing blanks
	r.FieldsPerRecord = -1

	var t table.Table
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WithHint(errors.Wrapf(err, "failed to parse %s", s.path),
				"the file must be CSV with a Domain,Key,<locale>... header")
		}
		t = append(t, table.Row(record))
	}

	s.logger.Debugw("Read CSV table", logger.FieldPath, s.path, logger.FieldRows, len(t))
	return t, nil
}

// Replace writes t to a temp file next to the target and renames it over
// the target, so readers see either the old or the new table.
func (s *Store) Replace(ctx context.Context, t table.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	tmpName := tmp.Name()

	if err := s.writeTo(tmp, t); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return errors.WithHintf(err, "%s was left unchanged", s.path)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return errors.Wrap(err, "failed to close temp file")
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		_ = s.fs.Remove(tmpName)
		return errors.WithHintf(errors.Wrapf(err, "failed to replace %s", s.path),
			"%s was left unchanged", s.path)
	}

	s.logger.Infow("Wrote CSV table", logger.FieldPath, s.path, logger.FieldRows, len(t))
	return nil
}

func (s *Store) writeTo(w io.Writer, t table.Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = s.delimiter
	for _, row := range t {
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "failed to write row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush CSV")
}
