// Package i18nsync moves translations between per-locale JSON files and a
// table store. Upload makes the store match the files, Download makes the
// files match the store, and Status reports where the two differ.
//
// One direction is authoritative per call; nothing is merged.
package i18nsync

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/i18n-sheets/config"
	"github.com/teranos/i18n-sheets/digest"
	"github.com/teranos/i18n-sheets/errors"
	"github.com/teranos/i18n-sheets/keypath"
	"github.com/teranos/i18n-sheets/logger"
	"github.com/teranos/i18n-sheets/progress"
	"github.com/teranos/i18n-sheets/table"
)

// Syncer runs sync operations for one configuration against one store.
type Syncer struct {
	cfg     config.Sync
	store   table.TableStore
	fs      afero.Fs
	logger  *zap.SugaredLogger
	emitter progress.Emitter
	dryRun  bool
}

// Option configures a Syncer
type Option func(*Syncer)

// WithFs sets the file system translation files are read from and written to
// (default: the OS file system)
func WithFs(fs afero.Fs) Option {
	return func(s *Syncer) { s.fs = fs }
}

// WithLogger sets the logger (default: the "sync" component logger)
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Syncer) { s.logger = l }
}

// WithEmitter sets where progress goes (default: discarded)
func WithEmitter(e progress.Emitter) Option {
	return func(s *Syncer) { s.emitter = e }
}

// WithDryRun makes Upload skip Replace and Download skip file writes.
// Everything else, reads and fetches included, still happens.
func WithDryRun(dryRun bool) Option {
	return func(s *Syncer) { s.dryRun = dryRun }
}

// New creates a Syncer. cfg is copied by value and never changes afterwards.
func New(cfg config.Sync, store table.TableStore, opts ...Option) *Syncer {
	s := &Syncer{
		cfg:     cfg,
		store:   store,
		fs:      afero.NewOsFs(),
		emitter: progress.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.ComponentLogger("sync")
	}
	return s
}

// Result summarizes one Upload or Download.
type Result struct {
	Domains  int           `json:"domains"`
	Locales  int           `json:"locales"`
	Rows     int           `json:"rows"`
	Files    int           `json:"files"`
	DryRun   bool          `json:"dry_run"`
	Duration time.Duration `json:"-"`
}

// Summary returns the result as progress summary fields
func (r *Result) Summary() map[string]interface{} {
	return map[string]interface{}{
		"domains":     r.Domains,
		"locales":     r.Locales,
		"rows":        r.Rows,
		"files":       r.Files,
		"dry_run":     r.DryRun,
		"duration_ms": r.Duration.Milliseconds(),
	}
}

// Path returns where the translations of domain in locale live.
func (s *Syncer) Path(locale, domain string) string {
	return filepath.Join(s.cfg.SourceDir, locale, domain+".json")
}

// Upload reads every configured domain in every configured locale and
// replaces the store content with the resulting table. If any file cannot be
// read, the store is not touched.
func (s *Syncer) Upload(ctx context.Context) (*Result, error) {
	start := time.Now()

	t, err := s.LocalTable(ctx)
	if err != nil {
		s.emitter.EmitError(string(errors.StageRead), err)
		return nil, err
	}

	res := &Result{
		Domains: len(s.cfg.Domains),
		Locales: len(s.cfg.Locales),
		Rows:    t.DataRows(),
		Files:   len(s.cfg.Domains) * len(s.cfg.Locales),
		DryRun:  s.dryRun,
	}

	if s.dryRun {
		res.Duration = time.Since(start)
		s.logger.Infow("Dry run, table not uploaded", logger.FieldRows, res.Rows, "dry_run", true)
		s.emitter.EmitInfo(fmt.Sprintf("Dry run: %d rows would be uploaded", res.Rows))
		s.emitter.EmitComplete(res.Summary())
		return res, nil
	}

	s.emitter.EmitStage(string(errors.StageUpload), fmt.Sprintf("Uploading %d rows", res.Rows))
	if err := s.store.Replace(ctx, t); err != nil {
		err = errors.Transport(errors.StageUpload, err, "failed to replace table")
		s.emitter.EmitError(string(errors.StageUpload), err)
		return nil, err
	}

	res.Duration = time.Since(start)
	s.logger.Infow("Upload complete",
		logger.FieldRows, res.Rows,
		logger.FieldFiles, res.Files,
		logger.FieldDurationMS, res.Duration.Milliseconds())
	s.emitter.EmitComplete(res.Summary())
	return res, nil
}

// LocalTable builds the table the configured files encode to, header first.
func (s *Syncer) LocalTable(ctx context.Context) (table.Table, error) {
	s.emitter.EmitStage(string(errors.StageRead),
		fmt.Sprintf("Reading %d domains in %d locales", len(s.cfg.Domains), len(s.cfg.Locales)))

	domains := make([]table.DomainMaps, 0, len(s.cfg.Domains))
	rows := 0
	for _, domain := range s.cfg.Domains {
		byLocale, err := s.readDomain(ctx, domain)
		if err != nil {
			return nil, err
		}
		domains = append(domains, table.DomainMaps{Domain: domain, ByLocale: byLocale})

		n := len(byLocale.Keys())
		rows += n
		s.logger.Debugw("Domain encoded", logger.FieldDomain, domain, logger.FieldRows, n)
		s.emitter.EmitDomain(domain, n)
	}

	t := table.Build(s.cfg.Locales, domains)
	s.emitter.EmitProgress(rows, map[string]interface{}{"type": "rows"})
	return t, nil
}

// readDomain reads all locale files of a domain in parallel. The row encoding
// is set based, so the order the reads finish in does not matter.
func (s *Syncer) readDomain(ctx context.Context, domain string) (table.LocaleMaps, error) {
	flat := make([]keypath.Map, len(s.cfg.Locales))

	g, gctx := errgroup.WithContext(ctx)
	for i, locale := range s.cfg.Locales {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := s.readLocaleFile(s.Path(locale, domain))
			if err != nil {
				return err
			}
			flat[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byLocale := make(table.LocaleMaps, len(s.cfg.Locales))
	for i, locale := range s.cfg.Locales {
		byLocale[locale] = flat[i]
	}
	return byLocale, nil
}

func (s *Syncer) readLocaleFile(path string) (keypath.Map, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, errors.WithHint(errors.FileRead(err, path),
			"every configured domain needs a file in every configured locale")
	}
	tree, err := keypath.Decode(data)
	if err != nil {
		return nil, errors.FileRead(err, path)
	}
	return keypath.Flatten(tree), nil
}

// Download fetches the table and writes one file per present domain and
// configured locale. Domain names from the table are checked before anything
// is written. Domains missing from the table are left alone; domains the
// configuration does not list are written too. Files written before a failure
// stay in place.
func (s *Syncer) Download(ctx context.Context) (*Result, error) {
	start := time.Now()

	s.emitter.EmitStage(string(errors.StageDownload), "Fetching table")
	remote, err := s.store.Fetch(ctx)
	if err != nil {
		err = errors.Transport(errors.StageDownload, err, "failed to fetch table")
		s.emitter.EmitError(string(errors.StageDownload), err)
		return nil, err
	}

	grouped := table.Decode(remote, s.cfg.Locales)
	if err := checkDomainNames(grouped.Domains()); err != nil {
		s.emitter.EmitError(string(errors.StageDownload), err)
		return nil, err
	}

	res := &Result{
		Domains: len(grouped),
		Locales: len(s.cfg.Locales),
		Rows:    remote.DataRows(),
		DryRun:  s.dryRun,
	}

	for _, domain := range grouped.Domains() {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStage(err, errors.StageDownload)
		}
		if err := s.writeDomain(domain, grouped[domain], res); err != nil {
			s.emitter.EmitError(string(errors.StageWrite), err)
			return nil, err
		}
		s.emitter.EmitDomain(domain, len(grouped[domain].Keys()))
	}

	res.Duration = time.Since(start)
	s.logger.Infow("Download complete",
		logger.FieldRows, res.Rows,
		logger.FieldFiles, res.Files,
		logger.FieldDurationMS, res.Duration.Milliseconds(),
		"dry_run", res.DryRun)
	s.emitter.EmitComplete(res.Summary())
	return res, nil
}

// checkDomainNames rejects domains read from the table that cannot be a file
// name under sourceDir/<locale>. It runs before any file is written.
func checkDomainNames(domains []string) error {
	for _, domain := range domains {
		if err := config.CheckName(domain); err != nil {
			err = errors.WithStage(errors.Mark(errors.Wrap(err, "invalid domain in table"), errors.ErrWrite), errors.StageDownload)
			return errors.WithHintf(err, "rename the domain %q in the sheet; no files were written", domain)
		}
	}
	return nil
}

// writeDomain writes the files of one domain, in configured locale order.
// A locale without values is written as an empty object.
func (s *Syncer) writeDomain(domain string, byLocale table.LocaleMaps, res *Result) error {
	for _, locale := range s.cfg.Locales {
		flat, ok := byLocale[locale]
		if !ok {
			continue
		}
		path := s.Path(locale, domain)

		tree, err := keypath.Unflatten(flat)
		if err != nil {
			return errors.WithHint(errors.Write(err, path),
				"fix the conflicting keys in the sheet; nothing was written for this file")
		}
		data, err := keypath.Encode(tree)
		if err != nil {
			return errors.Write(err, path)
		}

		if s.dryRun {
			s.logger.Debugw("Dry run, file not written", logger.FieldPath, path)
			continue
		}

		if err := s.fs.MkdirAll(filepath.Dir(path), config.DefaultDirPermissions); err != nil {
			return errors.Write(err, filepath.Dir(path))
		}
		if err := afero.WriteFile(s.fs, path, data, config.DefaultFilePermissions); err != nil {
			return errors.Write(err, path)
		}
		res.Files++
		s.logger.Debugw("Wrote translations",
			logger.FieldDomain, domain,
			logger.FieldLocale, locale,
			logger.FieldPath, path,
			logger.FieldCount, len(flat))
	}
	return nil
}

// StatusReport compares the local files with the store content.
type StatusReport struct {
	digest.Drift

	LocalRoot  string `json:"local_root"`
	RemoteRoot string `json:"remote_root"`
	LocalRows  int    `json:"local_rows"`
	RemoteRows int    `json:"remote_rows"`
}

// Status builds the local table the way Upload would, fetches the remote one
// and compares their per-domain digests. Both sides go through the same decode
// so only content counts, not row order or trailing blank cells.
func (s *Syncer) Status(ctx context.Context) (*StatusReport, error) {
	local, err := s.LocalTable(ctx)
	if err != nil {
		return nil, err
	}

	s.emitter.EmitStage(string(errors.StageStatus), "Fetching table")
	remote, err := s.store.Fetch(ctx)
	if err != nil {
		return nil, errors.Transport(errors.StageStatus, err, "failed to fetch table")
	}

	localTree := digest.FromGrouped(table.Decode(local, s.cfg.Locales))
	remoteTree := digest.FromGrouped(table.Decode(remote, s.cfg.Locales))

	report := &StatusReport{
		Drift:      localTree.Diff(remoteTree.DomainHashes()),
		LocalRoot:  digest.Short(localTree.Root()),
		RemoteRoot: digest.Short(remoteTree.Root()),
		LocalRows:  local.DataRows(),
		RemoteRows: remote.DataRows(),
	}

	s.logger.Infow("Status computed",
		"in_sync", report.InSync(),
		"divergent", len(report.Divergent),
		"local_only", len(report.LocalOnly),
		"remote_only", len(report.RemoteOnly))
	return report, nil
}
