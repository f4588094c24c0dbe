package i18nsync

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/i18n-sheets/errors"
	"github.com/teranos/i18n-sheets/logger"
)

// DefaultDebounce is how long Watch waits after the last change before uploading
const DefaultDebounce = 500 * time.Millisecond

// Watch re-runs Upload whenever a translation file changes, until ctx is
// cancelled. Bursts of writes (editors often write a file several times) are
// folded into one upload after debounce of quiet. A failed upload is
// reported and watching continues.
//
// Watch only sees the real file system, whatever WithFs was given.
func (s *Syncer) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer watcher.Close()

	for _, locale := range s.cfg.Locales {
		dir := filepath.Join(s.cfg.SourceDir, locale)
		if err := watcher.Add(dir); err != nil {
			return errors.WithHintf(errors.WrapConfig(err, "failed to watch "+dir),
				"create %s or remove %q from locales", dir, locale)
		}
	}

	s.logger.Infow("Watching translation files",
		logger.FieldPath, s.cfg.SourceDir,
		logger.FieldCount, len(s.cfg.Locales))
	s.emitter.EmitInfo("Watching " + s.cfg.SourceDir + " for changes")

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !s.isTranslationChange(event) {
				continue
			}
			s.logger.Debugw("Translation file changed",
				logger.FieldPath, event.Name,
				"op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			if _, err := s.Upload(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Errorw("Upload after change failed", logger.FieldError, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warnw("File watcher error", logger.FieldError, err)
		}
	}
}

// isTranslationChange reports whether event touches a configured domain file
func (s *Syncer) isTranslationChange(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	if !strings.HasSuffix(base, ".json") {
		return false
	}
	domain := strings.TrimSuffix(base, ".json")
	for _, d := range s.cfg.Domains {
		if d == domain {
			return true
		}
	}
	return false
}
