package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/goliatone/go-sitetheme/pkg/metrics"
)

// DefaultSweepSchedule runs the sweeper every fifteen minutes.
const DefaultSweepSchedule = "@every 15m"

// Sweeper removes bundles that outlived the cache window.
type Sweeper struct {
	fs     afero.Fs
	dir    string
	maxAge time.Duration
	now    func() time.Time
	logger zerolog.Logger
	cron   *cron.Cron
}

// NewSweeper builds a sweeper over dir. Bundles older than maxAge are
// removed; a zero maxAge uses DefaultCacheTime.
func NewSweeper(fs afero.Fs, dir string, maxAge time.Duration, logger zerolog.Logger) *Sweeper {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if maxAge <= 0 {
		maxAge = DefaultCacheTime
	}
	return &Sweeper{
		fs:     fs,
		dir:    dir,
		maxAge: maxAge,
		now:    time.Now,
		logger: logger,
	}
}

// Sweep removes stale .css and .js bundles and returns how many were removed.
func (s *Sweeper) Sweep() (int, error) {
	exists, err := afero.DirExists(s.fs, s.dir)
	if err != nil || !exists {
		return 0, err
	}

	cutoff := s.now().Add(-s.maxAge)
	removed := 0
	err = afero.Walk(s.fs, s.dir, func(file string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(file))
		if ext != ".css" && ext != ".js" {
			return nil
		}
		if !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := s.fs.Remove(file); err != nil {
			return fmt.Errorf("assets: remove %s: %w", file, err)
		}
		removed++
		return nil
	})
	metrics.BundlesSwept(removed)
	return removed, err
}

// Start schedules Sweep. An empty schedule uses DefaultSweepSchedule.
func (s *Sweeper) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	s.cron = cron.New()
	if err := s.cron.AddFunc(schedule, func() {
		n, err := s.Sweep()
		if err != nil {
			s.logger.Error().Err(err).Str("dir", s.dir).Msg("bundle sweep failed")
			return
		}
		if n > 0 {
			s.logger.Info().Int("removed", n).Str("dir", s.dir).Msg("stale bundles removed")
		}
	}); err != nil {
		return fmt.Errorf("assets: schedule sweeper: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}
