package backup

import (
	"time"

	"github.com/adhocore/gronx"

	"cmemo/internal/config"
	"cmemo/internal/logger"
)

const (
	// TickInterval is the polling period of the backup check timer.
	TickInterval = time.Minute

	// maxCatchUpMinutes caps the catch-up walk after long suspends. Gaps
	// beyond a day resume from the cap instead of scanning the whole range.
	maxCatchUpMinutes = 1440
)

// Scheduler decides, once per polling tick, whether a scheduled backup is
// due. Instead of testing only the instant "now" it walks every whole minute
// since the previous tick, so fires are not lost when the host slept through
// a tick or the timer was delayed.
type Scheduler struct {
	log  logger.Logger
	gron *gronx.Gronx

	lastCheck time.Time // minute bucket of the previous tick; zero until first tick
	lastFire  time.Time // minute bucket a backup last actually ran for
}

func NewScheduler(log logger.Logger) *Scheduler {
	return &Scheduler{
		log:  log,
		gron: gronx.New(),
	}
}

// Tick evaluates the schedule at now. It returns the minute a backup should
// fire for and whether one is due; at most one fire is reported per tick.
// Disabled config, an invalid expression, or an evaluation error all degrade
// to a silent skip.
func (s *Scheduler) Tick(cfg config.AutoBackupConfig, now time.Time) (time.Time, bool) {
	now = now.Truncate(time.Minute)
	start := s.lastCheck
	s.lastCheck = now

	if !cfg.Enabled {
		return time.Time{}, false
	}

	// First tick, or the clock moved backward: fall back to a one-minute
	// window ending at now.
	if start.IsZero() || start.After(now) {
		start = now.Add(-time.Minute)
	}
	if now.Sub(start) > maxCatchUpMinutes*time.Minute {
		s.log.Warning("BackupScheduler", "catch-up window capped", map[string]interface{}{
			"last_check": start,
			"now":        now,
			"cap_min":    maxCatchUpMinutes,
		})
		start = now.Add(-maxCatchUpMinutes * time.Minute)
	}

	for m := start.Add(time.Minute); !m.After(now); m = m.Add(time.Minute) {
		if m.Equal(s.lastFire) {
			continue // already fired for this minute
		}
		due, err := s.gron.IsDue(cfg.Cron, m)
		if err != nil {
			s.log.Warning("BackupScheduler", "schedule evaluation failed", map[string]interface{}{
				"cron":  cfg.Cron,
				"error": err.Error(),
			})
			return time.Time{}, false
		}
		if due {
			s.lastFire = m
			return m, true
		}
	}
	return time.Time{}, false
}

// LastFire reports the minute bucket of the most recent fire.
func (s *Scheduler) LastFire() time.Time {
	return s.lastFire
}

// NextRuns lists the next n fire times of a cron expression after start,
// for the settings dialog preview.
func NextRuns(expr string, start time.Time, n int) ([]time.Time, error) {
	runs := make([]time.Time, 0, n)
	ref := start
	for i := 0; i < n; i++ {
		next, err := gronx.NextTickAfter(expr, ref, false)
		if err != nil {
			return nil, err
		}
		runs = append(runs, next)
		ref = next
	}
	return runs, nil
}
