package manager

import (
	"context"
	"time"

	"cmemo/internal/backup"
)

// Run drives the cooperative event loop: posted tasks, the debounce timer,
// and the once-per-minute backup check all execute on this goroutine, which
// is the sole mutator of manager state. Run blocks until ctx is cancelled,
// performs the final save on the way out, and then closes Done. Shutdown
// coordination from other goroutines must wait on Done rather than call into
// the manager, so the final save never races in-flight loop work.
func (m *Manager) Run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(backup.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Shutdown()
			return
		case task := <-m.tasks:
			task()
		case <-m.saveTimerC():
			m.saveTimer = nil
			if err := m.performSave(); err != nil {
				m.log.Error(component, err, nil)
			}
		case now := <-ticker.C:
			m.checkScheduledBackup(now)
		}
	}
}

// Done is closed once Run has exited, after the final save completed.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// saveTimerC exposes the debounce timer channel to the loop; a nil channel
// blocks forever, so an unarmed timer simply never fires.
func (m *Manager) saveTimerC() <-chan time.Time {
	if m.saveTimer == nil {
		return nil
	}
	return m.saveTimer.C
}

// Post hands a task from a foreign thread (hotkey listener, UI callback) to
// the loop goroutine. It never blocks; a full queue drops the task with a
// warning, since every producer here is user-paced.
func (m *Manager) Post(task func()) {
	select {
	case m.tasks <- task:
	default:
		m.log.Warning(component, "task queue full, dropping task", map[string]interface{}{
			"queue_len": len(m.tasks),
		})
	}
}
