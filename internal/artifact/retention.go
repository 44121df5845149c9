package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wonny/chartinsight/internal/contracts"
	"github.com/wonny/chartinsight/pkg/logger"
)

// Sweeper removes artifacts older than a retention window. Age is the
// file modification time; a re-saved artifact resets its clock.
type Sweeper struct {
	root string
	log  *logger.Logger
	now  func() time.Time
}

// NewSweeper creates a Sweeper rooted at dir
func NewSweeper(dir string, log *logger.Logger) *Sweeper {
	return &Sweeper{root: dir, log: log, now: time.Now}
}

// Sweep deletes artifacts older than maxAge across every market folder
// and returns how many were removed. A missing market folder is not an
// error; per-file removal failures are logged and counted as kept.
func (s *Sweeper) Sweep(maxAge time.Duration) (removed int, err error) {
	cutoff := s.now().Add(-maxAge)

	for _, m := range contracts.AllMarkets() {
		dir := filepath.Join(s.root, m.Folder())

		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, fmt.Errorf("%w: read dir %s: %v", contracts.ErrStorage, dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				continue
			}
			if !info.ModTime().Before(cutoff) {
				continue
			}

			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				s.log.WithError(err).WithField("path", path).Error("Failed to remove old artifact")
				continue
			}

			removed++
			s.log.WithField("path", path).Info("Old artifact removed")
		}
	}

	if removed > 0 {
		s.log.WithField("removed", removed).Info("Retention sweep completed")
	}

	return removed, nil
}
