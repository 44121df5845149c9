package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wonny/chartinsight/internal/contracts"
	"github.com/wonny/chartinsight/pkg/logger"
)

// Locator finds the newest artifact on disk for a ticker/kind/timeframe.
// Implementations return contracts.ErrNotFound when nothing matches.
type Locator interface {
	Latest(ticker contracts.Ticker, m contracts.Market, kind contracts.Kind, tf contracts.Timeframe) (string, error)
}

// FileLocator is the filesystem Locator.
// ⭐ SSOT: 아티팩트 경로 탐색은 이 타입을 통해서만 수행
type FileLocator struct {
	root string
	log  *logger.Logger
}

// NewLocator creates a FileLocator rooted at dir
func NewLocator(dir string, log *logger.Logger) *FileLocator {
	return &FileLocator{root: dir, log: log}
}

// Latest returns the path of the newest matching artifact. Every symbol
// spelling the ticker may have been saved under is searched; candidates
// are ranked by the filename-embedded timestamp, falling back to file
// modification time when the name does not parse.
func (l *FileLocator) Latest(ticker contracts.Ticker, m contracts.Market, kind contracts.Kind, tf contracts.Timeframe) (string, error) {
	dir := filepath.Join(l.root, m.Folder())

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s %s %s in %s", contracts.ErrNotFound, ticker, kind, tf, dir)
		}
		return "", fmt.Errorf("%w: read dir %s: %v", contracts.ErrStorage, dir, err)
	}

	type match struct {
		path   string
		sortAt time.Time
	}

	seen := make(map[string]bool)
	var matches []match

	for _, cand := range ticker.Candidates(m) {
		prefix := fmt.Sprintf("%s_%s_%s_", cand, kind, tf)

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if !matchesPrefix(name, prefix, kind) || !strings.HasSuffix(name, ".csv") {
				continue
			}

			path := filepath.Join(dir, name)
			if seen[path] {
				continue
			}
			seen[path] = true

			sortAt := artifactSortTime(path, name)
			matches = append(matches, match{path: path, sortAt: sortAt})
		}
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s %s %s in %s", contracts.ErrNotFound, ticker, kind, tf, dir)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].sortAt.After(matches[j].sortAt)
	})

	l.log.WithFields(map[string]interface{}{
		"ticker":     ticker,
		"kind":       kind,
		"timeframe":  tf,
		"candidates": len(matches),
		"path":       matches[0].path,
	}).Debug("Artifact located")

	return matches[0].path, nil
}

// matchesPrefix compares the filename against a candidate prefix.
// Crossinfo artifacts came from an external producer whose casing varies
// on disk, so those match case-insensitively.
func matchesPrefix(name, prefix string, kind contracts.Kind) bool {
	if kind == contracts.KindCrossInfo {
		return len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix)
	}
	return strings.HasPrefix(name, prefix)
}

// artifactSortTime ranks an artifact: filename timestamp first,
// modification time when the name does not parse.
func artifactSortTime(path, name string) time.Time {
	if id, err := ParseFilename(name); err == nil {
		return id.Timestamp
	}
	if info, err := os.Stat(path); err == nil {
		return info.ModTime()
	}
	return time.Time{}
}
