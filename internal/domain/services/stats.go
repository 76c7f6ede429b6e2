package services

import (
	"sync"

	"qrshield/internal/domain/models"
)

// flaggedThreshold is the merged score at or above which a scan counts as
// flagged
const flaggedThreshold = 50

// StatsTracker keeps in-memory counters over completed scans. Counters
// reset on process restart.
type StatsTracker struct {
	mu    sync.RWMutex
	stats models.ScanStats
}

// NewStatsTracker creates an empty tracker
func NewStatsTracker() *StatsTracker {
	return &StatsTracker{
		stats: models.ScanStats{
			ByContentType: make(map[string]int64),
			ByRiskLevel:   make(map[string]int64),
		},
	}
}

// Record counts one completed scan
func (t *StatsTracker) Record(result *models.ScanResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.TotalScans++
	if result.RiskScore >= flaggedThreshold {
		t.stats.Flagged++
	}
	t.stats.ByContentType[string(result.ContentType)]++
	t.stats.ByRiskLevel[string(result.RiskLevel)]++
}

// Snapshot returns a copy of the current counters
func (t *StatsTracker) Snapshot() models.ScanStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := models.ScanStats{
		TotalScans:    t.stats.TotalScans,
		Flagged:       t.stats.Flagged,
		ByContentType: make(map[string]int64, len(t.stats.ByContentType)),
		ByRiskLevel:   make(map[string]int64, len(t.stats.ByRiskLevel)),
	}
	for k, v := range t.stats.ByContentType {
		snapshot.ByContentType[k] = v
	}
	for k, v := range t.stats.ByRiskLevel {
		snapshot.ByRiskLevel[k] = v
	}
	return snapshot
}
