package models

import "time"

// SystemMetrics is a JSON-friendly snapshot of process counters.
type SystemMetrics struct {
	RequestsTotal uint64    `json:"requests_total"`
	CacheHits     uint64    `json:"cache_hits"`
	CacheMisses   uint64    `json:"cache_misses"`
	CacheHitRatio float64   `json:"cache_hit_ratio"`
	CombineRuns   uint64    `json:"combine_runs"`
	ScrapeJobs    uint64    `json:"scrape_jobs"`
	Goroutines    int       `json:"goroutines"`
	GeneratedAt   time.Time `json:"generated_at"`
}
