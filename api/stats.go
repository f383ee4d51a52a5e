package api

import (
	"time"

	"github.com/dustin/go-humanize"

	"hawkset.claimhawk.org/common"
)

// StatsResponse is the stats payload with human-friendly derived fields.
type StatsResponse struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SampleCount int       `json:"sample_count"`
	CreatedAt   time.Time `json:"created_at"`
	Samples     string    `json:"samples"`
	Age         string    `json:"age"`
}

func statsResponse(stats *common.DatasetStats, now time.Time) StatsResponse {
	return StatsResponse{
		Name:        stats.Name,
		Description: stats.Description,
		SampleCount: stats.SampleCount,
		CreatedAt:   stats.CreatedAt,
		Samples:     humanize.Comma(int64(stats.SampleCount)),
		Age:         humanize.RelTime(stats.CreatedAt, now, "old", "from now"),
	}
}
