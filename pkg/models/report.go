package models

import (
	"time"

	"github.com/samber/lo"
)

// Report summarizes one collection run for export alongside the
// per-author results.
type Report struct {
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Boundary   time.Time      `json:"boundary"`
	Authors    int            `json:"authors"`
	TotalPosts int            `json:"totalPosts"`
	Results    []AuthorResult `json:"results"`
}

// NewReport assembles a run report from aggregated results
func NewReport(startedAt, finishedAt, boundary time.Time, results []AuthorResult) Report {
	return Report{
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Boundary:   boundary,
		Authors:    len(results),
		TotalPosts: lo.SumBy(results, func(r AuthorResult) int { return len(r.Posts) }),
		Results:    results,
	}
}
