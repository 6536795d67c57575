package matchingsrv

import (
	"context"

	"github.com/Abraxas-365/bolsa/pkg/errx"
	"github.com/Abraxas-365/bolsa/pkg/kernel"
	"github.com/Abraxas-365/bolsa/placement/matching"
)

// Statistics aggregates matches, optionally scoped to a company
func (s *Service) Statistics(ctx context.Context, companyID kernel.CompanyID) (*matching.Statistics, error) {
	matches, err := s.repo.List(ctx, matching.ListFilter{CompanyID: companyID})
	if err != nil {
		return nil, errx.Wrap(err, "failed to load matches for statistics", errx.TypeInternal)
	}

	stats := &matching.Statistics{
		Total:    len(matches),
		ByStatus: emptyStatusCounts(),
	}
	if len(matches) == 0 {
		return stats, nil
	}

	var sum float64
	stats.MaxScore = matches[0].Score
	stats.MinScore = matches[0].Score
	for _, m := range matches {
		stats.ByStatus[m.Status]++
		stats.Buckets.Add(m.Score)
		sum += m.Score
		stats.MaxScore = max(stats.MaxScore, m.Score)
		stats.MinScore = min(stats.MinScore, m.Score)
	}
	stats.AverageScore = matching.Round2(sum / float64(len(matches)))

	return stats, nil
}

// CompanySummary reports totals and the best match of a company
func (s *Service) CompanySummary(ctx context.Context, companyID kernel.CompanyID) (*matching.CompanySummary, error) {
	if companyID.IsEmpty() {
		return nil, matching.ErrCompanyRequired()
	}

	matches, err := s.List(ctx, matching.ListFilter{CompanyID: companyID})
	if err != nil {
		return nil, err
	}

	summary := &matching.CompanySummary{
		CompanyID: companyID,
		Total:     len(matches),
		ByStatus:  emptyStatusCounts(),
	}
	if len(matches) == 0 {
		return summary, nil
	}

	var sum float64
	for _, m := range matches {
		summary.ByStatus[m.Status]++
		sum += m.Score
	}
	summary.AverageScore = matching.Round2(sum / float64(len(matches)))
	best := matches[0]
	summary.BestMatch = &best

	return summary, nil
}

func emptyStatusCounts() map[matching.MatchStatus]int {
	counts := make(map[matching.MatchStatus]int, len(matching.AllStatuses))
	for _, status := range matching.AllStatuses {
		counts[status] = 0
	}
	return counts
}
