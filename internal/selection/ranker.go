package selection

import (
	"sort"

	"github.com/wonny/hunter/internal/contracts"
)

// Aggregate drops records below minThreshold, orders the rest by overall
// score (descending, ties by symbol ascending) and assigns ranks 1..n.
// The input slice is not modified.
// ⭐ SSOT: 최종 순위 결정은 여기서만
func Aggregate(records []contracts.ScoreRecord, minThreshold float64) []contracts.ScoreRecord {
	ranked := make([]contracts.ScoreRecord, 0, len(records))
	for _, r := range records {
		if r.Overall < minThreshold {
			continue
		}
		ranked = append(ranked, r)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Overall != ranked[j].Overall {
			return ranked[i].Overall > ranked[j].Overall
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// Top returns at most n records (all when n <= 0)
func Top(records []contracts.ScoreRecord, n int) []contracts.ScoreRecord {
	if n <= 0 || n >= len(records) {
		return records
	}
	return records[:n]
}
