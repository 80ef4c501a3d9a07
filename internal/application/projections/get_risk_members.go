package projections

import (
	"strings"

	"fitinsight/internal/domain/dataset"
	"fitinsight/internal/domain/member"
	"fitinsight/internal/domain/risk"
)

// riskLevelFilters maps query-string filter names onto risk tier labels.
var riskLevelFilters = map[string]string{
	"high":   risk.High,
	"medium": risk.Medium,
	"low":    risk.Low,
}

// RiskLevelFromFilter translates a filter name ("high", "medium", "low")
// into the matching tier label. Empty means no filter; unknown names match
// nothing.
func RiskLevelFromFilter(name string) (string, bool) {
	if name == "" {
		return "", true
	}
	level, ok := riskLevelFilters[strings.ToLower(name)]
	return level, ok
}

// QueryGetRiskMembers returns the members at the given risk tier, or the
// whole classified set when level is empty. The dataset is never mutated.
func QueryGetRiskMembers(ds *dataset.Dataset, level string) []member.CanonicalMember {
	out := make([]member.CanonicalMember, 0, len(ds.Members))
	for _, m := range ds.Members {
		if level == "" || m.RiskLevel == level {
			out = append(out, m)
		}
	}
	return out
}
