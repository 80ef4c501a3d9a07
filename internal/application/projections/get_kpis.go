package projections

import (
	"math"

	"fitinsight/internal/domain/dataset"
)

// KPIReport is the flat metric mapping served to the dashboard. Every value
// is recomputed from the canonical model on each query; nothing is cached.
type KPIReport struct {
	TotalMembers        int                `json:"total_members"`
	ActiveMembers       int                `json:"active_members"`
	InactiveMembers     int                `json:"inactive_members"`
	TotalRevenue        float64            `json:"total_revenue"`
	AvgRevenuePerMember float64            `json:"avg_revenue_per_member"`
	RevenueByPlan       map[string]float64 `json:"revenue_by_plan"`
	StatusDistribution  map[string]int     `json:"status_distribution"`
	RiskDistribution    map[string]int     `json:"risk_distribution"`
	MembersByTrainer    map[string]int     `json:"members_by_trainer"`
}

// QueryGetKPIs computes summary metrics over the assembled dataset.
//
// Total revenue is the unconditional sum over all payment rows. The per-plan
// breakdown is an inner join payments→members on member_id: members without
// payments contribute nothing, and payments whose member is not in the
// canonical set are excluded from the breakdown (but still count toward the
// total).
//
// PRE: ds was produced by Assemble (and optionally classified)
// POST: active + inactive == total; avg is 0 when the set is empty
func QueryGetKPIs(ds *dataset.Dataset) KPIReport {
	report := KPIReport{
		RevenueByPlan:      make(map[string]float64),
		StatusDistribution: make(map[string]int),
		RiskDistribution:   make(map[string]int),
		MembersByTrainer:   make(map[string]int),
	}

	planByMember := make(map[string]string, len(ds.Members))
	for _, m := range ds.Members {
		report.TotalMembers++
		if m.IsActive() {
			report.ActiveMembers++
		}
		report.StatusDistribution[m.Status]++
		if m.RiskLevel != "" {
			report.RiskDistribution[m.RiskLevel]++
		}
		if m.TrainerName != "" {
			report.MembersByTrainer[m.TrainerName]++
		}
		planByMember[m.MemberID] = m.PlanType
	}
	report.InactiveMembers = report.TotalMembers - report.ActiveMembers

	for _, p := range ds.Payments {
		report.TotalRevenue += p.Amount
		if plan, ok := planByMember[p.MemberID]; ok {
			report.RevenueByPlan[plan] += p.Amount
		}
	}

	if report.TotalMembers > 0 {
		report.AvgRevenuePerMember = round2(report.TotalRevenue / float64(report.TotalMembers))
	}

	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
