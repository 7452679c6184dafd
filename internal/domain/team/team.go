// Package team aggregates per-member performance metrics into fleet totals.
package team

import (
	"math"

	"github.com/okian/fieldforce/internal/domain/model"
)

// Totals are the fleet-wide sums shown on the manager and admin dashboards.
type Totals struct {
	Members            int     `json:"members"`
	TotalSales         float64 `json:"total_sales"`
	TotalDistance      float64 `json:"total_distance"`
	TotalVisits        int     `json:"total_visits"`
	TotalTarget        float64 `json:"total_target"`
	TasksCompleted     int     `json:"tasks_completed"`
	TasksTotal         int     `json:"tasks_total"`
	AchievementPercent int     `json:"achievement_percent"`
}

// Aggregate sums metrics. An empty input yields zero totals.
func Aggregate(metrics []model.MetricRecord) Totals {
	var t Totals
	for i := range metrics {
		m := &metrics[i]
		t.TotalSales += m.SalesValue
		t.TotalDistance += m.DistanceTraveled
		t.TotalVisits += m.VisitsCompleted
		t.TotalTarget += m.Target
		t.TasksCompleted += m.TasksCompleted
		t.TasksTotal += m.TasksTotal
	}
	t.Members = len(metrics)
	t.AchievementPercent = roundHalfUp(Achievement(t.TotalSales, t.TotalTarget))
	return t
}

// Achievement returns sales as a percentage of target, or 0 when the target is
// not positive. The result is never NaN or infinite for finite inputs.
func Achievement(sales, target float64) float64 {
	if !(target > 0) {
		return 0
	}
	p := 100 * sales / target
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return p
}

// roundHalfUp rounds .5 towards positive infinity, matching dashboard display.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// MemberRow is a team member joined with their metric record.
type MemberRow struct {
	UserID           string  `json:"user_id"`
	Name             string  `json:"name"`
	Territory        string  `json:"territory,omitempty"`
	Status           string  `json:"status,omitempty"`
	SalesValue       float64 `json:"sales_value"`
	Target           float64 `json:"target"`
	DistanceTraveled float64 `json:"distance_traveled"`
	VisitsCompleted  int     `json:"visits_completed"`
	VisitsPlanned    int     `json:"visits_planned"`
	TasksCompleted   int     `json:"tasks_completed"`
	TasksTotal       int     `json:"tasks_total"`
	ConversionRate   float64 `json:"conversion_rate"`
	AvgTimePerVisit  float64 `json:"avg_time_per_visit"`
	Achievement      float64 `json:"achievement"`
}

// JoinMembers produces one row per user in users order. Users without a
// metric record get a zero record.
func JoinMembers(users []model.User, metrics []model.MetricRecord) []MemberRow {
	byUser := make(map[string]model.MetricRecord, len(metrics))
	for _, m := range metrics {
		if _, dup := byUser[m.UserID]; !dup {
			byUser[m.UserID] = m
		}
	}
	rows := make([]MemberRow, 0, len(users))
	for _, u := range users {
		m := byUser[u.ID]
		rows = append(rows, MemberRow{
			UserID:           u.ID,
			Name:             u.Name,
			Territory:        u.Territory,
			Status:           u.Status,
			SalesValue:       m.SalesValue,
			Target:           m.Target,
			DistanceTraveled: m.DistanceTraveled,
			VisitsCompleted:  m.VisitsCompleted,
			VisitsPlanned:    m.VisitsPlanned,
			TasksCompleted:   m.TasksCompleted,
			TasksTotal:       m.TasksTotal,
			ConversionRate:   m.ConversionRate,
			AvgTimePerVisit:  m.AvgTimePerVisit,
			Achievement:      Achievement(m.SalesValue, m.Target),
		})
	}
	return rows
}
