package model

// MetricRecord is one user's performance snapshot for a reporting period.
// Records are read-only for the domain packages.
type MetricRecord struct {
	UserID           string  `json:"user_id" koanf:"user_id"`
	SalesValue       float64 `json:"sales_value" koanf:"sales_value"`
	Target           float64 `json:"target" koanf:"target"` // zero when unassigned
	DistanceTraveled float64 `json:"distance_traveled" koanf:"distance_traveled"`
	VisitsCompleted  int     `json:"visits_completed" koanf:"visits_completed"`
	VisitsPlanned    int     `json:"visits_planned" koanf:"visits_planned"`
	TasksCompleted   int     `json:"tasks_completed" koanf:"tasks_completed"`
	TasksTotal       int     `json:"tasks_total" koanf:"tasks_total"`
	ConversionRate   float64 `json:"conversion_rate" koanf:"conversion_rate"`
	AvgTimePerVisit  float64 `json:"avg_time_per_visit" koanf:"avg_time_per_visit"` // minutes
}
