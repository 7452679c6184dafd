package repository

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/fieldforce/internal/domain/model"
)

// Fixtures is seed data for a MemoryStore.
type Fixtures struct {
	Users     []model.User
	Metrics   []model.MetricRecord
	Locations []model.LocationSample
	Tasks     []model.Task
}

// fixtureFile is the on-disk shape. Timestamps are either absolute strings or
// offsets relative to load time (ago for samples, due_in for tasks).
type fixtureFile struct {
	Users     []model.User         `koanf:"users"`
	Metrics   []model.MetricRecord `koanf:"metrics"`
	Locations []locationFixture    `koanf:"locations"`
	Tasks     []taskFixture        `koanf:"tasks"`
}

type locationFixture struct {
	ID        string        `koanf:"id"`
	UserID    string        `koanf:"user_id"`
	Lat       float64       `koanf:"lat"`
	Lng       float64       `koanf:"lng"`
	Timestamp string        `koanf:"timestamp"`
	Ago       time.Duration `koanf:"ago"`
	Activity  string        `koanf:"activity"`
	Accuracy  *float64      `koanf:"accuracy"`
}

type taskFixture struct {
	ID       string             `koanf:"id"`
	UserID   string             `koanf:"user_id"`
	Title    string             `koanf:"title"`
	Status   model.TaskStatus   `koanf:"status"`
	Priority model.TaskPriority `koanf:"priority"`
	DueDate  string             `koanf:"due_date"`
	DueIn    time.Duration      `koanf:"due_in"`
}

// LoadFixtures reads a YAML fixture file. Relative offsets are resolved
// against now and zone-less timestamps are read in now's location.
func LoadFixtures(path string, now time.Time) (Fixtures, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Fixtures{}, fmt.Errorf("%w: %w", ErrLoadFixtures, err)
	}
	var raw fixtureFile
	if err := k.UnmarshalWithConf("", &raw, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Fixtures{}, fmt.Errorf("%w: %w", ErrLoadFixtures, err)
	}

	f := Fixtures{Users: raw.Users, Metrics: raw.Metrics}
	for _, l := range raw.Locations {
		ts, err := resolveTime(l.Timestamp, -l.Ago, now)
		if err != nil {
			return Fixtures{}, fmt.Errorf("%w: location %q: %w", ErrLoadFixtures, l.ID, err)
		}
		f.Locations = append(f.Locations, model.LocationSample{
			ID: l.ID, UserID: l.UserID, Lat: l.Lat, Lng: l.Lng,
			Timestamp: ts, Activity: l.Activity, Accuracy: l.Accuracy,
		})
	}
	for _, t := range raw.Tasks {
		due, err := resolveTime(t.DueDate, t.DueIn, now)
		if err != nil {
			return Fixtures{}, fmt.Errorf("%w: task %q: %w", ErrLoadFixtures, t.ID, err)
		}
		f.Tasks = append(f.Tasks, model.Task{
			ID: t.ID, UserID: t.UserID, Title: t.Title,
			Status: t.Status, Priority: t.Priority, DueDate: due,
		})
	}
	return f, nil
}

func resolveTime(raw string, offset time.Duration, now time.Time) (time.Time, error) {
	if raw == "" {
		return now.Add(offset), nil
	}
	return model.ParseTimestamp(raw, now.Location())
}

// DefaultFixtures is the demo field force: one admin, one manager and three
// salespeople around New Delhi, with samples placed relative to now.
func DefaultFixtures(now time.Time) Fixtures {
	sample := func(id, user string, lat, lng float64, ago time.Duration, activity string) model.LocationSample {
		return model.LocationSample{ID: id, UserID: user, Lat: lat, Lng: lng, Timestamp: now.Add(-ago), Activity: activity}
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	return Fixtures{
		Users: []model.User{
			{ID: "1", Name: "Rahul Sharma", Role: model.RoleSalesperson, ManagerID: "3", Territory: "North Delhi", Status: "active"},
			{ID: "2", Name: "Priya Patel", Role: model.RoleSalesperson, ManagerID: "3", Territory: "South Delhi", Status: "active"},
			{ID: "3", Name: "Vikram Singh", Role: model.RoleManager, ManagerID: "4", Territory: "Delhi NCR", Status: "active"},
			{ID: "4", Name: "Anita Desai", Role: model.RoleAdmin, Status: "active"},
			{ID: "5", Name: "Arjun Mehta", Role: model.RoleSalesperson, ManagerID: "3", Territory: "East Delhi", Status: "active"},
		},
		Metrics: []model.MetricRecord{
			{UserID: "1", SalesValue: 45000, Target: 60000, DistanceTraveled: 42.5, VisitsCompleted: 8, VisitsPlanned: 10, TasksCompleted: 5, TasksTotal: 7, ConversionRate: 37.5, AvgTimePerVisit: 34},
			{UserID: "2", SalesValue: 52000, Target: 50000, DistanceTraveled: 35.2, VisitsCompleted: 11, VisitsPlanned: 12, TasksCompleted: 6, TasksTotal: 6, ConversionRate: 45, AvgTimePerVisit: 28},
			{UserID: "3", SalesValue: 33000, Target: 60000, DistanceTraveled: 18.4, VisitsCompleted: 4, VisitsPlanned: 6, TasksCompleted: 3, TasksTotal: 5, ConversionRate: 25, AvgTimePerVisit: 41},
			{UserID: "5", SalesValue: 28000, Target: 0, DistanceTraveled: 51.9, VisitsCompleted: 6, VisitsPlanned: 9, TasksCompleted: 2, TasksTotal: 6, ConversionRate: 16.7, AvgTimePerVisit: 38},
		},
		Locations: []model.LocationSample{
			sample("seed-1-a", "1", 28.6139, 77.2090, 40*time.Minute, "Leaving office"),
			sample("seed-1-b", "1", 28.6304, 77.2177, 25*time.Minute, "Visiting customer"),
			sample("seed-1-c", "1", 28.6448, 77.2167, 10*time.Minute, "Travelling"),
			sample("seed-1-d", "1", 28.6519, 77.2315, 2*time.Minute, "Visiting customer"),
			sample("seed-2-a", "2", 28.5355, 77.2410, 12*time.Minute, "Lunch break"),
			sample("seed-3-a", "3", 28.6280, 77.2207, 3*time.Minute, "Team review"),
			sample("seed-5-a", "5", 28.6271, 77.2970, 50*time.Minute, "Last seen near Laxmi Nagar"),
		},
		Tasks: []model.Task{
			{ID: "task-1", UserID: "1", Title: "Follow up with Sharma Traders", Status: model.TaskPending, Priority: model.PriorityHigh, DueDate: day.Add(17 * time.Hour)},
			{ID: "task-2", UserID: "1", Title: "Collect payment from Gupta Stores", Status: model.TaskInProgress, Priority: model.PriorityMedium, DueDate: day.Add(-24*time.Hour + 12*time.Hour)},
			{ID: "task-3", UserID: "2", Title: "Product demo at Saket mall", Status: model.TaskPending, Priority: model.PriorityMedium, DueDate: day.Add(3*24*time.Hour + 11*time.Hour)},
			{ID: "task-4", UserID: "2", Title: "Submit weekly visit report", Status: model.TaskCompleted, Priority: model.PriorityLow, DueDate: day.Add(-2*24*time.Hour + 18*time.Hour)},
			{ID: "task-5", UserID: "5", Title: "Restock display units", Status: model.TaskPending, Priority: model.PriorityLow, DueDate: day.Add(10 * 24 * time.Hour)},
			{ID: "task-6", UserID: "3", Title: "Quarterly territory review", Status: model.TaskPending, Priority: model.PriorityHigh, DueDate: day.Add(5 * 24 * time.Hour)},
		},
	}
}
