// Package table sorts team performance rows for the member table.
package table

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/okian/fieldforce/internal/domain/team"
)

// ErrUnknownKey is returned for a sort key the table does not expose.
var ErrUnknownKey = errors.New("unknown sort key")

// ErrUnknownDirection is returned for a direction other than asc or desc.
var ErrUnknownDirection = errors.New("unknown sort direction")

// Direction of a column sort.
type Direction string

// Directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sortable column keys.
const (
	KeyName             = "name"
	KeySalesValue       = "salesValue"
	KeyTarget           = "target"
	KeyDistanceTraveled = "distanceTraveled"
	KeyVisitsCompleted  = "visitsCompleted"
	KeyTasksCompleted   = "tasksCompleted"
	KeyConversionRate   = "conversionRate"
	KeyAvgTimePerVisit  = "avgTimePerVisit"
	KeyAchievement      = "achievement"
)

type column struct {
	number func(r *team.MemberRow) float64
	text   func(r *team.MemberRow) string
}

var columns = map[string]column{
	KeyName:             {text: func(r *team.MemberRow) string { return r.Name }},
	KeySalesValue:       {number: func(r *team.MemberRow) float64 { return r.SalesValue }},
	KeyTarget:           {number: func(r *team.MemberRow) float64 { return r.Target }},
	KeyDistanceTraveled: {number: func(r *team.MemberRow) float64 { return r.DistanceTraveled }},
	KeyVisitsCompleted:  {number: func(r *team.MemberRow) float64 { return float64(r.VisitsCompleted) }},
	KeyTasksCompleted:   {number: func(r *team.MemberRow) float64 { return float64(r.TasksCompleted) }},
	KeyConversionRate:   {number: func(r *team.MemberRow) float64 { return r.ConversionRate }},
	KeyAvgTimePerVisit:  {number: func(r *team.MemberRow) float64 { return r.AvgTimePerVisit }},
	KeyAchievement:      {number: func(r *team.MemberRow) float64 { return r.Achievement }},
}

// Keys lists the sortable keys in lexical order.
func Keys() []string {
	keys := make([]string, 0, len(columns))
	for k := range columns {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// State is the table's current sort column and direction.
type State struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// DefaultState is the table's initial ordering.
func DefaultState() State {
	return State{Key: KeySalesValue, Direction: Desc}
}

// Toggle returns the state after a click on key: the active key flips its
// direction, any other key starts ascending.
func (s State) Toggle(key string) State {
	if key == s.Key {
		if s.Direction == Asc {
			return State{Key: key, Direction: Desc}
		}
		return State{Key: key, Direction: Asc}
	}
	return State{Key: key, Direction: Asc}
}

// ParseState validates a key and direction from a query. An empty key yields
// DefaultState; an empty direction means ascending.
func ParseState(key, dir string) (State, error) {
	if strings.TrimSpace(key) == "" {
		return DefaultState(), nil
	}
	if _, ok := columns[key]; !ok {
		return State{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	switch d := Direction(strings.ToLower(strings.TrimSpace(dir))); d {
	case "", Asc:
		return State{Key: key, Direction: Asc}, nil
	case Desc:
		return State{Key: key, Direction: Desc}, nil
	}
	return State{}, fmt.Errorf("%w: %q", ErrUnknownDirection, dir)
}

// Sort returns a sorted copy of rows. The sort is stable: rows with equal
// keys keep their input order in either direction.
func Sort(rows []team.MemberRow, s State) ([]team.MemberRow, error) {
	col, ok := columns[s.Key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, s.Key)
	}
	out := slices.Clone(rows)
	compare := func(a, b team.MemberRow) int {
		if col.text != nil {
			return strings.Compare(col.text(&a), col.text(&b))
		}
		return cmp.Compare(col.number(&a), col.number(&b))
	}
	if s.Direction == Desc {
		slices.SortStableFunc(out, func(a, b team.MemberRow) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(out, compare)
	}
	return out, nil
}
