// Package freshness classifies how recently a field member reported a location.
package freshness

import (
	"fmt"
	"math"
	"time"

	"github.com/okian/fieldforce/internal/domain/model"
)

// Default thresholds. ActiveWithin drives marker state; InFieldWithin drives
// the separate "active in field" counter on the fleet dashboard. The two are
// kept apart on purpose and must not be collapsed into one value.
const (
	DefaultActiveWithin  = 5 * time.Minute
	DefaultIdleWithin    = 30 * time.Minute
	DefaultInFieldWithin = 30 * time.Minute
)

// ErrInvalidTimestamp is returned when a last-seen value is missing or unparseable.
var ErrInvalidTimestamp = model.ErrInvalidTimestamp

// Activity is the inferred state of a field member.
type Activity string

// Activity states.
const (
	Active  Activity = "active"
	Idle    Activity = "idle"
	Offline Activity = "offline"
)

// Thresholds bound the elapsed time for each state. Elapsed below ActiveWithin
// is Active, below IdleWithin is Idle, anything else Offline.
type Thresholds struct {
	ActiveWithin  time.Duration
	IdleWithin    time.Duration
	InFieldWithin time.Duration
}

// DefaultThresholds returns the dashboard's stock thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ActiveWithin:  DefaultActiveWithin,
		IdleWithin:    DefaultIdleWithin,
		InFieldWithin: DefaultInFieldWithin,
	}
}

// Classify maps lastSeen to an Activity using the default thresholds.
func Classify(lastSeen, now time.Time) (Activity, error) {
	return DefaultThresholds().Classify(lastSeen, now)
}

// ClassifyTimestamp parses raw and classifies it with the default thresholds.
func ClassifyTimestamp(raw string, now time.Time) (Activity, error) {
	return DefaultThresholds().ClassifyTimestamp(raw, now)
}

// Classify maps lastSeen to an Activity. A zero lastSeen is rejected rather
// than guessed at.
func (t Thresholds) Classify(lastSeen, now time.Time) (Activity, error) {
	if lastSeen.IsZero() {
		return "", fmt.Errorf("%w: zero last-seen time", ErrInvalidTimestamp)
	}
	elapsed := now.Sub(lastSeen)
	switch {
	case elapsed < t.ActiveWithin:
		return Active, nil
	case elapsed < t.IdleWithin:
		return Idle, nil
	default:
		return Offline, nil
	}
}

// ClassifyTimestamp parses raw in now's location and classifies it.
func (t Thresholds) ClassifyTimestamp(raw string, now time.Time) (Activity, error) {
	lastSeen, err := model.ParseTimestamp(raw, now.Location())
	if err != nil {
		return "", err
	}
	return t.Classify(lastSeen, now)
}

// InField reports whether lastSeen falls inside the in-field window.
func (t Thresholds) InField(lastSeen, now time.Time) (bool, error) {
	if lastSeen.IsZero() {
		return false, fmt.Errorf("%w: zero last-seen time", ErrInvalidTimestamp)
	}
	return now.Sub(lastSeen) < t.InFieldWithin, nil
}

// MemberStatus is the classification of one member's latest sample.
type MemberStatus struct {
	UserID   string        `json:"user_id"`
	LastSeen time.Time     `json:"last_seen"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	Activity Activity      `json:"activity"`
	InField  bool          `json:"in_field"`
	Location model.Point   `json:"location"`
	Note     string        `json:"note,omitempty"`
}

// Fleet summarises the latest samples of a team.
type Fleet struct {
	TeamSize       int            `json:"team_size"`
	Tracked        int            `json:"tracked"`
	Active         int            `json:"active"`
	Idle           int            `json:"idle"`
	Offline        int            `json:"offline"`
	InField        int            `json:"in_field"`
	InFieldPercent int            `json:"in_field_percent"`
	Members        []MemberStatus `json:"members"`
}

// Summarize classifies the latest sample of every tracked member. teamSize is
// the number of members in scope, tracked or not; it is the denominator of
// InFieldPercent.
func (t Thresholds) Summarize(latest []model.LocationSample, teamSize int, now time.Time) (Fleet, error) {
	f := Fleet{TeamSize: teamSize, Members: make([]MemberStatus, 0, len(latest))}
	for _, s := range latest {
		act, err := t.Classify(s.Timestamp, now)
		if err != nil {
			return Fleet{}, fmt.Errorf("member %s: %w", s.UserID, err)
		}
		inField, _ := t.InField(s.Timestamp, now)
		switch act {
		case Active:
			f.Active++
		case Idle:
			f.Idle++
		case Offline:
			f.Offline++
		}
		if inField {
			f.InField++
		}
		f.Members = append(f.Members, MemberStatus{
			UserID:   s.UserID,
			LastSeen: s.Timestamp,
			Elapsed:  now.Sub(s.Timestamp),
			Activity: act,
			InField:  inField,
			Location: s.Point(),
			Note:     s.Activity,
		})
	}
	f.Tracked = len(f.Members)
	f.InFieldPercent = percent(f.InField, teamSize)
	return f, nil
}

func percent(part, whole int) int {
	if whole <= 0 || part <= 0 {
		return 0
	}
	return int(math.Floor(100*float64(part)/float64(whole) + 0.5))
}
