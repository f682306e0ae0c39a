package strava

import (
	"fmt"
	"strings"
)

// Gear is a piece of equipment on the athlete profile.
type Gear struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Primary  bool    `json:"primary,omitempty"`
	Distance float64 `json:"distance,omitempty"` // lifetime meters as tracked by Strava
}

// Athlete is the subset of the authenticated athlete profile we use.
type Athlete struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	Firstname string `json:"firstname,omitempty"`
	Lastname  string `json:"lastname,omitempty"`
	Bikes     []Gear `json:"bikes,omitempty"`
}

// Activity is one summary activity from the list endpoint.
type Activity struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name,omitempty"`
	Type      string  `json:"type,omitempty"`
	SportType string  `json:"sport_type,omitempty"`
	StartDate string  `json:"start_date,omitempty"` // ISO 8601 UTC
	Distance  float64 `json:"distance"`             // meters
	GearID    *string `json:"gear_id"`
}

// Gear returns the gear id, or "" when the activity has none.
func (a Activity) Gear() string {
	if a.GearID == nil {
		return ""
	}
	return *a.GearID
}

// FaultError is one entry of a fault's error list.
type FaultError struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
	Code     string `json:"code"`
}

// Fault is the error body Strava returns in place of a resource.
type Fault struct {
	Message string       `json:"message,omitempty"`
	Errors  []FaultError `json:"errors,omitempty"`
}

func (f Fault) Error() string {
	if f.Message == "" {
		return "strava fault"
	}
	if len(f.Errors) == 0 {
		return f.Message
	}
	details := make([]string, 0, len(f.Errors))
	for _, e := range f.Errors {
		details = append(details, fmt.Sprintf("%s.%s %s", e.Resource, e.Field, e.Code))
	}
	return f.Message + " (" + strings.Join(details, ", ") + ")"
}
