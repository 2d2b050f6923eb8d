package model

import "time"

// Item is the minimal contract every listed record satisfies.
// Domain fields beyond ID and Name pass through untouched.
type Item interface {
	ItemID() string
	ItemName() string
}

// Launch represents a single launch as served by the SpaceX v4 API.
type Launch struct {
	ID           string      `json:"id" yaml:"id"`
	Name         string      `json:"name" yaml:"name"`
	FlightNumber int         `json:"flight_number" yaml:"flight_number"`
	DateUTC      time.Time   `json:"date_utc" yaml:"date_utc"`
	Upcoming     bool        `json:"upcoming" yaml:"upcoming"`
	Success      *bool       `json:"success" yaml:"success"`
	Details      string      `json:"details" yaml:"details"`
	Rocket       string      `json:"rocket" yaml:"rocket"` // rocket id
	Links        LaunchLinks `json:"links" yaml:"links"`
}

// LaunchLinks holds the external links attached to a launch.
type LaunchLinks struct {
	Patch struct {
		Small string `json:"small" yaml:"small"`
		Large string `json:"large" yaml:"large"`
	} `json:"patch" yaml:"patch"`
	Webcast   string `json:"webcast" yaml:"webcast"`
	Article   string `json:"article" yaml:"article"`
	Wikipedia string `json:"wikipedia" yaml:"wikipedia"`
	Flickr    struct {
		Original []string `json:"original" yaml:"original"`
	} `json:"flickr" yaml:"flickr"`
}

func (l Launch) ItemID() string   { return l.ID }
func (l Launch) ItemName() string { return l.Name }

// Outcome returns a short human label for the launch result.
func (l Launch) Outcome() string {
	switch {
	case l.Upcoming:
		return "upcoming"
	case l.Success == nil:
		return "unknown"
	case *l.Success:
		return "success"
	default:
		return "failure"
	}
}

// Dimension is a length expressed in both unit systems.
type Dimension struct {
	Meters *float64 `json:"meters" yaml:"meters"`
	Feet   *float64 `json:"feet" yaml:"feet"`
}

// Mass is a weight expressed in both unit systems.
type Mass struct {
	Kg int64 `json:"kg" yaml:"kg"`
	Lb int64 `json:"lb" yaml:"lb"`
}

// Rocket represents a rocket as served by the SpaceX v4 API.
type Rocket struct {
	ID             string    `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	Type           string    `json:"type" yaml:"type"`
	Active         bool      `json:"active" yaml:"active"`
	Stages         int       `json:"stages" yaml:"stages"`
	Boosters       int       `json:"boosters" yaml:"boosters"`
	CostPerLaunch  int64     `json:"cost_per_launch" yaml:"cost_per_launch"`
	SuccessRatePct int       `json:"success_rate_pct" yaml:"success_rate_pct"`
	FirstFlight    string    `json:"first_flight" yaml:"first_flight"`
	Country        string    `json:"country" yaml:"country"`
	Company        string    `json:"company" yaml:"company"`
	Height         Dimension `json:"height" yaml:"height"`
	Diameter       Dimension `json:"diameter" yaml:"diameter"`
	Mass           Mass      `json:"mass" yaml:"mass"`
	Description    string    `json:"description" yaml:"description"`
	Wikipedia      string    `json:"wikipedia" yaml:"wikipedia"`
	FlickrImages   []string  `json:"flickr_images" yaml:"flickr_images"`
}

func (r Rocket) ItemID() string   { return r.ID }
func (r Rocket) ItemName() string { return r.Name }

// SortSpec describes the server-side ordering of a listing.
type SortSpec struct {
	Field      string
	Descending bool
}

// Direction returns the wire representation of the sort direction.
func (s SortSpec) Direction() string {
	if s.Descending {
		return "desc"
	}
	return "asc"
}

// Default orderings for the two listings.
var (
	LaunchSort = SortSpec{Field: "date_utc", Descending: true}
	RocketSort = SortSpec{Field: "name"}
)
