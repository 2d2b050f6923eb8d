package model

import "time"

// Shared defaults used by both the service and the terminal client.
const (
	DefaultAPIPort          = 4000
	DefaultTokenTTL         = time.Hour
	DefaultSpaceXURL        = "https://api.spacexdata.com/v4"
	DefaultHTTPTimeout      = 15 * time.Second
	DefaultCarouselInterval = 3 * time.Second

	LaunchPageSize = 12
	RocketPageSize = 10
	MaxPageButtons = 5

	AuthCookieName = "authToken"
)
