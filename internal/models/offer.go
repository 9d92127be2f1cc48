package models

import "time"

type CabinClass string

const (
	CabinEconomy        CabinClass = "economy"
	CabinPremiumEconomy CabinClass = "premium_economy"
	CabinBusiness       CabinClass = "business"
	CabinFirst          CabinClass = "first"
	CabinUnknown        CabinClass = "unknown"
)

type Route struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

type Tax struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Formatted string  `json:"formatted"`
}

// Offer is the normalized representation of one bookable award fare.
// Timestamps keep the UTC offset reported by the provider; they are not
// converted to UTC or to any local zone.
type Offer struct {
	ID              string     `json:"id"`
	Route           Route      `json:"route"`
	Provider        string     `json:"provider"`
	ProviderCode    string     `json:"provider_code"`
	CabinClass      CabinClass `json:"cabin_class"`
	PointsCost      int        `json:"points_cost"`
	PointsFormatted string     `json:"points_formatted"`
	Tax             Tax        `json:"tax"`
	SeatsRemaining  *int       `json:"seats_remaining"`
	Refundable      bool       `json:"refundable"`
	DepartureTime   time.Time  `json:"departure_time"`
	ArrivalTime     time.Time  `json:"arrival_time"`
	DurationMinutes int        `json:"duration_minutes"`
	Airlines        []string   `json:"airlines"`
	SoldOut         bool       `json:"sold_out"`
}
