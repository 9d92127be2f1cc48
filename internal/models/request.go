package models

import (
	"strings"
	"time"
)

type SearchFilters struct {
	CabinClasses   []CabinClass `json:"cabin_classes,omitempty"`
	MaxPoints      *int         `json:"max_points,omitempty"`
	Airlines       []string     `json:"airlines,omitempty"`
	RefundableOnly bool         `json:"refundable_only,omitempty"`
	ExcludeSoldOut bool         `json:"exclude_sold_out,omitempty"`
}

type SearchCriteria struct {
	Origin        string         `json:"origin"`
	Destination   string         `json:"destination"`
	DepartureDate string         `json:"departure_date"`
	ReturnDate    *string        `json:"return_date,omitempty"`
	Passengers    int            `json:"passengers"`
	Filters       *SearchFilters `json:"filters,omitempty"`
}

func (c *SearchCriteria) Validate() error {
	c.Origin = strings.ToUpper(strings.TrimSpace(c.Origin))
	c.Destination = strings.ToUpper(strings.TrimSpace(c.Destination))

	if c.Origin == "" {
		return ErrMissingOrigin
	}
	if c.Destination == "" {
		return ErrMissingDestination
	}
	if c.Origin == c.Destination {
		return ErrSameOriginDestination
	}
	if c.DepartureDate == "" {
		return ErrMissingDepartureDate
	}

	depDate, err := time.Parse("2006-01-02", c.DepartureDate)
	if err != nil {
		return ErrInvalidDepartureDate
	}

	if c.ReturnDate != nil && *c.ReturnDate != "" {
		retDate, err := time.Parse("2006-01-02", *c.ReturnDate)
		if err != nil {
			return ErrInvalidReturnDate
		}
		if retDate.Before(depDate) {
			return ErrReturnBeforeDeparture
		}
	}

	if c.Passengers <= 0 {
		c.Passengers = 1
	}

	return nil
}

// Reversed returns the criteria for the return leg of a round trip.
func (c *SearchCriteria) Reversed() SearchCriteria {
	out := SearchCriteria{
		Origin:      c.Destination,
		Destination: c.Origin,
		Passengers:  c.Passengers,
		Filters:     c.Filters,
	}
	if c.ReturnDate != nil {
		out.DepartureDate = *c.ReturnDate
	}
	return out
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin         ValidationError = "origin is required"
	ErrMissingDestination    ValidationError = "destination is required"
	ErrSameOriginDestination ValidationError = "origin and destination must differ"
	ErrMissingDepartureDate  ValidationError = "departure_date is required"
	ErrInvalidDepartureDate  ValidationError = "departure_date must be a valid YYYY-MM-DD date"
	ErrInvalidReturnDate     ValidationError = "return_date must be a valid YYYY-MM-DD date"
	ErrReturnBeforeDeparture ValidationError = "return_date must not be before departure_date"
)
