package filter

import (
	"strings"

	"github.com/satriawan/awardsearch/internal/models"
)

// Apply narrows a ranked offer list for presentation. It never reorders;
// ranking is fixed upstream.
func Apply(offers []models.Offer, filters *models.SearchFilters) []models.Offer {
	if filters == nil {
		return offers
	}

	result := make([]models.Offer, 0, len(offers))
	for _, offer := range offers {
		if matches(offer, filters) {
			result = append(result, offer)
		}
	}

	return result
}

func matches(offer models.Offer, filters *models.SearchFilters) bool {
	if len(filters.CabinClasses) > 0 {
		found := false
		for _, cabin := range filters.CabinClasses {
			if offer.CabinClass == cabin {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if filters.MaxPoints != nil && offer.PointsCost > *filters.MaxPoints {
		return false
	}

	if len(filters.Airlines) > 0 {
		found := false
		for _, wanted := range filters.Airlines {
			for _, airline := range offer.Airlines {
				if strings.EqualFold(airline, wanted) {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return false
		}
	}

	if filters.RefundableOnly && !offer.Refundable {
		return false
	}

	if filters.ExcludeSoldOut && offer.SoldOut {
		return false
	}

	return true
}
