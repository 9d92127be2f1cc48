package ranking

import (
	"sort"
	"time"

	"github.com/satriawan/awardsearch/internal/models"
)

type dedupeKey struct {
	origin       string
	destination  string
	providerCode string
	cabinClass   models.CabinClass
	departure    string
	arrival      string
	pointsCost   int
}

// Rank turns the concatenated provider output into the final ordered list:
// offers without a positive points cost are dropped (adapters should already
// have excluded them), true duplicates collapse to one entry, and the rest
// sort by points cost, then duration, then provider code.
//
// The same flight and cabin at two different points costs is not a
// duplicate; providers sometimes price one flight across several fare
// families.
func Rank(offers []models.Offer) []models.Offer {
	seen := make(map[dedupeKey]int, len(offers))
	result := make([]models.Offer, 0, len(offers))

	for _, offer := range offers {
		if offer.PointsCost <= 0 {
			continue
		}

		key := dedupeKey{
			origin:       offer.Route.Origin,
			destination:  offer.Route.Destination,
			providerCode: offer.ProviderCode,
			cabinClass:   offer.CabinClass,
			departure:    offer.DepartureTime.Format(time.RFC3339),
			arrival:      offer.ArrivalTime.Format(time.RFC3339),
			pointsCost:   offer.PointsCost,
		}

		if idx, found := seen[key]; found {
			// Keep whichever duplicate knows its seat count.
			if result[idx].SeatsRemaining == nil && offer.SeatsRemaining != nil {
				result[idx] = offer
			}
			continue
		}

		seen[key] = len(result)
		result = append(result, offer)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].PointsCost != result[j].PointsCost {
			return result[i].PointsCost < result[j].PointsCost
		}
		if result[i].DurationMinutes != result[j].DurationMinutes {
			return result[i].DurationMinutes < result[j].DurationMinutes
		}
		return result[i].ProviderCode < result[j].ProviderCode
	})

	return result
}
