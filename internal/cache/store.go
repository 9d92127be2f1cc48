package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/satriawan/awardsearch/internal/models"
)

// Snapshot is the last-known-good offer set one provider produced for one
// search. It is overwritten on every successful fetch and read back when a
// later live call fails. No expiry is applied here; staleness policy belongs
// to the caller, which gets CapturedAt to decide with.
type Snapshot struct {
	ProviderCode string         `json:"provider_code"`
	Offers       []models.Offer `json:"offers"`
	CapturedAt   time.Time      `json:"captured_at"`
}

type Store interface {
	Get(ctx context.Context, providerCode, fingerprint string) (*Snapshot, bool)
	Put(ctx context.Context, providerCode, fingerprint string, offers []models.Offer) error
	Close() error
}

// Fingerprint hashes the search identity fields. Presentation filters are
// deliberately left out: two searches for the same route and dates share
// cached provider data regardless of how the results get narrowed.
func Fingerprint(criteria models.SearchCriteria) string {
	keyData := struct {
		Origin        string
		Destination   string
		DepartureDate string
		ReturnDate    string
		Passengers    int
	}{
		Origin:        criteria.Origin,
		Destination:   criteria.Destination,
		DepartureDate: criteria.DepartureDate,
		Passengers:    criteria.Passengers,
	}

	if criteria.ReturnDate != nil {
		keyData.ReturnDate = *criteria.ReturnDate
	}

	data, _ := json.Marshal(keyData)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
