package ratecards

import (
	"time"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

// Category buckets a rate card line item by hiring segment.
type Category string

const (
	CategoryIT         Category = "IT"
	CategoryNonIT      Category = "Non-IT"
	CategoryLeadership Category = "Leadership"
	CategoryVolume     Category = "Volume"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryIT, CategoryNonIT, CategoryLeadership, CategoryVolume:
		return true
	}
	return false
}

// Item is one priced position category on a rate card.
type Item struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      Category `json:"category"`
	BasePrice     float64  `json:"base_price"`
	DiscountLimit float64  `json:"discount_limit"`
	Unit          string   `json:"unit"`
	Active        bool     `json:"active"`
}

// RateCard is a versioned price list. At most one card is active at a time;
// activation is a single transactional swap.
type RateCard struct {
	ID        string    `json:"id"`
	Version   string    `json:"version"`
	Items     []Item    `json:"items"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the shape rules for create and update.
func (rc *RateCard) Validate() error {
	var v faults.ValidationError
	if rc.Version == "" {
		v.Add("version", "is required")
	}
	if len(rc.Items) == 0 {
		v.Add("items", "must contain at least one item")
	}
	for _, it := range rc.Items {
		if it.Name == "" {
			v.Add("items", "item name is required")
		}
		if !it.Category.Valid() {
			v.Add("items", "item category must be one of IT, Non-IT, Leadership, Volume")
		}
		if it.BasePrice <= 0 {
			v.Add("items", "item base_price must be positive")
		}
		if it.DiscountLimit < 0 || it.DiscountLimit > 100 {
			v.Add("items", "item discount_limit must be a percentage between 0 and 100")
		}
	}
	return v.OrNil()
}
