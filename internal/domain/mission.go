package domain

import "math"

// ─── Mission Types ──────────────────────────────────────────────────────────

// Store is a pickup point as served by the catalog collaborator.
type Store struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Items          []string `json:"items"`
	CollectionCode string   `json:"collection_code"`
}

// Customer is a drop-off contact as served by the catalog collaborator.
// PhoneSuffix is the last 4 digits of the phone number and doubles as the
// delivery confirmation code.
type Customer struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	PhoneSuffix string `json:"phone_suffix"`
}

// DeliveryMission is a single offered/accepted delivery job with a store leg
// and a customer leg. Created on generation, destroyed on reject, timeout, or
// completion. All fields are mandatory.
type DeliveryMission struct {
	ID                  string   `json:"id"`
	StoreName           string   `json:"store_name"`
	StoreAddress        string   `json:"store_address"`
	CustomerName        string   `json:"customer_name"`
	CustomerAddress     string   `json:"customer_address"`
	CustomerPhoneSuffix string   `json:"customer_phone_suffix"`
	Items               []string `json:"items"`
	CollectionCode      string   `json:"collection_code"`
	DistanceToStore     float64  `json:"distance_to_store"`
	DeliveryDistance    float64  `json:"delivery_distance"`
	TotalDistance       float64  `json:"total_distance"`
	Earnings            float64  `json:"earnings"`
	TimeLimit           int      `json:"time_limit"`
}

// Round1 rounds a distance to one decimal place. Both mission legs are
// rounded independently before summation, so the displayed total may drift
// from the leg sum by a tenth.
func Round1(km float64) float64 {
	return math.Round(km*10) / 10
}

// ─── Pricing ────────────────────────────────────────────────────────────────

// EarningsForDistance maps a delivery distance in km to a payout in R$.
// Ordered inclusive upper bounds evaluated ascending; the final branch
// catches everything above the highest threshold. Distances are not
// sign-checked, so negative input falls into the first bracket.
func EarningsForDistance(km float64) float64 {
	switch {
	case km <= 3:
		return 8.00
	case km <= 5:
		return 10.00
	case km <= 6:
		return 12.00
	case km <= 7:
		return 14.00
	case km <= 8:
		return 16.00
	case km <= 9:
		return 18.00
	default:
		return 20.00
	}
}
