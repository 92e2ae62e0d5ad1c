package billing

import "time"

// Money represents a monetary amount in the smallest currency unit.
// For example, $10.99 USD would be Amount: 1099, Currency: "USD".
type Money struct {
	Amount   int64  `yaml:"amount"`   // amount in smallest currency unit (cents for USD)
	Currency string `yaml:"currency"` // ISO 4217 currency code
}

// Interval is the closed set of billing frequencies a plan can carry.
type Interval string

const (
	IntervalMonthly Interval = "monthly"
	IntervalYearly  Interval = "yearly"
)

// Valid reports whether the interval is one of the known values.
func (i Interval) Valid() bool {
	switch i {
	case IntervalMonthly, IntervalYearly:
		return true
	}
	return false
}

// Next returns the renewal deadline one billing interval after from.
func (i Interval) Next(from time.Time) time.Time {
	switch i {
	case IntervalYearly:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}

// Plan describes a purchasable subscription plan. The ID should be set to
// the payment gateway's price/plan ID so intents and callbacks map back to
// the catalog directly. Plans are read-only reference data, never mutated
// at runtime.
type Plan struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Price       Money    `yaml:"price"`
	Interval    Interval `yaml:"interval"`
}

// NextRenewal returns when a subscription to this plan must be renewed,
// counting one interval from the given payment time.
func (p Plan) NextRenewal(paidAt time.Time) time.Time {
	return p.Interval.Next(paidAt).UTC()
}
