package model

import "time"

// Interval classifies the periodicity of a recurring pattern.
type Interval string

// Interval constants. EveryNDays covers consistent gaps that fit no named bin;
// its concrete length lives in RecurringPattern.IntervalDays.
const (
	IntervalWeekly     Interval = "WEEKLY"
	IntervalBiweekly   Interval = "BIWEEKLY"
	IntervalMonthly    Interval = "MONTHLY"
	IntervalQuarterly  Interval = "QUARTERLY"
	IntervalSemiannual Interval = "SEMIANNUAL"
	IntervalAnnual     Interval = "ANNUAL"
	IntervalEveryNDays Interval = "EVERY_N_DAYS"
)

// RecurringPattern is a group of transactions judged to repeat at a
// consistent interval and amount. It is derived from a transaction window on
// every detection call and never persisted.
type RecurringPattern struct {
	NextDate       time.Time     `json:"next_date"`
	Description    string        `json:"description"`
	Interval       Interval      `json:"interval_type"`
	Transactions   []Transaction `json:"transactions"`
	AvgAmount      float64       `json:"avg_amount"`
	IntervalDays   int           `json:"interval_days"`
	Confidence     float64       `json:"confidence"`
	Occurrences    int           `json:"occurrences"`
	MonthlyCost    float64       `json:"monthly_cost"`
	AnnualCost     float64       `json:"annual_cost"`
	IsSubscription bool          `json:"is_subscription"`
}

// UpcomingPayment is a projected charge due within the next week.
type UpcomingPayment struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
}

// RecurringReport aggregates detected patterns and subscription costs.
type RecurringReport struct {
	Patterns                []RecurringPattern `json:"patterns"`
	UpcomingPayments        []UpcomingPayment  `json:"upcoming_payments"`
	MonthlySubscriptionCost float64            `json:"monthly_subscription_cost"`
	AnnualSubscriptionCost  float64            `json:"annual_subscription_cost"`
	TotalSubscriptions      int                `json:"total_subscriptions"`
}
