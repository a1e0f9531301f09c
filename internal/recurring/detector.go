// Package recurring detects repeating payment patterns and subscription costs
// in transaction history.
package recurring

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// Detection defaults.
const (
	DefaultMinOccurrences = 3
	DefaultWindowDays     = 365
	DefaultAmountVariance = 0.05
)

// intervalCV is the maximum coefficient of variation for a gap sequence to
// count as a consistent interval.
const intervalCV = 0.25

// upcomingWindow is how far ahead a predicted payment counts as upcoming.
const upcomingWindow = 7 * 24 * time.Hour

// Detector finds recurring payment patterns in a transaction window. It is
// stateless across calls; every Detect run derives patterns from scratch.
type Detector struct {
	now            func() time.Time
	logger         *slog.Logger
	minOccurrences int
	windowDays     int
	amountVariance float64
}

// NewDetector creates a detector. Zero-valued options fall back to the
// defaults: 3 occurrences, 365-day window, 5% amount variance.
func NewDetector(opts service.DetectorOptions, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}

	d := &Detector{
		now:            time.Now,
		logger:         logger,
		minOccurrences: DefaultMinOccurrences,
		windowDays:     DefaultWindowDays,
		amountVariance: DefaultAmountVariance,
	}
	if opts.MinOccurrences > 0 {
		d.minOccurrences = opts.MinOccurrences
	}
	if opts.WindowDays > 0 {
		d.windowDays = opts.WindowDays
	}
	if opts.AmountVariance > 0 {
		d.amountVariance = opts.AmountVariance
	}
	if !opts.Now.IsZero() {
		now := opts.Now
		d.now = func() time.Time { return now }
	}
	return d
}

// Detect analyzes transactions and returns the recurring-pattern report.
// Input with no detectable patterns yields an empty report and no error.
func (d *Detector) Detect(ctx context.Context, transactions []model.Transaction) (*model.RecurringReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &model.RecurringReport{
		Patterns:         []model.RecurringPattern{},
		UpcomingPayments: []model.UpcomingPayment{},
	}

	now := d.now()
	windowed := d.filterWindow(transactions, now)
	if len(windowed) == 0 {
		d.logger.Debug("no transactions inside detection window")
		return report, nil
	}

	groups := d.groupSimilar(windowed)

	var monthlyTotal, annualTotal float64
	for _, group := range groups {
		if len(group.transactions) < d.minOccurrences {
			continue
		}

		interval, meanDays, confidence, ok := d.detectInterval(group.transactions)
		if !ok {
			continue
		}

		avgAmount := meanAmount(group.transactions)
		intervalDays := int(math.Round(meanDays))
		monthlyCost, annualCost := costPerPeriod(interval, intervalDays, avgAmount)

		isSubscription := false
		for _, txn := range group.transactions {
			if isLikelySubscription(txn.Description) {
				isSubscription = true
				break
			}
		}
		if isSubscription {
			monthlyTotal += monthlyCost
			annualTotal += annualCost
		}

		last := group.transactions[len(group.transactions)-1].Date
		nextDate := last.AddDate(0, 0, intervalDays)

		pattern := model.RecurringPattern{
			Description:    group.description,
			AvgAmount:      roundCents(avgAmount),
			Interval:       interval,
			IntervalDays:   intervalDays,
			Confidence:     confidence,
			Occurrences:    len(group.transactions),
			IsSubscription: isSubscription,
			Transactions:   group.transactions,
			MonthlyCost:    roundCents(monthlyCost),
			AnnualCost:     roundCents(annualCost),
			NextDate:       nextDate,
		}
		report.Patterns = append(report.Patterns, pattern)

		if nextDate.Sub(now) <= upcomingWindow {
			report.UpcomingPayments = append(report.UpcomingPayments, model.UpcomingPayment{
				Description: group.description,
				Amount:      roundCents(avgAmount),
				Date:        nextDate,
			})
		}
	}

	sort.SliceStable(report.Patterns, func(i, j int) bool {
		return report.Patterns[i].AnnualCost > report.Patterns[j].AnnualCost
	})

	report.MonthlySubscriptionCost = roundCents(monthlyTotal)
	report.AnnualSubscriptionCost = roundCents(annualTotal)
	for _, p := range report.Patterns {
		if p.IsSubscription {
			report.TotalSubscriptions++
		}
	}

	d.logger.Info("recurring detection complete",
		"transactions", len(windowed),
		"patterns", len(report.Patterns),
		"subscriptions", report.TotalSubscriptions,
	)

	return report, nil
}

// filterWindow keeps transactions inside the lookback window, sorted by date.
func (d *Detector) filterWindow(transactions []model.Transaction, now time.Time) []model.Transaction {
	cutoff := now.AddDate(0, 0, -d.windowDays)

	var out []model.Transaction
	for _, txn := range transactions {
		if !txn.Date.Before(cutoff) {
			out = append(out, txn)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// group is a set of transactions believed to belong to the same merchant.
type group struct {
	description  string
	transactions []model.Transaction
}

// groupSimilar groups transactions by exact description first, then folds
// leftovers into groups whose simplified descriptions overlap. Variations
// like "NETFLIX US" and "NETFLIX.COM" end up in one group.
func (d *Detector) groupSimilar(transactions []model.Transaction) []group {
	byDesc := make(map[string][]model.Transaction)
	var order []string
	for _, txn := range transactions {
		if _, seen := byDesc[txn.Description]; !seen {
			order = append(order, txn.Description)
		}
		byDesc[txn.Description] = append(byDesc[txn.Description], txn)
	}

	var groups []group
	grouped := make(map[string]int)
	for _, desc := range order {
		txns := byDesc[desc]
		if len(txns) < d.minOccurrences {
			continue
		}
		if !d.amountsConsistent(txns) {
			continue
		}
		grouped[desc] = len(groups)
		groups = append(groups, group{description: desc, transactions: txns})
	}

	// Fuzzy pass over everything that did not form an exact group.
	for _, txn := range transactions {
		if _, ok := grouped[txn.Description]; ok {
			continue
		}
		simple := simplifyDescription(txn.Description)

		for i := range groups {
			simpleKey := simplifyDescription(groups[i].description)
			if len(simpleKey) <= 5 {
				continue
			}
			if !strings.Contains(simple, simpleKey) && !strings.Contains(simpleKey, simple) {
				continue
			}
			groupMean := meanAmount(groups[i].transactions)
			if groupMean == 0 || math.Abs(txn.Amount-groupMean)/groupMean > d.amountVariance {
				continue
			}
			groups[i].transactions = append(groups[i].transactions, txn)
			break
		}
	}

	// Fuzzy additions can arrive out of order.
	for i := range groups {
		sort.SliceStable(groups[i].transactions, func(a, b int) bool {
			return groups[i].transactions[a].Date.Before(groups[i].transactions[b].Date)
		})
	}

	return groups
}

// amountsConsistent reports whether every amount sits within the allowed
// relative variance of the group mean.
func (d *Detector) amountsConsistent(transactions []model.Transaction) bool {
	mean := meanAmount(transactions)
	if mean == 0 {
		return false
	}
	for _, txn := range transactions {
		if math.Abs(txn.Amount-mean)/mean > d.amountVariance {
			return false
		}
	}
	return true
}

// detectInterval classifies the gap sequence between consecutive transactions.
func (d *Detector) detectInterval(transactions []model.Transaction) (model.Interval, float64, float64, bool) {
	if len(transactions) < d.minOccurrences {
		return "", 0, 0, false
	}

	gaps := make([]float64, 0, len(transactions)-1)
	for i := 1; i < len(transactions); i++ {
		delta := transactions[i].Date.Sub(transactions[i-1].Date).Hours() / 24
		gaps = append(gaps, math.Floor(delta))
	}
	if len(gaps) == 0 {
		return "", 0, 0, false
	}

	mean := stat.Mean(gaps, nil)
	if mean <= 0 {
		return "", 0, 0, false
	}
	std := stat.PopStdDev(gaps, nil)
	if std/mean > intervalCV {
		return "", 0, 0, false
	}

	switch {
	case mean >= 25 && mean <= 35:
		return model.IntervalMonthly, mean, 0.9, true
	case mean >= 6 && mean <= 8:
		return model.IntervalWeekly, mean, 0.9, true
	case mean >= 13 && mean <= 16:
		return model.IntervalBiweekly, mean, 0.8, true
	case mean >= 89 && mean <= 94:
		return model.IntervalQuarterly, mean, 0.8, true
	case mean >= 179 && mean <= 187:
		return model.IntervalSemiannual, mean, 0.7, true
	case mean >= 350 && mean <= 380:
		return model.IntervalAnnual, mean, 0.7, true
	default:
		return model.IntervalEveryNDays, mean, 0.6, true
	}
}

// costPerPeriod converts an average charge into monthly and annual costs.
func costPerPeriod(interval model.Interval, intervalDays int, avgAmount float64) (monthly, annual float64) {
	switch interval {
	case model.IntervalWeekly:
		return avgAmount * 4.33, avgAmount * 52
	case model.IntervalBiweekly:
		return avgAmount * 2.17, avgAmount * 26
	case model.IntervalMonthly:
		return avgAmount, avgAmount * 12
	case model.IntervalQuarterly:
		return avgAmount / 3, avgAmount * 4
	case model.IntervalSemiannual:
		return avgAmount / 6, avgAmount * 2
	case model.IntervalAnnual:
		return avgAmount / 12, avgAmount
	case model.IntervalEveryNDays:
		if intervalDays <= 0 {
			return 0, 0
		}
		days := float64(intervalDays)
		return avgAmount * (30 / days), avgAmount * (365 / days)
	default:
		return 0, 0
	}
}

func meanAmount(transactions []model.Transaction) float64 {
	if len(transactions) == 0 {
		return 0
	}
	var sum float64
	for _, txn := range transactions {
		sum += txn.Amount
	}
	return sum / float64(len(transactions))
}

// simplifyDescription strips everything but letters and digits, lowercased.
func simplifyDescription(description string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r):
			return unicode.ToLower(r)
		case unicode.IsDigit(r):
			return r
		default:
			return -1
		}
	}, description)
}

func roundCents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
