package report

import (
	"sort"
	"time"

	"github.com/jinzhu/now"
	"github.com/pkg/errors"
	"max.ks1230/expense-tracker/internal/entity/expense"
)

// ErrIncomeRequired is returned by IncomeRatio before any computation
// when no positive income has been provided.
var ErrIncomeRequired = errors.New("monthly income is required")

// Everything in this package recomputes from the full log on every
// call. There is no cached or incremental aggregation state; the log
// is the single source of truth and volumes are assumed small.

type MonthAmount struct {
	Month  time.Time
	Amount float64
}

type CategoryAmount struct {
	Category string
	Amount   float64
}

type CategorySeries struct {
	Category string
	// Amounts is aligned with Trend.Months; months without spending in
	// this category hold zero, not a gap.
	Amounts []float64
}

type Trend struct {
	Months []time.Time
	Series []CategorySeries
}

type DayAmount struct {
	Date   time.Time
	Amount float64
}

type CategoryVolatility struct {
	Category string
	StdDev   float64
}

type CategoryShare struct {
	Category string
	Amount   float64
	Percent  float64
}

// ByCategory sums the whole log per category, largest first.
func ByCategory(log expense.Log) ([]CategoryAmount, float64) {
	m := make(map[string]float64)
	for _, rec := range log {
		m[rec.Category] += rec.Amount
	}
	records := make([]CategoryAmount, 0, len(m))
	total := 0.0
	for cat, am := range m {
		records = append(records, CategoryAmount{Category: cat, Amount: am})
		total += am
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Amount != records[j].Amount {
			return records[i].Amount > records[j].Amount
		}
		return records[i].Category < records[j].Category
	})
	return records, total
}

// MonthlySpend sums the log per calendar month, in calendar order.
func MonthlySpend(log expense.Log) []MonthAmount {
	m := make(map[time.Time]float64)
	for _, rec := range log {
		m[rec.Month()] += rec.Amount
	}
	months := sortedMonths(m)
	res := make([]MonthAmount, 0, len(months))
	for _, month := range months {
		res = append(res, MonthAmount{Month: month, Amount: m[month]})
	}
	return res
}

// CumulativeSpend is the running sum over MonthlySpend, rebuilt from
// scratch on each call.
func CumulativeSpend(log expense.Log) []MonthAmount {
	monthly := MonthlySpend(log)
	var running float64
	res := make([]MonthAmount, 0, len(monthly))
	for _, ma := range monthly {
		running += ma.Amount
		res = append(res, MonthAmount{Month: ma.Month, Amount: running})
	}
	return res
}

// CategoryTrend reshapes the log into one series per category over the
// ordered month axis. Missing month/category combinations are zero.
func CategoryTrend(log expense.Log) Trend {
	type key struct {
		month    time.Time
		category string
	}
	sums := make(map[key]float64)
	monthSet := make(map[time.Time]float64)
	catSet := make(map[string]struct{})
	for _, rec := range log {
		month := rec.Month()
		sums[key{month, rec.Category}] += rec.Amount
		monthSet[month] = 0
		catSet[rec.Category] = struct{}{}
	}

	months := sortedMonths(monthSet)
	categories := make([]string, 0, len(catSet))
	for cat := range catSet {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	series := make([]CategorySeries, 0, len(categories))
	for _, cat := range categories {
		amounts := make([]float64, len(months))
		for i, month := range months {
			amounts[i] = sums[key{month, cat}]
		}
		series = append(series, CategorySeries{Category: cat, Amounts: amounts})
	}
	return Trend{Months: months, Series: series}
}

// TopDays sums the log per exact date and returns the n highest days.
// Ties are broken by date ascending so the result is deterministic.
func TopDays(log expense.Log, n int) []DayAmount {
	m := make(map[time.Time]float64)
	for _, rec := range log {
		day := now.New(rec.Date).BeginningOfDay()
		m[day] += rec.Amount
	}
	days := make([]DayAmount, 0, len(m))
	for day, am := range m {
		days = append(days, DayAmount{Date: day, Amount: am})
	}
	sort.Slice(days, func(i, j int) bool {
		if days[i].Amount != days[j].Amount {
			return days[i].Amount > days[j].Amount
		}
		return days[i].Date.Before(days[j].Date)
	})
	if len(days) > n {
		days = days[:n]
	}
	return days
}

// AverageSpend is the mean amount over all records, not per month.
func AverageSpend(log expense.Log) float64 {
	return mean(amounts(log))
}

// Volatility ranks categories by the sample standard deviation of
// their monthly sums, zero-filled months included, largest first. A
// category seen in a single month only has zero spread by definition.
func Volatility(log expense.Log) []CategoryVolatility {
	trend := CategoryTrend(log)
	res := make([]CategoryVolatility, 0, len(trend.Series))
	for _, series := range trend.Series {
		res = append(res, CategoryVolatility{
			Category: series.Category,
			StdDev:   sampleStdDev(series.Amounts),
		})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].StdDev != res[j].StdDev {
			return res[i].StdDev > res[j].StdDev
		}
		return res[i].Category < res[j].Category
	})
	return res
}

// OutlierFence is Q3 + 1.5*IQR over all amounts in the log.
func OutlierFence(log expense.Log) float64 {
	am := amounts(log)
	q1 := quantile(am, 0.25)
	q3 := quantile(am, 0.75)
	return q3 + 1.5*(q3-q1)
}

// Outliers flags records whose amount is strictly above the IQR fence.
func Outliers(log expense.Log) expense.Log {
	if len(log) == 0 {
		return expense.Log{}
	}
	fence := OutlierFence(log)
	res := make(expense.Log, 0)
	for _, rec := range log {
		if rec.Amount > fence {
			res = append(res, rec)
		}
	}
	return res
}

// IncomeRatio breaks the selected month down per category as a percent
// of the given monthly income. It refuses to compute without a
// positive income instead of guarding divisions inline.
func IncomeRatio(log expense.Log, month time.Time, income float64) ([]CategoryShare, error) {
	if income <= 0 {
		return nil, ErrIncomeRequired
	}
	monthKey := now.New(month).BeginningOfMonth()
	monthLog := make(expense.Log, 0)
	for _, rec := range log {
		if rec.Month().Equal(monthKey) {
			monthLog = append(monthLog, rec)
		}
	}
	byCat, _ := ByCategory(monthLog)
	res := make([]CategoryShare, 0, len(byCat))
	for _, ca := range byCat {
		res = append(res, CategoryShare{
			Category: ca.Category,
			Amount:   ca.Amount,
			Percent:  ca.Amount / income * 100,
		})
	}
	return res, nil
}

func amounts(log expense.Log) []float64 {
	res := make([]float64, 0, len(log))
	for _, rec := range log {
		res = append(res, rec.Amount)
	}
	return res
}

func sortedMonths(m map[time.Time]float64) []time.Time {
	months := make([]time.Time, 0, len(m))
	for month := range m {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Before(months[j])
	})
	return months
}
