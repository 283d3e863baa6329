package expense

import (
	"time"

	"github.com/jinzhu/now"
)

// DateLayout is the persisted form of record dates. Duplicate tuple
// comparison uses this formatted string, so two timestamps on the same
// calendar day count as the same date.
const DateLayout = "2006-01-02"

// Record is one logged expense. Amount is always in the base currency;
// the entered currency is normalized away before a record is built.
// ID is the durable identity assigned by the store at append time.
type Record struct {
	ID          int64
	Date        time.Time
	Category    string
	Amount      float64
	Description string
}

// Same reports whether two records carry an identical logical tuple
// (date, category, amount, description). IDs are ignored: a record is
// a duplicate of another regardless of when either was stored.
// Amount equality is exact, not approximate.
func (r Record) Same(other Record) bool {
	return r.Date.Format(DateLayout) == other.Date.Format(DateLayout) &&
		r.Category == other.Category &&
		r.Amount == other.Amount &&
		r.Description == other.Description
}

// Month returns the first day of the record's calendar month, the
// bucket key for all monthly aggregations.
func (r Record) Month() time.Time {
	return now.New(r.Date).BeginningOfMonth()
}

// Log is the full ordered expense history of one user.
type Log []Record

// Contains is the duplicate guard: true iff some record in the log
// matches candidate on all four logical fields.
func (l Log) Contains(candidate Record) bool {
	for _, rec := range l {
		if rec.Same(candidate) {
			return true
		}
	}
	return false
}

// ByID returns the record with the given durable ID and its position.
func (l Log) ByID(id int64) (Record, int, bool) {
	for i, rec := range l {
		if rec.ID == id {
			return rec, i, true
		}
	}
	return Record{}, 0, false
}

// NextID returns the ID to assign to a new record: one past the
// highest ID currently in the log.
func (l Log) NextID() int64 {
	var maxID int64
	for _, rec := range l {
		if rec.ID > maxID {
			maxID = rec.ID
		}
	}
	return maxID + 1
}
