// Package schedule holds the fixed daily time slots and the pure, time-based
// rules used to classify appointments for display.
package schedule

import (
	"fmt"
	"sort"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	SlotLayout     = "03:04 PM"
	DateTimeLayout = DateLayout + " " + SlotLayout

	// UrgentWindow is how close a slot must be to count as urgent.
	UrgentWindow = time.Hour
)

// TimeSlots are the bookable labels for every doctor and day, in order.
var TimeSlots = []string{
	"09:00 AM", "10:00 AM", "11:00 AM", "12:00 PM",
	"02:00 PM", "03:00 PM", "04:00 PM", "05:00 PM",
}

// AllSlots returns a copy of TimeSlots.
func AllSlots() []string {
	return append([]string(nil), TimeSlots...)
}

func IsValidSlot(label string) bool {
	for _, s := range TimeSlots {
		if s == label {
			return true
		}
	}
	return false
}

func ParseDate(date string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return d, nil
}

// SlotTime combines a YYYY-MM-DD date and a slot label into an instant in loc.
func SlotTime(date, label string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, date+" "+label, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot %q %q: %w", date, label, err)
	}
	return t, nil
}

// IsPast reports whether the slot starts strictly before now. Unparseable
// slots are never past.
func IsPast(date, label string, now time.Time) bool {
	t, err := SlotTime(date, label, now.Location())
	if err != nil {
		return false
	}
	return t.Before(now)
}

// IsWithinUrgentWindow reports 0 < slot-now <= UrgentWindow.
func IsWithinUrgentWindow(date, label string, now time.Time) bool {
	t, err := SlotTime(date, label, now.Location())
	if err != nil {
		return false
	}
	diff := t.Sub(now)
	return diff > 0 && diff <= UrgentWindow
}

// FutureSlotsForDate returns the labels still bookable on date: all of them
// for a future date, none for a past one, and the ones later than now's clock
// time for today. An invalid date yields no slots.
func FutureSlotsForDate(date string, now time.Time) []string {
	selected, err := ParseDate(date, now.Location())
	if err != nil {
		return []string{}
	}
	today := truncateDay(now)

	switch {
	case selected.Before(today):
		return []string{}
	case selected.After(today):
		return AllSlots()
	}

	slots := make([]string, 0, len(TimeSlots))
	for _, label := range TimeSlots {
		t, err := SlotTime(date, label, now.Location())
		if err != nil {
			continue
		}
		if t.After(now) {
			slots = append(slots, label)
		}
	}
	return slots
}

// DateRange lists dates from today+from to today+to inclusive.
func DateRange(now time.Time, from, to int) []string {
	today := truncateDay(now)
	dates := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		dates = append(dates, today.AddDate(0, 0, i).Format(DateLayout))
	}
	return dates
}

// BookableDates lists the next days dates starting today.
func BookableDates(now time.Time, days int) []string {
	if days <= 0 {
		return []string{}
	}
	return DateRange(now, 0, days-1)
}

// SlotKey identifies a date and label pair in the availability maps.
func SlotKey(date, label string) string {
	return date + "_" + label
}

// SortBySlot orders items chronologically by their slot. Unparseable slots
// sort last.
func SortBySlot[T any](items []T, slotOf func(T) (string, string), desc bool, loc *time.Location) {
	key := func(item T) (time.Time, bool) {
		date, label := slotOf(item)
		t, err := SlotTime(date, label, loc)
		return t, err == nil
	}
	sort.SliceStable(items, func(i, j int) bool {
		ti, oki := key(items[i])
		tj, okj := key(items[j])
		if oki != okj {
			return oki
		}
		if desc {
			return ti.After(tj)
		}
		return ti.Before(tj)
	})
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
