package domain

import "time"

// Amount is a nullable numeric cell. A cell that was empty or failed numeric
// coercion is carried as an invalid Amount rather than a zero value, so every
// downstream computation has to state its null policy explicitly. Invalid
// amounts contribute zero to sums.
type Amount struct {
	Value float64
	Valid bool
}

// NewAmount returns a valid Amount holding v.
func NewAmount(v float64) Amount {
	return Amount{Value: v, Valid: true}
}

// OrZero returns the value, or 0 for an invalid amount.
func (a Amount) OrZero() float64 {
	if !a.Valid {
		return 0
	}
	return a.Value
}

// Date is a nullable calendar date. Unparseable date cells become invalid
// Dates, never errors.
type Date struct {
	Time  time.Time
	Valid bool
}

// NewDate returns a valid Date holding t.
func NewDate(t time.Time) Date {
	return Date{Time: t, Valid: true}
}

// Format renders the date with the given layout, or "" when the date is null.
func (d Date) Format(layout string) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(layout)
}

// Before reports whether d is a valid date strictly before other.
// A null date is never before anything.
func (d Date) Before(other Date) bool {
	return d.Valid && other.Valid && d.Time.Before(other.Time)
}
