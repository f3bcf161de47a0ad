package edictos

import (
	"errors"
	"strings"
	"time"
)

// ErrDateFormat is returned for date text that matches none of DateFormats.
var ErrDateFormat = errors.New("fecha no valida")

// DateFormats are tried in order and the first match wins. A text such as
// 03-04-2026 is therefore read as day-month, never month-day. Day and month
// take one or two digits.
var DateFormats = []string{
	"2006-1-2",
	"2-1-2006",
	"1-2-2006",
}

// ParseDate reads a calendar date typed into a form. Text without "-" is rejected.
func ParseDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, "-") {
		return time.Time{}, ErrDateFormat
	}
	for _, layout := range DateFormats {
		if d, err := time.Parse(layout, text); err == nil {
			return d, nil
		}
	}
	return time.Time{}, ErrDateFormat
}

// Today returns the calendar day of now in loc, as UTC midnight.
func Today(loc *time.Location, now time.Time) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Day truncates t to its calendar day, as UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateInput is one publication date slot: typed text, or a date already parsed
// by the client. Date wins when both are set.
type DateInput struct {
	Text string
	Date *time.Time
}

// Empty reports whether the slot carries nothing.
func (d *DateInput) Empty() bool {
	return d == nil || (d.Date == nil && strings.TrimSpace(d.Text) == "")
}

// Resolve returns the slot's calendar day.
func (d *DateInput) Resolve() (time.Time, error) {
	if d.Date != nil {
		return Day(*d.Date), nil
	}
	return ParseDate(d.Text)
}

// AcuseDates are the publication date slots of a form, first slot first.
type AcuseDates [MaxAcuses]*DateInput

// Text is a convenience for building a slot from form text.
func Text(s string) *DateInput {
	return &DateInput{Text: s}
}

// Date is a convenience for building a slot from a parsed date.
func Date(t time.Time) *DateInput {
	return &DateInput{Date: &t}
}
