package fhir

import (
	"encoding/json"
	"time"
)

// UnknownDate is what FormatDate renders when no calendar date is available.
const UnknownDate = "Unknown"

// DisplayDateLayout renders dates as DD/MM/YYYY.
const DisplayDateLayout = "02/01/2006"

// dateLayouts are the FHIR date and dateTime forms, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// Date is a FHIR date value. The raw text is kept verbatim so that whatever
// the user typed is sent to the server unchanged; Time interprets it on
// demand.
type Date struct {
	Raw string
}

// NewDate wraps a raw date string. An empty string is kept, so it is sent
// as "" and displays as Unknown.
func NewDate(raw string) *Date {
	return &Date{Raw: raw}
}

// Time returns the calendar date. Partial dates (YYYY, YYYY-MM) resolve to
// the first day of the period. ok is false when the text is not a FHIR date.
func (d Date) Time() (t time.Time, ok bool) {
	return ParseDate(d.Raw)
}

func (d Date) String() string {
	return d.Raw
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Raw)
}

func (d *Date) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &d.Raw)
}

// ParseDate interprets s as a FHIR date or dateTime.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a date-bearing value as DD/MM/YYYY, or UnknownDate when
// v is absent or carries no calendar date. It is registered as the fhirdate
// template filter.
func FormatDate(v interface{}) string {
	var (
		t  time.Time
		ok bool
	)
	switch d := v.(type) {
	case nil:
		return UnknownDate
	case *Date:
		if d == nil {
			return UnknownDate
		}
		t, ok = d.Time()
	case Date:
		t, ok = d.Time()
	case *time.Time:
		if d == nil {
			return UnknownDate
		}
		t, ok = *d, !d.IsZero()
	case time.Time:
		t, ok = d, !d.IsZero()
	case string:
		t, ok = ParseDate(d)
	}
	if !ok {
		return UnknownDate
	}
	return t.Format(DisplayDateLayout)
}
