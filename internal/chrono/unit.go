package chrono

import (
	"strconv"
	"strings"
	"time"
)

// Unit tags a unit of time. The set mirrors the units an anchor may be
// asked to add or measure; a Duration only stores a subset of them.
type Unit int

const (
	Nanos Unit = iota
	Micros
	Millis
	Seconds
	Minutes
	Hours
	HalfDays
	Days
	Weeks
	Months
	Years
	Decades
	Centuries
	Millennia
	Eras
	Forever
)

var unitNames = [...]string{
	Nanos:     "nanos",
	Micros:    "micros",
	Millis:    "millis",
	Seconds:   "seconds",
	Minutes:   "minutes",
	Hours:     "hours",
	HalfDays:  "halfdays",
	Days:      "days",
	Weeks:     "weeks",
	Months:    "months",
	Years:     "years",
	Decades:   "decades",
	Centuries: "centuries",
	Millennia: "millennia",
	Eras:      "eras",
	Forever:   "forever",
}

func (u Unit) String() string {
	if u < 0 || int(u) >= len(unitNames) {
		return "unit(" + strconv.Itoa(int(u)) + ")"
	}
	return unitNames[u]
}

// ParseUnit resolves a unit name as printed by Unit.String. Singular forms
// ("day") are accepted too.
func ParseUnit(name string) (Unit, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for u, s := range unitNames {
		if n == s || n+"s" == s || (s == "millennia" && n == "millennium") || (s == "centuries" && n == "century") {
			return Unit(u), nil
		}
	}
	return 0, UnsupportedUnitError(name)
}

// IsTimeBased reports whether the unit has a fixed length below one day.
func (u Unit) IsTimeBased() bool {
	return u >= Nanos && u <= HalfDays
}

// IsDateBased reports whether the unit is a calendar unit of one day or more.
func (u Unit) IsDateBased() bool {
	return u >= Days && u <= Eras
}

// Nanoseconds returns the fixed length of a time-based unit. Days and weeks
// report their nominal 24h based length. Calendar units return 0.
func (u Unit) Nanoseconds() int64 {
	switch u {
	case Nanos:
		return 1
	case Micros:
		return int64(time.Microsecond)
	case Millis:
		return int64(time.Millisecond)
	case Seconds:
		return int64(time.Second)
	case Minutes:
		return int64(time.Minute)
	case Hours:
		return int64(time.Hour)
	case HalfDays:
		return 12 * int64(time.Hour)
	case Days:
		return 24 * int64(time.Hour)
	case Weeks:
		return 7 * 24 * int64(time.Hour)
	}
	return 0
}

// Field names one of the seven stored components of a calendar duration.
type Field string

const (
	FieldYears   Field = "years"
	FieldMonths  Field = "months"
	FieldDays    Field = "days"
	FieldHours   Field = "hours"
	FieldMinutes Field = "minutes"
	FieldSeconds Field = "seconds"
	FieldNanos   Field = "nanos"
)

// Fields lists the stored duration fields, most significant first.
var Fields = []Field{FieldYears, FieldMonths, FieldDays, FieldHours, FieldMinutes, FieldSeconds, FieldNanos}
