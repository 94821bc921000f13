package duration

import (
	"fmt"
	"strconv"
	"strings"
)

// String formats d without week folding. See Format.
func (d Duration) String() string {
	return d.Format(false)
}

// Format returns the text form ["-"]"P"[nY][nM][nW][nD]["T"[nH][nM][n.fS]].
//
// The zero duration is "PT0S". When every non-zero component is negative the
// sign is written once before P; when signs are mixed each negative
// component carries its own sign (e.g. "P1M-1D"). With weeks set, every
// complete group of seven days is written as W.
func (d Duration) Format(weeks bool) string {
	if d.IsZero() {
		return "PT0S"
	}

	v := d
	var buf strings.Builder
	buf.Grow(32)
	if !v.hasPositive() {
		buf.WriteByte('-')
		v = v.Negated()
	}
	buf.WriteByte('P')

	writeField(&buf, v.years, 'Y')
	writeField(&buf, v.months, 'M')
	days := v.days
	if weeks {
		writeField(&buf, days/daysPerWeek, 'W')
		days %= daysPerWeek
	}
	writeField(&buf, days, 'D')

	secs, nanos := v.seconds, v.nanos
	secs += nanos / nanosPerSecond
	nanos %= nanosPerSecond
	if secs > 0 && nanos < 0 {
		secs--
		nanos += nanosPerSecond
	} else if secs < 0 && nanos > 0 {
		secs++
		nanos -= nanosPerSecond
	}

	if v.hours == 0 && v.minutes == 0 && secs == 0 && nanos == 0 {
		return buf.String()
	}
	buf.WriteByte('T')
	writeField(&buf, v.hours, 'H')
	writeField(&buf, v.minutes, 'M')
	if secs != 0 || nanos != 0 {
		buf.WriteString(formatSeconds(secs, nanos))
		buf.WriteByte('S')
	}
	return buf.String()
}

func (d Duration) hasPositive() bool {
	return d.years > 0 || d.months > 0 || d.days > 0 || d.hours > 0 || d.minutes > 0 || d.seconds > 0 || d.nanos > 0
}

func writeField(buf *strings.Builder, v int64, designator byte) {
	if v == 0 {
		return
	}
	buf.WriteString(strconv.FormatInt(v, 10))
	buf.WriteByte(designator)
}

// formatSeconds writes secs.nanos with trailing fraction zeros stripped.
// secs and nanos share a sign.
func formatSeconds(secs, nanos int64) string {
	neg := secs < 0 || nanos < 0
	if secs < 0 {
		secs = -secs
	}
	if nanos < 0 {
		nanos = -nanos
	}
	s := strconv.FormatUint(uint64(secs), 10)
	if nanos != 0 {
		s += "." + strings.TrimRight(fmt.Sprintf("%09d", nanos), "0")
	}
	if neg {
		return "-" + s
	}
	return s
}
