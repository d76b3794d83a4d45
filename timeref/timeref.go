// Package timeref recognizes natural-language temporal expressions in user
// messages and resolves them to concrete timestamps.
//
// Extraction is deliberately wider than resolution: every expression in the
// keyword table is extracted, but only a subset maps to a timestamp. An
// expression that extracts but does not resolve is treated upstream as if no
// time reference were present.
package timeref

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Tolerance is the window within which two resolved timestamps are
// considered the same point in time for episodic merge and lookup.
const Tolerance = 24 * time.Hour

// Relative calendar keywords, scanned before the absolute-date patterns.
// Order matters: the first match in the message wins. Named seasons and
// holidays outrank the bare relative-year words so that compounds like
// "今年暑假" resolve to the season, which is the anchor the episodic merge
// keys on.
var keywords = []string{
	"昨天", "今天", "明天", "前天", "大前天",
	"上周", "这周", "下周",
	"上个月", "这个月", "下个月",
	"暑假", "寒假", "春节",
	"去年", "今年", "明年",
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`), // YYYY年MM月DD日
	regexp.MustCompile(`(\d{1,2})月(\d{1,2})日`),         // MM月DD日
	regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`),   // YYYY-MM-DD
	regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`),   // MM/DD/YYYY
}

// Resolver extracts and resolves time references. The zero value is not
// usable; construct with New.
type Resolver struct {
	now func() time.Time
}

// New returns a Resolver using the wall clock.
func New() *Resolver {
	return NewWithClock(time.Now)
}

// NewWithClock returns a Resolver with an injected clock, for tests.
func NewWithClock(now func() time.Time) *Resolver {
	return &Resolver{now: now}
}

// Extract scans text for a temporal expression and returns the literal
// expression text. Only one expression is extracted per message.
func (r *Resolver) Extract(text string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw, true
		}
	}
	for _, pat := range datePatterns {
		if m := pat.FindString(text); m != "" {
			return m, true
		}
	}
	return "", false
}

// Resolve maps an expression to a concrete timestamp. Relative keywords are
// computed from "now" at call time. Absolute dates resolve to midnight.
// Expressions Extract recognizes but Resolve does not yield ok=false.
func (r *Resolver) Resolve(expr string) (time.Time, bool) {
	now := r.now()

	switch expr {
	case "昨天":
		return now.Add(-24 * time.Hour), true
	case "今天":
		return now, true
	case "前天":
		return now.Add(-48 * time.Hour), true
	case "去年":
		return now.Add(-365 * 24 * time.Hour), true
	case "今年":
		// Collapses the year to an instant. Coarse, but persisted records
		// depend on it staying this way.
		return now, true
	case "暑假":
		return time.Date(now.Year(), time.July, 1, now.Hour(), now.Minute(), now.Second(), 0, now.Location()), true
	case "寒假":
		return time.Date(now.Year(), time.January, 1, now.Hour(), now.Minute(), now.Second(), 0, now.Location()), true
	}

	if t, ok := parseAbsolute(expr); ok {
		return t, true
	}
	return time.Time{}, false
}

// parseAbsolute handles the three fully-qualified date forms. MM月DD日 has
// no year and is intentionally not resolvable.
func parseAbsolute(expr string) (time.Time, bool) {
	type order int
	const (
		ymd order = iota
		mdy
	)
	forms := []struct {
		pat *regexp.Regexp
		ord order
	}{
		{datePatterns[0], ymd}, // YYYY年MM月DD日
		{datePatterns[2], ymd}, // YYYY-MM-DD
		{datePatterns[3], mdy}, // MM/DD/YYYY
	}

	for _, f := range forms {
		m := f.pat.FindStringSubmatch(expr)
		if m == nil || m[0] != expr {
			continue
		}
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		c, _ := strconv.Atoi(m[3])

		var year, month, day int
		if f.ord == ymd {
			year, month, day = a, b, c
		} else {
			month, day, year = a, b, c
		}
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
	}
	return time.Time{}, false
}
