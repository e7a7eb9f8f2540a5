package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var dottedDatePattern = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`)

// ParseDate parses a date written in one of the common shapes.
// Dotted numeric dates are read day first; every other shape goes through dateparse,
// retrying ambiguous day/month orders with the parts swapped.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if m := dottedDatePattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Day() != day || int(t.Month()) != month {
			return time.Time{}, fmt.Errorf("invalid date %q", s)
		}
		return t, nil
	}

	return dateparse.ParseIn(s, time.UTC, dateparse.RetryAmbiguousDateWithSwap(true))
}
