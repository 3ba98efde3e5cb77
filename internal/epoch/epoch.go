// Package epoch encodes timestamps as DynamoDB number strings.
package epoch

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Encode formats t as a decimal epoch string with nanosecond precision,
// e.g. "1700000000.000000123". The fractional part is always nine digits
// so string ordering matches time ordering within a second.
func Encode(t time.Time) string {
	return fmt.Sprintf("%d.%09d", t.Unix(), t.Nanosecond())
}

// Decode parses a decimal epoch string produced by Encode. Plain integer
// seconds (no fraction) are accepted, since DynamoDB TTL attributes and
// hand-written items store whole seconds.
func Decode(s string) (time.Time, error) {
	sec, frac, ok := strings.Cut(s, ".")
	secs, err := strconv.ParseInt(sec, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("epoch: invalid seconds in %q", s)
	}
	if !ok || frac == "" {
		return time.Unix(secs, 0).UTC(), nil
	}
	if len(frac) > 9 {
		frac = frac[:9]
	}
	nanos, err := strconv.ParseInt(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("epoch: invalid fraction in %q", s)
	}
	return time.Unix(secs, nanos).UTC(), nil
}
