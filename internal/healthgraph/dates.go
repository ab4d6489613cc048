package healthgraph

import (
	"strings"
	"time"
)

// wireTimeLayout is the vendor's timestamp format, used for both the
// profile birthday and activity start times.
const wireTimeLayout = "Mon, 2 Jan 2006 15:04:05"

// queryDateLayout is the unpadded date format the vendor accepts in the
// noEarlierThan/noLaterThan query parameters.
const queryDateLayout = "2006-1-2"

func parseWireTime(value string) (time.Time, error) {
	return time.Parse(wireTimeLayout, value)
}

func formatWireTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(wireTimeLayout)
}

func formatQueryDate(t time.Time) string {
	return t.Format(queryDateLayout)
}

// lastURISegment derives a record id from the trailing path segment of a
// vendor resource URI.
func lastURISegment(uri string) string {
	parts := strings.Split(uri, "/")
	return parts[len(parts)-1]
}
