package healthgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"example.com/runkeeper/internal/omh"
)

// FitnessActivitiesPath is the Health Graph path for the activity feed.
const FitnessActivitiesPath = "fitnessActivities"

// isoTimestampLayout renders the metadata timestamp, millisecond precision.
const isoTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// activityFields lists the data-block field names in definition order.
var activityFields = []string{
	"duration",
	"start_time",
	"total_distance",
	"type",
	"uri",
}

// ActivityRecord is one fitness activity parsed from the vendor feed.
type ActivityRecord struct {
	ID            string
	Type          string
	StartTime     time.Time
	TotalDistance float64
	Duration      float64
	URI           string
}

// FitnessActivities reads the user's activity feed. The vendor returns
// items in reverse-chronological order and paginates with page/pageSize;
// the caller's skip/limit window is translated onto that scheme.
type FitnessActivities struct {
	client  *Client
	fetched bool
	records []ActivityRecord
}

var _ omh.Endpoint = (*FitnessActivities)(nil)

// NewFitnessActivities constructs the fitness-activities endpoint.
func NewFitnessActivities(client *Client) *FitnessActivities {
	return &FitnessActivities{client: client}
}

func (f *FitnessActivities) Path() string { return FitnessActivitiesPath }

func (f *FitnessActivities) HasID() bool        { return true }
func (f *FitnessActivities) HasTimestamp() bool { return true }
func (f *FitnessActivities) HasLocation() bool  { return false }

type activityItem struct {
	Type          string  `json:"type"`
	StartTime     string  `json:"start_time"`
	TotalDistance float64 `json:"total_distance"`
	Duration      float64 `json:"duration"`
	URI           string  `json:"uri"`
}

type activitiesResponse struct {
	Items []activityItem `json:"items"`
}

// Fetch performs the single feed GET and keeps records inside the window.
// A second call is a no-op.
//
// Skip/limit must be mapped onto the vendor's page/pageSize scheme, which
// cannot address an arbitrary offset: the page is over-fetched by
// skip%limit records. The fetched page starts at global record
// page*pageSize, which can sit before the requested offset; the gap is
// dropped from the head and the remainder capped at limit. With limit 0
// the page is forced to 0 and pageSize carries the raw skip.
func (f *FitnessActivities) Fetch(ctx context.Context, bearer string, window omh.Window, page omh.Pagination) error {
	if f.fetched {
		return nil
	}

	params := url.Values{}
	if window.Start != nil {
		params.Set("noEarlierThan", formatQueryDate(*window.Start))
	}
	if window.End != nil {
		params.Set("noLaterThan", formatQueryDate(*window.End))
	}

	pageIndex := 0
	pageSize := page.Skip
	if page.Limit != 0 {
		pageIndex = page.Skip / page.Limit
		pageSize = page.Limit + page.Skip%page.Limit
	}
	params.Set("page", strconv.Itoa(pageIndex))
	params.Set("pageSize", strconv.Itoa(pageSize))

	body, err := f.client.Get(ctx, FitnessActivitiesPath, params, bearer)
	if err != nil {
		return err
	}

	var resp activitiesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%w: decoding activities response: %v", ErrProtocol, err)
	}

	items := resp.Items
	if headDrop := page.Skip - pageIndex*pageSize; headDrop > 0 {
		if headDrop >= len(items) {
			items = nil
		} else {
			items = items[headDrop:]
		}
	}
	if len(items) > page.Limit {
		items = items[:page.Limit]
	}

	records := make([]ActivityRecord, 0, len(items))
	for _, item := range items {
		startTime, err := parseWireTime(item.StartTime)
		if err != nil {
			return fmt.Errorf("%w: parsing start_time %q: %v", ErrProtocol, item.StartTime, err)
		}
		if !window.Contains(startTime) {
			continue
		}
		records = append(records, ActivityRecord{
			ID:            lastURISegment(item.URI),
			Type:          item.Type,
			StartTime:     startTime,
			TotalDistance: item.TotalDistance,
			Duration:      item.Duration,
			URI:           item.URI,
		})
	}

	f.records = records
	f.fetched = true
	return nil
}

// PointCount is the number of kept records.
func (f *FitnessActivities) PointCount() int { return len(f.records) }

// Points renders one point per kept record, preserving vendor order.
// The metadata timestamp is ISO-8601; start_time inside the data block
// stays in the vendor's own format.
func (f *FitnessActivities) Points(columns *omh.Columns) []omh.Point {
	all := columns.Leaf()
	points := make([]omh.Point, 0, len(f.records))
	for _, record := range f.records {
		data := make(map[string]any, len(activityFields))
		for _, name := range activityFields {
			if all || columns.Has(name) {
				data[name] = record.fieldValue(name)
			}
		}
		points = append(points, omh.Point{
			Metadata: omh.Metadata{
				ID:        record.ID,
				Timestamp: record.StartTime.Format(isoTimestampLayout),
			},
			Data: data,
		})
	}
	return points
}

func (r ActivityRecord) fieldValue(name string) any {
	switch name {
	case "duration":
		return r.Duration
	case "start_time":
		return formatWireTime(r.StartTime)
	case "total_distance":
		return r.TotalDistance
	case "type":
		return r.Type
	case "uri":
		return r.URI
	}
	return nil
}

// Definition declares duration and total_distance as numbers; the vendor
// quotes everything else.
func (f *FitnessActivities) Definition() omh.Definition {
	return omh.ObjectDefinition(
		omh.Field{Name: "duration", Type: omh.FieldNumber},
		omh.Field{Name: "start_time", Type: omh.FieldString},
		omh.Field{Name: "total_distance", Type: omh.FieldNumber},
		omh.Field{Name: "type", Type: omh.FieldString},
		omh.Field{Name: "uri", Type: omh.FieldString},
	)
}
