package healthgraph

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/runkeeper/internal/omh"
)

// Definitions and rendered points must agree on field names, or the
// platform's schema registry would advertise fields the reads never serve.
func TestDefinitionsMatchRenderedFields(t *testing.T) {
	profileClient := newVendorStub(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(profileBody))
	})
	activitiesClient := activitiesClient(t, nil, activityItemJSON(1, "Mon, 1 Jan 2024 00:00:00"))

	endpoints := []omh.Endpoint{NewProfile(profileClient), NewFitnessActivities(activitiesClient)}
	for _, endpoint := range endpoints {
		require.NoError(t, endpoint.Fetch(context.Background(), "t", omh.Window{}, omh.Pagination{Limit: 10}))

		definition := endpoint.Definition()
		require.Equal(t, "object", definition.Type)

		points := endpoint.Points(nil)
		require.NotEmpty(t, points, endpoint.Path())

		schemaNames := make(map[string]struct{}, len(definition.Schema))
		for _, field := range definition.Schema {
			schemaNames[field.Name] = struct{}{}
		}
		require.Len(t, schemaNames, len(definition.Schema), "duplicate schema field for %s", endpoint.Path())

		for _, point := range points {
			require.Len(t, point.Data, len(schemaNames), endpoint.Path())
			for name := range point.Data {
				require.Contains(t, schemaNames, name, endpoint.Path())
			}
		}
	}
}

func TestCapabilityFlags(t *testing.T) {
	profile := NewProfile(nil)
	require.True(t, profile.HasID())
	require.False(t, profile.HasTimestamp())
	require.False(t, profile.HasLocation())
	require.Equal(t, "profile", profile.Path())

	feed := NewFitnessActivities(nil)
	require.True(t, feed.HasID())
	require.True(t, feed.HasTimestamp())
	require.False(t, feed.HasLocation())
	require.Equal(t, "fitnessActivities", feed.Path())
}

func TestActivitiesDefinitionTypes(t *testing.T) {
	definition := NewFitnessActivities(nil).Definition()
	types := make(map[string]string)
	for _, field := range definition.Schema {
		types[field.Name] = field.Type
	}
	require.Equal(t, map[string]string{
		"duration":       omh.FieldNumber,
		"total_distance": omh.FieldNumber,
		"start_time":     omh.FieldString,
		"type":           omh.FieldString,
		"uri":            omh.FieldString,
	}, types)
}

func TestProfileDefinitionAllStrings(t *testing.T) {
	definition := NewProfile(nil).Definition()
	require.Len(t, definition.Schema, 7)
	for _, field := range definition.Schema {
		require.Equal(t, omh.FieldString, field.Type, field.Name)
	}
}
