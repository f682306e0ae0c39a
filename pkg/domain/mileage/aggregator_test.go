package mileage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitglue/bike-miles/pkg/integrations/strava"
)

func ride(gear string, meters float64) strava.Activity {
	a := strava.Activity{Distance: meters}
	if gear != "" {
		a.GearID = &gear
	}
	return a
}

func byID(records []BikeMiles) map[string]BikeMiles {
	out := make(map[string]BikeMiles, len(records))
	for _, r := range records {
		out[r.ID] = r
	}
	return out
}

func TestAggregate_SumsPerBike(t *testing.T) {
	activities := []strava.Activity{
		ride("b1", 16093.44),
		ride("b2", 32186.88),
		ride("b1", 1609.344),
	}
	names := map[string]string{"b1": "Road Bike", "b2": "Mountain Bike"}

	got := Aggregate(activities, names)
	require.Len(t, got, 2)

	records := byID(got)
	assert.Equal(t, BikeMiles{ID: "b1", Name: "Road Bike", Miles: 11.0}, records["b1"])
	assert.Equal(t, BikeMiles{ID: "b2", Name: "Mountain Bike", Miles: 20.0}, records["b2"])
}

func TestAggregate_FirstEncounterOrder(t *testing.T) {
	activities := []strava.Activity{
		ride("b2", 1000),
		ride("b1", 1000),
		ride("b2", 1000),
		ride("b3", 1000),
	}

	got := Aggregate(activities, nil)
	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"b2", "b1", "b3"}, ids)
}

func TestAggregate_SkipsActivitiesWithoutGear(t *testing.T) {
	activities := []strava.Activity{
		ride("", 50000),
		ride("b1", 1609.344),
		{Distance: 1000, GearID: nil},
	}
	names := map[string]string{"b1": "Road Bike"}

	first := Aggregate(activities, names)
	second := Aggregate(activities, names)

	assert.Equal(t, []BikeMiles{{ID: "b1", Name: "Road Bike", Miles: 1.0}}, first)
	assert.Equal(t, first, second)
}

func TestAggregate_UnknownBike(t *testing.T) {
	got := Aggregate([]strava.Activity{ride("b9", 3218.688)}, map[string]string{"b1": "Road Bike"})

	require.Len(t, got, 1)
	assert.Equal(t, "b9", got[0].ID)
	assert.Equal(t, UnknownBike, got[0].Name)
	assert.Equal(t, 2.0, got[0].Miles)
}

func TestAggregate_MissingDistanceCountsAsZero(t *testing.T) {
	got := Aggregate([]strava.Activity{ride("b1", 0)}, map[string]string{"b1": "Road Bike"})
	assert.Equal(t, []BikeMiles{{ID: "b1", Name: "Road Bike", Miles: 0}}, got)
}

func TestAggregate_OmitsUnriddenBikes(t *testing.T) {
	names := NameLookup([]strava.Gear{{ID: "b1", Name: "Road Bike"}, {ID: "b2", Name: "Spare"}})
	got := Aggregate([]strava.Activity{ride("b1", 1609.344)}, names)

	require.Len(t, got, 1)
	assert.Equal(t, "b1", got[0].ID)
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNameLookup(t *testing.T) {
	names := NameLookup([]strava.Gear{{ID: "b1", Name: "Road Bike"}, {ID: "b2", Name: "Mountain Bike"}})
	assert.Equal(t, map[string]string{"b1": "Road Bike", "b2": "Mountain Bike"}, names)

	assert.Empty(t, NameLookup(nil))
}
