package places_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rzane/advanced-demo/internal/places"
	"github.com/stretchr/testify/assert"
)

func TestStableIDs(t *testing.T) {
	ns := uuid.New()

	assert.Equal(t, places.StateID(ns, "New York"), places.StateID(ns, "  new   york "))
	assert.NotEqual(t, places.StateID(ns, "New York"), places.StateID(uuid.New(), "New York"))

	assert.Equal(t, places.CityID(ns, "Texas", "Austin"), places.CityID(ns, "TEXAS", "austin"))
	assert.NotEqual(t, places.CityID(ns, "Texas", "Austin"), places.CityID(ns, "Minnesota", "Austin"))
	assert.NotEqual(t, places.CityID(ns, "New York", "New York"), places.StateID(ns, "New York"))

	assert.Equal(t, "new york", places.NaturalKey("  New\tYORK "))
}
