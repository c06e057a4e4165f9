package places

import (
	"strings"

	"github.com/google/uuid"
)

func v5(ns uuid.UUID, name string) uuid.UUID {
	return uuid.NewSHA1(ns, []byte(name))
}

// StateID derives a stable ID for a state from its name.
func StateID(ns uuid.UUID, name string) uuid.UUID {
	return v5(ns, "state:"+NaturalKey(name))
}

// CityID derives a stable ID for a city from its state and name.
func CityID(ns uuid.UUID, state, name string) uuid.UUID {
	return v5(ns, "city:"+NaturalKey(state)+":"+NaturalKey(name))
}

// NaturalKey folds case and whitespace. Names with the same key share an ID.
func NaturalKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
