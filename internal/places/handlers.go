package places

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rzane/advanced-demo/internal/db"
	"github.com/rzane/advanced-demo/internal/logging"
	"github.com/rzane/advanced-demo/internal/search"
	"go.uber.org/zap"
)

// ListCities returns cities ordered by rank, each with its state, narrowed by q[...].
func ListCities(w http.ResponseWriter, r *http.Request) {
	form, err := CitySearch.Form(r.URL.Query())
	if err != nil {
		searchError(w, CitySearch, err)
		return
	}

	cities := []City{}
	if err := db.DB.WithContext(r.Context()).
		Preload("State").
		Order("cities.rank ASC").
		Order("cities.id ASC").
		Scopes(CitySearch.Scope(form)).
		Find(&cities).Error; err != nil {
		logging.L.Error("failed to fetch cities", zap.Any("q", form), zap.Error(err))
		http.Error(w, "Failed to fetch cities", http.StatusInternalServerError)
		return
	}

	logging.L.Debug("listed cities", zap.Any("q", form), zap.Int("count", len(cities)))
	writeJSON(w, cities)
}

// ListStates returns states ordered by name, narrowed by q[...].
func ListStates(w http.ResponseWriter, r *http.Request) {
	form, err := StateSearch.Form(r.URL.Query())
	if err != nil {
		searchError(w, StateSearch, err)
		return
	}

	states := []State{}
	if err := db.DB.WithContext(r.Context()).
		Order("states.name ASC").
		Order("states.id ASC").
		Scopes(StateSearch.Scope(form)).
		Find(&states).Error; err != nil {
		logging.L.Error("failed to fetch states", zap.Any("q", form), zap.Error(err))
		http.Error(w, "Failed to fetch states", http.StatusInternalServerError)
		return
	}

	logging.L.Debug("listed states", zap.Any("q", form), zap.Int("count", len(states)))
	writeJSON(w, states)
}

// searchError answers 400 and lists the fields s recognizes.
func searchError(w http.ResponseWriter, s *search.Search, err error) {
	keys := s.Keys()
	for i, k := range keys {
		head, tail, _ := strings.Cut(k, "[")
		if tail != "" {
			tail = "[" + tail
		}
		keys[i] = search.DefaultRoot + "[" + head + "]" + tail
	}
	fields := "recognized fields: " + strings.Join(keys, ", ")

	var invalid *search.InvalidValueError
	if errors.As(err, &invalid) {
		http.Error(w, "Invalid value for "+invalid.Field+": must be a whole number ("+fields+")", http.StatusBadRequest)
		return
	}
	http.Error(w, "Invalid search ("+fields+")", http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.L.Warn("failed to encode response", zap.Error(err))
	}
}
