package places

import "github.com/rzane/advanced-demo/internal/search"

// StateSearch recognizes q[name].
var StateSearch = search.New().
	Contains("name", "states.name")

// CitySearch recognizes q[name], q[population_gteq], q[population_lteq],
// q[rank_gteq], q[rank_lteq] and q[state][...] delegated to StateSearch.
var CitySearch = search.New().
	Contains("name", "cities.name").
	Range("population", "cities.population").
	Range("rank", "cities.rank").
	Join("state", "JOIN states ON states.id = cities.state_id", StateSearch)
