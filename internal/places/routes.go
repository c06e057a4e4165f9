package places

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", ListCities)
	r.Get("/cities", ListCities)
	r.Get("/states", ListStates)

	return r
}
