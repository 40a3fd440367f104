package wire

import (
	"vacation-rental/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireHouse(r chi.Router, houseHandler *adaptor.HouseHandler) {
	r.Route("/houses", func(r chi.Router) {
		// GET /api/houses - active houses by sort order
		r.Get("/", houseHandler.ListHouses)

		r.Get("/{slug}", houseHandler.GetHouse)
		r.Get("/{slug}/packages", houseHandler.GetHousePackages)
		r.Get("/{slug}/unavailable-dates", houseHandler.GetUnavailableDates)
	})
}
