package wire

import (
	"vacation-rental/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler) {
	r.Route("/bookings", func(r chi.Router) {
		r.Post("/check-availability", bookingHandler.CheckAvailability)

		// POST /api/bookings - create a pending booking request
		r.Post("/", bookingHandler.CreateBooking)

		r.Get("/{bookingId}", bookingHandler.GetBooking)
	})
}
