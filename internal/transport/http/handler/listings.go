package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/kurtniculi26/RentAll/internal/application/listing"
)

var listingMessages = errorMessages{
	http.StatusInternalServerError: "Failed to load listings, please try again",
}

// ListingHandler serves the public browse endpoints.
type ListingHandler struct {
	svc listing.Service
	log *zap.Logger
}

func NewListingHandler(svc listing.Service, log *zap.Logger) *ListingHandler {
	return &ListingHandler{svc: svc, log: log.With(zap.String("handler", "listing"))}
}

// List accepts ?category=<name|id|all>&q=<title substring>.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.svc.List(r.Context(), listing.Filter{
		Category: q.Get("category"),
		Query:    q.Get("q"),
	})
	if err != nil {
		httpError(w, h.log, err, listingMessages)
		return
	}
	writeJSON(w, http.StatusOK, ListingsEnvelope{Data: items})
}

func (h *ListingHandler) Categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CategoriesEnvelope{Data: h.svc.Categories()})
}
