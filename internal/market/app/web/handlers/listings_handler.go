package handlers

import (
	"net/http"

	"surplusmarket_api/config/values"
	"surplusmarket_api/internal/auth"
	"surplusmarket_api/internal/market/business"
	"surplusmarket_api/internal/market/models"
	"surplusmarket_api/internal/market/session"
	"surplusmarket_api/pkg/logger"
)

// ListingView is one listing as the presentation layer receives it: the
// entity, its mode-derived display strings and the caller's affordance.
type ListingView struct {
	*models.Listing
	Pricing business.Presentation `json:"pricing"`
	CanEdit bool                  `json:"can_edit"`
}

type browseResponse struct {
	Listings []ListingView `json:"listings"`
	Count    int           `json:"count"`
}

type metaResponse struct {
	Categories []string             `json:"categories"`
	Conditions []string             `json:"conditions"`
	Sorts      []business.SortOrder `json:"sorts"`
	All        string               `json:"all_sentinel"`
}

type ListingsHandler struct {
	manager *business.Manager
	pricing *business.PriceFormatter
	log     logger.Logger
}

func NewListingsHandler(manager *business.Manager, vals values.MarketValues, log logger.Logger) *ListingsHandler {
	return &ListingsHandler{
		manager: manager,
		pricing: business.NewPriceFormatter(vals),
		log:     log,
	}
}

func (h *ListingsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/listings", h.BrowseHandler)
	mux.HandleFunc("GET /api/listings/{id}", h.GetHandler)
	mux.HandleFunc("GET /api/meta", h.MetaHandler)
	mux.Handle("POST /api/listings", auth.RequireSession(http.HandlerFunc(h.CreateHandler)))
	mux.Handle("PATCH /api/listings/{id}", auth.RequireSession(http.HandlerFunc(h.UpdateHandler)))
	mux.Handle("DELETE /api/listings/{id}", auth.RequireSession(http.HandlerFunc(h.DeleteHandler)))
	mux.Handle("POST /api/listings/{id}/checkout", auth.RequireSession(http.HandlerFunc(h.CheckoutHandler)))
}

func (h *ListingsHandler) view(actor *models.Actor, l *models.Listing) ListingView {
	return ListingView{
		Listing: l,
		Pricing: h.pricing.Presentation(l),
		CanEdit: business.CanEdit(actor, l),
	}
}

// BrowseHandler computes the caller's view: hidden listings excluded for
// non-admins, then the query's filters and sort. Absent parameters mean
// "no filtering"; in particular an absent price bound is never read as 0.
func (h *ListingsHandler) BrowseHandler(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := business.Query{
		Text:      params.Get("text"),
		Category:  params.Get("category"),
		Condition: params.Get("condition"),
		MinPrice:  params.Get("min_price"),
		MaxPrice:  params.Get("max_price"),
		Sort:      business.ParseSortOrder(params.Get("sort")),
	}

	actor := session.ActorFrom(r.Context())
	listings := h.manager.Visible(actor, q)
	views := make([]ListingView, len(listings))
	for i, l := range listings {
		views[i] = h.view(actor, l)
	}
	writeJSON(w, h.log, http.StatusOK, browseResponse{Listings: views, Count: len(views)})
}

func (h *ListingsHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	actor := session.ActorFrom(r.Context())
	l, ok := h.manager.Get(r.PathValue("id"))
	if !ok || (l.Hidden && !actor.IsAdmin()) {
		writeNotFound(w, h.log, "listing")
		return
	}
	writeJSON(w, h.log, http.StatusOK, h.view(actor, l))
}

// MetaHandler serves the canonical filter vocabulary the browse dropdowns
// are built from.
func (h *ListingsHandler) MetaHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.log, http.StatusOK, metaResponse{
		Categories: models.Categories(),
		Conditions: models.Conditions(),
		Sorts:      []business.SortOrder{business.SortNewest, business.SortPriceAsc, business.SortPriceDesc},
		All:        models.CategoryAll,
	})
}

// CreateHandler publishes a draft. The listing is in the response, and in
// every subsequent view, before the remote store has confirmed it; a remote
// failure later keeps the local listing and lands in the sync journal.
func (h *ListingsHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var draft business.Draft
	if err := decodeBody(r, &draft); err != nil {
		writeError(w, h.log, err)
		return
	}

	actor := session.ActorFrom(r.Context())
	l, err := h.manager.Create(actor, draft)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusCreated, h.view(actor, l))
}

func (h *ListingsHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.manager.Get(id); !ok {
		writeNotFound(w, h.log, "listing")
		return
	}

	var patch business.EditPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, h.log, err)
		return
	}

	actor := session.ActorFrom(r.Context())
	l, err := h.manager.Update(r.Context(), actor, id, patch)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, h.view(actor, l))
}

func (h *ListingsHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.manager.Get(id); !ok {
		writeNotFound(w, h.log, "listing")
		return
	}

	actor := session.ActorFrom(r.Context())
	if err := h.manager.Delete(r.Context(), actor, id); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckoutHandler is deliberately a stub. The marketplace hands buyers and
// sellers over to each other; no payment flow exists.
func (h *ListingsHandler) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.manager.Get(r.PathValue("id")); !ok {
		writeNotFound(w, h.log, "listing")
		return
	}
	writeJSON(w, h.log, http.StatusNotImplemented, errorResponse{
		Error: "checkout is not available, contact the seller directly",
	})
}
