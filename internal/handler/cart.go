package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/service"
)

// CartHandler handles the authenticated user's cart.
type CartHandler struct {
	carts *service.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// HandleAdd increments one product in the caller's cart.
// POST /addtocart
// Request:  {"itemId": 7} or {"itemId": "7"}; 7.0 and 7e0 count as 7
// Response: Added
func (h *CartHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID json.RawMessage `json:"itemId"`
	}
	if err := readJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	itemID, err := scalarID(req.ItemID)
	if err != nil {
		writeError(w, "add to cart", err)
		return
	}

	if _, err := h.carts.AddToCart(r.Context(), UserIDFromContext(r.Context()), itemID); err != nil {
		writeError(w, "add to cart", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "Added")
}

// HandleGet returns the caller's cart as a map of product id to quantity.
// POST /getcart
func (h *CartHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.GetCart(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, "get cart", err)
		return
	}
	if cart == nil {
		cart = domain.Cart{}
	}
	writeJSON(w, http.StatusOK, cart)
}
