package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/service"
)

const popularCategory = "women"

// CatalogHandler serves product writes and the storefront's product lists.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// HandleAdd creates a product.
// POST /addproduct
// Request:  {"name":"...","image":"...","category":"...","new_price":1,"old_price":2,"available":true}
// Response: {"success":true,"name":"..."}
func (h *CatalogHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string  `json:"name"`
		Image     string  `json:"image"`
		Category  string  `json:"category"`
		NewPrice  float64 `json:"new_price"`
		OldPrice  float64 `json:"old_price"`
		Available *bool   `json:"available"`
	}
	if err := readJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalog.Add(r.Context(), service.NewProduct{
		Name:      req.Name,
		Image:     req.Image,
		Category:  req.Category,
		NewPrice:  req.NewPrice,
		OldPrice:  req.OldPrice,
		Available: req.Available,
	})
	if err != nil {
		writeError(w, "add product", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "name": product.Name})
}

// HandleRemove deletes a product by id. The response echoes the request's
// name whether or not the product existed.
// POST /removeproduct
// Request:  {"id":1,"name":"..."}
func (h *CatalogHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   json.RawMessage `json:"id"`
		Name string          `json:"name"`
	}
	if err := readJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rawID, err := scalarID(req.ID)
	if err != nil {
		writeError(w, "remove product", err)
		return
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	if err := h.catalog.Remove(r.Context(), id); err != nil {
		writeError(w, "remove product", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "name": req.Name})
}

// HandleListAll returns every product in insertion order.
// GET /allproducts
func (h *CatalogHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListAll(r.Context())
	if err != nil {
		writeError(w, "list products", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTOs(products))
}

// HandleNewCollections returns the new-collections view.
// GET /newcollections
func (h *CatalogHandler) HandleNewCollections(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListNewCollections(r.Context())
	if err != nil {
		writeError(w, "list new collections", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTOs(products))
}

// HandlePopular returns up to four products of a category. The category
// comes from the {category} path value, or defaults to women.
// GET /popularinwomen, GET /popular/{category}
func (h *CatalogHandler) HandlePopular(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	if category == "" {
		category = popularCategory
	}

	products, err := h.catalog.ListPopularByCategory(r.Context(), category)
	if err != nil {
		writeError(w, "list popular products", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTOs(products))
}

// scalarID reads an identifier sent either as a JSON string or a JSON
// number. Whole numbers are normalised, so 7, 7.0 and 7e0 all yield "7".
// A missing or null value yields "".
func scalarID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("%w: id must be a string or number", domain.ErrInvalidInput)
	}

	switch v := v.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return strconv.FormatInt(i, 10), nil
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) > maxExactFloatInt {
			return "", fmt.Errorf("%w: id must be a whole number", domain.ErrInvalidInput)
		}
		return strconv.FormatInt(int64(f), 10), nil
	}
	return "", fmt.Errorf("%w: id must be a string or number", domain.ErrInvalidInput)
}

// maxExactFloatInt is the largest integer a float64 holds exactly.
const maxExactFloatInt = 1 << 53
