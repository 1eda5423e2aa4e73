package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/BIHBOB/ssiteJungle/internal/models"
	"github.com/BIHBOB/ssiteJungle/internal/store"
)

type ReviewHandler struct {
	Store *store.Store
	Auth  *Auth
}

// List shows approved reviews to everyone; admins see the moderation queue
// too.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	productID, _ := strconv.Atoi(r.URL.Query().Get("productId"))

	includeUnapproved := false
	if user, err := h.Auth.currentUser(r); err == nil && user != nil && user.IsAdmin {
		includeUnapproved = r.URL.Query().Get("all") == "true"
	}

	reviews, err := h.Store.GetReviews(productID, includeUnapproved)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	writeJSON(w, http.StatusOK, reviews)
}

type reviewRequest struct {
	ProductID int      `json:"productId"`
	Rating    int      `json:"rating"`
	Text      string   `json:"text"`
	Images    []string `json:"images"`
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields := make(map[string]string)
	if req.Rating < 1 || req.Rating > 5 {
		fields["rating"] = "Rating must be between 1 and 5."
	}
	product, err := h.Store.GetProductByID(req.ProductID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if product == nil {
		fields["productId"] = "Product not found."
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	review := &models.Review{
		UserID:    userFrom(r).ID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Text:      req.Text,
		Images:    req.Images,
	}
	if err := h.Store.CreateReview(review); err != nil {
		writeStoreError(w, err)
		return
	}
	// New reviews wait for moderation before becoming public.
	writeJSON(w, http.StatusCreated, review)
}

func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid review ID")
		return
	}
	if err := h.Store.ApproveReview(id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Review approved")
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid review ID")
		return
	}
	if err := h.Store.DeleteReview(id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Review deleted")
}
