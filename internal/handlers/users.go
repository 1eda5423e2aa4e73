package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/BIHBOB/ssiteJungle/internal/models"
	"github.com/BIHBOB/ssiteJungle/internal/store"
)

// UserHandler is the admin back-office view of accounts.
type UserHandler struct {
	Store *store.Store
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.GetAllUsers()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type adminUserUpdateRequest struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	IsAdmin bool   `json:"isAdmin"`
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	var req adminUserUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || !emailRegex.MatchString(req.Email) {
		writeFieldErrors(w, map[string]string{"email": "A valid email is required."})
		return
	}
	// An admin cannot revoke their own access.
	if user.ID == userFrom(r).ID && user.IsAdmin && !req.IsAdmin {
		writeMessage(w, http.StatusBadRequest, "You cannot revoke your own admin access")
		return
	}

	user.Email = req.Email
	user.Name = req.Name
	user.Phone = req.Phone
	user.Address = req.Address
	user.IsAdmin = req.IsAdmin
	if err := h.Store.UpdateUser(user); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type adminBalanceRequest struct {
	Amount float64 `json:"amount"` // signed: positive credits, negative debits
}

func (h *UserHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	var req adminBalanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount == 0 {
		writeFieldErrors(w, map[string]string{"amount": "Amount cannot be zero."})
		return
	}
	balance, err := h.Store.AdjustUserBalance(user.ID, req.Amount)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"balance": balance})
}

func (h *UserHandler) loadUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid user ID")
		return nil, false
	}
	user, err := h.Store.GetUserByID(id)
	if err != nil {
		writeStoreError(w, err)
		return nil, false
	}
	if user == nil {
		writeMessage(w, http.StatusNotFound, "User not found")
		return nil, false
	}
	return user, true
}
