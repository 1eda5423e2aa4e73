package handlers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"github.com/BIHBOB/ssiteJungle/internal/models"
	"github.com/BIHBOB/ssiteJungle/internal/store"
)

type AuthHandler struct {
	Store        *store.Store
	SessionStore *sessions.CookieStore
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields := make(map[string]string)
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		fields["email"] = "Email is required."
	} else if !emailRegex.MatchString(req.Email) {
		fields["email"] = "Please enter a valid email address."
	}
	if len(req.Password) < 6 {
		fields["password"] = "Password must be at least 6 characters."
	}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "Name is required."
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	existing, err := h.Store.GetUserByEmail(req.Email)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if existing != nil {
		writeFieldErrors(w, map[string]string{"email": "This email is already registered."})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Phone:        req.Phone,
		Address:      req.Address,
	}
	if err := h.Store.CreateUser(user); err != nil {
		writeStoreError(w, err)
		return
	}

	h.setSession(w, r, user.ID)
	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.Store.GetUserByEmail(strings.TrimSpace(req.Email))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.setSession(w, r, user.ID)
	slog.Info("Login successful", "user_id", user.ID)
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, sessionName)
	session.Options.MaxAge = -1 // Expire immediately
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to clear session", "error", err)
	}
	writeMessage(w, http.StatusOK, "Logged out")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r))
}

type updateProfileRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user := userFrom(r)
	user.Name = req.Name
	user.Phone = req.Phone
	user.Address = req.Address
	if err := h.Store.UpdateUser(user); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user := userFrom(r)
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		writeMessage(w, http.StatusForbidden, "Current password is incorrect")
		return
	}
	if len(req.NewPassword) < 6 {
		writeFieldErrors(w, map[string]string{"newPassword": "Password must be at least 6 characters."})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := h.Store.UpdateUserPassword(user.ID, string(hash)); err != nil {
		writeStoreError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password updated")
}

type topUpRequest struct {
	Amount float64 `json:"amount"`
}

func (h *AuthHandler) TopUpBalance(w http.ResponseWriter, r *http.Request) {
	var req topUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount <= 0 {
		writeFieldErrors(w, map[string]string{"amount": "Amount must be positive."})
		return
	}
	balance, err := h.Store.AdjustUserBalance(userFrom(r).ID, req.Amount)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"balance": balance})
}

func (h *AuthHandler) setSession(w http.ResponseWriter, r *http.Request, userID int) {
	session, _ := h.SessionStore.Get(r, sessionName)
	session.Values["user_id"] = userID
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
}
