package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/BIHBOB/ssiteJungle/internal/models"
	"github.com/BIHBOB/ssiteJungle/internal/store"
)

type SettingsHandler struct {
	Store *store.Store
}

func (h *SettingsHandler) GetPaymentDetails(w http.ResponseWriter, r *http.Request) {
	pd, err := h.Store.GetPaymentDetails()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pd)
}

func (h *SettingsHandler) SavePaymentDetails(w http.ResponseWriter, r *http.Request) {
	var pd models.PaymentDetails
	if err := decodeJSON(r, &pd); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.Store.SavePaymentDetails(&pd); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pd)
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.GetSettings()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if settings == nil {
		settings = []models.Setting{}
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings []models.Setting
	if err := decodeJSON(r, &settings); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	for _, st := range settings {
		if st.Key == "" {
			writeFieldErrors(w, map[string]string{"key": "Setting key cannot be empty."})
			return
		}
		if err := h.Store.SaveSetting(st.Key, st.Value); err != nil {
			writeStoreError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ns, err := h.Store.GetNotifications(userFrom(r).ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if ns == nil {
		ns = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, ns)
}

func (h *SettingsHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}
	if err := h.Store.MarkNotificationRead(id, userFrom(r).ID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Notification marked as read")
}
