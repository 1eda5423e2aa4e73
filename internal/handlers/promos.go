package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/BIHBOB/ssiteJungle/internal/models"
	"github.com/BIHBOB/ssiteJungle/internal/pricing"
	"github.com/BIHBOB/ssiteJungle/internal/store"
)

type PromoHandler struct {
	Store *store.Store
}

type promoRequest struct {
	Code           string  `json:"code"`
	DiscountType   string  `json:"discountType"`
	DiscountValue  float64 `json:"discountValue"`
	MinOrderAmount float64 `json:"minOrderAmount"`
	StartDate      string  `json:"startDate"` // RFC3339
	EndDate        string  `json:"endDate"`
	MaxUses        int     `json:"maxUses"`
	IsActive       bool    `json:"isActive"`
}

func (req *promoRequest) toModel() (*models.PromoCode, map[string]string) {
	fields := make(map[string]string)
	if store.NormalizeCode(req.Code) == "" {
		fields["code"] = "Code is required."
	}
	dt := models.DiscountType(req.DiscountType)
	if dt != models.DiscountPercentage && dt != models.DiscountFixed {
		fields["discountType"] = "Discount type must be percentage or fixed."
	}
	if req.DiscountValue <= 0 {
		fields["discountValue"] = "Discount value must be positive."
	} else if dt == models.DiscountPercentage && req.DiscountValue > 100 {
		fields["discountValue"] = "Percentage discount cannot exceed 100."
	}
	start, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		fields["startDate"] = "Start date must be RFC3339."
	}
	end, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		fields["endDate"] = "End date must be RFC3339."
	} else if !start.IsZero() && end.Before(start) {
		fields["endDate"] = "End date must be after start date."
	}
	if req.MaxUses < 0 {
		fields["maxUses"] = "Max uses cannot be negative."
	}
	if len(fields) > 0 {
		return nil, fields
	}
	return &models.PromoCode{
		Code:           req.Code,
		DiscountType:   dt,
		DiscountValue:  req.DiscountValue,
		MinOrderAmount: req.MinOrderAmount,
		StartDate:      start.UTC(),
		EndDate:        end.UTC(),
		MaxUses:        req.MaxUses,
		IsActive:       req.IsActive,
	}, nil
}

func (h *PromoHandler) List(w http.ResponseWriter, r *http.Request) {
	promos, err := h.Store.GetAllPromoCodes()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if promos == nil {
		promos = []models.PromoCode{}
	}
	writeJSON(w, http.StatusOK, promos)
}

func (h *PromoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req promoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	promo, fields := req.toModel()
	if fields != nil {
		writeFieldErrors(w, fields)
		return
	}
	if existing, err := h.Store.GetPromoCodeByCode(promo.Code); err != nil {
		writeStoreError(w, err)
		return
	} else if existing != nil {
		writeFieldErrors(w, map[string]string{"code": "This code already exists."})
		return
	}
	if err := h.Store.CreatePromoCode(promo); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, promo)
}

func (h *PromoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid promo code ID")
		return
	}
	existing, err := h.Store.GetPromoCodeByID(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if existing == nil {
		writeMessage(w, http.StatusNotFound, "Promo code not found")
		return
	}

	var req promoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	promo, fields := req.toModel()
	if fields != nil {
		writeFieldErrors(w, fields)
		return
	}
	promo.ID = id
	promo.CurrentUses = existing.CurrentUses
	if err := h.Store.UpdatePromoCode(promo); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, promo)
}

func (h *PromoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid promo code ID")
		return
	}
	if err := h.Store.DeletePromoCode(id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Promo code deleted")
}

type validatePromoRequest struct {
	Code      string  `json:"code"`
	CartTotal float64 `json:"cartTotal"`
}

// Validate previews a discount for the cart page. It applies the same rules
// as checkout, including the single-use-per-user check when the caller is
// logged in.
func (h *PromoHandler) Validate(auth *Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validatePromoRequest
		if err := decodeJSON(r, &req); err != nil || req.Code == "" {
			writeMessage(w, http.StatusBadRequest, "Promo code is required")
			return
		}

		promo, err := h.Store.GetPromoCodeByCode(req.Code)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if promo == nil {
			writeStoreError(w, store.ErrPromoNotFound)
			return
		}
		if err := store.CheckPromoEligibility(promo, req.CartTotal, time.Now().UTC()); err != nil {
			writeStoreError(w, err)
			return
		}

		if user, err := auth.currentUser(r); err == nil && user != nil {
			used, err := h.Store.HasUserUsedPromo(promo.ID, user.ID)
			if err != nil {
				writeStoreError(w, err)
				return
			}
			if used {
				writeStoreError(w, store.ErrPromoAlreadyUsed)
				return
			}
		}

		discount := pricing.Discount(promo, decimal.NewFromFloat(req.CartTotal))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"valid":        true,
			"code":         promo.Code,
			"discountType": promo.DiscountType,
			"discount":     discount.InexactFloat64(),
		})
	}
}
