package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/BIHBOB/ssiteJungle/internal/models"
	"github.com/BIHBOB/ssiteJungle/internal/store"
)

type OrderHandler struct {
	Store *store.Store
}

type createOrderRequest struct {
	Items          []store.CartLine `json:"items"`
	DeliveryAmount *float64         `json:"deliveryAmount"`
	FullName       string           `json:"fullName"`
	Address        string           `json:"address"`
	Phone          string           `json:"phone"`
	DeliveryType   string           `json:"deliveryType"`
	PaymentMethod  string           `json:"paymentMethod"`
	PromoCode      string           `json:"promoCode"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields := make(map[string]string)
	if len(req.Items) == 0 {
		fields["items"] = "Cart is empty."
	}
	if req.DeliveryAmount == nil {
		fields["deliveryAmount"] = "Delivery amount is required."
	} else if *req.DeliveryAmount < 0 {
		fields["deliveryAmount"] = "Delivery amount cannot be negative."
	}
	if req.FullName == "" {
		fields["fullName"] = "Full name is required."
	}
	if req.Address == "" {
		fields["address"] = "Address is required."
	}
	if req.Phone == "" {
		fields["phone"] = "Phone is required."
	}
	if req.PaymentMethod == "" {
		fields["paymentMethod"] = "Payment method is required."
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	order, err := h.Store.CreateOrder(r.Context(), store.CreateOrderParams{
		UserID:         userFrom(r).ID,
		Cart:           req.Items,
		DeliveryAmount: *req.DeliveryAmount,
		FullName:       req.FullName,
		Address:        req.Address,
		Phone:          req.Phone,
		DeliveryType:   req.DeliveryType,
		PaymentMethod:  req.PaymentMethod,
		PromoCode:      req.PromoCode,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// List returns every order for admins, own orders for everyone else.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	if !user.IsAdmin {
		orders, err := h.Store.GetOrdersByUser(user.ID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ordersOrEmpty(orders))
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}

	orders, err := h.Store.GetAllOrders(limit, (page-1)*limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	total, err := h.Store.CountOrders()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"orders": ordersOrEmpty(orders),
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadOrder(w, r)
	if !ok {
		return
	}
	user := userFrom(r)
	if !user.IsAdmin && order.UserID != user.ID {
		writeMessage(w, http.StatusForbidden, "Not your order")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type updateOrderRequest struct {
	Status         *string `json:"status"`
	PaymentStatus  *string `json:"paymentStatus"`
	AdminComment   *string `json:"adminComment"`
	TrackingNumber *string `json:"trackingNumber"`
	DeliveryDate   *string `json:"deliveryDate"`
}

// Update is the admin edit endpoint; a status change in the payload goes
// through the same transition rules as the status-only endpoint.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	var req updateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	upd := store.AdminOrderUpdate{
		AdminComment:   req.AdminComment,
		TrackingNumber: req.TrackingNumber,
		DeliveryDate:   req.DeliveryDate,
	}
	if req.Status != nil {
		status, err := models.ParseOrderStatus(*req.Status)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		upd.Status = &status
	}
	if req.PaymentStatus != nil {
		ps := models.PaymentStatus(*req.PaymentStatus)
		upd.PaymentStatus = &ps
	}

	order, err := h.Store.UpdateOrderAdmin(r.Context(), id, upd)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	status, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.Store.UpdateOrderAdmin(r.Context(), id, store.AdminOrderUpdate{Status: &status})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	if err := h.Store.DeleteOrder(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Order deleted")
}

type applyPromoRequest struct {
	Code string `json:"code"`
}

func (h *OrderHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "orderId"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	var req applyPromoRequest
	if err := decodeJSON(r, &req); err != nil || req.Code == "" {
		writeMessage(w, http.StatusBadRequest, "Promo code is required")
		return
	}

	existing, err := h.Store.GetOrderByID(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if existing == nil {
		writeMessage(w, http.StatusNotFound, "Order not found")
		return
	}
	user := userFrom(r)
	if !user.IsAdmin && existing.UserID != user.ID {
		writeMessage(w, http.StatusForbidden, "Not your order")
		return
	}

	order, err := h.Store.ApplyPromoToOrder(r.Context(), id, req.Code)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) loadOrder(w http.ResponseWriter, r *http.Request) (*models.Order, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid order ID")
		return nil, false
	}
	order, err := h.Store.GetOrderByID(id)
	if err != nil {
		writeStoreError(w, err)
		return nil, false
	}
	if order == nil {
		writeMessage(w, http.StatusNotFound, "Order not found")
		return nil, false
	}
	return order, true
}

func ordersOrEmpty(orders []models.Order) []models.Order {
	if orders == nil {
		return []models.Order{}
	}
	return orders
}
