package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/BIHBOB/ssiteJungle/internal/models"
	"github.com/BIHBOB/ssiteJungle/internal/store"
)

type ProductHandler struct {
	Store *store.Store
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := store.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
		InStock:  q.Get("inStock") == "true",
		Flag:     map[string]bool{},
	}
	for param, col := range map[string]string{
		"available": "available",
		"preorder":  "preorder",
		"rare":      "rare",
		"easyCare":  "easy_care",
	} {
		if v := q.Get(param); v != "" {
			f.Flag[col] = v == "true"
		}
	}

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit > 0 {
		f.Limit = limit
		f.Offset = (page - 1) * limit
	}

	products, err := h.Store.GetProducts(f)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	product, err := h.Store.GetProductByID(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if product == nil {
		writeMessage(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

type productRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"originalPrice"`
	Images        []string `json:"images"`
	Quantity      int      `json:"quantity"`
	Category      string   `json:"category"`
	Available     bool     `json:"available"`
	Preorder      bool     `json:"preorder"`
	Rare          bool     `json:"rare"`
	EasyCare      bool     `json:"easyCare"`
	Labels        []string `json:"labels"`
	DeliveryCost  float64  `json:"deliveryCost"`
}

func (req *productRequest) validate() map[string]string {
	fields := make(map[string]string)
	if req.Name == "" {
		fields["name"] = "Name is required."
	}
	if req.Price <= 0 {
		fields["price"] = "Price must be positive."
	}
	if req.Quantity < 0 {
		fields["quantity"] = "Quantity cannot be negative."
	}
	return fields
}

func (req *productRequest) toModel(p *models.Product) {
	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.OriginalPrice = req.OriginalPrice
	p.Images = req.Images
	p.Quantity = req.Quantity
	p.Category = req.Category
	p.Available = req.Available
	p.Preorder = req.Preorder
	p.Rare = req.Rare
	p.EasyCare = req.EasyCare
	p.Labels = req.Labels
	p.DeliveryCost = req.DeliveryCost
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}
	var product models.Product
	req.toModel(&product)
	if err := h.Store.CreateProduct(&product); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	existing, err := h.Store.GetProductByID(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if existing == nil {
		writeMessage(w, http.StatusNotFound, "Product not found")
		return
	}

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}
	req.toModel(existing)
	if err := h.Store.UpdateProduct(existing); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	if err := h.Store.DeleteProduct(id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Product deleted")
}
