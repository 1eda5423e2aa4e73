package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/BIHBOB/ssiteJungle/internal/models"
	"github.com/BIHBOB/ssiteJungle/internal/store"
)

// ReceiptHandler renders order receipts as PDF files under the upload dir
// and hands back their URL.
type ReceiptHandler struct {
	Store     *store.Store
	UploadDir string
	ShopName  string
}

func (h *ReceiptHandler) Generate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	order, err := h.Store.GetOrderByID(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if order == nil {
		writeMessage(w, http.StatusNotFound, "Order not found")
		return
	}

	filename := fmt.Sprintf("receipt_%d_%s.pdf", order.ID, uuid.New().String())
	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		writeStoreError(w, err)
		return
	}
	if err := h.render(order, filepath.Join(h.UploadDir, filename)); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": "/uploads/" + filename})
}

func (h *ReceiptHandler) render(o *models.Order, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	shop := h.ShopName
	if shop == "" {
		shop = "Jungle Plant Shop"
	}
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, shop)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Receipt for order #%d", o.ID))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Date: "+o.CreatedAt.Format("2006-01-02 15:04"))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Customer: "+o.FullName)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Address: "+o.Address)
	pdf.Ln(10)

	// Line items table
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(90, 8, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Amount", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, it := range o.Items {
		pdf.CellFormat(90, 8, it.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", it.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 8, strconv.Itoa(it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", it.Price*float64(it.Quantity)), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	if o.Discount > 0 {
		pdf.Cell(0, 6, fmt.Sprintf("Discount (%s): -%.2f", o.PromoCode, o.Discount))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Delivery: %.2f", o.DeliveryAmount))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f", o.TotalAmount))

	return pdf.OutputFileAndClose(path)
}
