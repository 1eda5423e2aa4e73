package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/BIHBOB/ssiteJungle/internal/store"
)

// ExportHandler streams admin CSV downloads. Files are semicolon-delimited
// and BOM-prefixed so Excel opens them with the right encoding.
type ExportHandler struct {
	Store *store.Store
}

func csvWriter(w http.ResponseWriter, name string) *csv.Writer {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s_%s.csv"`, name, time.Now().Format("2006-01-02")))
	w.Write([]byte("\xEF\xBB\xBF")) // UTF-8 BOM
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	return cw
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (h *ExportHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.GetAllUsers()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	cw := csvWriter(w, "users")
	defer cw.Flush()
	cw.Write([]string{"ID", "Email", "Name", "Phone", "Address", "Admin", "Balance", "Registered"})
	for _, u := range users {
		cw.Write([]string{
			strconv.Itoa(u.ID), u.Email, u.Name, u.Phone, u.Address,
			strconv.FormatBool(u.IsAdmin), money(u.Balance),
			u.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
}

func (h *ExportHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.GetProducts(store.ProductFilter{})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	cw := csvWriter(w, "products")
	defer cw.Flush()
	cw.Write([]string{"ID", "Name", "Category", "Price", "Quantity", "Available", "Labels"})
	for _, p := range products {
		cw.Write([]string{
			strconv.Itoa(p.ID), p.Name, p.Category, money(p.Price),
			strconv.Itoa(p.Quantity), strconv.FormatBool(p.Available),
			strings.Join(p.Labels, ", "),
		})
	}
}

func (h *ExportHandler) Orders(w http.ResponseWriter, r *http.Request) {
	total, err := h.Store.CountOrders()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	orders, err := h.Store.GetAllOrders(total, 0)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	cw := csvWriter(w, "orders")
	defer cw.Flush()
	cw.Write([]string{"ID", "User", "Items", "Total", "Delivery", "Discount", "Promo", "Status", "Payment", "Created"})
	for _, o := range orders {
		var lines []string
		for _, it := range o.Items {
			lines = append(lines, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
		}
		cw.Write([]string{
			strconv.Itoa(o.ID), strconv.Itoa(o.UserID), strings.Join(lines, ", "),
			money(o.TotalAmount), money(o.DeliveryAmount), money(o.Discount),
			o.PromoCode, string(o.Status), string(o.PaymentStatus),
			o.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
}

func (h *ExportHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.GetDashboardStats()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	cw := csvWriter(w, "statistics")
	defer cw.Flush()

	cw.Write([]string{"Metric", "Value"})
	cw.Write([]string{"Total users", strconv.Itoa(stats.TotalUsers)})
	cw.Write([]string{"Total products", strconv.Itoa(stats.TotalProducts)})
	cw.Write([]string{"Total orders", strconv.Itoa(stats.TotalOrders)})
	cw.Write([]string{"Revenue", money(stats.Revenue)})
	cw.Write([]string{"Promo codes used", strconv.Itoa(stats.PromoUsageTotal)})
	for status, count := range stats.OrdersByStatus {
		cw.Write([]string{"Orders " + status, strconv.Itoa(count)})
	}
	cw.Write([]string{""})
	cw.Write([]string{"Product", "Sold", "Revenue"})
	for _, ps := range stats.TopProducts {
		cw.Write([]string{ps.Name, strconv.Itoa(ps.Sold), money(ps.Revenue)})
	}
}
