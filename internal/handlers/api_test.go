package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"github.com/BIHBOB/ssiteJungle/internal/models"
	"github.com/BIHBOB/ssiteJungle/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	s, err := store.NewStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.DB.Close() })
	if err := s.InitSchema(); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	sessionStore := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	srv := httptest.NewServer(NewRouter(s, sessionStore, t.TempDir()))
	t.Cleanup(srv.Close)
	return srv, s
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func registerUser(t *testing.T, client *http.Client, base, email string) {
	t.Helper()
	resp, body := doJSON(t, client, http.MethodPost, base+"/api/register", map[string]string{
		"email": email, "password": "secret123", "name": "Test User",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", resp.StatusCode, body)
	}
}

func loginAdmin(t *testing.T, client *http.Client, base string, s *store.Store) *models.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("adminpass"), bcrypt.DefaultCost)
	admin := &models.User{Email: "admin@example.com", PasswordHash: string(hash), Name: "Admin", IsAdmin: true}
	if err := s.CreateUser(admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	resp, body := doJSON(t, client, http.MethodPost, base+"/api/login", map[string]string{
		"email": "admin@example.com", "password": "adminpass",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin login status = %d, body %s", resp.StatusCode, body)
	}
	return admin
}

func seedCatalogProduct(t *testing.T, s *store.Store, name string, price float64, qty int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: price, Quantity: qty, Available: true}
	if err := s.CreateProduct(p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func TestCreateOrderEndpoint(t *testing.T) {
	srv, s := newTestServer(t)
	p := seedCatalogProduct(t, s, "Monstera", 500, 10)

	client := newClient(t)
	registerUser(t, client, srv.URL, "buyer@example.com")

	resp, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/orders", map[string]interface{}{
		"items":          []map[string]int{{"id": p.ID, "quantity": 2}},
		"deliveryAmount": 300,
		"fullName":       "Test Buyer",
		"address":        "Street 1",
		"phone":          "+100",
		"paymentMethod":  "card",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}

	var order models.Order
	if err := json.Unmarshal(body, &order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if order.TotalAmount != 1300 {
		t.Errorf("total = %v, want 1300", order.TotalAmount)
	}
	if order.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", order.Status)
	}
	if order.QuantitiesReduced {
		t.Error("quantitiesReduced must be false on the card path")
	}
}

func TestCreateOrderValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newClient(t)
	registerUser(t, client, srv.URL, "buyer@example.com")

	// Missing deliveryAmount and empty cart
	resp, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/orders", map[string]interface{}{
		"fullName": "X", "address": "Y", "phone": "Z", "paymentMethod": "card",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var out struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if out.Errors["items"] == "" || out.Errors["deliveryAmount"] == "" {
		t.Errorf("expected field errors for items and deliveryAmount, got %v", out.Errors)
	}
}

func TestOrderEndpointsRequireAuth(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newClient(t)

	resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/api/orders", map[string]interface{}{})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated create: status = %d, want 401", resp.StatusCode)
	}
}

func TestAdminGuard(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newClient(t)
	registerUser(t, client, srv.URL, "pleb@example.com")

	resp, _ := doJSON(t, client, http.MethodGet, srv.URL+"/api/users", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-admin user list: status = %d, want 403", resp.StatusCode)
	}
}

func TestStatusUpdateDecrementsOnce(t *testing.T) {
	srv, s := newTestServer(t)
	p := seedCatalogProduct(t, s, "Ficus", 200, 10)

	buyer := newClient(t)
	registerUser(t, buyer, srv.URL, "buyer@example.com")
	resp, body := doJSON(t, buyer, http.MethodPost, srv.URL+"/api/orders", map[string]interface{}{
		"items":          []map[string]int{{"id": p.ID, "quantity": 4}},
		"deliveryAmount": 0,
		"fullName":       "B", "address": "A", "phone": "P",
		"paymentMethod": "card",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: %d %s", resp.StatusCode, body)
	}
	var order models.Order
	json.Unmarshal(body, &order)

	admin := newClient(t)
	loginAdmin(t, admin, srv.URL, s)

	statusURL := fmt.Sprintf("%s/api/orders/%d/status", srv.URL, order.ID)
	for i := 0; i < 2; i++ {
		resp, body = doJSON(t, admin, http.MethodPut, statusURL, map[string]string{"status": "paid"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status update #%d: %d %s", i, resp.StatusCode, body)
		}
	}

	got, _ := s.GetProductByID(p.ID)
	if got.Quantity != 6 {
		t.Errorf("quantity = %d, want 6 (single decrement)", got.Quantity)
	}

	// Unknown status strings are rejected outright.
	resp, _ = doJSON(t, admin, http.MethodPut, statusURL, map[string]string{"status": "refunded"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown status: %d, want 400", resp.StatusCode)
	}
}

func TestValidatePromoEndpoint(t *testing.T) {
	srv, s := newTestServer(t)
	err := s.CreatePromoCode(&models.PromoCode{
		Code: "TEN", DiscountType: models.DiscountPercentage, DiscountValue: 10,
		StartDate: time.Now().UTC().Add(-time.Hour), EndDate: time.Now().UTC().Add(24 * time.Hour), IsActive: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	client := newClient(t)
	resp, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/promo-codes/validate", map[string]interface{}{
		"code": "ten", "cartTotal": 1000,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var out struct {
		Valid    bool    `json:"valid"`
		Discount float64 `json:"discount"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if !out.Valid || out.Discount != 100 {
		t.Errorf("got %+v, want valid with discount 100", out)
	}

	resp, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/promo-codes/validate", map[string]interface{}{
		"code": "NOPE", "cartTotal": 1000,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown code: status = %d, want 404", resp.StatusCode)
	}
}

func TestExportOrdersCSV(t *testing.T) {
	srv, s := newTestServer(t)

	admin := newClient(t)
	loginAdmin(t, admin, srv.URL, s)

	resp, err := admin.Get(srv.URL + "/api/export/orders")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)

	if !bytes.HasPrefix(data, []byte("\xEF\xBB\xBF")) {
		t.Error("CSV must start with a UTF-8 BOM")
	}
	header := strings.SplitN(string(data[3:]), "\n", 2)[0]
	if !strings.Contains(header, ";") {
		t.Errorf("CSV must be semicolon-delimited, got header %q", header)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
