package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BIHBOB/ssiteJungle/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.DB.Close() })
	if err := s.InitSchema(); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return s
}

func seedUser(t *testing.T, s *Store, email string, balance float64) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x", Name: "Test User", Balance: balance}
	if err := s.CreateUser(u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedProduct(t *testing.T, s *Store, name string, price float64, qty int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: price, Quantity: qty, Available: true}
	if err := s.CreateProduct(p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func seedPromo(t *testing.T, s *Store, code string, p models.PromoCode) *models.PromoCode {
	t.Helper()
	p.Code = code
	if p.StartDate.IsZero() {
		p.StartDate = time.Now().UTC().Add(-time.Hour)
	}
	if p.EndDate.IsZero() {
		p.EndDate = time.Now().UTC().Add(24 * time.Hour)
	}
	if err := s.CreatePromoCode(&p); err != nil {
		t.Fatalf("seed promo: %v", err)
	}
	return &p
}

func productQty(t *testing.T, s *Store, id int) int {
	t.Helper()
	p, err := s.GetProductByID(id)
	if err != nil || p == nil {
		t.Fatalf("load product %d: %v", id, err)
	}
	return p.Quantity
}

func TestCreateOrderTotals(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "buyer@example.com", 0)
	p := seedProduct(t, s, "Monstera", 500, 10)

	order, err := s.CreateOrder(context.Background(), CreateOrderParams{
		UserID:         u.ID,
		Cart:           []CartLine{{ProductID: p.ID, Quantity: 2}},
		DeliveryAmount: 300,
		FullName:       "Test Buyer",
		Address:        "Street 1",
		Phone:          "+100",
		PaymentMethod:  "card",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if order.TotalAmount != 1300 {
		t.Errorf("total = %v, want 1300", order.TotalAmount)
	}
	if order.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", order.Status)
	}
	if order.QuantitiesReduced {
		t.Error("quantities must not be reduced on the card path at creation")
	}
	if got := productQty(t, s, p.ID); got != 10 {
		t.Errorf("product quantity = %d, want 10 (untouched)", got)
	}
	if len(order.Items) != 1 || order.Items[0].Name != "Monstera" || order.Items[0].Price != 500 {
		t.Errorf("line item snapshot wrong: %+v", order.Items)
	}
}

func TestCreateOrderBalancePath(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "rich@example.com", 2000)
	p := seedProduct(t, s, "Ficus", 500, 10)

	order, err := s.CreateOrder(context.Background(), CreateOrderParams{
		UserID:         u.ID,
		Cart:           []CartLine{{ProductID: p.ID, Quantity: 2}},
		DeliveryAmount: 300,
		PaymentMethod:  "balance",
		FullName:       "R", Address: "A", Phone: "P",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if !order.QuantitiesReduced {
		t.Error("balance path must reduce quantities immediately")
	}
	if order.PaymentStatus != models.PaymentCompleted {
		t.Errorf("payment status = %s, want completed", order.PaymentStatus)
	}
	if got := productQty(t, s, p.ID); got != 8 {
		t.Errorf("product quantity = %d, want 8", got)
	}
	user, _ := s.GetUserByID(u.ID)
	if user.Balance != 700 {
		t.Errorf("balance = %v, want 700", user.Balance)
	}
}

func TestCreateOrderInsufficientBalanceRollsBack(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "poor@example.com", 100)
	p := seedProduct(t, s, "Palm", 500, 10)

	_, err := s.CreateOrder(context.Background(), CreateOrderParams{
		UserID:         u.ID,
		Cart:           []CartLine{{ProductID: p.ID, Quantity: 1}},
		DeliveryAmount: 0,
		PaymentMethod:  "balance",
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	if n, _ := s.CountOrders(); n != 0 {
		t.Errorf("orders = %d, want 0 after rollback", n)
	}
	if got := productQty(t, s, p.ID); got != 10 {
		t.Errorf("product quantity = %d, want 10", got)
	}
}

func TestCreateOrderOverQuantity(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "u@example.com", 0)
	p := seedProduct(t, s, "Cactus", 100, 1)

	_, err := s.CreateOrder(context.Background(), CreateOrderParams{
		UserID:        u.ID,
		Cart:          []CartLine{{ProductID: p.ID, Quantity: 5}},
		PaymentMethod: "card",
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if n, _ := s.CountOrders(); n != 0 {
		t.Errorf("orders = %d, want 0", n)
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "u@example.com", 0)
	_, err := s.CreateOrder(context.Background(), CreateOrderParams{UserID: u.ID, PaymentMethod: "card"})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
}

func TestCreateOrderMissingProduct(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "u@example.com", 0)
	_, err := s.CreateOrder(context.Background(), CreateOrderParams{
		UserID:        u.ID,
		Cart:          []CartLine{{ProductID: 9999, Quantity: 1}},
		PaymentMethod: "card",
	})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}

func TestStatusTransitionReducesOnce(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "u@example.com", 0)
	p := seedProduct(t, s, "Monstera", 500, 10)

	order, err := s.CreateOrder(context.Background(), CreateOrderParams{
		UserID:         u.ID,
		Cart:           []CartLine{{ProductID: p.ID, Quantity: 3}},
		DeliveryAmount: 0,
		PaymentMethod:  "card",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	paid := models.StatusPaid
	if _, err := s.UpdateOrderAdmin(context.Background(), order.ID, AdminOrderUpdate{Status: &paid}); err != nil {
		t.Fatalf("transition to paid: %v", err)
	}
	if got := productQty(t, s, p.ID); got != 7 {
		t.Fatalf("product quantity = %d, want 7", got)
	}

	// Replay the same status: allowed, but must not decrement again.
	if _, err := s.UpdateOrderAdmin(context.Background(), order.ID, AdminOrderUpdate{Status: &paid}); err != nil {
		t.Fatalf("replay paid: %v", err)
	}
	processing := models.StatusProcessing
	if _, err := s.UpdateOrderAdmin(context.Background(), order.ID, AdminOrderUpdate{Status: &processing}); err != nil {
		t.Fatalf("paid -> processing: %v", err)
	}
	if got := productQty(t, s, p.ID); got != 7 {
		t.Errorf("product quantity = %d, want 7 (no re-decrement)", got)
	}
}

func TestIllegalTransitionRejected(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "u@example.com", 0)
	p := seedProduct(t, s, "Fern", 100, 5)

	order, err := s.CreateOrder(context.Background(), CreateOrderParams{
		UserID:        u.ID,
		Cart:          []CartLine{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	completed := models.StatusCompleted
	_, err = s.UpdateOrderAdmin(context.Background(), order.ID, AdminOrderUpdate{Status: &completed})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestReduceOrderQuantitiesIdempotent(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "u@example.com", 0)
	p := seedProduct(t, s, "Monstera", 500, 4)

	order, err := s.CreateOrder(context.Background(), CreateOrderParams{
		UserID:        u.ID,
		Cart:          []CartLine{{ProductID: p.ID, Quantity: 3}},
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := s.ReduceOrderQuantities(context.Background(), order.ID); err != nil {
			t.Fatalf("reduce #%d: %v", i, err)
		}
	}
	if got := productQty(t, s, p.ID); got != 1 {
		t.Errorf("product quantity = %d, want 1", got)
	}
}

func TestReduceClampsAtZero(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "u@example.com", 0)
	p := seedProduct(t, s, "Rare Orchid", 900, 2)

	order, err := s.CreateOrder(context.Background(), CreateOrderParams{
		UserID:        u.ID,
		Cart:          []CartLine{{ProductID: p.ID, Quantity: 2}},
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	// Stock shrank out from under the order between creation and payment.
	if _, err := s.DB.Exec(`UPDATE products SET quantity = 1 WHERE id = ?`, p.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.ReduceOrderQuantities(context.Background(), order.ID); err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if got := productQty(t, s, p.ID); got != 0 {
		t.Errorf("product quantity = %d, want 0 (clamped)", got)
	}
}

func TestDeleteOrderRestoresEverything(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "u@example.com", 5000)
	p := seedProduct(t, s, "Monstera", 1000, 10)
	promo := seedPromo(t, s, "SPRING10", models.PromoCode{
		DiscountType: models.DiscountPercentage, DiscountValue: 10, IsActive: true,
	})

	order, err := s.CreateOrder(context.Background(), CreateOrderParams{
		UserID:         u.ID,
		Cart:           []CartLine{{ProductID: p.ID, Quantity: 2}},
		DeliveryAmount: 200,
		PaymentMethod:  "balance",
		PromoCode:      "spring10",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	// items 2000, 10% off = 200, delivery 200 -> 2000
	if order.TotalAmount != 2000 {
		t.Fatalf("total = %v, want 2000", order.TotalAmount)
	}
	if got := productQty(t, s, p.ID); got != 8 {
		t.Fatalf("product quantity = %d, want 8", got)
	}
	pc, _ := s.GetPromoCodeByID(promo.ID)
	if pc.CurrentUses != 1 {
		t.Fatalf("current_uses = %d, want 1", pc.CurrentUses)
	}

	if err := s.DeleteOrder(context.Background(), order.ID); err != nil {
		t.Fatalf("delete order: %v", err)
	}

	if got := productQty(t, s, p.ID); got != 10 {
		t.Errorf("product quantity = %d, want 10 restored", got)
	}
	pc, _ = s.GetPromoCodeByID(promo.ID)
	if pc.CurrentUses != 0 {
		t.Errorf("current_uses = %d, want 0 after reversal", pc.CurrentUses)
	}
	used, _ := s.HasUserUsedPromo(promo.ID, u.ID)
	if used {
		t.Error("promo use record must be deleted")
	}
	user, _ := s.GetUserByID(u.ID)
	if user.Balance != 5000 {
		t.Errorf("balance = %v, want 5000 refunded", user.Balance)
	}
	if o, _ := s.GetOrderByID(order.ID); o != nil {
		t.Error("order row must be gone")
	}
}

func TestApplyPromoToOrder(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "u@example.com", 0)
	p := seedProduct(t, s, "Monstera", 500, 10)
	seedPromo(t, s, "FIX100", models.PromoCode{
		DiscountType: models.DiscountFixed, DiscountValue: 100, IsActive: true,
	})

	order, err := s.CreateOrder(context.Background(), CreateOrderParams{
		UserID:         u.ID,
		Cart:           []CartLine{{ProductID: p.ID, Quantity: 2}},
		DeliveryAmount: 300,
		PaymentMethod:  "card",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	updated, err := s.ApplyPromoToOrder(context.Background(), order.ID, "fix100")
	if err != nil {
		t.Fatalf("apply promo: %v", err)
	}
	if updated.Discount != 100 {
		t.Errorf("discount = %v, want 100", updated.Discount)
	}
	if updated.TotalAmount != 1200 {
		t.Errorf("total = %v, want 1200", updated.TotalAmount)
	}
	if updated.PromoCode != "FIX100" {
		t.Errorf("promo code = %q, want FIX100", updated.PromoCode)
	}

	// Applying a second code to the same order is rejected.
	if _, err := s.ApplyPromoToOrder(context.Background(), order.ID, "FIX100"); !errors.Is(err, ErrPromoAlreadyApplied) {
		t.Fatalf("err = %v, want ErrPromoAlreadyApplied", err)
	}
}

func TestPromoSingleUsePerUserEnforcedEverywhere(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "repeat@example.com", 0)
	p := seedProduct(t, s, "Monstera", 500, 20)
	seedPromo(t, s, "ONCE", models.PromoCode{
		DiscountType: models.DiscountFixed, DiscountValue: 50, IsActive: true,
	})

	if _, err := s.CreateOrder(context.Background(), CreateOrderParams{
		UserID:        u.ID,
		Cart:          []CartLine{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: "card",
		PromoCode:     "ONCE",
	}); err != nil {
		t.Fatalf("first order: %v", err)
	}

	// Embedded order-creation path rejects reuse.
	_, err := s.CreateOrder(context.Background(), CreateOrderParams{
		UserID:        u.ID,
		Cart:          []CartLine{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: "card",
		PromoCode:     "ONCE",
	})
	if !errors.Is(err, ErrPromoAlreadyUsed) {
		t.Fatalf("create err = %v, want ErrPromoAlreadyUsed", err)
	}

	// Standalone apply-promo path rejects reuse too.
	second, err := s.CreateOrder(context.Background(), CreateOrderParams{
		UserID:        u.ID,
		Cart:          []CartLine{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("second order: %v", err)
	}
	if _, err := s.ApplyPromoToOrder(context.Background(), second.ID, "ONCE"); !errors.Is(err, ErrPromoAlreadyUsed) {
		t.Fatalf("apply err = %v, want ErrPromoAlreadyUsed", err)
	}
}
