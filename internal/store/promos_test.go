package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BIHBOB/ssiteJungle/internal/models"
)

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  spring10 "); got != "SPRING10" {
		t.Errorf("NormalizeCode = %q, want SPRING10", got)
	}
}

func TestCheckPromoEligibility(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	base := models.PromoCode{
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 10,
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(time.Hour),
		IsActive:      true,
	}

	t.Run("valid", func(t *testing.T) {
		p := base
		if err := CheckPromoEligibility(&p, 1000, now); err != nil {
			t.Errorf("unexpected err: %v", err)
		}
	})
	t.Run("inactive", func(t *testing.T) {
		p := base
		p.IsActive = false
		if err := CheckPromoEligibility(&p, 1000, now); !errors.Is(err, ErrPromoInactive) {
			t.Errorf("err = %v, want ErrPromoInactive", err)
		}
	})
	t.Run("not started", func(t *testing.T) {
		p := base
		p.StartDate = now.Add(time.Minute)
		if err := CheckPromoEligibility(&p, 1000, now); !errors.Is(err, ErrPromoOutsideWindow) {
			t.Errorf("err = %v, want ErrPromoOutsideWindow", err)
		}
	})
	t.Run("expired", func(t *testing.T) {
		p := base
		p.EndDate = now.Add(-time.Minute)
		if err := CheckPromoEligibility(&p, 1000, now); !errors.Is(err, ErrPromoOutsideWindow) {
			t.Errorf("err = %v, want ErrPromoOutsideWindow", err)
		}
	})
	t.Run("exhausted", func(t *testing.T) {
		p := base
		p.MaxUses = 3
		p.CurrentUses = 3
		if err := CheckPromoEligibility(&p, 1000, now); !errors.Is(err, ErrPromoExhausted) {
			t.Errorf("err = %v, want ErrPromoExhausted", err)
		}
	})
	t.Run("unlimited uses when max is zero", func(t *testing.T) {
		p := base
		p.CurrentUses = 10000
		if err := CheckPromoEligibility(&p, 1000, now); err != nil {
			t.Errorf("unexpected err: %v", err)
		}
	})
	t.Run("below minimum", func(t *testing.T) {
		p := base
		p.MinOrderAmount = 2000
		if err := CheckPromoEligibility(&p, 1000, now); !errors.Is(err, ErrPromoMinAmount) {
			t.Errorf("err = %v, want ErrPromoMinAmount", err)
		}
	})
}

func TestPromoCodeCRUDNormalizesCode(t *testing.T) {
	s := newTestStore(t)
	promo := seedPromo(t, s, "lower", models.PromoCode{
		DiscountType: models.DiscountFixed, DiscountValue: 10, IsActive: true,
	})
	if promo.Code != "LOWER" {
		t.Errorf("stored code = %q, want LOWER", promo.Code)
	}
	found, err := s.GetPromoCodeByCode("LoWeR")
	if err != nil || found == nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if found.ID != promo.ID {
		t.Errorf("found wrong promo: %d != %d", found.ID, promo.ID)
	}
}

func TestCreateOrderRejectsBadPromos(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "u@example.com", 0)
	p := seedProduct(t, s, "Monstera", 500, 10)

	seedPromo(t, s, "EXPIRED", models.PromoCode{
		DiscountType:  models.DiscountFixed,
		DiscountValue: 50,
		IsActive:      true,
		StartDate:     time.Now().UTC().Add(-48 * time.Hour),
		EndDate:       time.Now().UTC().Add(-24 * time.Hour),
	})
	seedPromo(t, s, "BIGMIN", models.PromoCode{
		DiscountType: models.DiscountFixed, DiscountValue: 50, IsActive: true,
		MinOrderAmount: 100000,
	})

	cases := []struct {
		code string
		want error
	}{
		{"EXPIRED", ErrPromoOutsideWindow},
		{"BIGMIN", ErrPromoMinAmount},
		{"NOSUCH", ErrPromoNotFound},
	}
	for _, c := range cases {
		_, err := s.CreateOrder(context.Background(), CreateOrderParams{
			UserID:        u.ID,
			Cart:          []CartLine{{ProductID: p.ID, Quantity: 1}},
			PaymentMethod: "card",
			PromoCode:     c.code,
		})
		if !errors.Is(err, c.want) {
			t.Errorf("promo %s: err = %v, want %v", c.code, err, c.want)
		}
	}
	if n, _ := s.CountOrders(); n != 0 {
		t.Errorf("orders = %d, want 0 (all rejected)", n)
	}
}

func TestPromoUseCapAcrossUsers(t *testing.T) {
	s := newTestStore(t)
	p := seedProduct(t, s, "Monstera", 500, 100)
	seedPromo(t, s, "CAP2", models.PromoCode{
		DiscountType: models.DiscountFixed, DiscountValue: 10, IsActive: true, MaxUses: 2,
	})

	for i, email := range []string{"a@example.com", "b@example.com"} {
		u := seedUser(t, s, email, 0)
		if _, err := s.CreateOrder(context.Background(), CreateOrderParams{
			UserID:        u.ID,
			Cart:          []CartLine{{ProductID: p.ID, Quantity: 1}},
			PaymentMethod: "card",
			PromoCode:     "CAP2",
		}); err != nil {
			t.Fatalf("order %d: %v", i, err)
		}
	}

	third := seedUser(t, s, "c@example.com", 0)
	_, err := s.CreateOrder(context.Background(), CreateOrderParams{
		UserID:        third.ID,
		Cart:          []CartLine{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: "card",
		PromoCode:     "CAP2",
	})
	if !errors.Is(err, ErrPromoExhausted) {
		t.Fatalf("err = %v, want ErrPromoExhausted", err)
	}
}
