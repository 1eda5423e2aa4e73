package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/BIHBOB/ssiteJungle/internal/models"
)

const promoCols = `id, code, discount_type, discount_value, min_order_amount, start_date, end_date,
	max_uses, current_uses, is_active, created_at`

// NormalizeCode upper-cases and trims a promo code; codes are stored and
// matched in this form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func scanPromo(row interface{ Scan(...any) error }) (*models.PromoCode, error) {
	var p models.PromoCode
	err := row.Scan(&p.ID, &p.Code, &p.DiscountType, &p.DiscountValue, &p.MinOrderAmount,
		&p.StartDate, &p.EndDate, &p.MaxUses, &p.CurrentUses, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreatePromoCode(p *models.PromoCode) error {
	p.Code = NormalizeCode(p.Code)
	res, err := s.DB.Exec(`
		INSERT INTO promo_codes (code, discount_type, discount_value, min_order_amount, start_date, end_date, max_uses, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Code, p.DiscountType, p.DiscountValue, p.MinOrderAmount, p.StartDate, p.EndDate, p.MaxUses, p.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = int(id)
	return nil
}

func (s *Store) GetAllPromoCodes() ([]models.PromoCode, error) {
	rows, err := s.DB.Query(`SELECT ` + promoCols + ` FROM promo_codes ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promos []models.PromoCode
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, err
		}
		promos = append(promos, *p)
	}
	return promos, rows.Err()
}

func (s *Store) GetPromoCodeByID(id int) (*models.PromoCode, error) {
	row := s.DB.QueryRow(`SELECT `+promoCols+` FROM promo_codes WHERE id = ?`, id)
	p, err := scanPromo(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (s *Store) GetPromoCodeByCode(code string) (*models.PromoCode, error) {
	row := s.DB.QueryRow(`SELECT `+promoCols+` FROM promo_codes WHERE code = ?`, NormalizeCode(code))
	p, err := scanPromo(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (s *Store) UpdatePromoCode(p *models.PromoCode) error {
	p.Code = NormalizeCode(p.Code)
	_, err := s.DB.Exec(`
		UPDATE promo_codes SET code = ?, discount_type = ?, discount_value = ?, min_order_amount = ?,
			start_date = ?, end_date = ?, max_uses = ?, is_active = ?
		WHERE id = ?`,
		p.Code, p.DiscountType, p.DiscountValue, p.MinOrderAmount, p.StartDate, p.EndDate,
		p.MaxUses, p.IsActive, p.ID)
	return err
}

func (s *Store) DeletePromoCode(id int) error {
	_, err := s.DB.Exec(`DELETE FROM promo_codes WHERE id = ?`, id)
	return err
}

// HasUserUsedPromo is the non-transactional check used by the validate
// preview endpoint. The order workflows re-check inside their transaction.
func (s *Store) HasUserUsedPromo(promoID, userID int) (bool, error) {
	var n int
	err := s.DB.QueryRow(`SELECT COUNT(*) FROM promo_code_uses WHERE promo_code_id = ? AND user_id = ?`,
		promoID, userID).Scan(&n)
	return n > 0, err
}

// CheckPromoEligibility applies every rule except per-user reuse: active
// flag, validity window, use cap, minimum order amount.
func CheckPromoEligibility(p *models.PromoCode, itemsSubtotal float64, now time.Time) error {
	if !p.IsActive {
		return ErrPromoInactive
	}
	if now.Before(p.StartDate) || now.After(p.EndDate) {
		return ErrPromoOutsideWindow
	}
	if p.MaxUses > 0 && p.CurrentUses >= p.MaxUses {
		return ErrPromoExhausted
	}
	if p.MinOrderAmount > 0 && itemsSubtotal < p.MinOrderAmount {
		return fmt.Errorf("%w (minimum %.2f)", ErrPromoMinAmount, p.MinOrderAmount)
	}
	return nil
}

// Transaction-scoped helpers shared by the order workflows.

func getPromoByCodeTx(tx *sql.Tx, code string) (*models.PromoCode, error) {
	row := tx.QueryRow(`SELECT `+promoCols+` FROM promo_codes WHERE code = ?`, NormalizeCode(code))
	p, err := scanPromo(row)
	if err == sql.ErrNoRows {
		return nil, ErrPromoNotFound
	}
	return p, err
}

func hasUserUsedPromoTx(tx *sql.Tx, promoID, userID int) (bool, error) {
	var n int
	err := tx.QueryRow(`SELECT COUNT(*) FROM promo_code_uses WHERE promo_code_id = ? AND user_id = ?`,
		promoID, userID).Scan(&n)
	return n > 0, err
}

func recordPromoUseTx(tx *sql.Tx, promoID, userID, orderID int, discount float64) error {
	if _, err := tx.Exec(`
		INSERT INTO promo_code_uses (promo_code_id, user_id, order_id, discount)
		VALUES (?, ?, ?, ?)`,
		promoID, userID, orderID, discount); err != nil {
		return fmt.Errorf("record promo use: %w", err)
	}
	if _, err := tx.Exec(`UPDATE promo_codes SET current_uses = current_uses + 1 WHERE id = ?`, promoID); err != nil {
		return fmt.Errorf("increment promo uses: %w", err)
	}
	return nil
}
