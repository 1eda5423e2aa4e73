package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/BIHBOB/ssiteJungle/internal/models"
	"github.com/BIHBOB/ssiteJungle/internal/pricing"
)

const orderCols = `id, user_id, items, total_amount, delivery_amount, full_name, address, phone,
	delivery_type, payment_method, payment_status, status, promo_code, discount, payment_proof_url,
	tracking_number, delivery_date, admin_comment, quantities_reduced, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	var o models.Order
	var items string
	err := row.Scan(&o.ID, &o.UserID, &items, &o.TotalAmount, &o.DeliveryAmount, &o.FullName,
		&o.Address, &o.Phone, &o.DeliveryType, &o.PaymentMethod, &o.PaymentStatus, &o.Status,
		&o.PromoCode, &o.Discount, &o.PaymentProofURL, &o.TrackingNumber, &o.DeliveryDate,
		&o.AdminComment, &o.QuantitiesReduced, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Items, err = unmarshalItems(items)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CartLine is one requested cart entry; name and price are resolved from the
// product row inside the order transaction.
type CartLine struct {
	ProductID int `json:"id"`
	Quantity  int `json:"quantity"`
}

type CreateOrderParams struct {
	UserID          int
	Cart            []CartLine
	DeliveryAmount  float64
	FullName        string
	Address         string
	Phone           string
	DeliveryType    string
	PaymentMethod   string
	PromoCode       string
	PaymentProofURL string
}

// CreateOrder runs the whole checkout in one transaction: stock checks,
// line-item snapshotting, promo validation (including single use per user),
// totals, persistence, and — on the balance / pre-proof paths — the
// immediate inventory decrement. Any failure rolls back everything.
func (s *Store) CreateOrder(ctx context.Context, p CreateOrderParams) (*models.Order, error) {
	if len(p.Cart) == 0 {
		return nil, ErrEmptyCart
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// 1. Resolve and validate every cart line. No partial orders.
	items := make([]models.OrderItem, 0, len(p.Cart))
	for _, line := range p.Cart {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %d has non-positive quantity", ErrProductNotFound, line.ProductID)
		}
		var name string
		var price float64
		var available int
		err := tx.QueryRowContext(ctx, `SELECT name, price, quantity FROM products WHERE id = ?`, line.ProductID).
			Scan(&name, &price, &available)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, line.ProductID)
		}
		if err != nil {
			return nil, err
		}
		if line.Quantity > available {
			return nil, fmt.Errorf("%w: %s (requested %d, available %d)", ErrInsufficientStock, name, line.Quantity, available)
		}
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Name:      name,
			Price:     price,
			Quantity:  line.Quantity,
		})
	}

	subtotal := pricing.ItemsSubtotal(items)

	// 2. Promo code, if any. Eligibility and per-user reuse are both checked
	// here so the embedded path and the standalone apply-promo endpoint agree.
	var promo *models.PromoCode
	discount := decimal.Zero
	if p.PromoCode != "" {
		promo, err = getPromoByCodeTx(tx, p.PromoCode)
		if err != nil {
			return nil, err
		}
		if err := CheckPromoEligibility(promo, subtotal.InexactFloat64(), nowUTC()); err != nil {
			return nil, err
		}
		used, err := hasUserUsedPromoTx(tx, promo.ID, p.UserID)
		if err != nil {
			return nil, err
		}
		if used {
			return nil, ErrPromoAlreadyUsed
		}
		discount = pricing.Discount(promo, subtotal)
	}

	delivery := decimal.NewFromFloat(p.DeliveryAmount)
	total := pricing.Total(subtotal, discount, delivery)

	// 3. Payment-method policy.
	paymentStatus := models.PaymentPending
	reduceNow := false
	switch {
	case p.PaymentMethod == "balance":
		var balance float64
		if err := tx.QueryRowContext(ctx, `SELECT balance FROM users WHERE id = ?`, p.UserID).Scan(&balance); err != nil {
			return nil, fmt.Errorf("load user balance: %w", err)
		}
		if decimal.NewFromFloat(balance).LessThan(total) {
			return nil, ErrInsufficientBalance
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET balance = balance - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			total.InexactFloat64(), p.UserID); err != nil {
			return nil, fmt.Errorf("debit balance: %w", err)
		}
		paymentStatus = models.PaymentCompleted
		reduceNow = true
	case p.PaymentProofURL != "":
		paymentStatus = models.PaymentVerification
		reduceNow = true
	}

	itemsJSON, err := marshalItems(items)
	if err != nil {
		return nil, err
	}

	promoCode := ""
	if promo != nil {
		promoCode = promo.Code
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO orders (user_id, items, total_amount, delivery_amount, full_name, address, phone,
			delivery_type, payment_method, payment_status, status, promo_code, discount,
			payment_proof_url, quantities_reduced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, itemsJSON, total.InexactFloat64(), p.DeliveryAmount, p.FullName, p.Address, p.Phone,
		p.DeliveryType, p.PaymentMethod, paymentStatus, models.StatusPending, promoCode,
		discount.InexactFloat64(), p.PaymentProofURL, reduceNow)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	orderID64, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	orderID := int(orderID64)

	if reduceNow {
		if err := reduceQuantitiesTx(ctx, tx, items); err != nil {
			return nil, err
		}
	}

	if promo != nil {
		if err := recordPromoUseTx(tx, promo.ID, p.UserID, orderID, discount.InexactFloat64()); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetOrderByID(orderID)
}

// reduceQuantitiesTx clamps stock at zero and skips non-positive quantities,
// which can appear on historical rows with junk item data.
func reduceQuantitiesTx(ctx context.Context, tx *sql.Tx, items []models.OrderItem) error {
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET quantity = MAX(quantity - ?, 0), updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			it.Quantity, it.ProductID); err != nil {
			return fmt.Errorf("reduce quantity for product %d: %w", it.ProductID, err)
		}
	}
	return nil
}

func getOrderTx(ctx context.Context, tx *sql.Tx, id int) (*models.Order, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+orderCols+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// ReduceOrderQuantities decrements stock for an order exactly once. If the
// flag is already set the call is a successful no-op.
func (s *Store) ReduceOrderQuantities(ctx context.Context, orderID int) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	o, err := getOrderTx(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if o.QuantitiesReduced {
		return nil
	}
	if err := reduceQuantitiesTx(ctx, tx, o.Items); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET quantities_reduced = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, orderID); err != nil {
		return err
	}
	return tx.Commit()
}

// AdminOrderUpdate carries the admin-editable order fields. Nil pointers
// leave the column untouched.
type AdminOrderUpdate struct {
	Status         *models.OrderStatus
	PaymentStatus  *models.PaymentStatus
	AdminComment   *string
	TrackingNumber *string
	DeliveryDate   *string
}

// UpdateOrderAdmin applies an admin edit. A status change is validated
// against the transition table, and entering paid/processing from any other
// status triggers the one-time inventory decrement.
func (s *Store) UpdateOrderAdmin(ctx context.Context, orderID int, upd AdminOrderUpdate) (*models.Order, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	o, err := getOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if upd.Status != nil && *upd.Status != o.Status {
		from, to := o.Status, *upd.Status
		if !models.CanTransition(from, to) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}
		if models.TriggersReduction(from, to) && !o.QuantitiesReduced {
			if err := reduceQuantitiesTx(ctx, tx, o.Items); err != nil {
				return nil, err
			}
			o.QuantitiesReduced = true
		}
		o.Status = to
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO notifications (user_id, order_id, message)
			VALUES (?, ?, ?)`,
			o.UserID, o.ID, fmt.Sprintf("Order #%d is now %s", o.ID, to)); err != nil {
			return nil, fmt.Errorf("notify status change: %w", err)
		}
	}
	if upd.PaymentStatus != nil {
		o.PaymentStatus = *upd.PaymentStatus
	}
	if upd.AdminComment != nil {
		o.AdminComment = *upd.AdminComment
	}
	if upd.TrackingNumber != nil {
		o.TrackingNumber = *upd.TrackingNumber
	}
	if upd.DeliveryDate != nil {
		o.DeliveryDate = *upd.DeliveryDate
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = ?, payment_status = ?, admin_comment = ?, tracking_number = ?,
			delivery_date = ?, quantities_reduced = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		o.Status, o.PaymentStatus, o.AdminComment, o.TrackingNumber, o.DeliveryDate,
		o.QuantitiesReduced, o.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetOrderByID(orderID)
}

// DeleteOrder reverses the order's side effects before removing the row:
// restores stock if it was decremented, deletes the promo usage record and
// decrements the code's use counter, and refunds balance payments.
func (s *Store) DeleteOrder(ctx context.Context, orderID int) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	o, err := getOrderTx(ctx, tx, orderID)
	if err != nil {
		return err
	}

	if o.QuantitiesReduced {
		for _, it := range o.Items {
			if it.Quantity <= 0 {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE products SET quantity = quantity + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
				it.Quantity, it.ProductID); err != nil {
				return fmt.Errorf("restore quantity for product %d: %w", it.ProductID, err)
			}
		}
	}

	if o.PromoCode != "" {
		res, err := tx.ExecContext(ctx, `DELETE FROM promo_code_uses WHERE order_id = ?`, o.ID)
		if err != nil {
			return fmt.Errorf("delete promo use: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			if _, err := tx.ExecContext(ctx, `
				UPDATE promo_codes SET current_uses = MAX(current_uses - 1, 0)
				WHERE code = ?`, o.PromoCode); err != nil {
				return fmt.Errorf("decrement promo uses: %w", err)
			}
		}
	}

	if o.PaymentMethod == "balance" && o.PaymentStatus == models.PaymentCompleted {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET balance = balance + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			o.TotalAmount, o.UserID); err != nil {
			return fmt.Errorf("refund balance: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, o.ID); err != nil {
		return err
	}
	return tx.Commit()
}

// ApplyPromoToOrder attaches a promo code to an existing order and
// recomputes its discount and total. Same rules as at checkout, including
// single use per user.
func (s *Store) ApplyPromoToOrder(ctx context.Context, orderID int, code string) (*models.Order, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	o, err := getOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if o.PromoCode != "" {
		return nil, ErrPromoAlreadyApplied
	}

	promo, err := getPromoByCodeTx(tx, code)
	if err != nil {
		return nil, err
	}
	subtotal := pricing.ItemsSubtotal(o.Items)
	if err := CheckPromoEligibility(promo, subtotal.InexactFloat64(), nowUTC()); err != nil {
		return nil, err
	}
	used, err := hasUserUsedPromoTx(tx, promo.ID, o.UserID)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, ErrPromoAlreadyUsed
	}

	discount := pricing.Discount(promo, subtotal)
	total := pricing.Total(subtotal, discount, decimal.NewFromFloat(o.DeliveryAmount))

	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET promo_code = ?, discount = ?, total_amount = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		promo.Code, discount.InexactFloat64(), total.InexactFloat64(), o.ID); err != nil {
		return nil, err
	}
	if err := recordPromoUseTx(tx, promo.ID, o.UserID, o.ID, discount.InexactFloat64()); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetOrderByID(orderID)
}

func (s *Store) GetOrderByID(id int) (*models.Order, error) {
	row := s.DB.QueryRow(`SELECT `+orderCols+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return o, err
}

func (s *Store) GetAllOrders(limit, offset int) ([]models.Order, error) {
	rows, err := s.DB.Query(`SELECT `+orderCols+` FROM orders ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (s *Store) GetOrdersByUser(userID int) ([]models.Order, error) {
	rows, err := s.DB.Query(`SELECT `+orderCols+` FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows *sql.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (s *Store) CountOrders() (int, error) {
	var n int
	err := s.DB.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&n)
	return n, err
}

// AttachPaymentProof records an uploaded transfer proof; verification (and
// the inventory decrement) happens when an admin moves the order to paid.
func (s *Store) AttachPaymentProof(orderID int, url string) error {
	res, err := s.DB.Exec(`
		UPDATE orders SET payment_proof_url = ?, payment_status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		url, models.PaymentVerification, orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
