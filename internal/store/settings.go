package store

import (
	"database/sql"

	"github.com/BIHBOB/ssiteJungle/internal/models"
)

// Payment details are a single row (id 1) edited from the admin panel and
// shown on the checkout page.

func (s *Store) GetPaymentDetails() (*models.PaymentDetails, error) {
	var pd models.PaymentDetails
	err := s.DB.QueryRow(`
		SELECT card_number, card_holder, bank_name, phone_number, instructions
		FROM payment_details WHERE id = 1`).
		Scan(&pd.CardNumber, &pd.CardHolder, &pd.BankName, &pd.PhoneNumber, &pd.Instructions)
	if err == sql.ErrNoRows {
		return &models.PaymentDetails{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &pd, nil
}

func (s *Store) SavePaymentDetails(pd *models.PaymentDetails) error {
	_, err := s.DB.Exec(`
		INSERT INTO payment_details (id, card_number, card_holder, bank_name, phone_number, instructions)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			card_number = excluded.card_number,
			card_holder = excluded.card_holder,
			bank_name = excluded.bank_name,
			phone_number = excluded.phone_number,
			instructions = excluded.instructions`,
		pd.CardNumber, pd.CardHolder, pd.BankName, pd.PhoneNumber, pd.Instructions)
	return err
}

func (s *Store) GetSettings() ([]models.Setting, error) {
	rows, err := s.DB.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []models.Setting
	for rows.Next() {
		var st models.Setting
		if err := rows.Scan(&st.Key, &st.Value); err != nil {
			return nil, err
		}
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

func (s *Store) SaveSetting(key, value string) error {
	_, err := s.DB.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}

func (s *Store) CreateNotification(n *models.Notification) error {
	res, err := s.DB.Exec(`
		INSERT INTO notifications (user_id, order_id, message) VALUES (?, ?, ?)`,
		n.UserID, n.OrderID, n.Message)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = int(id)
	return nil
}

func (s *Store) GetNotifications(userID int) ([]models.Notification, error) {
	rows, err := s.DB.Query(`
		SELECT id, user_id, order_id, message, read, created_at
		FROM notifications WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ns []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.OrderID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		ns = append(ns, n)
	}
	return ns, rows.Err()
}

func (s *Store) MarkNotificationRead(id, userID int) error {
	_, err := s.DB.Exec(`UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	return err
}
