package store

import (
	"database/sql"
	"fmt"

	"github.com/BIHBOB/ssiteJungle/internal/models"
)

const userCols = `id, email, password_hash, name, phone, address, is_admin, balance, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Phone, &u.Address, &u.IsAdmin, &u.Balance, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(u *models.User) error {
	res, err := s.DB.Exec(`
		INSERT INTO users (email, password_hash, name, phone, address, is_admin, balance)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Email, u.PasswordHash, u.Name, u.Phone, u.Address, u.IsAdmin, u.Balance)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = int(id)
	return nil
}

// GetUserByEmail is case-insensitive; nil, nil when no such user.
func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	row := s.DB.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ? COLLATE NOCASE`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (s *Store) GetUserByID(id int) (*models.User, error) {
	row := s.DB.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (s *Store) GetAllUsers() ([]models.User, error) {
	rows, err := s.DB.Query(`SELECT ` + userCols + ` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUser(u *models.User) error {
	_, err := s.DB.Exec(`
		UPDATE users SET email = ?, name = ?, phone = ?, address = ?, is_admin = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		u.Email, u.Name, u.Phone, u.Address, u.IsAdmin, u.ID)
	return err
}

func (s *Store) UpdateUserPassword(id int, passwordHash string) error {
	_, err := s.DB.Exec(`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, passwordHash, id)
	return err
}

// AdjustUserBalance adds delta (may be negative) and refuses to go below
// zero. Returns the new balance.
func (s *Store) AdjustUserBalance(id int, delta float64) (float64, error) {
	tx, err := s.DB.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var balance float64
	if err := tx.QueryRow(`SELECT balance FROM users WHERE id = ?`, id).Scan(&balance); err != nil {
		return 0, err
	}
	newBalance := balance + delta
	if newBalance < 0 {
		return balance, fmt.Errorf("insufficient balance: have %.2f, need %.2f", balance, -delta)
	}
	if _, err := tx.Exec(`UPDATE users SET balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, newBalance, id); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

func (s *Store) CountUsers() (int, error) {
	var n int
	err := s.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
