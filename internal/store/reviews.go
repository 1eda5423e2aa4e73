package store

import (
	"database/sql"

	"github.com/BIHBOB/ssiteJungle/internal/models"
)

const reviewCols = `r.id, r.user_id, u.name, r.product_id, r.rating, r.text, r.images, r.approved, r.created_at`

func scanReview(row interface{ Scan(...any) error }) (*models.Review, error) {
	var rv models.Review
	var images string
	err := row.Scan(&rv.ID, &rv.UserID, &rv.UserName, &rv.ProductID, &rv.Rating, &rv.Text, &images, &rv.Approved, &rv.CreatedAt)
	if err != nil {
		return nil, err
	}
	rv.Images = unmarshalStrings(images)
	return &rv, nil
}

func (s *Store) CreateReview(rv *models.Review) error {
	res, err := s.DB.Exec(`
		INSERT INTO reviews (user_id, product_id, rating, text, images)
		VALUES (?, ?, ?, ?, ?)`,
		rv.UserID, rv.ProductID, rv.Rating, rv.Text, marshalStrings(rv.Images))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = int(id)
	return nil
}

// GetReviews lists reviews for a product. Unless includeUnapproved is set
// (admin moderation view), only approved reviews are returned.
func (s *Store) GetReviews(productID int, includeUnapproved bool) ([]models.Review, error) {
	query := `SELECT ` + reviewCols + ` FROM reviews r JOIN users u ON r.user_id = u.id`
	var where []string
	var args []any
	if productID > 0 {
		where = append(where, "r.product_id = ?")
		args = append(args, productID)
	}
	if !includeUnapproved {
		where = append(where, "r.approved = 1")
	}
	for i, w := range where {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}
	query += " ORDER BY r.created_at DESC"

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *rv)
	}
	return reviews, rows.Err()
}

func (s *Store) GetReviewByID(id int) (*models.Review, error) {
	row := s.DB.QueryRow(`SELECT `+reviewCols+` FROM reviews r JOIN users u ON r.user_id = u.id WHERE r.id = ?`, id)
	rv, err := scanReview(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rv, err
}

func (s *Store) ApproveReview(id int) error {
	_, err := s.DB.Exec(`UPDATE reviews SET approved = 1 WHERE id = ?`, id)
	return err
}

func (s *Store) DeleteReview(id int) error {
	_, err := s.DB.Exec(`DELETE FROM reviews WHERE id = ?`, id)
	return err
}
