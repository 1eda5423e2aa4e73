package store

import (
	"database/sql"
	"strings"

	"github.com/BIHBOB/ssiteJungle/internal/models"
)

const productCols = `id, name, description, price, original_price, images, quantity, category,
	available, preorder, rare, easy_care, labels, delivery_cost, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	var images, labels string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.OriginalPrice, &images, &p.Quantity,
		&p.Category, &p.Available, &p.Preorder, &p.Rare, &p.EasyCare, &labels, &p.DeliveryCost,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Images = unmarshalStrings(images)
	p.Labels = unmarshalStrings(labels)
	return &p, nil
}

// ProductFilter narrows the catalog listing. Zero values mean "no filter".
type ProductFilter struct {
	Category string
	Search   string
	Flag     map[string]bool // available / preorder / rare / easy_care
	InStock  bool
	Sort     string // price_asc, price_desc, newest
	Limit    int
	Offset   int
}

var sortClauses = map[string]string{
	"price_asc":  "price ASC",
	"price_desc": "price DESC",
	"newest":     "created_at DESC",
}

func (s *Store) GetProducts(f ProductFilter) ([]models.Product, error) {
	var where []string
	var args []any

	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Search != "" {
		where = append(where, "(name LIKE ? OR description LIKE ?)")
		pat := "%" + f.Search + "%"
		args = append(args, pat, pat)
	}
	for _, col := range []string{"available", "preorder", "rare", "easy_care"} {
		if v, ok := f.Flag[col]; ok {
			where = append(where, col+" = ?")
			args = append(args, v)
		}
	}
	if f.InStock {
		where = append(where, "quantity > 0")
	}

	query := `SELECT ` + productCols + ` FROM products`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	order, ok := sortClauses[f.Sort]
	if !ok {
		order = "created_at DESC"
	}
	query += " ORDER BY " + order
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *Store) GetProductByID(id int) (*models.Product, error) {
	row := s.DB.QueryRow(`SELECT `+productCols+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (s *Store) CreateProduct(p *models.Product) error {
	res, err := s.DB.Exec(`
		INSERT INTO products (name, description, price, original_price, images, quantity, category,
			available, preorder, rare, easy_care, labels, delivery_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.Price, p.OriginalPrice, marshalStrings(p.Images), p.Quantity,
		p.Category, p.Available, p.Preorder, p.Rare, p.EasyCare, marshalStrings(p.Labels), p.DeliveryCost)
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

func (s *Store) UpdateProduct(p *models.Product) error {
	_, err := s.DB.Exec(`
		UPDATE products SET name = ?, description = ?, price = ?, original_price = ?, images = ?,
			quantity = ?, category = ?, available = ?, preorder = ?, rare = ?, easy_care = ?,
			labels = ?, delivery_cost = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		p.Name, p.Description, p.Price, p.OriginalPrice, marshalStrings(p.Images), p.Quantity,
		p.Category, p.Available, p.Preorder, p.Rare, p.EasyCare, marshalStrings(p.Labels),
		p.DeliveryCost, p.ID)
	return err
}

func (s *Store) DeleteProduct(id int) error {
	_, err := s.DB.Exec(`DELETE FROM products WHERE id = ?`, id)
	return err
}

func (s *Store) CountProducts() (int, error) {
	var n int
	err := s.DB.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}
