package store

import (
	"database/sql"
	"sort"
)

type DashboardStats struct {
	TotalUsers      int            `json:"totalUsers"`
	TotalProducts   int            `json:"totalProducts"`
	TotalOrders     int            `json:"totalOrders"`
	Revenue         float64        `json:"revenue"`
	OrdersByStatus  map[string]int `json:"ordersByStatus"`
	TopProducts     []ProductSales `json:"topProducts"`
	PromoUsageTotal int            `json:"promoUsageTotal"`
}

type ProductSales struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Sold      int     `json:"sold"`
	Revenue   float64 `json:"revenue"`
}

func (s *Store) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{
		OrdersByStatus: make(map[string]int),
	}

	if err := s.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&stats.TotalUsers); err != nil {
		return nil, err
	}
	if err := s.DB.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&stats.TotalProducts); err != nil {
		return nil, err
	}
	if err := s.DB.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&stats.TotalOrders); err != nil {
		return nil, err
	}

	// Revenue counts orders that have actually been paid for.
	err := s.DB.QueryRow(`
		SELECT COALESCE(SUM(total_amount), 0) FROM orders
		WHERE payment_status = 'completed' OR status IN ('paid', 'shipped', 'completed')`).
		Scan(&stats.Revenue)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	rows, err := s.DB.Query(`SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.OrdersByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Line items live in a JSON column, so per-product sales are aggregated
	// in Go rather than SQL.
	orderRows, err := s.DB.Query(`SELECT items FROM orders WHERE status != 'cancelled'`)
	if err != nil {
		return nil, err
	}
	defer orderRows.Close()

	sales := make(map[int]*ProductSales)
	for orderRows.Next() {
		var raw string
		if err := orderRows.Scan(&raw); err != nil {
			return nil, err
		}
		items, err := unmarshalItems(raw)
		if err != nil {
			continue
		}
		for _, it := range items {
			ps, ok := sales[it.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: it.ProductID, Name: it.Name}
				sales[it.ProductID] = ps
			}
			ps.Sold += it.Quantity
			ps.Revenue += it.Price * float64(it.Quantity)
		}
	}
	if err := orderRows.Err(); err != nil {
		return nil, err
	}
	for _, ps := range sales {
		stats.TopProducts = append(stats.TopProducts, *ps)
	}
	sort.Slice(stats.TopProducts, func(i, j int) bool {
		return stats.TopProducts[i].Sold > stats.TopProducts[j].Sold
	})
	if len(stats.TopProducts) > 10 {
		stats.TopProducts = stats.TopProducts[:10]
	}

	if err := s.DB.QueryRow(`SELECT COUNT(*) FROM promo_code_uses`).Scan(&stats.PromoUsageTotal); err != nil {
		return nil, err
	}

	return stats, nil
}
