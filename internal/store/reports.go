package store

import (
	"context"
	"fmt"

	"github.com/Ijanques/pysteis/internal/models"
)

const defaultReportLimit = 5

// TopProducts groups all line items by product, sums quantities, and returns
// the top sellers in non-increasing order. Products never sold do not appear
// (inner join).
func (s *Store) TopProducts(ctx context.Context, limit int) ([]models.ProductSales, error) {
	if limit <= 0 {
		limit = defaultReportLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.code, SUM(li.quantity) AS total_quantity
		FROM sale_items li
		JOIN products p ON li.product_id = p.id
		GROUP BY p.id, p.name, p.code
		ORDER BY total_quantity DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	var report []models.ProductSales
	for rows.Next() {
		var row models.ProductSales
		if err := rows.Scan(&row.ProductID, &row.Name, &row.Code, &row.TotalQuantity); err != nil {
			return nil, fmt.Errorf("scan product sales: %w", err)
		}
		report = append(report, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return report, nil
}

// TopCategories aggregates sold quantities per category via the
// product→category join. Sales of uncategorized products are excluded by the
// inner join, even though a null category is otherwise valid; inherited
// behavior, kept as-is.
func (s *Store) TopCategories(ctx context.Context, limit int) ([]models.CategorySales, error) {
	if limit <= 0 {
		limit = defaultReportLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, SUM(li.quantity) AS total_quantity
		FROM sale_items li
		JOIN products p ON li.product_id = p.id
		JOIN categories c ON p.category_id = c.id
		GROUP BY c.id, c.name
		ORDER BY total_quantity DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	defer rows.Close()

	var report []models.CategorySales
	for rows.Next() {
		var row models.CategorySales
		if err := rows.Scan(&row.CategoryID, &row.Name, &row.TotalQuantity); err != nil {
			return nil, fmt.Errorf("scan category sales: %w", err)
		}
		report = append(report, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return report, nil
}
