package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Ijanques/pysteis/internal/database"
	"github.com/Ijanques/pysteis/internal/models"
)

type ProductInput struct {
	Code        string
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  *int64
}

const productColumns = `p.id, p.code, p.name, p.description, p.price, p.category_id, c.name`

func scanProduct(scan func(...any) error) (*models.Product, error) {
	p := &models.Product{}
	var categoryID sql.NullInt64
	var categoryName sql.NullString

	err := scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.Price, &categoryID, &categoryName)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		p.CategoryID = &categoryID.Int64
	}
	p.CategoryName = categoryName.String

	return p, nil
}

// ListProducts returns all products joined with their category name, ordered
// by product name. A non-nil categoryID restricts the list to that category.
func (s *Store) ListProducts(ctx context.Context, categoryID *int64) ([]models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id`
	var args []any

	if categoryID != nil {
		query += ` WHERE p.category_id = $1`
		args = append(args, *categoryID)
	}

	query += ` ORDER BY p.name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

// GetProduct returns (nil, nil) when no product has the given id.
func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.id = $1`, id)

	p, err := scanProduct(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return p, nil
}

func (s *Store) AddProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (code, name, description, price, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		in.Code, in.Name, in.Description, in.Price, in.CategoryID).Scan(&id)
	if err != nil {
		if cerr := database.ClassifyConstraint(err); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("add product: %w", err)
	}

	return s.GetProduct(ctx, id)
}

// UpdateProduct reports the number of rows touched; 0 means the id does not
// exist, which is not an error.
func (s *Store) UpdateProduct(ctx context.Context, id int64, in ProductInput) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET code = $1, name = $2, description = $3, price = $4, category_id = $5
		WHERE id = $6`,
		in.Code, in.Name, in.Description, in.Price, in.CategoryID, id)
	if err != nil {
		if cerr := database.ClassifyConstraint(err); cerr != nil {
			return 0, cerr
		}
		return 0, fmt.Errorf("update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// RemoveProduct deletes a product unless any sale line item references it, in
// which case it fails with ErrProductHasSales without attempting the delete.
// The check and the delete run in one transaction so the classification stays
// accurate even if a sale is recorded in between.
func (s *Store) RemoveProduct(ctx context.Context, id int64) error {
	err := database.WithTransaction(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var referenced bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM sale_items WHERE product_id = $1)`,
			id).Scan(&referenced)
		if err != nil {
			return fmt.Errorf("check product sales: %w", err)
		}
		if referenced {
			return database.ErrProductHasSales
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
			return fmt.Errorf("remove product: %w", err)
		}

		return nil
	})
	if err != nil {
		if cerr := database.ClassifyConstraint(err); cerr != nil {
			return cerr
		}
		return err
	}

	return nil
}
