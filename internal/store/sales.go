package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Ijanques/pysteis/internal/database"
	"github.com/Ijanques/pysteis/internal/models"
)

type LineItemInput struct {
	ProductID   int64
	ProductCode string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// CreateSale opens a new sale dated now with a zero total.
func (s *Store) CreateSale(ctx context.Context) (*models.Sale, error) {
	sale := &models.Sale{}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sales (date, status, total)
		VALUES (NOW(), $1, 0)
		RETURNING id, date, status, total`,
		models.SaleStatusOpen).Scan(&sale.ID, &sale.Date, &sale.Status, &sale.Total)
	if err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}

	return sale, nil
}

// AddLineItem appends a line to an open sale. ProductCode and UnitPrice are
// the caller's snapshot of the product at this moment and are stored as
// given. Fails with ErrSaleNotFound for an unknown sale and ErrSaleFinalized
// for one already finalized.
func (s *Store) AddLineItem(ctx context.Context, saleID int64, in LineItemInput) (*models.SaleLineItem, error) {
	item := &models.SaleLineItem{}

	err := database.WithTransaction(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		status, err := lockSaleStatus(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if status == models.SaleStatusFinalized {
			return database.ErrSaleFinalized
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO sale_items (sale_id, product_id, product_code, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, sale_id, product_id, product_code, quantity, unit_price`,
			saleID, in.ProductID, in.ProductCode, in.Quantity, in.UnitPrice).Scan(
			&item.ID,
			&item.SaleID,
			&item.ProductID,
			&item.ProductCode,
			&item.Quantity,
			&item.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("add line item: %w", err)
		}

		return nil
	})
	if err != nil {
		if cerr := database.ClassifyConstraint(err); cerr != nil {
			return nil, cerr
		}
		return nil, err
	}

	return item, nil
}

// ListLineItems returns the sale's lines enriched with each product's current
// name. product_code and unit_price come from the snapshot columns, the name
// is looked up live.
func (s *Store) ListLineItems(ctx context.Context, saleID int64) ([]models.SaleLineItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT li.id, li.sale_id, li.product_id, li.product_code, li.quantity, li.unit_price, p.name
		FROM sale_items li
		JOIN products p ON li.product_id = p.id
		WHERE li.sale_id = $1
		ORDER BY li.id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()

	var items []models.SaleLineItem
	for rows.Next() {
		var item models.SaleLineItem
		err := rows.Scan(
			&item.ID,
			&item.SaleID,
			&item.ProductID,
			&item.ProductCode,
			&item.Quantity,
			&item.UnitPrice,
			&item.ProductName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// FinalizeSale recomputes the total from the stored line items (sum of
// quantity × unit_price), persists it, and flips the sale to finalized. The
// sum and the write share a transaction, so the persisted total always
// matches the lines it was computed from. Finalizing twice fails with
// ErrSaleFinalized.
func (s *Store) FinalizeSale(ctx context.Context, saleID int64) (*models.Sale, error) {
	sale := &models.Sale{}

	err := database.WithTransaction(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		status, err := lockSaleStatus(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if status == models.SaleStatusFinalized {
			return database.ErrSaleFinalized
		}

		var total decimal.Decimal
		err = tx.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(quantity * unit_price), 0)
			FROM sale_items
			WHERE sale_id = $1`, saleID).Scan(&total)
		if err != nil {
			return fmt.Errorf("sum line items: %w", err)
		}

		err = tx.QueryRowContext(ctx, `
			UPDATE sales
			SET total = $1, status = $2
			WHERE id = $3
			RETURNING id, date, status, total`,
			total, models.SaleStatusFinalized, saleID).Scan(
			&sale.ID, &sale.Date, &sale.Status, &sale.Total)
		if err != nil {
			return fmt.Errorf("finalize sale: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return sale, nil
}

func (s *Store) ListSales(ctx context.Context) ([]models.Sale, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, status, total FROM sales ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var sales []models.Sale
	for rows.Next() {
		var sale models.Sale
		if err := rows.Scan(&sale.ID, &sale.Date, &sale.Status, &sale.Total); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, sale)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return sales, nil
}

// GetSale returns (nil, nil) when no sale has the given id.
func (s *Store) GetSale(ctx context.Context, id int64) (*models.Sale, error) {
	sale := &models.Sale{}

	err := s.db.QueryRowContext(ctx,
		`SELECT id, date, status, total FROM sales WHERE id = $1`, id).Scan(
		&sale.ID, &sale.Date, &sale.Status, &sale.Total)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	return sale, nil
}

// RemoveSale deletes a sale; its line items go with it via the cascade.
func (s *Store) RemoveSale(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id); err != nil {
		return fmt.Errorf("remove sale: %w", err)
	}

	return nil
}

func lockSaleStatus(ctx context.Context, tx *sql.Tx, saleID int64) (string, error) {
	var status string
	err := tx.QueryRowContext(ctx,
		`SELECT status FROM sales WHERE id = $1 FOR UPDATE`, saleID).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", database.ErrSaleNotFound
		}
		return "", fmt.Errorf("lock sale: %w", err)
	}

	return status, nil
}
