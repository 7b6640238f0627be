package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Ijanques/pysteis/internal/database"
	"github.com/Ijanques/pysteis/internal/models"
)

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return categories, nil
}

// GetCategory returns (nil, nil) when no category has the given id.
func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	c := &models.Category{}

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return c, nil
}

func (s *Store) AddCategory(ctx context.Context, name string) (*models.Category, error) {
	c := &models.Category{}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, name`,
		name).Scan(&c.ID, &c.Name)
	if err != nil {
		if cerr := database.ClassifyConstraint(err); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("add category: %w", err)
	}

	return c, nil
}

// UpdateCategory reports the number of rows touched; 0 means the id does not
// exist, which is not an error.
func (s *Store) UpdateCategory(ctx context.Context, id int64, name string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		if cerr := database.ClassifyConstraint(err); cerr != nil {
			return 0, cerr
		}
		return 0, fmt.Errorf("update category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// RemoveCategory deletes unconditionally; the products.category_id foreign
// key blocks the delete (as a ConstraintError) while any product still
// references the category.
func (s *Store) RemoveCategory(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if cerr := database.ClassifyConstraint(err); cerr != nil {
			return cerr
		}
		return fmt.Errorf("remove category: %w", err)
	}

	return nil
}
