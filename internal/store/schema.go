package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Ijanques/pysteis/internal/database"
)

// sale_items.product_id deliberately has no ON DELETE CASCADE: RemoveProduct's
// pre-check is the only sanctioned deletion path, and a direct delete of a
// referenced product must fail at the foreign key rather than destroy history.
// sale_id does cascade, so removing a sale takes its line items with it.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE CHECK (name <> '')
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		code TEXT NOT NULL UNIQUE CHECK (code <> ''),
		name TEXT NOT NULL CHECK (name <> ''),
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC(10,2) NOT NULL CHECK (price >= 0),
		category_id BIGINT REFERENCES categories(id)
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id BIGSERIAL PRIMARY KEY,
		date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'finalized')),
		total NUMERIC(10,2) NOT NULL DEFAULT 0 CHECK (total >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS sale_items (
		id BIGSERIAL PRIMARY KEY,
		sale_id BIGINT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL REFERENCES products(id),
		product_code TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 1),
		unit_price NUMERIC(10,2) NOT NULL CHECK (unit_price >= 0)
	)`,
}

type seedProduct struct {
	code        string
	name        string
	description string
	price       decimal.Decimal
	category    string
}

var seedCategories = []string{"Salgado", "Doce", "Especial", "Vegetariano"}

var seedProducts = []seedProduct{
	{"P001", "Pastel de Merge Conflict", "Queijo e presunto - o clássico que sempre funciona", decimal.NewFromFloat(8.50), "Salgado"},
	{"P002", "Pastel Null Pointer", "Frango com catupiry - cuidado com as referências nulas", decimal.NewFromFloat(9.00), "Salgado"},
	{"P003", "Pastel Infinite Loop", "Calabresa - uma explosão de sabor sem fim", decimal.NewFromFloat(8.00), "Salgado"},
	{"P004", "Pastel Stack Overflow", "Camarão - para quem gosta de camadas", decimal.NewFromFloat(12.00), "Especial"},
	{"P005", "Pastel Syntax Error", "Carne seca com abóbora - combinação inesperada", decimal.NewFromFloat(10.50), "Salgado"},
	{"P006", "Pastel 404", "Doce de leite - às vezes não encontrado", decimal.NewFromFloat(7.50), "Doce"},
}

// Initialize creates the schema if absent and inserts the default catalog.
// Safe to call on every start: table creation is IF NOT EXISTS and seed
// inserts are ON CONFLICT DO NOTHING keyed on the unique columns, so a
// populated database is left untouched. Any failure here is fatal to startup
// and must prevent further use of the store.
func (s *Store) Initialize(ctx context.Context) error {
	return database.WithTransaction(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("create schema: %w", err)
			}
		}

		for _, name := range seedCategories {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
				name)
			if err != nil {
				return fmt.Errorf("seed category %q: %w", name, err)
			}
		}

		for _, p := range seedProducts {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO products (code, name, description, price, category_id)
				 VALUES ($1, $2, $3, $4, (SELECT id FROM categories WHERE name = $5))
				 ON CONFLICT (code) DO NOTHING`,
				p.code, p.name, p.description, p.price, p.category)
			if err != nil {
				return fmt.Errorf("seed product %s: %w", p.code, err)
			}
		}

		return nil
	})
}
