package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ inventory.QuantityStore      = (*ProductRepo)(nil)
)

// maxQuantity límite de la columna quantity (INTEGER).
const maxQuantity = math.MaxInt32

const productColumns = `id, name, description, category, price, quantity, minimum_stock, version, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto con su cantidad y versión iniciales.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if product.Quantity > maxQuantity || product.MinimumStock > maxQuantity {
		return fmt.Errorf("%w: cantidad o mínimo fuera de rango", domain.ErrInvalidInput)
	}
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.Category, product.Price,
		product.Quantity, product.MinimumStock, product.Version, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isOutOfRange(err) {
			return fmt.Errorf("%w: cantidad o mínimo fuera de rango", domain.ErrInvalidInput)
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID. (nil, nil) si no existe o el id no es un UUID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update actualiza los atributos descriptivos. Quantity y version se manejan vía movimientos.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, description = $3, category = $4, price = $5, minimum_stock = $6, updated_at = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.Category, product.Price,
		product.MinimumStock, product.UpdatedAt,
	)
	if err != nil {
		if isInvalidText(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List todos los productos en orden de alta.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at, id`
	return r.list(ctx, query)
}

// ListPage lista productos con paginación, en orden de alta.
func (r *ProductRepo) ListPage(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at, id LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

// Delete elimina un producto por ID. La FK de stock_movements (RESTRICT) lo impide si tiene
// historia; version = 0 cubre además un movimiento confirmado que aún no se anexó.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1 AND version = 0`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrHasMovements
		}
		if isInvalidText(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		var version int64
		err := r.q.QueryRow(ctx, `SELECT version FROM products WHERE id = $1`, id).Scan(&version)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		return fmt.Errorf("%w: versión %d", domain.ErrHasMovements, version)
	}
	return nil
}

// CompareAndSetQuantity confirma la cantidad solo si la versión no cambió desde la lectura.
func (r *ProductRepo) CompareAndSetQuantity(ctx context.Context, id string, expectedVersion int64, quantity int) (bool, error) {
	if quantity > maxQuantity {
		return false, fmt.Errorf("%w: %d excede el máximo admitido", domain.ErrInvalidQuantity, quantity)
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET quantity = $3, version = version + 1, updated_at = now()
		 WHERE id = $1 AND version = $2`,
		id, expectedVersion, quantity,
	)
	if err != nil {
		if qerr := quantityError(err, quantity); qerr != nil {
			return false, qerr
		}
		return false, fmt.Errorf("compare and set quantity: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *ProductRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &p.Price,
		&p.Quantity, &p.MinimumStock, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
