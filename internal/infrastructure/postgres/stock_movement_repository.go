package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `m.id, m.product_id, p.name, m.type, m.quantity, m.previous_quantity, m.new_quantity,
	m.product_version, m.created_at, m.username, m.reason`

// StockMovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx).
// La tabla solo admite INSERT; un trigger rechaza UPDATE y DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create anexa un movimiento al libro.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, type, quantity, previous_quantity, new_quantity, product_version, created_at, username, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, string(m.Type), m.Quantity, m.PreviousQuantity, m.NewQuantity,
		m.ProductVersion, m.Timestamp, m.Username, m.Reason,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, m.ProductID)
		}
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID; (nil, nil) si no existe.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements m JOIN products p ON p.id = m.product_id
		WHERE m.id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// Search movimientos según el filtro. Con ProductID ordena por versión del producto
// (orden de confirmación); sin él, por fecha y luego id.
func (r *StockMovementRepo) Search(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	where, args := movementWhere(f)
	query := `SELECT ` + movementColumns + `
		FROM stock_movements m JOIN products p ON p.id = m.product_id` + where

	dir := "DESC"
	if f.OldestFirst {
		dir = "ASC"
	}
	if f.ProductID != "" {
		query += fmt.Sprintf(" ORDER BY m.product_version %s", dir)
	} else {
		query += fmt.Sprintf(" ORDER BY m.created_at %s, m.id %s", dir, dir)
	}
	pos := len(args) + 1
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, f.Limit)
		pos++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", pos)
		args = append(args, f.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		if isInvalidText(err) {
			return []*entity.StockMovement{}, nil
		}
		return nil, fmt.Errorf("search stock movements: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.StockMovement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Count total de movimientos que cumplen el filtro (ignora Limit/Offset).
func (r *StockMovementRepo) Count(ctx context.Context, f repository.MovementFilter) (int, error) {
	where, args := movementWhere(f)
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements m`+where, args...).Scan(&n)
	if err != nil {
		if isInvalidText(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count stock movements: %w", err)
	}
	return n, nil
}

// TotalsByProduct cantidad de movimientos y suma de magnitudes por tipo.
func (r *StockMovementRepo) TotalsByProduct(ctx context.Context, productID string) ([]repository.MovementTotal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT type, COUNT(*), COALESCE(SUM(quantity), 0)
		FROM stock_movements WHERE product_id = $1
		GROUP BY type ORDER BY type`, productID)
	if err != nil {
		if isInvalidText(err) {
			return []repository.MovementTotal{}, nil
		}
		return nil, fmt.Errorf("totals by product: %w", err)
	}
	defer rows.Close()
	totals := make([]repository.MovementTotal, 0)
	for rows.Next() {
		var t repository.MovementTotal
		var typ string
		if err := rows.Scan(&typ, &t.Count, &t.Quantity); err != nil {
			return nil, fmt.Errorf("scan totals: %w", err)
		}
		t.Type = entity.MovementType(typ)
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func movementWhere(f repository.MovementFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != "" {
		add("m.product_id = $%d", f.ProductID)
	}
	if f.Type != "" {
		add("m.type = $%d", string(f.Type))
	}
	if u := strings.TrimSpace(f.Username); u != "" {
		add("m.username ILIKE '%%' || $%d || '%%'", escapeLike(u))
	}
	if f.From != nil {
		add("m.created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("m.created_at <= $%d", *f.To)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var typ string
	err := row.Scan(
		&m.ID, &m.ProductID, &m.ProductName, &typ, &m.Quantity, &m.PreviousQuantity, &m.NewQuantity,
		&m.ProductVersion, &m.Timestamp, &m.Username, &m.Reason,
	)
	if err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(typ)
	return &m, nil
}
