package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ivv-intern/storefront/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// NewPool connects to Postgres and verifies the connection.
func NewPool(ctx context.Context, databaseURL string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// PostgresStore implements UserRepository on a pgx pool. Orders and
// Products return the other repositories sharing the same pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var (
	_ UserRepository    = (*PostgresStore)(nil)
	_ OrderRepository   = (*PostgresOrders)(nil)
	_ ProductRepository = (*PostgresProducts)(nil)
)

func (s *PostgresStore) Orders() *PostgresOrders {
	return &PostgresOrders{store: s}
}

func (s *PostgresStore) Products() *PostgresProducts {
	return &PostgresProducts{pool: s.pool}
}

// Ping reports whether the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// execTx runs fn in a read-committed transaction, rolling back on error.
func (s *PostgresStore) execTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// UserRepository implementation

const userColumns = `id, email, password_hash, name, surname, role, created_at`

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		pgUUID(user.ID), user.Email, user.PasswordHash, user.Name, user.Surname, string(user.Role), user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, pgUUID(id))
	return scanUser(row)
}

// Delete removes the user. Orders and their lines go with it through
// ON DELETE CASCADE.
func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, pgUUID(id))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		u    models.User
		id   pgtype.UUID
		role string
	)
	err := row.Scan(&id, &u.Email, &u.PasswordHash, &u.Name, &u.Surname, &role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = uuid.UUID(id.Bytes)
	u.Role = models.Role(role)
	return &u, nil
}

// PostgresOrders implements OrderRepository.
type PostgresOrders struct {
	store *PostgresStore
}

// CreateOpenOrder inserts the order and its lines in one transaction. The
// orders_one_open_per_user partial unique index rejects a second OPEN order
// for the same user even under concurrent checkouts.
func (o *PostgresOrders) CreateOpenOrder(ctx context.Context, order *models.Order) error {
	return o.store.execTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO orders (id, user_id, order_number, payment_reference, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			pgUUID(order.ID), pgUUID(order.UserID), order.OrderNumber, order.PaymentReference,
			string(order.Status), order.CreatedAt, order.UpdatedAt,
		)
		switch {
		case err == nil:
		case isUniqueViolation(err, "orders_one_open_per_user"):
			return ErrOpenOrderExists
		case isUniqueViolation(err, "orders_order_number_key"):
			return ErrDuplicateOrderNumber
		case isForeignKeyViolation(err):
			return ErrNotFound
		default:
			return fmt.Errorf("insert order: %w", err)
		}

		rows := make([][]any, 0, len(order.Lines))
		for i, l := range order.Lines {
			rows = append(rows, []any{
				pgUUID(order.ID), i, l.ProductID, l.ProductName, toCents(l.Price), l.Size, l.ColorVariant, l.Quantity,
			})
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"order_lines"},
			[]string{"order_id", "line_no", "product_id", "product_name", "price_cents", "size", "color_variant", "quantity"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("insert order lines: %w", err)
		}
		return nil
	})
}

func (o *PostgresOrders) GetOpenOrder(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	orders, err := o.query(ctx, `WHERE o.user_id = $1 AND o.status = 'OPEN'`, pgUUID(userID))
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrNotFound
	}
	return &orders[0], nil
}

func (o *PostgresOrders) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return o.query(ctx, `WHERE o.user_id = $1`, pgUUID(userID))
}

func (o *PostgresOrders) ListAll(ctx context.Context) ([]models.Order, error) {
	return o.query(ctx, ``)
}

// query loads orders with their lines, newest first. Rows of one order are
// adjacent because of the ORDER BY.
func (o *PostgresOrders) query(ctx context.Context, where string, args ...any) ([]models.Order, error) {
	rows, err := o.store.pool.Query(ctx, `
		SELECT o.id, o.user_id, o.order_number, o.payment_reference, o.status, o.created_at, o.updated_at,
		       l.product_id, l.product_name, l.price_cents, l.size, l.color_variant, l.quantity
		FROM orders o
		JOIN order_lines l ON l.order_id = o.id
		`+where+`
		ORDER BY o.created_at DESC, o.order_number, l.line_no`, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]models.Order, 0)
	for rows.Next() {
		var (
			order      models.Order
			id, userID pgtype.UUID
			status     string
			line       models.OrderLine
			lineCents  int64
		)
		if err := rows.Scan(
			&id, &userID, &order.OrderNumber, &order.PaymentReference, &status, &order.CreatedAt, &order.UpdatedAt,
			&line.ProductID, &line.ProductName, &lineCents, &line.Size, &line.ColorVariant, &line.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		line.Price = fromCents(lineCents)

		order.ID = uuid.UUID(id.Bytes)
		if n := len(orders); n > 0 && orders[n-1].ID == order.ID {
			orders[n-1].Lines = append(orders[n-1].Lines, line)
			continue
		}
		order.UserID = uuid.UUID(userID.Bytes)
		order.Status = models.OrderStatus(status)
		order.Lines = []models.OrderLine{line}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

// PostgresProducts implements ProductRepository.
type PostgresProducts struct {
	pool *pgxpool.Pool
}

const productColumns = `id, name, description, price_cents, category, is_featured, stock, image_urls, sizes, color_variants`

func (p *PostgresProducts) GetAll(ctx context.Context) ([]models.Product, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (p *PostgresProducts) GetByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := scanProduct(p.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return product, err
}

func (p *PostgresProducts) Create(ctx context.Context, product *models.Product) error {
	variants, err := json.Marshal(nonNil(product.ColorVariants))
	if err != nil {
		return fmt.Errorf("encode color variants: %w", err)
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		product.ID, product.Name, product.Description, toCents(product.Price), product.Category,
		product.IsFeatured, product.Stock, nonNil(product.ImageURLs), nonNil(product.Sizes), variants,
	)
	if err != nil {
		if isUniqueViolation(err, "products_pkey") {
			return ErrDuplicateProduct
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var (
		p        models.Product
		cents    int64
		variants []byte
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &cents, &p.Category, &p.IsFeatured, &p.Stock,
		&p.ImageURLs, &p.Sizes, &variants)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	if err := json.Unmarshal(variants, &p.ColorVariants); err != nil {
		return nil, fmt.Errorf("decode color variants: %w", err)
	}
	p.Price = fromCents(cents)
	return &p, nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// Money is stored as integer cents.
func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation && pgErr.ConstraintName == constraint
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}
