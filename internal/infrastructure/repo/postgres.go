package repo

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"storefront-backend/internal/domain"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(dsn string) (*PostgresRepo, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	r := &PostgresRepo{db: db}
	if err := r.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *PostgresRepo) Close() error {
	return r.db.Close()
}

func (r *PostgresRepo) init() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS menu_items (
		id TEXT PRIMARY KEY,
		name TEXT,
		description TEXT,
		price NUMERIC(12,2),
		category TEXT,
		image TEXT,
		created_at TIMESTAMPTZ DEFAULT now()
	);`)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`CREATE TABLE IF NOT EXISTS settings (
		id INT PRIMARY KEY,
		data TEXT
	);`)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`CREATE TABLE IF NOT EXISTS archived_orders (
		id TEXT PRIMARY KEY,
		date TIMESTAMPTZ,
		total NUMERIC(12,2),
		items TEXT,
		mode TEXT,
		customer_name TEXT,
		payment_id TEXT
	);`)
	return err
}

func (r *PostgresRepo) ListMenu() ([]domain.MenuItem, error) {
	rows, err := r.db.Query(`SELECT id,name,description,price,category,image FROM menu_items ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.MenuItem
	for rows.Next() {
		var it domain.MenuItem
		if err := rows.Scan((*string)(&it.ID), &it.Name, &it.Description, &it.Price, &it.Category, &it.Image); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) GetMenuItem(id domain.ItemID) (*domain.MenuItem, bool, error) {
	var it domain.MenuItem
	err := r.db.QueryRow(`SELECT id,name,description,price,category,image FROM menu_items WHERE id=$1`, string(id)).
		Scan((*string)(&it.ID), &it.Name, &it.Description, &it.Price, &it.Category, &it.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get menu item %q: %w", id, err)
	}
	return &it, true, nil
}

func (r *PostgresRepo) PutMenuItem(it *domain.MenuItem) error {
	_, err := r.db.Exec(`INSERT INTO menu_items (id,name,description,price,category,image)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET name=$2,description=$3,price=$4,category=$5,image=$6`,
		string(it.ID), it.Name, it.Description, it.Price, it.Category, it.Image)
	return err
}

func (r *PostgresRepo) DeleteMenuItem(id domain.ItemID) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM menu_items WHERE id=$1`, string(id))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepo) GetSettings() (*domain.Settings, bool, error) {
	var raw string
	err := r.db.QueryRow(`SELECT data FROM settings WHERE id=1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get settings: %w", err)
	}
	var s domain.Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, false, fmt.Errorf("decode settings: %w", err)
	}
	return &s, true, nil
}

func (r *PostgresRepo) PutSettings(s *domain.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`INSERT INTO settings (id,data) VALUES (1,$1)
		ON CONFLICT (id) DO UPDATE SET data=$1`, string(raw))
	return err
}

func (r *PostgresRepo) PutArchived(o *domain.ArchivedOrder) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`INSERT INTO archived_orders (id,date,total,items,mode,customer_name,payment_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO NOTHING`,
		o.ID, o.Date, o.Total, string(items), string(o.Mode), o.CustomerName, o.PaymentID)
	return err
}

func (r *PostgresRepo) ListArchived(page, pageSize int) ([]domain.ArchivedOrder, int, error) {
	if page < 1 {
		page = 1
	}
	rows, err := r.db.Query(`SELECT id,date,total,items,mode,customer_name,payment_id FROM archived_orders ORDER BY date DESC LIMIT $1 OFFSET $2`, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list archived orders: %w", err)
	}
	defer rows.Close()
	out := make([]domain.ArchivedOrder, 0, pageSize)
	for rows.Next() {
		var o domain.ArchivedOrder
		var items string
		if err := rows.Scan(&o.ID, &o.Date, &o.Total, &items, (*string)(&o.Mode), &o.CustomerName, &o.PaymentID); err != nil {
			return nil, 0, fmt.Errorf("scan archived order: %w", err)
		}
		if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
			return nil, 0, fmt.Errorf("decode items of order %s: %w", o.ID, err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.QueryRow(`SELECT COUNT(1) FROM archived_orders`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count archived orders: %w", err)
	}
	return out, total, nil
}
