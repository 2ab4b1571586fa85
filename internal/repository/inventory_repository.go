package repository // repository for class-pool inventory persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tripstack/travel-reservation/internal/model"
)

// InventoryRepo encapsulates database access to the per-class seat
// pools (flight_classes and train_classes).  Both tables share the
// same shape, so a single repository serves flights and trains; the
// item type selects the table.
//
// The seats_available counter is only ever read or written through
// the *Tx methods below while the pool row is locked, so a
// reservation's check-and-decrement sequence is serialized per pool
// by the database.
type InventoryRepo struct {
	db *sql.DB
}

// NewInventoryRepo constructs an InventoryRepo given a DB handle.
func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// DB exposes the underlying handle so that callers can open the
// transaction the *Tx methods run inside.
func (r *InventoryRepo) DB() *sql.DB { return r.db }

// poolTable maps an item type to its pool table and owning-id column.
// The returned strings are compile-time constants, never caller input.
func poolTable(itemType model.ItemType) (table, idCol string, err error) {
	switch itemType {
	case model.ItemTypeFlight:
		return "flight_classes", "flight_id", nil
	case model.ItemTypeTrain:
		return "train_classes", "route_id", nil
	default:
		return "", "", fmt.Errorf("unknown item type %q", itemType)
	}
}

// LockPoolTx reads one class pool under an exclusive row lock
// (SELECT ... FOR UPDATE).  The lock is held until the surrounding
// transaction commits or rolls back, blocking concurrent reservations
// against the same pool.  Returns sql.ErrNoRows when the item/class
// combination does not exist.
func (r *InventoryRepo) LockPoolTx(ctx context.Context, tx *sql.Tx, itemType model.ItemType, itemID uint64, classCode string) (model.ClassPool, error) {
	table, idCol, err := poolTable(itemType)
	if err != nil {
		return model.ClassPool{}, err
	}
	q := fmt.Sprintf(`SELECT %s, class_code, fare_cents, seats_available FROM %s WHERE %s = ? AND class_code = ? FOR UPDATE`,
		idCol, table, idCol)
	var p model.ClassPool
	err = tx.QueryRowContext(ctx, q, itemID, classCode).
		Scan(&p.ItemID, &p.ClassCode, &p.FareCents, &p.SeatsAvailable)
	if err != nil {
		return model.ClassPool{}, err
	}
	return p, nil
}

// DecrementTx subtracts qty seats from a pool.  Callers must hold the
// row lock via LockPoolTx in the same transaction and must already
// have verified that seats_available >= qty; the guard in the WHERE
// clause is a final defence so the unsigned counter can never wrap.
func (r *InventoryRepo) DecrementTx(ctx context.Context, tx *sql.Tx, itemType model.ItemType, itemID uint64, classCode string, qty uint32) error {
	table, idCol, err := poolTable(itemType)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`UPDATE %s SET seats_available = seats_available - ? WHERE %s = ? AND class_code = ? AND seats_available >= ?`,
		table, idCol)
	res, err := tx.ExecContext(ctx, q, qty, itemID, classCode, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("decrement affected %d rows, want 1", n)
	}
	return nil
}

// RestockTx adds qty seats back to a pool, locking the row first so a
// restock never races a concurrent reservation.  Returns sql.ErrNoRows
// when the pool does not exist.
func (r *InventoryRepo) RestockTx(ctx context.Context, tx *sql.Tx, itemType model.ItemType, itemID uint64, classCode string, qty uint32) (model.ClassPool, error) {
	p, err := r.LockPoolTx(ctx, tx, itemType, itemID, classCode)
	if err != nil {
		return model.ClassPool{}, err
	}
	table, idCol, err := poolTable(itemType)
	if err != nil {
		return model.ClassPool{}, err
	}
	q := fmt.Sprintf(`UPDATE %s SET seats_available = seats_available + ? WHERE %s = ? AND class_code = ?`, table, idCol)
	if _, err := tx.ExecContext(ctx, q, qty, itemID, classCode); err != nil {
		return model.ClassPool{}, err
	}
	p.SeatsAvailable += qty
	return p, nil
}

// CreatePoolsTx inserts the class pools of a newly created item inside
// the transaction that creates the item itself.  Passing an empty
// slice has no effect and returns nil.
func (r *InventoryRepo) CreatePoolsTx(ctx context.Context, tx *sql.Tx, itemType model.ItemType, pools []model.ClassPool) error {
	if len(pools) == 0 {
		return nil
	}
	table, idCol, err := poolTable(itemType)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`INSERT INTO %s (%s, class_code, fare_cents, seats_available) VALUES `, table, idCol)
	args := make([]interface{}, 0, len(pools)*4)
	for i, p := range pools {
		if i > 0 {
			q += ","
		}
		q += "(?, ?, ?, ?)"
		args = append(args, p.ItemID, p.ClassCode, p.FareCents, p.SeatsAvailable)
	}
	_, err = tx.ExecContext(ctx, q, args...)
	return err
}

// ListPools returns all class pools of an item ordered by fare,
// cheapest first.  Used by the public detail endpoints; reads here are
// unlocked snapshots and are never used to decide a reservation.
func (r *InventoryRepo) ListPools(ctx context.Context, itemType model.ItemType, itemID uint64) ([]model.ClassPool, error) {
	table, idCol, err := poolTable(itemType)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT %s, class_code, fare_cents, seats_available FROM %s WHERE %s = ? ORDER BY fare_cents ASC`,
		idCol, table, idCol)
	rows, err := r.db.QueryContext(ctx, q, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var pools []model.ClassPool
	for rows.Next() {
		var p model.ClassPool
		if err := rows.Scan(&p.ItemID, &p.ClassCode, &p.FareCents, &p.SeatsAvailable); err != nil {
			return nil, err
		}
		pools = append(pools, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pools, nil
}
