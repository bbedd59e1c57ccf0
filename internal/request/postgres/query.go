package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/request"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const requestHeaderSelect = `
SELECT r.id, r.tracking_number, r.status, r.reason, r.created_at,
       s.id AS staff_id, s.name AS staff_name, s.store, s.is_cooldown,
       COALESCE(ro.name, '') AS role_name
FROM requests r
JOIN staff s ON s.id = r.staff_id
LEFT JOIN roles ro ON ro.id = s.role_id`

const requestItemsSelect = `
SELECT ri.request_id, ri.uniform_item_id, ri.quantity,
       u.name, u.size, u.stock_on_hand
FROM request_items ri
JOIN uniform_items u ON u.id = ri.uniform_item_id
WHERE ri.request_id IN (?)
ORDER BY u.name ASC, ri.id ASC`

type headerRow struct {
	ID             uuid.UUID `db:"id"`
	TrackingNumber string    `db:"tracking_number"`
	Status         string    `db:"status"`
	Reason         *string   `db:"reason"`
	CreatedAt      time.Time `db:"created_at"`
	StaffID        uuid.UUID `db:"staff_id"`
	StaffName      string    `db:"staff_name"`
	Store          string    `db:"store"`
	IsCooldown     bool      `db:"is_cooldown"`
	RoleName       string    `db:"role_name"`
}

type itemRow struct {
	RequestID     uuid.UUID `db:"request_id"`
	UniformItemID uuid.UUID `db:"uniform_item_id"`
	Quantity      int64     `db:"quantity"`
	Name          string    `db:"name"`
	Size          *string   `db:"size"`
	StockOnHand   int64     `db:"stock_on_hand"`
}

// QueryRepository serves request views with plain SQL joins.
type QueryRepository struct {
	db *sqlx.DB
}

func NewQueryRepository(db *sqlx.DB) *QueryRepository {
	return &QueryRepository{db: db}
}

func (q *QueryRepository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*request.Record, error) {
	var row headerRow
	query := q.db.Rebind(requestHeaderSelect + ` WHERE r.tracking_number = ?`)
	if err := q.db.GetContext(ctx, &row, query, trackingNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrRequestNotFound
		}
		return nil, err
	}

	records, err := q.attachItems(ctx, []headerRow{row})
	if err != nil {
		return nil, err
	}
	return records[0], nil
}

func (q *QueryRepository) List(ctx context.Context, filter request.ListFilter) ([]*request.Record, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Status != "" {
		where = append(where, "r.status = ?")
		args = append(args, filter.Status)
	}
	if filter.StaffID != nil {
		where = append(where, "r.staff_id = ?")
		args = append(args, *filter.StaffID)
	}

	var sb strings.Builder
	sb.WriteString(requestHeaderSelect)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY r.created_at DESC, r.tracking_number ASC LIMIT ? OFFSET ?")
	args = append(args, filter.Limit, filter.Offset)

	var rows []headerRow
	if err := q.db.SelectContext(ctx, &rows, q.db.Rebind(sb.String()), args...); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*request.Record{}, nil
	}
	return q.attachItems(ctx, rows)
}

func (q *QueryRepository) attachItems(ctx context.Context, headers []headerRow) ([]*request.Record, error) {
	ids := make([]uuid.UUID, len(headers))
	records := make([]*request.Record, len(headers))
	byID := make(map[uuid.UUID]*request.Record, len(headers))
	for i, h := range headers {
		ids[i] = h.ID
		records[i] = &request.Record{
			ID:             h.ID,
			TrackingNumber: h.TrackingNumber,
			Status:         h.Status,
			Reason:         h.Reason,
			CreatedAt:      h.CreatedAt.UTC(),
			StaffID:        h.StaffID,
			StaffName:      h.StaffName,
			RoleName:       h.RoleName,
			Store:          h.Store,
			IsCooldown:     h.IsCooldown,
			Items:          []request.RecordItem{},
		}
		byID[h.ID] = records[i]
	}

	query, args, err := sqlx.In(requestItemsSelect, ids)
	if err != nil {
		return nil, err
	}

	var items []itemRow
	if err := q.db.SelectContext(ctx, &items, q.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, it := range items {
		rec, ok := byID[it.RequestID]
		if !ok {
			continue
		}
		rec.Items = append(rec.Items, request.RecordItem{
			UniformItemID: it.UniformItemID,
			Name:          it.Name,
			Size:          it.Size,
			Quantity:      it.Quantity,
			StockOnHand:   it.StockOnHand,
		})
	}
	return records, nil
}
