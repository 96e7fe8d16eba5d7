package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	StoreOrdersTable     = "store_orders"
	StoreOrderItemsTable = "store_order_items"
)

// StoreOrder is a point-of-sale purchase.
type StoreOrder struct {
	OrderID    uuid.UUID `db:"order_id"`
	ClientID   uuid.UUID `db:"client_id"`
	MemberID   uuid.UUID `db:"member_id"`
	Status     string    `db:"status"`
	TotalCents int64     `db:"total_cents"`
	CreatedAt  time.Time `db:"created_at"`
}

type StoreOrderItem struct {
	ItemID      uuid.UUID `db:"item_id"`
	ClientID    uuid.UUID `db:"client_id"`
	OrderID     uuid.UUID `db:"order_id"`
	ProductName string    `db:"product_name"`
	Quantity    int       `db:"quantity"`
	UnitCents   int64     `db:"unit_cents"`
}

var storeOrdersTable = Table[StoreOrder]{
	Name:    StoreOrdersTable,
	Columns: []string{"order_id", "client_id", "member_id", "status", "total_cents", "created_at"},
	Scan: func(row pgx.Row) (StoreOrder, error) {
		var o StoreOrder
		err := row.Scan(&o.OrderID, &o.ClientID, &o.MemberID, &o.Status, &o.TotalCents, &o.CreatedAt)
		return o, err
	},
}

var storeOrderItemsTable = Table[StoreOrderItem]{
	Name:    StoreOrderItemsTable,
	Columns: []string{"item_id", "client_id", "order_id", "product_name", "quantity", "unit_cents"},
	Scan: func(row pgx.Row) (StoreOrderItem, error) {
		var i StoreOrderItem
		err := row.Scan(&i.ItemID, &i.ClientID, &i.OrderID, &i.ProductName, &i.Quantity, &i.UnitCents)
		return i, err
	},
}

type StoreOrderStore struct {
	db *ClientDB
}

func NewStoreOrderStore(db *ClientDB) (*StoreOrderStore, error) {
	if db == nil {
		return nil, errors.New("client db is required")
	}
	return &StoreOrderStore{db: db}, nil
}

func (s *StoreOrderStore) OrdersForMember(ctx context.Context, clientID, memberID uuid.UUID) ([]StoreOrder, error) {
	where := ForClient(clientID).Eq("member_id", memberID)
	return FindMany(ctx, s.db.Pool(), storeOrdersTable, where, FindOptions{OrderBy: []string{"created_at DESC"}})
}

// ItemsForOrders loads the line items of orderIDs with one IN lookup, grouped by order.
func (s *StoreOrderStore) ItemsForOrders(ctx context.Context, clientID uuid.UUID, orderIDs []uuid.UUID) (map[uuid.UUID][]StoreOrderItem, error) {
	out := make(map[uuid.UUID][]StoreOrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	items, err := FindMany(ctx, s.db.Pool(), storeOrderItemsTable, In(ForClient(clientID), "order_id", orderIDs),
		FindOptions{OrderBy: []string{"product_name ASC"}})
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		out[item.OrderID] = append(out[item.OrderID], item)
	}
	return out, nil
}
