package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"hoteldesk/internal/domain/dayspan"
	"hoteldesk/internal/domain/room"
	"hoteldesk/internal/domain/stock"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

// Store implements the room and stock boundary ports on MongoDB. Stock is
// persisted as one document per calendar day, matching the wire shape the
// remote backend serves.
type Store struct {
	rooms  *mongo.Collection
	stocks *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		rooms:  db.Collection("rooms"),
		stocks: db.Collection("stock_days"),
	}
}

type roomDocument struct {
	ID           string `bson:"_id"`
	Number       string `bson:"number"`
	Floor        string `bson:"floor"`
	Capacity     int    `bson:"capacity"`
	CategoryID   string `bson:"category_id"`
	CategoryName string `bson:"category_name"`
	PhotoURL     string `bson:"photo_url"`
	Status       string `bson:"status"`
	Deleted      bool   `bson:"deleted"`
	Version      int64  `bson:"version"`
}

func (d roomDocument) toRoom() (room.Room, error) {
	status, err := room.StatusFromWire(d.Status)
	if err != nil {
		return room.Room{}, err
	}
	return room.Room{
		ID:           d.ID,
		Number:       d.Number,
		Floor:        d.Floor,
		Capacity:     d.Capacity,
		CategoryID:   d.CategoryID,
		CategoryName: d.CategoryName,
		PhotoURL:     d.PhotoURL,
		Status:       status,
		Deleted:      d.Deleted,
	}, nil
}

type stockDocument struct {
	CategoryID   string  `bson:"category_id"`
	CategoryName string  `bson:"category_name"`
	Day          int64   `bson:"day"`
	Price        float64 `bson:"price"`
	Quantity     int     `bson:"quantity"`
}

// List implements room.Directory. Filtering happens in memory: the room set
// is small and the free-text filter matches several fields.
func (s *Store) List(ctx context.Context, filter room.Filter) ([]room.Room, error) {
	cur, err := s.rooms.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo: list rooms: %w", err)
	}
	defer cur.Close(ctx)

	var out []room.Room
	for cur.Next(ctx) {
		var doc roomDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo: decode room: %w", err)
		}
		r, err := doc.toRoom()
		if err != nil {
			continue
		}
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out, cur.Err()
}

// ByID implements room.Directory.
func (s *Store) ByID(ctx context.Context, id string) (room.Room, error) {
	var doc roomDocument
	if err := s.rooms.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return room.Room{}, room.ErrNotFound
		}
		return room.Room{}, fmt.Errorf("mongo: find room: %w", err)
	}
	return doc.toRoom()
}

// UpdateStatus implements room.Directory with an optimistic version bump so
// two racing writers cannot silently overwrite each other.
func (s *Store) UpdateStatus(ctx context.Context, id string, status room.Status) error {
	code, err := status.WireCode()
	if err != nil {
		return err
	}
	var doc roomDocument
	if err := s.rooms.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return room.ErrNotFound
		}
		return fmt.Errorf("mongo: find room: %w", err)
	}
	res, err := s.rooms.UpdateOne(ctx,
		bson.M{"_id": id, "version": doc.Version},
		bson.M{"$set": bson.M{"status": code}, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		return fmt.Errorf("mongo: status update: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

// SeedRooms replaces the room collection, for bootstrapping from fixtures.
func (s *Store) SeedRooms(ctx context.Context, rooms []room.Room) error {
	if err := s.rooms.Drop(ctx); err != nil {
		return fmt.Errorf("mongo: drop rooms: %w", err)
	}
	if len(rooms) == 0 {
		return nil
	}
	docs := make([]any, 0, len(rooms))
	for _, r := range rooms {
		code, err := r.Status.WireCode()
		if err != nil {
			return err
		}
		docs = append(docs, roomDocument{
			ID:           r.ID,
			Number:       r.Number,
			Floor:        r.Floor,
			Capacity:     r.Capacity,
			CategoryID:   r.CategoryID,
			CategoryName: r.CategoryName,
			PhotoURL:     r.PhotoURL,
			Status:       code,
			Deleted:      r.Deleted,
		})
	}
	if _, err := s.rooms.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("mongo: seed rooms: %w", err)
	}
	return nil
}

// ByRange implements stock.Inventory.
func (s *Store) ByRange(ctx context.Context, span dayspan.Span, categoryID string) ([]stock.Entry, error) {
	if err := span.Validate(); err != nil {
		return nil, err
	}
	query := bson.M{"day": bson.M{"$gte": span.From.UnixMilli(), "$lte": span.To.UnixMilli()}}
	if categoryID != "" {
		query["category_id"] = categoryID
	}
	cur, err := s.stocks.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("mongo: fetch stocks: %w", err)
	}
	defer cur.Close(ctx)

	var out []stock.Entry
	for cur.Next(ctx) {
		var doc stockDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo: decode stock: %w", err)
		}
		day := time.UnixMilli(doc.Day).UTC()
		out = append(out, stock.Entry{
			CategoryID:   doc.CategoryID,
			CategoryName: doc.CategoryName,
			Span:         dayspan.Span{From: day, To: day},
			Price:        doc.Price,
			Quantity:     doc.Quantity,
		})
	}
	return out, cur.Err()
}

// BulkCreate implements stock.Inventory, enforcing the category's room count
// per day before inserting anything.
func (s *Store) BulkCreate(ctx context.Context, params stock.MutationParams) (int, error) {
	if err := params.ValidateFull(); err != nil {
		return 0, err
	}
	span, err := dayspan.New(params.From, params.To)
	if err != nil {
		return 0, err
	}

	total, name, err := s.categoryInventory(ctx, params.CategoryID)
	if err != nil {
		return 0, err
	}
	worst, err := s.worstDayLoad(ctx, params.CategoryID, span)
	if err != nil {
		return 0, err
	}
	if worst+params.Quantity > total {
		return 0, fmt.Errorf("mongo: insufficient inventory for category %s. Current stock: %d, Total rooms: %d", params.CategoryID, worst, total)
	}

	docs := make([]any, 0, span.Days())
	for day := span.From; !day.After(span.To); day = day.AddDate(0, 0, 1) {
		docs = append(docs, stockDocument{
			CategoryID:   params.CategoryID,
			CategoryName: name,
			Day:          day.UnixMilli(),
			Price:        params.Price,
			Quantity:     params.Quantity,
		})
	}
	if _, err := s.stocks.InsertMany(ctx, docs); err != nil {
		return 0, fmt.Errorf("mongo: bulk create: %w", err)
	}
	return len(docs), nil
}

// UpdatePrice implements stock.Inventory.
func (s *Store) UpdatePrice(ctx context.Context, params stock.MutationParams) (int, error) {
	if err := params.ValidatePrice(); err != nil {
		return 0, err
	}
	span, err := dayspan.New(params.From, params.To)
	if err != nil {
		return 0, err
	}
	res, err := s.stocks.UpdateMany(ctx,
		bson.M{"category_id": params.CategoryID, "day": bson.M{"$gte": span.From.UnixMilli(), "$lte": span.To.UnixMilli()}},
		bson.M{"$set": bson.M{"price": params.Price}},
	)
	if err != nil {
		return 0, fmt.Errorf("mongo: price update: %w", err)
	}
	return int(res.ModifiedCount), nil
}

// Delete implements stock.Inventory: quantity comes off every matching day
// row, and drained rows are removed.
func (s *Store) Delete(ctx context.Context, params stock.MutationParams) (int, error) {
	if err := params.ValidateQuantity(); err != nil {
		return 0, err
	}
	span, err := dayspan.New(params.From, params.To)
	if err != nil {
		return 0, err
	}
	match := bson.M{"category_id": params.CategoryID, "day": bson.M{"$gte": span.From.UnixMilli(), "$lte": span.To.UnixMilli()}}
	res, err := s.stocks.UpdateMany(ctx, match, bson.M{"$inc": bson.M{"quantity": -params.Quantity}})
	if err != nil {
		return 0, fmt.Errorf("mongo: delete: %w", err)
	}
	if _, err := s.stocks.DeleteMany(ctx, bson.M{"category_id": params.CategoryID, "quantity": bson.M{"$lte": 0}}); err != nil {
		return 0, fmt.Errorf("mongo: prune drained stock: %w", err)
	}
	return int(res.ModifiedCount), nil
}

func (s *Store) categoryInventory(ctx context.Context, categoryID string) (int, string, error) {
	cur, err := s.rooms.Find(ctx, bson.M{"category_id": categoryID, "deleted": false})
	if err != nil {
		return 0, "", fmt.Errorf("mongo: category inventory: %w", err)
	}
	defer cur.Close(ctx)
	total := 0
	name := ""
	for cur.Next(ctx) {
		var doc roomDocument
		if err := cur.Decode(&doc); err != nil {
			return 0, "", err
		}
		total++
		name = doc.CategoryName
	}
	return total, name, cur.Err()
}

func (s *Store) worstDayLoad(ctx context.Context, categoryID string, span dayspan.Span) (int, error) {
	cur, err := s.stocks.Find(ctx, bson.M{"category_id": categoryID, "day": bson.M{"$gte": span.From.UnixMilli(), "$lte": span.To.UnixMilli()}})
	if err != nil {
		return 0, fmt.Errorf("mongo: day load: %w", err)
	}
	defer cur.Close(ctx)
	perDay := make(map[int64]int)
	for cur.Next(ctx) {
		var doc stockDocument
		if err := cur.Decode(&doc); err != nil {
			return 0, err
		}
		perDay[doc.Day] += doc.Quantity
	}
	worst := 0
	for _, qty := range perDay {
		if qty > worst {
			worst = qty
		}
	}
	return worst, cur.Err()
}

var (
	_ stock.Inventory = (*Store)(nil)
	_ room.Directory  = (*Store)(nil)
)
