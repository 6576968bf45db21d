package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staykeeper/internal/domain/booking"
	domainrange "staykeeper/internal/domain/shared/daterange"
	domainunit "staykeeper/internal/domain/unit"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

// blockingStatuses are the statuses that hold a unit's dates on the calendar.
var blockingStatuses = []string{
	string(domainbooking.StatusPending),
	string(domainbooking.StatusConfirmed),
	string(domainbooking.StatusCheckedIn),
}

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("agg_booking")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListBlockingByUnit(ctx context.Context, id domainunit.UnitID) ([]*domainbooking.Booking, error) {
	filter := bson.M{"unit_id": string(id), "status": bson.M{"$in": blockingStatuses}}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type bookingDocument struct {
	ID            string        `bson:"_id"`
	TenantID      string        `bson:"tenant_id"`
	UnitID        string        `bson:"unit_id"`
	GuestID       string        `bson:"guest_id"`
	Range         rangeDocument `bson:"range"`
	Guests        int           `bson:"guests"`
	Status        string        `bson:"status"`
	TotalAmount   moneyDocument `bson:"total_amount"`
	ComputedTotal moneyDocument `bson:"computed_total"`
	CreatedBy     string        `bson:"created_by"`
	CreatedAt     int64         `bson:"created_at"`
	UpdatedAt     int64         `bson:"updated_at"`
	Version       int64         `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:            string(b.ID),
		TenantID:      b.TenantID,
		UnitID:        string(b.UnitID),
		GuestID:       b.GuestID,
		Range:         rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Guests:        b.Guests,
		Status:        string(b.Status),
		TotalAmount:   newMoneyDocument(b.TotalAmount),
		ComputedTotal: newMoneyDocument(b.ComputedTotal),
		CreatedBy:     b.CreatedBy,
		CreatedAt:     b.CreatedAt.UnixMilli(),
		UpdatedAt:     b.UpdatedAt.UnixMilli(),
		Version:       b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	dr := domainrange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)}
	return &domainbooking.Booking{
		ID:            domainbooking.BookingID(d.ID),
		TenantID:      d.TenantID,
		UnitID:        domainunit.UnitID(d.UnitID),
		GuestID:       d.GuestID,
		Range:         dr,
		Guests:        d.Guests,
		Status:        domainbooking.BookingStatus(d.Status),
		TotalAmount:   d.TotalAmount.toMoney(),
		ComputedTotal: d.ComputedTotal.toMoney(),
		CreatedBy:     d.CreatedBy,
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
		Version:       d.Version,
	}
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
