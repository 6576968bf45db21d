package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staykeeper/internal/domain/booking"
	domainledger "staykeeper/internal/domain/ledger"
)

type FolioRepository struct {
	col *mongo.Collection
}

func NewFolioRepository(db *mongo.Database) *FolioRepository {
	return &FolioRepository{col: db.Collection("agg_folio")}
}

func (r *FolioRepository) ByBooking(ctx context.Context, id domainbooking.BookingID) (*domainledger.Folio, error) {
	var doc folioDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainledger.ErrFolioNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *FolioRepository) Save(ctx context.Context, f *domainledger.Folio) error {
	doc := newFolioDocument(f)
	filter := bson.M{"_id": doc.BookingID, "version": f.Version}
	doc.Version = f.Version + 1
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
	f.Version = doc.Version
	return nil
}

type folioDocument struct {
	BookingID string            `bson:"_id"`
	Total     moneyDocument     `bson:"total"`
	Payments  []paymentDocument `bson:"payments"`
	Charges   []chargeDocument  `bson:"charges"`
	Refunds   []refundDocument  `bson:"refunds"`
	Version   int64             `bson:"version"`
}

type paymentDocument struct {
	ID         string        `bson:"id"`
	Amount     moneyDocument `bson:"amount"`
	Reference  string        `bson:"reference"`
	Notes      string        `bson:"notes"`
	ReceiptURL string        `bson:"receipt_url,omitempty"`
	RecordedAt int64         `bson:"recorded_at"`
}

type chargeDocument struct {
	ID       string        `bson:"id"`
	Kind     string        `bson:"kind"`
	Amount   moneyDocument `bson:"amount"`
	Notes    string        `bson:"notes"`
	PostedAt int64         `bson:"posted_at"`
}

type refundDocument struct {
	ID         string        `bson:"id"`
	Amount     moneyDocument `bson:"amount"`
	Policy     string        `bson:"policy"`
	Reason     string        `bson:"reason"`
	RecordedAt int64         `bson:"recorded_at"`
}

func newFolioDocument(f *domainledger.Folio) folioDocument {
	doc := folioDocument{
		BookingID: string(f.BookingID),
		Total:     newMoneyDocument(f.Total),
		Version:   f.Version,
	}
	for _, p := range f.Payments {
		doc.Payments = append(doc.Payments, paymentDocument{
			ID:         p.ID,
			Amount:     newMoneyDocument(p.Amount),
			Reference:  p.Reference,
			Notes:      p.Notes,
			ReceiptURL: p.ReceiptURL,
			RecordedAt: p.RecordedAt.UnixMilli(),
		})
	}
	for _, c := range f.Charges {
		doc.Charges = append(doc.Charges, chargeDocument{
			ID:       c.ID,
			Kind:     string(c.Kind),
			Amount:   newMoneyDocument(c.Amount),
			Notes:    c.Notes,
			PostedAt: c.PostedAt.UnixMilli(),
		})
	}
	for _, rf := range f.Refunds {
		doc.Refunds = append(doc.Refunds, refundDocument{
			ID:         rf.ID,
			Amount:     newMoneyDocument(rf.Amount),
			Policy:     rf.Policy,
			Reason:     rf.Reason,
			RecordedAt: rf.RecordedAt.UnixMilli(),
		})
	}
	return doc
}

func (d folioDocument) toAggregate() *domainledger.Folio {
	f := &domainledger.Folio{
		BookingID: domainbooking.BookingID(d.BookingID),
		Total:     d.Total.toMoney(),
		Version:   d.Version,
	}
	for _, p := range d.Payments {
		f.Payments = append(f.Payments, domainledger.Payment{
			ID:         p.ID,
			BookingID:  f.BookingID,
			Amount:     p.Amount.toMoney(),
			Reference:  p.Reference,
			Notes:      p.Notes,
			ReceiptURL: p.ReceiptURL,
			RecordedAt: timestampToTime(p.RecordedAt),
		})
	}
	for _, c := range d.Charges {
		f.Charges = append(f.Charges, domainledger.Charge{
			ID:        c.ID,
			BookingID: f.BookingID,
			Kind:      domainledger.ChargeKind(c.Kind),
			Amount:    c.Amount.toMoney(),
			Notes:     c.Notes,
			PostedAt:  timestampToTime(c.PostedAt),
		})
	}
	for _, rf := range d.Refunds {
		f.Refunds = append(f.Refunds, domainledger.Refund{
			ID:         rf.ID,
			BookingID:  f.BookingID,
			Amount:     rf.Amount.toMoney(),
			Policy:     rf.Policy,
			Reason:     rf.Reason,
			RecordedAt: timestampToTime(rf.RecordedAt),
		})
	}
	return f
}
