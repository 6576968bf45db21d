package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staykeeper/internal/domain/shared/money"
	domainunit "staykeeper/internal/domain/unit"
)

type UnitRepository struct {
	col *mongo.Collection
}

func NewUnitRepository(db *mongo.Database) *UnitRepository {
	return &UnitRepository{col: db.Collection("agg_unit")}
}

func (r *UnitRepository) ByID(ctx context.Context, id domainunit.UnitID) (*domainunit.Unit, error) {
	var doc unitDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainunit.ErrUnitNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *UnitRepository) Save(ctx context.Context, u *domainunit.Unit) error {
	doc := newUnitDocument(u)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

type unitDocument struct {
	ID        string         `bson:"_id"`
	TenantID  string         `bson:"tenant_id"`
	Name      string         `bson:"name"`
	Capacity  int            `bson:"capacity"`
	BasePrice moneyDocument  `bson:"base_price"`
	Promo     *promoDocument `bson:"promo,omitempty"`
}

type promoDocument struct {
	Kind    string        `bson:"kind"`
	Percent int           `bson:"percent"`
	Nightly moneyDocument `bson:"nightly"`
	Start   int64         `bson:"start"`
	End     int64         `bson:"end"`
	Label   string        `bson:"label"`
}

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount, Currency: m.Currency}
}

func (d moneyDocument) toMoney() money.Money {
	return money.Money{Amount: d.Amount, Currency: d.Currency}
}

func newUnitDocument(u *domainunit.Unit) unitDocument {
	doc := unitDocument{
		ID:        string(u.ID),
		TenantID:  u.TenantID,
		Name:      u.Name,
		Capacity:  u.Capacity,
		BasePrice: newMoneyDocument(u.BasePrice),
	}
	if u.Promo != nil {
		doc.Promo = &promoDocument{
			Kind:    string(u.Promo.Kind),
			Percent: u.Promo.Percent,
			Nightly: newMoneyDocument(u.Promo.Nightly),
			Start:   u.Promo.Start.UnixMilli(),
			End:     u.Promo.End.UnixMilli(),
			Label:   u.Promo.Label,
		}
	}
	return doc
}

func (d unitDocument) toAggregate() *domainunit.Unit {
	u := &domainunit.Unit{
		ID:        domainunit.UnitID(d.ID),
		TenantID:  d.TenantID,
		Name:      d.Name,
		Capacity:  d.Capacity,
		BasePrice: d.BasePrice.toMoney(),
	}
	if d.Promo != nil {
		u.Promo = &domainunit.PromotionalRate{
			Kind:    domainunit.PromoKind(d.Promo.Kind),
			Percent: d.Promo.Percent,
			Nightly: d.Promo.Nightly.toMoney(),
			Start:   timestampToTime(d.Promo.Start),
			End:     timestampToTime(d.Promo.End),
			Label:   d.Promo.Label,
		}
	}
	return u
}
