package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lifeflow/blood-bank/internal/core/domain"
	"github.com/lifeflow/blood-bank/internal/core/ports"
)

const collectionDonors = "donors"

// DonorRepository implements ports.DonorRepository using MongoDB.
type DonorRepository struct {
	col *mongo.Collection
}

func NewDonorRepository(db *mongo.Database) *DonorRepository {
	return &DonorRepository{col: db.Collection(collectionDonors)}
}

// Insert adds a new donor document. The unique index on phone turns a
// concurrent duplicate registration into domain.ErrDonorExists.
func (r *DonorRepository) Insert(ctx context.Context, d *domain.Donor) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, d)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDonorExists
		}
		return err
	}
	return nil
}

// FindByPhone retrieves a donor by phone number.
func (r *DonorRepository) FindByPhone(ctx context.Context, phone string) (*domain.Donor, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d domain.Donor
	err := r.col.FindOne(ctx, bson.M{"phone": phone}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDonorNotFound
		}
		return nil, err
	}
	return &d, nil
}

// AddAmount accumulates amount onto the donor's total with a single $inc and
// bumps the updated timestamp in the same write. No read-modify-write happens
// here: concurrent accumulations for the same donor both land.
func (r *DonorRepository) AddAmount(ctx context.Context, phone string, amount float64, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"phone": phone},
		bson.M{
			"$inc": bson.M{"amount": amount},
			"$set": bson.M{"updated_at": at.UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrDonorNotFound
	}
	return nil
}

// Search returns one page of donors matching the compiled filter, sorted by
// amount descending with phone ascending as the tie-break so pagination stays
// stable across requests.
func (r *DonorRepository) Search(ctx context.Context, filter ports.SearchFilter) ([]*domain.Donor, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{"$and": bson.A{
		bson.M{"blood_group": primitive.Regex{Pattern: filter.BloodGroupPattern, Options: "i"}},
		bson.M{"city": primitive.Regex{Pattern: filter.CityPattern, Options: "i"}},
	}}

	opts := options.Find().
		SetSort(bson.D{{Key: "amount", Value: -1}, {Key: "phone", Value: 1}}).
		SetSkip(int64((filter.Page - 1) * ports.SearchPageSize)).
		SetLimit(ports.SearchPageSize)

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var donors []*domain.Donor
	if err := cursor.All(ctx, &donors); err != nil {
		return nil, err
	}
	return donors, nil
}

// EnsureIndexes creates the indexes the registry depends on: the unique phone
// index that enforces at-most-one donor per phone, and the compound index
// backing the compatibility query's filter/sort path.
func (r *DonorRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "blood_group", Value: 1},
				{Key: "city", Value: 1},
				{Key: "amount", Value: -1},
			},
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
