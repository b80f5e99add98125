package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
	"github.com/habitdesk/habitdesk-api/internal/pkg/id"
)

const collectionTherapistTypes = "therapist_types"

// TherapistTypeRepository implements ports.TherapistTypeRepository over
// the sub-type catalog collection.
type TherapistTypeRepository struct {
	col *mongo.Collection
}

func NewTherapistTypeRepository(db *mongo.Database) *TherapistTypeRepository {
	return &TherapistTypeRepository{col: db.Collection(collectionTherapistTypes)}
}

func (r *TherapistTypeRepository) Create(ctx context.Context, t *domain.TherapistType) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if t.ID == "" {
		t.ID = id.New()
	}
	_, err := r.col.InsertOne(ctx, t)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrTherapistTypeExists
	}
	return err
}

func (r *TherapistTypeRepository) FindByName(ctx context.Context, name string) (*domain.TherapistType, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.TherapistType
	if err := r.col.FindOne(ctx, bson.M{"name": name}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTherapistTypeNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TherapistTypeRepository) List(ctx context.Context) ([]*domain.TherapistType, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var types []*domain.TherapistType
	if err := cur.All(ctx, &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (r *TherapistTypeRepository) Delete(ctx context.Context, typeID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": typeID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrTherapistTypeNotFound
	}
	return nil
}

func (r *TherapistTypeRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: indexUnique(),
	})
	return err
}
