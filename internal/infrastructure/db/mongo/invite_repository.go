package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
)

const collectionInvites = "therapist_invites"

// InviteRepository implements ports.InviteRepository. Status transitions
// are conditional updates so concurrent writers cannot both win.
type InviteRepository struct {
	col *mongo.Collection
}

func NewInviteRepository(db *mongo.Database) *InviteRepository {
	return &InviteRepository{col: db.Collection(collectionInvites)}
}

func (r *InviteRepository) Create(ctx context.Context, invite *domain.Invite) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, invite)
	return err
}

func (r *InviteRepository) FindByID(ctx context.Context, inviteID string) (*domain.Invite, error) {
	return r.findOne(ctx, bson.M{"_id": inviteID})
}

// FindByCode matches the code exactly: case-sensitive, first match.
func (r *InviteRepository) FindByCode(ctx context.Context, code string) (*domain.Invite, error) {
	return r.findOne(ctx, bson.M{"code": code})
}

func (r *InviteRepository) findOne(ctx context.Context, filter bson.M) (*domain.Invite, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var inv domain.Invite
	if err := r.col.FindOne(ctx, filter).Decode(&inv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInviteNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *InviteRepository) List(ctx context.Context, status domain.InviteStatus) ([]*domain.Invite, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var invites []*domain.Invite
	if err := cur.All(ctx, &invites); err != nil {
		return nil, err
	}
	return invites, nil
}

// Claim atomically moves a pending invite to used. The pending-status
// filter is part of the update, so of N concurrent claimers exactly one
// matches; the rest get domain.ErrInviteNotClaimable.
func (r *InviteRepository) Claim(ctx context.Context, inviteID, uid string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": inviteID, "status": domain.InviteStatusPending}
	update := bson.M{"$set": bson.M{
		"status":       domain.InviteStatusUsed,
		"assigned_uid": uid,
		"used_at":      at.UTC(),
		"updated_at":   at.UTC(),
	}}

	err := r.col.FindOneAndUpdate(ctx, filter, update).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrInviteNotClaimable
	}
	return err
}

// Release moves a used invite back to pending, clearing the assignment.
func (r *InviteRepository) Release(ctx context.Context, inviteID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": inviteID, "status": domain.InviteStatusUsed}
	update := bson.M{
		"$set":   bson.M{"status": domain.InviteStatusPending, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"assigned_uid": "", "used_at": ""},
	}

	err := r.col.FindOneAndUpdate(ctx, filter, update).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrInviteNotClaimable
	}
	return err
}

// SetStatus moves an invite from one status to another under the same
// conditional-update guard as Claim.
func (r *InviteRepository) SetStatus(ctx context.Context, inviteID string, from, to domain.InviteStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": inviteID, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}}

	err := r.col.FindOneAndUpdate(ctx, filter, update).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Distinguish a missing invite from a lost status race.
		if _, findErr := r.FindByID(ctx, inviteID); findErr != nil {
			return findErr
		}
		return domain.ErrInviteNotClaimable
	}
	return err
}

func (r *InviteRepository) Delete(ctx context.Context, inviteID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": inviteID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrInviteNotFound
	}
	return nil
}

// EnsureIndexes creates the unique code index.
func (r *InviteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: indexUnique(),
		},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}

func indexUnique() *options.IndexOptions {
	return options.Index().SetUnique(true)
}
