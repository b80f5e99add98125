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

const collectionAssignments = "program_assignments"

// AssignmentRepository implements ports.AssignmentRepository.
type AssignmentRepository struct {
	col *mongo.Collection
}

func NewAssignmentRepository(db *mongo.Database) *AssignmentRepository {
	return &AssignmentRepository{col: db.Collection(collectionAssignments)}
}

func (r *AssignmentRepository) Create(ctx context.Context, a *domain.ProgramAssignment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if a.ID == "" {
		a.ID = id.New()
	}
	_, err := r.col.InsertOne(ctx, a)
	return err
}

func (r *AssignmentRepository) FindByID(ctx context.Context, assignmentID string) (*domain.ProgramAssignment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var a domain.ProgramAssignment
	if err := r.col.FindOne(ctx, bson.M{"_id": assignmentID}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAssignmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AssignmentRepository) ListByPatient(ctx context.Context, patientID string) ([]*domain.ProgramAssignment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"patient_id": patientID},
		options.Find().SetSort(bson.D{{Key: "assigned_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var assignments []*domain.ProgramAssignment
	if err := cur.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *AssignmentRepository) UpdateStatus(ctx context.Context, assignmentID string, status domain.AssignmentStatus, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": assignmentID},
		bson.M{"$set": bson.M{"status": status, "updated_at": at.UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrAssignmentNotFound
	}
	return nil
}

func (r *AssignmentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "patient_id", Value: 1}}},
		{Keys: bson.D{{Key: "therapist_uid", Value: 1}}},
	})
	return err
}
