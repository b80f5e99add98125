package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
	"github.com/habitdesk/habitdesk-api/internal/core/ports"
	"github.com/habitdesk/habitdesk-api/internal/pkg/id"
)

const collectionProgramTemplates = "program_templates"

// ProgramTemplateRepository implements ports.ProgramTemplateRepository.
type ProgramTemplateRepository struct {
	col *mongo.Collection
}

func NewProgramTemplateRepository(db *mongo.Database) *ProgramTemplateRepository {
	return &ProgramTemplateRepository{col: db.Collection(collectionProgramTemplates)}
}

func (r *ProgramTemplateRepository) Create(ctx context.Context, t *domain.ProgramTemplate) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if t.ID == "" {
		t.ID = id.New()
	}
	_, err := r.col.InsertOne(ctx, t)
	return err
}

func (r *ProgramTemplateRepository) FindByID(ctx context.Context, templateID string) (*domain.ProgramTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.ProgramTemplate
	if err := r.col.FindOne(ctx, bson.M{"_id": templateID}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProgramTemplateNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *ProgramTemplateRepository) List(ctx context.Context, filter ports.ListTemplatesFilter) ([]*domain.ProgramTemplate, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := templateListQuery(filter)

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	cur, err := r.col.Find(ctx, query, templateListOptions(filter))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var templates []*domain.ProgramTemplate
	if err := cur.All(ctx, &templates); err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

func (r *ProgramTemplateRepository) Update(ctx context.Context, t *domain.ProgramTemplate) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrProgramTemplateNotFound
	}
	return nil
}

func (r *ProgramTemplateRepository) Delete(ctx context.Context, templateID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": templateID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrProgramTemplateNotFound
	}
	return nil
}

func (r *ProgramTemplateRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "therapist_type", Value: 1}}},
		{Keys: bson.D{{Key: "title", Value: 1}}},
	})
	return err
}
