package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
	"github.com/habitdesk/habitdesk-api/internal/core/ports"
	"github.com/habitdesk/habitdesk-api/internal/pkg/id"
)

const collectionTaskTemplates = "task_templates"

// taskTemplateDoc is the storage shape of a task template. The config
// union is stored as a raw sub-document tagged by task_type.
type taskTemplateDoc struct {
	ID            string          `bson:"_id"`
	Title         string          `bson:"title"`
	Description   string          `bson:"description,omitempty"`
	TherapistType string          `bson:"therapist_type"`
	TaskType      domain.TaskType `bson:"task_type"`
	Config        bson.Raw        `bson:"config,omitempty"`
	CreatedBy     string          `bson:"created_by"`
	CreatedAt     time.Time       `bson:"created_at"`
	UpdatedAt     time.Time       `bson:"updated_at"`
}

func newTaskTemplateDoc(t *domain.TaskTemplate) (*taskTemplateDoc, error) {
	raw, err := encodeTaskConfig(t.Config)
	if err != nil {
		return nil, err
	}
	return &taskTemplateDoc{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		TherapistType: t.TherapistType,
		TaskType:      t.TaskType,
		Config:        raw,
		CreatedBy:     t.CreatedBy,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}, nil
}

func (d *taskTemplateDoc) toDomain() (*domain.TaskTemplate, error) {
	cfg, err := decodeTaskConfig(d.TaskType, d.Config)
	if err != nil {
		return nil, err
	}
	return &domain.TaskTemplate{
		ID:            d.ID,
		Title:         d.Title,
		Description:   d.Description,
		TherapistType: d.TherapistType,
		TaskType:      d.TaskType,
		Config:        cfg,
		CreatedBy:     d.CreatedBy,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}, nil
}

// TaskTemplateRepository implements ports.TaskTemplateRepository.
type TaskTemplateRepository struct {
	col *mongo.Collection
}

func NewTaskTemplateRepository(db *mongo.Database) *TaskTemplateRepository {
	return &TaskTemplateRepository{col: db.Collection(collectionTaskTemplates)}
}

func (r *TaskTemplateRepository) Create(ctx context.Context, t *domain.TaskTemplate) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if t.ID == "" {
		t.ID = id.New()
	}
	doc, err := newTaskTemplateDoc(t)
	if err != nil {
		return err
	}
	_, err = r.col.InsertOne(ctx, doc)
	return err
}

func (r *TaskTemplateRepository) FindByID(ctx context.Context, templateID string) (*domain.TaskTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskTemplateDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": templateID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskTemplateNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

func (r *TaskTemplateRepository) List(ctx context.Context, filter ports.ListTemplatesFilter) ([]*domain.TaskTemplate, int64, error) {
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

	var templates []*domain.TaskTemplate
	for cur.Next(ctx) {
		var doc taskTemplateDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, err
		}
		t, err := doc.toDomain()
		if err != nil {
			return nil, 0, err
		}
		templates = append(templates, t)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

func (r *TaskTemplateRepository) Update(ctx context.Context, t *domain.TaskTemplate) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := newTaskTemplateDoc(t)
	if err != nil {
		return err
	}

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": t.ID}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskTemplateNotFound
	}
	return nil
}

func (r *TaskTemplateRepository) Delete(ctx context.Context, templateID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": templateID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskTemplateNotFound
	}
	return nil
}

func (r *TaskTemplateRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "therapist_type", Value: 1}}},
		{Keys: bson.D{{Key: "title", Value: 1}}},
	})
	return err
}

// templateListQuery builds the shared filter for template listings.
func templateListQuery(filter ports.ListTemplatesFilter) bson.M {
	query := bson.M{}
	if len(filter.TherapistTypes) > 0 {
		query["therapist_type"] = bson.M{"$in": filter.TherapistTypes}
	}
	if filter.Search != "" {
		query["title"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}
	return query
}

// templateListOptions builds the shared pagination options. The service
// layer normalises Page and Limit before the repository sees them.
func templateListOptions(filter ports.ListTemplatesFilter) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
		if filter.Page > 1 {
			opts.SetSkip(int64((filter.Page - 1) * filter.Limit))
		}
	}
	return opts
}
