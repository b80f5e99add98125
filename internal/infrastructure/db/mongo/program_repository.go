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

const (
	collectionPrograms = "programs"
	collectionTasks    = "tasks"
)

// taskDoc is the storage shape of a materialised task. Like task
// templates, the config union is stored as a raw sub-document.
type taskDoc struct {
	ID             string          `bson:"_id"`
	ProgramID      string          `bson:"program_id"`
	TaskTemplateID string          `bson:"task_template_id"`
	Title          string          `bson:"title"`
	TaskType       domain.TaskType `bson:"task_type"`
	Config         bson.Raw        `bson:"config,omitempty"`
	DayOffset      int             `bson:"day_offset"`
	Repeats        int             `bson:"repeats"`
	Completed      bool            `bson:"completed"`
	CompletedAt    *time.Time      `bson:"completed_at,omitempty"`
}

func newTaskDoc(t *domain.Task) (*taskDoc, error) {
	raw, err := encodeTaskConfig(t.Config)
	if err != nil {
		return nil, err
	}
	return &taskDoc{
		ID:             t.ID,
		ProgramID:      t.ProgramID,
		TaskTemplateID: t.TaskTemplateID,
		Title:          t.Title,
		TaskType:       t.TaskType,
		Config:         raw,
		DayOffset:      t.DayOffset,
		Repeats:        t.Repeats,
		Completed:      t.Completed,
		CompletedAt:    t.CompletedAt,
	}, nil
}

func (d *taskDoc) toDomain() (*domain.Task, error) {
	cfg, err := decodeTaskConfig(d.TaskType, d.Config)
	if err != nil {
		return nil, err
	}
	return &domain.Task{
		ID:             d.ID,
		ProgramID:      d.ProgramID,
		TaskTemplateID: d.TaskTemplateID,
		Title:          d.Title,
		TaskType:       d.TaskType,
		Config:         cfg,
		DayOffset:      d.DayOffset,
		Repeats:        d.Repeats,
		Completed:      d.Completed,
		CompletedAt:    d.CompletedAt,
	}, nil
}

// ProgramRepository implements ports.ProgramRepository over the programs
// and tasks collections.
type ProgramRepository struct {
	programs *mongo.Collection
	tasks    *mongo.Collection
}

func NewProgramRepository(db *mongo.Database) *ProgramRepository {
	return &ProgramRepository{
		programs: db.Collection(collectionPrograms),
		tasks:    db.Collection(collectionTasks),
	}
}

// CreateWithTasks inserts the program document and its materialised tasks.
func (r *ProgramRepository) CreateWithTasks(ctx context.Context, p *domain.Program, tasks []*domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if p.ID == "" {
		p.ID = id.New()
	}
	if _, err := r.programs.InsertOne(ctx, p); err != nil {
		return err
	}

	if len(tasks) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == "" {
			t.ID = id.New()
		}
		t.ProgramID = p.ID
		doc, err := newTaskDoc(t)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	_, err := r.tasks.InsertMany(ctx, docs)
	return err
}

func (r *ProgramRepository) FindByID(ctx context.Context, programID string) (*domain.Program, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Program
	if err := r.programs.FindOne(ctx, bson.M{"_id": programID}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProgramNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProgramRepository) ListTasks(ctx context.Context, programID string) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.tasks.Find(ctx, bson.M{"program_id": programID},
		options.Find().SetSort(bson.D{{Key: "day_offset", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []*domain.Task
	for cur.Next(ctx) {
		var doc taskDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		t, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *ProgramRepository) FindTask(ctx context.Context, taskID string) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskDoc
	if err := r.tasks.FindOne(ctx, bson.M{"_id": taskID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

// CompleteTask marks a task done, stamping the completion time.
func (r *ProgramRepository) CompleteTask(ctx context.Context, taskID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.tasks.UpdateOne(ctx,
		bson.M{"_id": taskID},
		bson.M{"$set": bson.M{"completed": true, "completed_at": at.UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *ProgramRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := r.programs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "patient_id", Value: 1}},
	}); err != nil {
		return err
	}
	_, err := r.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "program_id", Value: 1}},
	})
	return err
}
