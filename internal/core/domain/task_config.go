package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// TaskType tags the config variant carried by a task template.
type TaskType string

const (
	TaskTypeTimer     TaskType = "timer"
	TaskTypeTextInput TaskType = "text_input"
	TaskTypeQuiz      TaskType = "quiz"
	TaskTypeProgress  TaskType = "progress"
	TaskTypeMedia     TaskType = "media"
	TaskTypeGoal      TaskType = "goal"
	TaskTypeScale     TaskType = "scale"
	TaskTypeStateLog  TaskType = "state_log"
	TaskTypeEvidence  TaskType = "evidence"
)

var ErrUnknownTaskType = errors.New("unknown task type")
var ErrInvalidTaskConfig = errors.New("invalid task config")

// TaskConfig is the discriminated union of per-type task configurations.
// Concrete variants are plain structs selected by the taskType tag.
type TaskConfig interface {
	TaskType() TaskType
	Validate() error
}

// TimerConfig runs a countdown or stopwatch for the patient.
type TimerConfig struct {
	DurationSeconds int  `json:"duration_seconds" bson:"duration_seconds"`
	Countdown       bool `json:"countdown" bson:"countdown"`
}

func (TimerConfig) TaskType() TaskType { return TaskTypeTimer }

func (c TimerConfig) Validate() error {
	if c.DurationSeconds <= 0 {
		return fmt.Errorf("%w: timer duration must be positive", ErrInvalidTaskConfig)
	}
	return nil
}

// TextInputConfig collects free-form text from the patient.
type TextInputConfig struct {
	Prompt    string `json:"prompt" bson:"prompt"`
	MultiLine bool   `json:"multi_line" bson:"multi_line"`
	MaxLength int    `json:"max_length,omitempty" bson:"max_length,omitempty"`
}

func (TextInputConfig) TaskType() TaskType { return TaskTypeTextInput }

func (c TextInputConfig) Validate() error {
	if c.Prompt == "" {
		return fmt.Errorf("%w: text input prompt is required", ErrInvalidTaskConfig)
	}
	if c.MaxLength < 0 {
		return fmt.Errorf("%w: max length cannot be negative", ErrInvalidTaskConfig)
	}
	return nil
}

// QuizQuestion is a single multiple-choice question.
type QuizQuestion struct {
	Text         string   `json:"text" bson:"text"`
	Options      []string `json:"options" bson:"options"`
	CorrectIndex int      `json:"correct_index" bson:"correct_index"`
}

// QuizConfig presents a multiple-choice questionnaire.
type QuizConfig struct {
	Questions []QuizQuestion `json:"questions" bson:"questions"`
}

func (QuizConfig) TaskType() TaskType { return TaskTypeQuiz }

func (c QuizConfig) Validate() error {
	if len(c.Questions) == 0 {
		return fmt.Errorf("%w: quiz needs at least one question", ErrInvalidTaskConfig)
	}
	for i, q := range c.Questions {
		if q.Text == "" {
			return fmt.Errorf("%w: question %d has no text", ErrInvalidTaskConfig, i)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: question %d needs at least two options", ErrInvalidTaskConfig, i)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("%w: question %d correct index out of range", ErrInvalidTaskConfig, i)
		}
	}
	return nil
}

// ProgressConfig walks the patient through an ordered list of steps.
type ProgressConfig struct {
	Steps []string `json:"steps" bson:"steps"`
}

func (ProgressConfig) TaskType() TaskType { return TaskTypeProgress }

func (c ProgressConfig) Validate() error {
	if len(c.Steps) == 0 {
		return fmt.Errorf("%w: progress task needs at least one step", ErrInvalidTaskConfig)
	}
	return nil
}

// MediaConfig plays or displays an attached media resource.
type MediaConfig struct {
	Kind    string `json:"kind" bson:"kind"` // audio, video, image, document
	URL     string `json:"url" bson:"url"`
	Caption string `json:"caption,omitempty" bson:"caption,omitempty"`
}

func (MediaConfig) TaskType() TaskType { return TaskTypeMedia }

func (c MediaConfig) Validate() error {
	switch c.Kind {
	case "audio", "video", "image", "document":
	default:
		return fmt.Errorf("%w: media kind %q not supported", ErrInvalidTaskConfig, c.Kind)
	}
	if c.URL == "" {
		return fmt.Errorf("%w: media url is required", ErrInvalidTaskConfig)
	}
	return nil
}

// GoalConfig tracks a numeric target the patient works toward.
type GoalConfig struct {
	Description string `json:"description" bson:"description"`
	Target      int    `json:"target" bson:"target"`
	Unit        string `json:"unit,omitempty" bson:"unit,omitempty"`
}

func (GoalConfig) TaskType() TaskType { return TaskTypeGoal }

func (c GoalConfig) Validate() error {
	if c.Description == "" {
		return fmt.Errorf("%w: goal description is required", ErrInvalidTaskConfig)
	}
	if c.Target <= 0 {
		return fmt.Errorf("%w: goal target must be positive", ErrInvalidTaskConfig)
	}
	return nil
}

// ScaleConfig asks the patient to self-rate on a bounded scale.
type ScaleConfig struct {
	Min      int    `json:"min" bson:"min"`
	Max      int    `json:"max" bson:"max"`
	MinLabel string `json:"min_label,omitempty" bson:"min_label,omitempty"`
	MaxLabel string `json:"max_label,omitempty" bson:"max_label,omitempty"`
}

func (ScaleConfig) TaskType() TaskType { return TaskTypeScale }

func (c ScaleConfig) Validate() error {
	if c.Min >= c.Max {
		return fmt.Errorf("%w: scale min must be below max", ErrInvalidTaskConfig)
	}
	return nil
}

// StateLogConfig records which of a fixed set of states the patient is in.
type StateLogConfig struct {
	States []string `json:"states" bson:"states"`
}

func (StateLogConfig) TaskType() TaskType { return TaskTypeStateLog }

func (c StateLogConfig) Validate() error {
	if len(c.States) < 2 {
		return fmt.Errorf("%w: state log needs at least two states", ErrInvalidTaskConfig)
	}
	return nil
}

// EvidenceConfig asks the patient to upload proof of a completed activity.
type EvidenceConfig struct {
	Instructions string   `json:"instructions" bson:"instructions"`
	AllowedKinds []string `json:"allowed_kinds,omitempty" bson:"allowed_kinds,omitempty"`
}

func (EvidenceConfig) TaskType() TaskType { return TaskTypeEvidence }

func (c EvidenceConfig) Validate() error {
	if c.Instructions == "" {
		return fmt.Errorf("%w: evidence instructions are required", ErrInvalidTaskConfig)
	}
	return nil
}

// DecodeTaskConfig unmarshals raw JSON into the config variant selected by
// taskType and validates it.
func DecodeTaskConfig(taskType TaskType, raw json.RawMessage) (TaskConfig, error) {
	var cfg TaskConfig
	switch taskType {
	case TaskTypeTimer:
		cfg = &TimerConfig{}
	case TaskTypeTextInput:
		cfg = &TextInputConfig{}
	case TaskTypeQuiz:
		cfg = &QuizConfig{}
	case TaskTypeProgress:
		cfg = &ProgressConfig{}
	case TaskTypeMedia:
		cfg = &MediaConfig{}
	case TaskTypeGoal:
		cfg = &GoalConfig{}
	case TaskTypeScale:
		cfg = &ScaleConfig{}
	case TaskTypeStateLog:
		cfg = &StateLogConfig{}
	case TaskTypeEvidence:
		cfg = &EvidenceConfig{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTaskType, taskType)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTaskConfig, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
