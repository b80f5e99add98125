package mongo

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
)

// decodeTaskConfig unmarshals a stored config document into the variant
// selected by taskType. Mirrors domain.DecodeTaskConfig for BSON.
func decodeTaskConfig(taskType domain.TaskType, raw bson.Raw) (domain.TaskConfig, error) {
	var cfg domain.TaskConfig
	switch taskType {
	case domain.TaskTypeTimer:
		cfg = &domain.TimerConfig{}
	case domain.TaskTypeTextInput:
		cfg = &domain.TextInputConfig{}
	case domain.TaskTypeQuiz:
		cfg = &domain.QuizConfig{}
	case domain.TaskTypeProgress:
		cfg = &domain.ProgressConfig{}
	case domain.TaskTypeMedia:
		cfg = &domain.MediaConfig{}
	case domain.TaskTypeGoal:
		cfg = &domain.GoalConfig{}
	case domain.TaskTypeScale:
		cfg = &domain.ScaleConfig{}
	case domain.TaskTypeStateLog:
		cfg = &domain.StateLogConfig{}
	case domain.TaskTypeEvidence:
		cfg = &domain.EvidenceConfig{}
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTaskType, taskType)
	}

	if len(raw) > 0 {
		if err := bson.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidTaskConfig, err)
		}
	}
	return cfg, nil
}

// encodeTaskConfig marshals the concrete config variant to a BSON document.
func encodeTaskConfig(cfg domain.TaskConfig) (bson.Raw, error) {
	if cfg == nil {
		return nil, nil
	}
	data, err := bson.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode task config: %w", err)
	}
	return bson.Raw(data), nil
}
