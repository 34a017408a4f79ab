package model

import (
	"fmt"
	"time"

	"github.com/thep200/gitshare/cfg"
	"github.com/thep200/gitshare/pkg/db"
	"github.com/thep200/gitshare/pkg/log"
	"gorm.io/gorm"
)

// ActivityMessage là payload gửi qua Kafka khi cache ngôn ngữ được refresh
type ActivityMessage struct {
	Username string    `json:"username"`
	Action   string    `json:"action"`
	Detail   string    `json:"detail"`
	At       time.Time `json:"at"`
}

// Activity lưu các sự kiện refresh cache để thống kê offline
type Activity struct {
	Model
	Username string `json:"username" gorm:"column:username;type:varchar(255);not null;index"`
	Action   string `json:"action" gorm:"column:action;type:varchar(64);not null"`
	Detail   string `json:"detail" gorm:"column:detail;type:text"`
}

func NewActivity(config *cfg.Config, logger log.Logger, db db.Connector) (*Activity, error) {
	return &Activity{
		Model: Model{
			Config: config,
			Logger: logger,
			Db:     db,
		},
	}, nil
}

func (a *Activity) TableName() string {
	return "activities"
}

// CreateBatch ghi một lô activity message trong một transaction
func (a *Activity) CreateBatch(messages []ActivityMessage) error {
	db, err := a.Db.Db()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	activities := make([]Activity, 0, len(messages))
	for _, msg := range messages {
		activity := Activity{
			Username: TruncateString(msg.Username, 250),
			Action:   TruncateString(msg.Action, 60),
			Detail:   TruncateString(msg.Detail, 65000),
		}
		activity.CreatedAt = msg.At
		activity.UpdatedAt = msg.At
		activities = append(activities, activity)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.CreateInBatches(activities, 100)
		if result.Error != nil {
			return fmt.Errorf("failed to batch create activities: %w", result.Error)
		}
		return nil
	})
}
