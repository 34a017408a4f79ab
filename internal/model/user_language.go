package model

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/thep200/gitshare/cfg"
	"github.com/thep200/gitshare/pkg/db"
	"github.com/thep200/gitshare/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LanguageStat là một cặp (ngôn ngữ, số repository) trong top ngôn ngữ của user
type LanguageStat struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

// UserLanguage là tier bền vững của cache ngôn ngữ, một dòng cho mỗi username.
// Cột languages giữ chuỗi JSON của top ngôn ngữ, ghi đè toàn bộ mỗi lần refresh.
type UserLanguage struct {
	Model
	Username  string    `json:"username" gorm:"column:username;type:varchar(255);uniqueIndex;not null"`
	Languages string    `json:"languages" gorm:"column:languages;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func NewUserLanguage(config *cfg.Config, logger log.Logger, db db.Connector) (*UserLanguage, error) {
	return &UserLanguage{
		Model: Model{
			Config: config,
			Logger: logger,
			Db:     db,
		},
	}, nil
}

func (u *UserLanguage) TableName() string {
	return "user_languages"
}

// Find trả về bản ghi cache của username, hoặc nil nếu chưa có
func (u *UserLanguage) Find(ctx context.Context, username string) (*UserLanguage, error) {
	db, err := u.Db.Db()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	var rec UserLanguage
	result := db.WithContext(ctx).Where("username = ?", username).First(&rec)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	return &rec, nil
}

// Upsert ghi đè toàn bộ danh sách ngôn ngữ của username (last write wins)
func (u *UserLanguage) Upsert(ctx context.Context, username string, stats []LanguageStat) error {
	db, err := u.Db.Db()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	encoded, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal languages: %w", err)
	}

	now := time.Now()
	rec := &UserLanguage{
		Username:  TruncateString(username, 250),
		Languages: string(encoded),
		UpdatedAt: now,
	}
	rec.CreatedAt = now

	if err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"languages", "updated_at"}),
	}).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to upsert user languages: %w", err)
	}

	return nil
}

// TopLanguages giải mã cột languages thành danh sách LanguageStat
func (u *UserLanguage) TopLanguages() ([]LanguageStat, error) {
	if u.Languages == "" {
		return []LanguageStat{}, nil
	}

	var stats []LanguageStat
	if err := json.Unmarshal([]byte(u.Languages), &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal languages: %w", err)
	}

	return stats, nil
}
