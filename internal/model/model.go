package model

import (
	"time"

	"github.com/thep200/gitshare/cfg"
	"github.com/thep200/gitshare/pkg/db"
	"github.com/thep200/gitshare/pkg/log"
)

type Model struct {
	Config    *cfg.Config  `gorm:"-"`
	Logger    log.Logger   `gorm:"-"`
	Db        db.Connector `gorm:"-"`
	ID        uint         `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
