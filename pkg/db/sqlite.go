package db

import (
	"sync"

	"github.com/thep200/gitshare/cfg"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Sqlite giữ cache trong một file cục bộ, giống với bản client gốc
type Sqlite struct {
	Config  *cfg.Config
	once    sync.Once
	db      *gorm.DB
	initErr error
}

func NewSqlite(config *cfg.Config) (*Sqlite, error) {
	return &Sqlite{
		Config: config,
	}, nil
}

func (s *Sqlite) Db() (*gorm.DB, error) {
	s.once.Do(func() {
		path := s.Config.Database.SqlitePath
		if path == "" {
			path = "gitshare.db"
		}
		s.db, s.initErr = gorm.Open(sqlite.Open(path), &gorm.Config{})
	})
	return s.db, s.initErr
}

func (s *Sqlite) Ping() error {
	db, err := s.Db()
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (s *Sqlite) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		sqlDB.Close()
	}
	return nil
}

func (s *Sqlite) Migrate(models ...interface{}) error {
	db, err := s.Db()
	if err != nil {
		return err
	}
	return db.AutoMigrate(models...)
}
