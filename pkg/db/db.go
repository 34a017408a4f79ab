// Gói db cung cấp kết nối cơ sở dữ liệu cho cache ngôn ngữ và bảng activity.
// Hỗ trợ hai driver: mysql (server) và sqlite (embedded, giống bản mobile gốc).

package db

import (
	"fmt"

	"github.com/thep200/gitshare/cfg"
	"gorm.io/gorm"
)

type Connector interface {
	Db() (*gorm.DB, error)
	Ping() error
	Close() error
	Migrate(models ...interface{}) error
}

// FactoryConnector chọn connector dựa theo cấu hình
func FactoryConnector(config *cfg.Config) (Connector, error) {
	switch config.Database.Driver {
	case "mysql":
		return NewMysql(config)
	case "sqlite":
		return NewSqlite(config)
	default:
		return nil, fmt.Errorf("[ERROR] Unsupported database driver: %s", config.Database.Driver)
	}
}
