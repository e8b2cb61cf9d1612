package database

import (
	"fmt"
	"os"
	"path/filepath"
	"qrcode-platform/internal/config"
	"qrcode-platform/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 按配置的驱动建立连接
func Open(cfg config.DB) (*gorm.DB, error) {
	switch cfg.Driver {
	case "mysql":
		return InitMySQL(cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.Charset)
	case "sqlite":
		return InitSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %q", cfg.Driver)
	}
}

func InitMySQL(host string, port int, user, password, dbName, charset string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		user, password, host, port, dbName, charset)

	connection, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn), TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	return connection, nil
}

// InitSQLite 本地运行用的 sqlite，单连接避免写锁冲突
func InitSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("创建数据目录失败: %w", err)
		}
	}

	connection, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn), TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	sqlDB, err := connection.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return connection, nil
}

// Migrate 自动迁移全部表
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Store{},
		&model.QRCode{},
		&model.ScanEvent{},
		&model.ScanStats{},
		&model.ScanStatBucket{},
		&model.User{},
	)
	if err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	return nil
}
