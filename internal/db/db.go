package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open подключает БД по driver/dsn.
// Поддержка: "postgres" (родная БД NIPAP) | "mysql" | "" (нет БД, VLAN-операции недоступны).
// Ошибки подключения возвращаются вызывающему, а не только логируются.
func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		// уникальный индекс (vlanid, porttype) -> gorm.ErrDuplicatedKey
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
	switch driver {
	case "":
		return nil, nil
	case "postgres":
		// Пример DSN:
		// host=nipap port=5432 user=nipap password=... dbname=nipap sslmode=disable
		return gorm.Open(postgres.Open(dsn), cfg)
	case "mysql":
		// Пример DSN:
		// user:pass@tcp(127.0.0.1:3306)/nipap?parseTime=true&charset=utf8mb4
		return gorm.Open(mysql.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Ping: проверка живости соединения для /readyz.
func Ping(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not configured")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
