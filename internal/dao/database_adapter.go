package dao

import (
	"fmt"
	"time"

	"github.com/gogf/gf/v2/database/gdb"
	"github.com/gogf/gf/v2/frame/g"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gormModel "github.com/cleardocs/backend/internal/model/gorm"
)

// buildDSN 按 database.default 配置拼 gorm 驱动的连接串。
// postgres 是默认部署目标，mysql 作为备选保留。
func buildDSN(cfg *gdb.ConfigNode) (string, error) {
	switch cfg.Type {
	case "pgsql", "postgres", "postgresql":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.Host, cfg.User, cfg.Pass, cfg.Name, cfg.Port), nil
	case "mysql":
		charset := cfg.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
			cfg.User, cfg.Pass, cfg.Host, cfg.Port, cfg.Name, charset), nil
	default:
		return "", fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

func openDialector(cfg *gdb.ConfigNode, dsn string) gorm.Dialector {
	if cfg.Type == "mysql" {
		return mysql.Open(dsn)
	}
	return postgres.Open(dsn)
}

// initDatabase 建立 gorm 连接并迁移账户/套餐表
func initDatabase() (*gorm.DB, error) {
	cfg := g.DB().GetConfig()

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(openDialector(cfg, dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		// 唯一约束冲突需要翻译成 gorm.ErrDuplicatedKey，注册竞态依赖这个判断
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %v", err)
	}

	// 连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err = gormModel.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database tables: %v", err)
	}

	return db, nil
}
