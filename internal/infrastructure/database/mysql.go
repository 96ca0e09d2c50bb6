package database

import (
	"fmt"
	"time"

	"sellerhub/internal/config"
	"sellerhub/internal/infrastructure/logger"
	"sellerhub/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InitMySQL 初始化 MySQL 连接
func InitMySQL(cfg *config.MySQLConfig, logCfg *config.LogConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.NewGormLogger(log, logger.GormLevel(logCfg.Level), 200*time.Millisecond),
	})
	if err != nil {
		return nil, fmt.Errorf("连接 MySQL 失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 DB 失败: %w", err)
	}

	// 连接池配置
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	log.Info("MySQL 连接成功", zap.String("host", cfg.Host), zap.String("database", cfg.Database))
	return db, nil
}

// Migrate 自动迁移表结构并写入基础数据
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Account{},
		&model.Master{},
		&model.SellerAttribute{},
		&model.Seller{},
		&model.Manager{},
		&model.SellerStatusLog{},
		&model.Product{},
		&model.Color{},
		&model.Size{},
		&model.Option{},
		&model.Receiver{},
		&model.Order{},
		&model.DetailOrder{},
		&model.DetailOrderStatusLog{},
		&model.OutboxMessage{},
	)
	if err != nil {
		return fmt.Errorf("自动迁移表结构失败: %w", err)
	}

	// 卖家类别是固定数据，重复执行不报错
	attrs := append([]model.SellerAttribute(nil), model.DefaultSellerAttributes...)
	err = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&attrs).Error
	if err != nil {
		return fmt.Errorf("写入卖家类别失败: %w", err)
	}
	return nil
}

// Close 关闭连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
