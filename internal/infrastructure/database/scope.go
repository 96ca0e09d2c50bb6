package database

import (
	"context"

	"sellerhub/pkg/errcode"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Scope 为一次调用从连接池取出一条专用连接，fn 结束后无论成功失败都归还
//
// 取连接失败返回 C0002；归还失败记日志，若 fn 本身成功则返回 C0003，
// fn 的错误优先返回。
func Scope(ctx context.Context, db *gorm.DB, log *zap.Logger, fn func(conn *gorm.DB) error) (err error) {
	sqlDB, err := db.DB()
	if err != nil {
		return errcode.ErrDBOpen.WithCause(err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return errcode.ErrDBOpen.WithCause(err)
	}

	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Error("归还数据库连接失败", zap.Error(cerr))
			if err == nil {
				err = errcode.ErrDBClose.WithCause(cerr)
			}
		}
	}()

	session := db.WithContext(ctx)
	session.Statement.ConnPool = conn
	return fn(session)
}

// Transact 在专用连接上开启事务，fn 返回 nil 才提交
func Transact(ctx context.Context, db *gorm.DB, log *zap.Logger, fn func(tx *gorm.DB) error) error {
	return Scope(ctx, db, log, func(conn *gorm.DB) error {
		return conn.Transaction(fn)
	})
}
