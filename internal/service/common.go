package service

import (
	"context"

	"sellerhub/internal/model"
	"sellerhub/pkg/errcode"

	"go.uber.org/zap"
)

// Caller 已通过认证的调用方
type Caller struct {
	AccountID int64
	IsMaster  bool
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// normalizePage 校验分页参数，limit 为 0 时取默认值
func normalizePage(limit, offset int) (int, int, error) {
	if limit < 0 || offset < 0 || limit > maxPageLimit {
		return 0, 0, errcode.ErrInvalidPage
	}
	if limit == 0 {
		limit = defaultPageLimit
	}
	return limit, offset, nil
}

// wrapInternal 业务错误原样返回，其他错误记录日志后包装为 C0001
func wrapInternal(log *zap.Logger, err error) error {
	if err == nil {
		return nil
	}
	wrapped := errcode.Internal(err)
	if e := errcode.From(wrapped); e.Kind == errcode.KindInfra {
		log.Error("请求处理失败", zap.String("code", e.Code), zap.Error(err))
	}
	return wrapped
}

// notifyBestEffort 通知失败只记日志
func notifyBestEffort(ctx context.Context, log *zap.Logger, notifier Notifier, notes []*model.Notification) {
	if notifier == nil || len(notes) == 0 {
		return
	}
	if err := notifier.Notify(ctx, notes); err != nil {
		log.Warn("发送订单通知失败", zap.Int("count", len(notes)), zap.Error(err))
	}
}

func dedupIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
