package job

import (
	"context"
	"time"

	"sellerhub/internal/infrastructure/lock"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const purchaseConfirmLockTTL = 5 * time.Minute

// Confirmer 由 service.ProgressService 实现
type Confirmer interface {
	ConfirmDelivered(ctx context.Context, delay time.Duration, systemAccountID int64, limit int) (int, error)
}

// PurchaseConfirmJob 배송완료 超过 delay 的子订单自动구매확정
// 多实例部署时用 Redis 锁保证同一时刻只有一个进程在扫描
type PurchaseConfirmJob struct {
	confirmer       Confirmer
	locker          lock.Locker // nil 时不加锁
	log             *zap.Logger
	spec            string
	delay           time.Duration
	systemAccountID int64
	batchSize       int
	cron            *cron.Cron
}

func NewPurchaseConfirmJob(confirmer Confirmer, locker lock.Locker, log *zap.Logger, spec string, delay time.Duration, systemAccountID int64, batchSize int) *PurchaseConfirmJob {
	log = log.Named("purchase_confirm")
	return &PurchaseConfirmJob{
		confirmer:       confirmer,
		locker:          locker,
		log:             log,
		spec:            spec,
		delay:           delay,
		systemAccountID: systemAccountID,
		batchSize:       batchSize,
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.PrintfLogger(zap.NewStdLog(log))),
			cron.SkipIfStillRunning(cron.PrintfLogger(zap.NewStdLog(log))),
		)),
	}
}

// Start 注册定时任务并启动调度，不阻塞
func (j *PurchaseConfirmJob) Start(ctx context.Context) error {
	if _, err := j.cron.AddFunc(j.spec, func() { j.RunOnce(ctx) }); err != nil {
		return err
	}
	j.cron.Start()
	j.log.Info("购买确认任务启动", zap.String("spec", j.spec), zap.Duration("delay", j.delay))
	return nil
}

// Stop 停止调度并等待正在执行的一轮结束
func (j *PurchaseConfirmJob) Stop() {
	<-j.cron.Stop().Done()
	j.log.Info("任务停止")
}

// RunOnce 执行一轮扫描，直到没有满批的待确认子订单，返回确认总数
func (j *PurchaseConfirmJob) RunOnce(ctx context.Context) int {
	if j.locker != nil {
		l := j.locker.NewLock(lock.PurchaseConfirmKey, purchaseConfirmLockTTL)
		ok, err := l.TryLock(ctx)
		if err != nil {
			j.log.Error("获取扫描锁失败", zap.Error(err))
			return 0
		}
		if !ok {
			j.log.Debug("其他实例正在扫描，跳过本轮")
			return 0
		}
		defer func() {
			if err := l.Unlock(context.Background()); err != nil {
				j.log.Warn("释放扫描锁失败", zap.Error(err))
			}
		}()
	}

	total := 0
	for ctx.Err() == nil {
		n, err := j.confirmer.ConfirmDelivered(ctx, j.delay, j.systemAccountID, j.batchSize)
		if err != nil {
			// 与人工操作冲突时整批回滚，下一轮重试
			j.log.Warn("购买确认失败", zap.Int("confirmed", total), zap.Error(err))
			break
		}
		total += n
		if n < j.batchSize {
			break
		}
	}

	if total > 0 {
		j.log.Info("购买确认完成", zap.Int("confirmed", total))
	}
	return total
}
