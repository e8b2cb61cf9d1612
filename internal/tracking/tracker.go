package tracking

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"qrcode-platform/internal/config"
	"qrcode-platform/internal/metrics"
	"qrcode-platform/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Tracker 后台执行扫码事件的持久化。同一个二维码的事件总是落到同一个 worker，按入队顺序处理。
type Tracker struct {
	db          *gorm.DB
	aggregator  *Aggregator
	queues      []chan *model.ScanEvent
	taskTimeout time.Duration
	logger      *zap.SugaredLogger

	mu      sync.RWMutex
	started bool
	stopped bool
	wg      sync.WaitGroup
}

// NewTracker 创建追踪器，调用 Start 后才开始消费
func NewTracker(db *gorm.DB, aggregator *Aggregator, cfg config.Tracking, logger *zap.SugaredLogger) *Tracker {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1
	}
	timeout := time.Duration(cfg.TaskTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	queues := make([]chan *model.ScanEvent, workers)
	for i := range queues {
		queues[i] = make(chan *model.ScanEvent, queueSize)
	}
	return &Tracker{
		db:          db,
		aggregator:  aggregator,
		queues:      queues,
		taskTimeout: timeout,
		logger:      logger.Named("tracker"),
	}
}

// Start 启动 worker，重复调用无效
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started || t.stopped {
		return
	}
	t.started = true
	for i, q := range t.queues {
		t.wg.Add(1)
		go t.worker(i, q)
	}
	t.logger.Infof("扫码追踪已启动，worker 数量: %d", len(t.queues))
}

// Enqueue 非阻塞入队。队列已满或已停止时丢弃事件并返回 false。
func (t *Tracker) Enqueue(ev *model.ScanEvent) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.stopped {
		t.drop(ev, "追踪器已停止")
		return false
	}
	select {
	case t.queues[shard(ev.QRCodeID, len(t.queues))] <- ev:
		metrics.ScanEventsEnqueued.Inc()
		metrics.TrackerQueueDepth.Inc()
		return true
	default:
		t.drop(ev, "队列已满")
		return false
	}
}

// Stop 停止接收新事件，处理完已入队的事件后返回
func (t *Tracker) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	started := t.started
	for _, q := range t.queues {
		close(q)
	}
	t.mu.Unlock()

	if !started {
		// 从未启动时直接在当前 goroutine 处理剩余事件
		for i, q := range t.queues {
			t.wg.Add(1)
			t.worker(i, q)
		}
	}
	t.wg.Wait()
	t.logger.Info("扫码追踪已停止，队列已清空")
}

func (t *Tracker) drop(ev *model.ScanEvent, reason string) {
	metrics.ScanEventsDropped.Inc()
	t.logger.Warnw("丢弃扫码事件",
		"reason", reason,
		"qr_code_id", ev.QRCodeID,
		"store_hash", ev.StoreHash,
	)
}

func (t *Tracker) worker(id int, q <-chan *model.ScanEvent) {
	defer t.wg.Done()
	for ev := range q {
		metrics.TrackerQueueDepth.Dec()
		t.process(ev)
	}
	t.logger.Debugf("worker %d 已退出", id)
}

// process 写入事件并更新统计，任何错误和 panic 都只记录
func (t *Tracker) process(ev *model.ScanEvent) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), t.taskTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			metrics.TrackFailures.WithLabelValues(metrics.StagePanic).Inc()
			t.logger.Errorw("扫码追踪任务 panic",
				"operation", "track_scan",
				"qr_code_id", ev.QRCodeID,
				"store_hash", ev.StoreHash,
				"error", fmt.Sprint(r),
			)
		}
		metrics.TrackDuration.Observe(time.Since(start).Seconds())
	}()

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().Unix()
	}
	if ev.SessionID == "" {
		ev.SessionID = uuid.NewString()
	}

	if err := t.db.WithContext(ctx).Create(ev).Error; err != nil {
		metrics.TrackFailures.WithLabelValues(metrics.StageEvent).Inc()
		t.logger.Errorw("写入扫码事件失败",
			"operation", "record_scan_event",
			"qr_code_id", ev.QRCodeID,
			"store_hash", ev.StoreHash,
			"error", err,
		)
		return
	}
	metrics.ScanEventsRecorded.Inc()

	t.aggregator.Apply(ctx, ev)
}

func shard(key string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}
