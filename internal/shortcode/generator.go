package shortcode

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// Charset 包含用于生成二维码 id 的所有字符
	Charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// CodeLength 是生成的 id 长度
	CodeLength = 7
	// ChannelBufferSize 是预生成通道的缓冲区大小
	ChannelBufferSize = 1000
	// MinFillThreshold 是触发补充的最小阈值
	MinFillThreshold = 100
	// maxAttempts 单个 id 的最大重试次数
	maxAttempts = 10
)

var ErrExhausted = errors.New("多次生成 id 均发生冲突")

// Checker 检查 id 是否已被占用
type Checker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Generator 预生成唯一 id 放入通道，创建二维码时直接取用
type Generator struct {
	checker   Checker
	codeChan  chan string
	mu        sync.Mutex
	isFilling bool
	stopChan  chan struct{}
	stopOnce  sync.Once
	logger    *zap.SugaredLogger
}

// NewGenerator 创建生成器实例
func NewGenerator(checker Checker, logger *zap.SugaredLogger) *Generator {
	return &Generator{
		checker:  checker,
		codeChan: make(chan string, ChannelBufferSize),
		stopChan: make(chan struct{}),
		logger:   logger.Named("shortcode_generator"),
	}
}

// Start 启动后台生成和补充任务
func (g *Generator) Start() {
	g.logger.Info("启动二维码 id 生成器...")
	go g.fillChannel()
	go g.monitorAndRefill()
}

// Stop 停止生成器，可重复调用
func (g *Generator) Stop() {
	g.stopOnce.Do(func() {
		g.logger.Info("正在停止二维码 id 生成器...")
		close(g.stopChan)
	})
}

// GetCode 优先从通道取预生成的 id，通道为空时同步生成
func (g *Generator) GetCode(ctx context.Context) (string, error) {
	select {
	case code := <-g.codeChan:
		return code, nil
	default:
	}
	return g.generateUniqueCode(ctx)
}

// monitorAndRefill 监视通道水位并按需补充
func (g *Generator) monitorAndRefill() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if len(g.codeChan) < MinFillThreshold {
				g.fillChannel()
			}
		case <-g.stopChan:
			g.logger.Info("已停止监控和补充任务。")
			return
		}
	}
}

// fillChannel 生成 id 并填满通道，同一时间只有一个填充任务
func (g *Generator) fillChannel() {
	g.mu.Lock()
	if g.isFilling {
		g.mu.Unlock()
		return
	}
	g.isFilling = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.isFilling = false
		g.mu.Unlock()
	}()

	g.logger.Debugf("通道中剩余 %d 个 id，开始补充...", len(g.codeChan))
	for len(g.codeChan) < ChannelBufferSize {
		select {
		case <-g.stopChan:
			g.logger.Info("填充任务已中断。")
			return
		default:
		}

		code, err := g.generateUniqueCode(context.Background())
		if err != nil {
			g.logger.Errorf("生成唯一 id 时出错: %v", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}
		select {
		case g.codeChan <- code:
		default:
			return
		}
	}
	g.logger.Debugf("id 通道已填满，现有 %d 个。", len(g.codeChan))
}

// generateUniqueCode 生成一个在数据库中不存在的 id
func (g *Generator) generateUniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		code, err := RandomString(CodeLength)
		if err != nil {
			return "", err
		}
		exists, err := g.checker.Exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	g.logger.Warnf("已尝试%d次生成 id，但均存在冲突。", maxAttempts)
	return "", ErrExhausted
}

// RandomString 使用加密安全的随机数生成指定长度的字符串
func RandomString(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(Charset))))
		if err != nil {
			return "", err
		}
		b[i] = Charset[num.Int64()]
	}
	return string(b), nil
}
