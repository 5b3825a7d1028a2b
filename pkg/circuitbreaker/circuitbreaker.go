// Package circuitbreaker 外部依赖调用熔断
//
// 状态机：
//
//	CLOSED --连续失败达到阈值--> OPEN --Timeout到期--> HALF_OPEN
//	HALF_OPEN --探测成功--> CLOSED
//	HALF_OPEN --探测失败--> OPEN
//
// 用于图书目录客户端：目录服务不可用时快速失败，避免每个搜索请求都等待超时。
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrOpenState 熔断器打开（或半开探测名额已满），请求未执行
var ErrOpenState = errors.New("circuit breaker is open")

// Config 熔断器配置，零值字段使用默认值
type Config struct {
	// FailureThreshold 连续失败多少次后打开，默认5
	FailureThreshold uint32
	// Timeout OPEN状态持续时间，默认30s
	Timeout time.Duration
	// HalfOpenRequests 半开状态允许的并发探测数，默认1
	HalfOpenRequests uint32
	// IsFailure 判断错误是否计入失败，默认所有非nil错误
	// 调用方取消（context.Canceled）永远不计入
	IsFailure func(err error) bool
	// OnStateChange 状态变化回调（在锁外调用）
	OnStateChange func(name string, from, to State)
}

// Counts 当前状态下的统计
type Counts struct {
	Requests            uint32
	Successes           uint32
	Failures            uint32
	ConsecutiveFailures uint32
}

type CircuitBreaker struct {
	name string
	cfg  Config
	now  func() time.Time

	mu       sync.Mutex
	state    State
	counts   Counts
	inflight uint32 // 半开状态下正在执行的探测数
	openedAt time.Time
}

// New 创建熔断器
func New(name string, cfg Config) *CircuitBreaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HalfOpenRequests == 0 {
		cfg.HalfOpenRequests = 1
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = func(err error) bool { return err != nil }
	}
	return &CircuitBreaker{name: name, cfg: cfg, now: time.Now}
}

func (cb *CircuitBreaker) Name() string { return cb.name }

// Execute 在熔断保护下执行fn
// 熔断时不调用fn，直接返回ErrOpenState
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	probe, err := cb.before()
	if err != nil {
		return err
	}

	err = fn(ctx)

	failed := err != nil && !errors.Is(err, context.Canceled) && cb.cfg.IsFailure(err)
	cb.after(probe, failed)
	return err
}

// State 当前状态（OPEN超时后读取会返回HALF_OPEN）
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	from, to := cb.refresh()
	cb.notify(from, to)
	return cb.state
}

// Counts 当前状态下的统计快照
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.counts
}

func (cb *CircuitBreaker) before() (probe bool, err error) {
	cb.mu.Lock()
	from, to := cb.refresh()
	defer func() {
		cb.mu.Unlock()
		cb.notify(from, to)
	}()

	switch cb.state {
	case StateOpen:
		return false, ErrOpenState
	case StateHalfOpen:
		if cb.inflight >= cb.cfg.HalfOpenRequests {
			return false, ErrOpenState
		}
		cb.inflight++
		probe = true
	}
	cb.counts.Requests++
	return probe, nil
}

func (cb *CircuitBreaker) after(probe, failed bool) {
	cb.mu.Lock()
	if probe && cb.inflight > 0 {
		cb.inflight--
	}

	from := cb.state
	if failed {
		cb.counts.Failures++
		cb.counts.ConsecutiveFailures++
		if cb.state == StateHalfOpen || cb.counts.ConsecutiveFailures >= cb.cfg.FailureThreshold {
			cb.transition(StateOpen)
		}
	} else {
		cb.counts.Successes++
		cb.counts.ConsecutiveFailures = 0
		if cb.state == StateHalfOpen {
			cb.transition(StateClosed)
		}
	}
	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
}

// refresh OPEN超时后转为HALF_OPEN，调用方持有锁
func (cb *CircuitBreaker) refresh() (from, to State) {
	from = cb.state
	if cb.state == StateOpen && !cb.now().Before(cb.openedAt.Add(cb.cfg.Timeout)) {
		cb.transition(StateHalfOpen)
	}
	return from, cb.state
}

func (cb *CircuitBreaker) transition(to State) {
	if cb.state == to {
		return
	}
	cb.state = to
	cb.counts = Counts{}
	cb.inflight = 0
	if to == StateOpen {
		cb.openedAt = cb.now()
	}
}

func (cb *CircuitBreaker) notify(from, to State) {
	if from != to && cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(cb.name, from, to)
	}
}
