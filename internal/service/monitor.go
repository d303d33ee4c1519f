package service

import (
	"sync"
	"time"
)

// Monitor 监控服务，用于统计错误和下单指标
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	RedisErrors int64
	MQErrors    int64
	DBErrors    int64

	// 下单统计
	CheckoutRequests int64
	CheckoutSuccess  int64
	StockRejections  int64

	// 时间统计
	LastRedisError   time.Time
	LastMQError      time.Time
	LastDBError      time.Time
	LastCheckoutTime time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordRedisError 记录 Redis 错误
func (m *Monitor) RecordRedisError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RedisErrors++
	m.LastRedisError = time.Now()
}

// RecordMQError 记录 MQ 错误
func (m *Monitor) RecordMQError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MQErrors++
	m.LastMQError = time.Now()
}

// RecordDBError 记录数据库错误
func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
	m.LastDBError = time.Now()
}

// RecordCheckoutRequest 记录下单请求
func (m *Monitor) RecordCheckoutRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutRequests++
	m.LastCheckoutTime = time.Now()
}

// RecordCheckoutSuccess 记录下单成功
func (m *Monitor) RecordCheckoutSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutSuccess++
}

// RecordStockRejection 记录因库存不足拒绝的下单
func (m *Monitor) RecordStockRejection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StockRejections++
}

// Snapshot 导出当前计数，后台监控接口用
func (m *Monitor) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return map[string]interface{}{
		"redis_errors":      m.RedisErrors,
		"mq_errors":         m.MQErrors,
		"db_errors":         m.DBErrors,
		"checkout_requests": m.CheckoutRequests,
		"checkout_success":  m.CheckoutSuccess,
		"stock_rejections":  m.StockRejections,
	}
}
