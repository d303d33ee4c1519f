package service

import (
	"context"
	"encoding/json"
	"fmt"

	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"

	"github.com/webprojects1100/rolyo/internal/datamodels/cart"
)

const redisCartKey = "cart:sess:%s" // sessionID

// Session 当前请求的会话标识。UserID 为 0 表示未登录，
// 身份显式传入而不是读全局状态，方便测试。
type Session struct {
	ID     string
	UserID int64
}

// CartService 购物车聚合：会话内的活跃购物车放 Redis，
// 每次变更先写 Redis（当前会话的权威数据），登录用户再尽力镜像到 MySQL。
type CartService struct {
	redis radix.Client
	repo  cart.Repository
}

// NewCartService 创建购物车服务
func NewCartService(redis radix.Client, repo cart.Repository) *CartService {
	return &CartService{redis: redis, repo: repo}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf(redisCartKey, sessionID)
}

func (s *CartService) load(sessionID string) (*cart.Cart, error) {
	var raw string
	if err := s.redis.Do(radix.Cmd(&raw, "GET", cartKey(sessionID))); err != nil {
		GetMonitor().RecordRedisError()
		return nil, err
	}
	c := &cart.Cart{}
	if raw == "" {
		return c, nil
	}
	if err := json.Unmarshal([]byte(raw), c); err != nil {
		// 缓存数据损坏，当空购物车处理
		zap.L().Warn("corrupt cart payload, resetting", zap.String("session", sessionID), zap.Error(err))
		return &cart.Cart{}, nil
	}
	return c, nil
}

func (s *CartService) save(sessionID string, c *cart.Cart) error {
	body, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := s.redis.Do(radix.FlatCmd(nil, "SET", cartKey(sessionID), body)); err != nil {
		GetMonitor().RecordRedisError()
		return err
	}
	return nil
}

// mirror 登录用户把购物车镜像到数据库。失败只记日志，
// 本地（Redis）状态已经生效，不能因为镜像失败丢掉本次变更。
func (s *CartService) mirror(ctx context.Context, sess Session, c *cart.Cart) {
	if sess.UserID == 0 {
		return
	}
	if err := s.repo.ReplaceForUser(ctx, sess.UserID, c.Lines); err != nil {
		GetMonitor().RecordDBError()
		zap.L().Warn("cart mirror failed",
			zap.Int64("user_id", sess.UserID),
			zap.Error(err))
	}
}

func (s *CartService) mutate(ctx context.Context, sess Session, fn func(*cart.Cart)) (*cart.Cart, error) {
	c, err := s.load(sess.ID)
	if err != nil {
		return nil, err
	}
	fn(c)
	if err := s.save(sess.ID, c); err != nil {
		return nil, err
	}
	s.mirror(ctx, sess, c)
	return c, nil
}

// Get 读取当前会话的购物车
func (s *CartService) Get(ctx context.Context, sess Session) (*cart.Cart, error) {
	return s.load(sess.ID)
}

// Add 加入一行，同 variant 合并数量
func (s *CartService) Add(ctx context.Context, sess Session, line cart.Line) (*cart.Cart, error) {
	return s.mutate(ctx, sess, func(c *cart.Cart) { c.Add(line) })
}

// SetQuantity 修改数量，0 及以下删除该行
func (s *CartService) SetQuantity(ctx context.Context, sess Session, variantID, qty int64) (*cart.Cart, error) {
	return s.mutate(ctx, sess, func(c *cart.Cart) { c.SetQuantity(variantID, qty) })
}

// Remove 删除一行
func (s *CartService) Remove(ctx context.Context, sess Session, variantID int64) (*cart.Cart, error) {
	return s.mutate(ctx, sess, func(c *cart.Cart) { c.Remove(variantID) })
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, sess Session) (*cart.Cart, error) {
	return s.mutate(ctx, sess, func(c *cart.Cart) { c.Clear() })
}

// SignIn 登录后用账号的持久化购物车替换会话购物车，
// 绝不把上一个账号残留的内容带给新账号。
func (s *CartService) SignIn(ctx context.Context, sessionID string, userID int64) (*cart.Cart, error) {
	c := &cart.Cart{}
	lines, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		GetMonitor().RecordDBError()
		zap.L().Warn("load persisted cart failed", zap.Int64("user_id", userID), zap.Error(err))
		// 读不到持久化购物车时也要清掉会话里的旧内容
	} else {
		c.Lines = lines
	}
	if err := s.save(sessionID, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SignOut 退出登录，清空会话购物车
func (s *CartService) SignOut(ctx context.Context, sessionID string) error {
	if err := s.redis.Do(radix.Cmd(nil, "DEL", cartKey(sessionID))); err != nil {
		GetMonitor().RecordRedisError()
		return err
	}
	return nil
}
