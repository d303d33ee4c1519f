package main

import (
	"context"
	"encoding/json"
	"flag"

	"go.uber.org/zap"

	"github.com/webprojects1100/rolyo/internal/config"
	"github.com/webprojects1100/rolyo/internal/datamodels/order"
	"github.com/webprojects1100/rolyo/internal/infra/mq"
	"github.com/webprojects1100/rolyo/internal/logging"
	"github.com/webprojects1100/rolyo/internal/repository/mysql"
	"github.com/webprojects1100/rolyo/internal/service"
)

// 消费 order.placed 消息，把订单从 pending 推进到 processing。
// 消息只是触发器，订单本体在下单事务里已经落库，
// 这里失败重投不会造成重复扣库存。
func main() {
	configPath := flag.String("config", "./config", "配置文件目录")
	flag.Parse()

	logging.Init()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.L().Fatal("load config failed", zap.Error(err))
	}

	db := mysql.Init(&cfg.MySQL)
	orderRepo := mysql.NewOrderRepository(db)

	conn := mq.Init(&cfg.RabbitMQ)
	ch, err := conn.Channel()
	if err != nil {
		zap.L().Fatal("open channel failed", zap.Error(err))
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(mq.OrderQueue, true, false, false, false, nil); err != nil {
		zap.L().Fatal("declare queue failed", zap.Error(err))
	}
	// 逐条处理，避免 worker 崩溃时吞掉一批消息
	if err = ch.Qos(1, 0, false); err != nil {
		zap.L().Fatal("set qos failed", zap.Error(err))
	}

	msgs, err := ch.Consume(mq.OrderQueue, "", false, false, false, false, nil)
	if err != nil {
		zap.L().Fatal("consume failed", zap.Error(err))
	}

	zap.L().Info("order worker started", zap.String("queue", mq.OrderQueue))

	ctx := context.Background()
	for d := range msgs {
		var msg service.OrderPlacedMessage
		if err := json.Unmarshal(d.Body, &msg); err != nil {
			zap.L().Error("bad message, dropping", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}

		o, err := orderRepo.GetByID(ctx, msg.OrderID)
		if err != nil {
			zap.L().Error("load order failed, requeue",
				zap.Int64("order_id", msg.OrderID),
				zap.Error(err))
			_ = d.Nack(false, true)
			continue
		}

		// 已被后台推进过的订单不再动
		if o.Status == order.StatusPending {
			if err := orderRepo.UpdateStatus(ctx, o.ID, order.StatusProcessing); err != nil {
				zap.L().Error("advance order failed, requeue",
					zap.Int64("order_id", o.ID),
					zap.Error(err))
				_ = d.Nack(false, true)
				continue
			}
			zap.L().Info("order advanced to processing", zap.Int64("order_id", o.ID))
		}

		_ = d.Ack(false)
	}
}
