package app

import (
	"fmt"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/kridmal/nerd-stationery-sub000/internal/domain"
	"github.com/kridmal/nerd-stationery-sub000/internal/order"
	"github.com/kridmal/nerd-stationery-sub000/pkg/common"
	"go.uber.org/zap"
)

func (a *Application) initEventBus() {
	a.bus = EventBus.New()
	if err := a.bus.SubscribeAsync(order.TopicOrderCreated, a.onOrderCreated, false); err != nil {
		zap.S().Errorf("event bus subscribe error %s", err.Error())
	}
}

// onOrderCreated writes an activity log entry for a placed order. The
// checkout itself has already committed; a logging failure is only logged.
func (a *Application) onOrderCreated(ord *domain.Order) {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	err := a.gormDB.Create(&domain.SysActivityLog{
		ID:      common.UUIDint64(),
		Action:  order.TopicOrderCreated,
		RefID:   ord.ID,
		Detail:  fmt.Sprintf("order %s placed, %d lines, total %s", ord.OrderNo, len(ord.Items), ord.GrandTotal.StringFixed(2)),
		OptTime: time.Now(),
	}).Error
	if err != nil {
		zap.L().Warn("failed to write order activity log", zap.Error(err))
	}
}
