package app

import (
	"context"

	"github.com/kridmal/nerd-stationery-sub000/internal/alert"
	"go.uber.org/zap"
)

// checkAlertSettings makes sure the singleton alert settings row exists
// so the admin UI and the alert cycle always find one.
func (a *Application) checkAlertSettings() {
	setting, err := alert.LoadOrCreateSetting(context.Background(), a.gormDB)
	if err != nil {
		zap.L().Error("failed to initialize alert settings", zap.Error(err))
		return
	}
	if setting.ReceiverEmail == "" {
		zap.L().Warn("stock alert receiver not configured, alerts will be skipped")
	}
}
