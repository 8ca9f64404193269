package webapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/kridmal/nerd-stationery-sub000/internal/alert"
	"github.com/kridmal/nerd-stationery-sub000/internal/domain"
	"github.com/kridmal/nerd-stationery-sub000/internal/webserver"
	"github.com/kridmal/nerd-stationery-sub000/pkg/common"
	"github.com/labstack/echo/v4"
)

type alertSettingPayload struct {
	ReceiverEmail string   `json:"receiver_email" validate:"required,email"`
	CcEmails      []string `json:"cc_emails"`
	SendHour      string   `json:"send_hour" validate:"required,len=2"`
}

// registerAlertRoutes registers the stock-alert admin endpoints
func registerAlertRoutes() {
	webserver.ApiGET("/alerts/settings", getAlertSettings)
	webserver.ApiPUT("/alerts/settings", updateAlertSettings)
	webserver.ApiPOST("/alerts/run-now", runAlertCycleNow)
}

func getAlertSettings(c echo.Context) error {
	setting, err := alert.LoadOrCreateSetting(c.Request().Context(), deps.DB)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, setting)
}

func updateAlertSettings(c echo.Context) error {
	var payload alertSettingPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse alert settings", err.Error())
	}
	payload.ReceiverEmail = strings.TrimSpace(payload.ReceiverEmail)
	if !common.ValidEmail(payload.ReceiverEmail) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Receiver email is not a valid address", nil)
	}
	if !alert.ValidSendHour(payload.SendHour) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", `Send hour must be "00".."23"`, nil)
	}

	// malformed cc entries are dropped, not rejected
	var cc []string
	for _, addr := range payload.CcEmails {
		addr = strings.TrimSpace(addr)
		if common.ValidEmail(addr) {
			cc = append(cc, addr)
		}
	}

	setting, err := alert.LoadOrCreateSetting(c.Request().Context(), deps.DB)
	if err != nil {
		return failErr(c, err)
	}
	err = deps.DB.Model(&domain.AlertSetting{}).Where("id = ?", setting.ID).
		Updates(map[string]interface{}{
			"receiver_email": payload.ReceiverEmail,
			"cc_emails":      strings.Join(cc, ","),
			"send_hour":      payload.SendHour,
			"updated_at":     time.Now(),
		}).Error
	if err != nil {
		return failErr(c, err)
	}

	setting, err = alert.LoadOrCreateSetting(c.Request().Context(), deps.DB)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, setting)
}

func runAlertCycleNow(c echo.Context) error {
	result := deps.Alerts.TriggerNow(c.Request().Context())
	if result.Status == alert.StatusError {
		return c.JSON(http.StatusInternalServerError, result)
	}
	return c.JSON(http.StatusOK, result)
}
