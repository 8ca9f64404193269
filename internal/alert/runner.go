// Package alert implements the daily low-stock notification cycle: a
// single-flight job polled once per minute that classifies products
// against their thresholds and emails the configured receiver at most
// once per calendar day.
package alert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kridmal/nerd-stationery-sub000/internal/domain"
	"github.com/kridmal/nerd-stationery-sub000/internal/inventory"
	"github.com/kridmal/nerd-stationery-sub000/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultSendHour = "09"

// Cycle outcome statuses and skip reasons.
const (
	StatusSent    = "sent"
	StatusSkipped = "skipped"
	StatusError   = "error"

	ReasonInFlight        = "in-flight"
	ReasonNoReceiver      = "no receiver"
	ReasonNoTransporter   = "no transporter"
	ReasonInvalidSendHour = "invalid send hour"
	ReasonAlreadySent     = "already sent today"
	ReasonNotSendHour     = "not send hour"
	ReasonNoStockIssues   = "no stock issues"
)

// Result is the structured outcome of one cycle. runCycle never returns
// an error value; every failure path resolves into a Result.
type Result struct {
	Status          string `json:"status"`
	Reason          string `json:"reason,omitempty"`
	Error           string `json:"error,omitempty"`
	SentEmails      int    `json:"sent_emails"`
	LowStockCount   int    `json:"low_stock_count"`
	OutOfStockCount int    `json:"out_of_stock_count"`
	Forced          bool   `json:"forced"`
}

// Runner holds the cycle state explicitly: the in-flight latch, the mail
// sender and the clock. One Runner is constructed per process and shared
// by the cron job and the run-now endpoint.
type Runner struct {
	db      *gorm.DB
	ledger  *inventory.Ledger
	sender  Sender
	running atomic.Bool
	now     func() time.Time
}

func NewRunner(db *gorm.DB, ledger *inventory.Ledger, sender Sender) *Runner {
	return &Runner{db: db, ledger: ledger, sender: sender, now: time.Now}
}

// RunCycle is the scheduled entry point, gated on send hour and the
// daily dedup marker.
func (r *Runner) RunCycle(ctx context.Context) Result {
	return r.runCycle(ctx, false, false)
}

// TriggerNow runs a cycle immediately, bypassing the time gates without
// writing the dedup marker, so a manual run never suppresses the next
// scheduled one.
func (r *Runner) TriggerNow(ctx context.Context) Result {
	return r.runCycle(ctx, true, true)
}

func (r *Runner) runCycle(ctx context.Context, force, skipMark bool) (result Result) {
	if !r.running.CompareAndSwap(false, true) {
		return Result{Status: StatusSkipped, Reason: ReasonInFlight, Forced: force}
	}
	defer r.running.Store(false)
	defer func() {
		if p := recover(); p != nil {
			zap.L().Error("alert cycle panic", zap.Any("panic", p))
			result = Result{Status: StatusError, Error: fmt.Sprint(p), Forced: force}
		}
	}()

	skipped := func(reason string) Result {
		return Result{Status: StatusSkipped, Reason: reason, Forced: force}
	}

	setting, err := LoadOrCreateSetting(ctx, r.db)
	if err != nil {
		return Result{Status: StatusError, Error: err.Error(), Forced: force}
	}

	if strings.TrimSpace(setting.ReceiverEmail) == "" {
		return skipped(ReasonNoReceiver)
	}
	if r.sender == nil {
		zap.L().Warn("stock alerts disabled: mail transport not configured")
		return skipped(ReasonNoTransporter)
	}

	// Hour gate and dedup marker both use the runner clock's local time,
	// one timezone for the whole decision.
	now := r.now()
	today := now.Format("2006-01-02")
	if !force {
		if !ValidSendHour(setting.SendHour) {
			return skipped(ReasonInvalidSendHour)
		}
		if setting.LastSentDate == today {
			return skipped(ReasonAlreadySent)
		}
		if now.Format("15") != setting.SendHour {
			return skipped(ReasonNotSendHour)
		}
	}

	products, err := r.ledger.ProductsWithThreshold(ctx)
	if err != nil {
		return Result{Status: StatusError, Error: err.Error(), Forced: force}
	}
	low, out := Classify(products)

	if len(low) == 0 && len(out) == 0 {
		if !skipMark {
			r.markSent(ctx, setting.ID, today)
		}
		return skipped(ReasonNoStockIssues)
	}

	cc := common.SplitRemoveEmpty(setting.CcEmails, ",")
	sent := 0
	if len(low) > 0 {
		if err := r.sendSet(setting.ReceiverEmail, cc, "Low stock alert - "+today,
			"Low Stock Products", today, "Low stock", low); err != nil {
			return Result{Status: StatusError, Error: err.Error(), Forced: force,
				LowStockCount: len(low), OutOfStockCount: len(out), SentEmails: sent}
		}
		sent++
	}
	if len(out) > 0 {
		if err := r.sendSet(setting.ReceiverEmail, cc, "Out of stock alert - "+today,
			"Out of Stock Products", today, "Out of stock", out); err != nil {
			return Result{Status: StatusError, Error: err.Error(), Forced: force,
				LowStockCount: len(low), OutOfStockCount: len(out), SentEmails: sent}
		}
		sent++
	}

	if !skipMark {
		r.markSent(ctx, setting.ID, today)
	}

	zap.L().Info("stock alert cycle completed",
		zap.Int("sent_emails", sent),
		zap.Int("low_stock", len(low)),
		zap.Int("out_of_stock", len(out)),
		zap.Bool("forced", force))

	return Result{
		Status:          StatusSent,
		SentEmails:      sent,
		LowStockCount:   len(low),
		OutOfStockCount: len(out),
		Forced:          force,
	}
}

func (r *Runner) sendSet(to string, cc []string, subject, title, date, status string, products []domain.Product) error {
	html, err := renderStockTable(title, date, status, products)
	if err != nil {
		return err
	}
	if err := r.sender.Send(to, cc, subject, html); err != nil {
		zap.L().Error("stock alert send failed", zap.String("subject", subject), zap.Error(err))
		return err
	}
	return nil
}

func (r *Runner) markSent(ctx context.Context, id int64, date string) {
	err := r.db.WithContext(ctx).Model(&domain.AlertSetting{}).
		Where("id = ?", id).
		Update("last_sent_date", date).Error
	if err != nil {
		zap.L().Error("failed to record alert dedup marker", zap.Error(err))
	}
}

// LoadOrCreateSetting returns the singleton alert settings row, creating
// it with defaults on first access.
func LoadOrCreateSetting(ctx context.Context, db *gorm.DB) (*domain.AlertSetting, error) {
	var setting domain.AlertSetting
	err := db.WithContext(ctx).Order("id ASC").First(&setting).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		setting = domain.AlertSetting{
			ID:       common.UUIDint64(),
			SendHour: DefaultSendHour,
		}
		if err := db.WithContext(ctx).Create(&setting).Error; err != nil {
			return nil, err
		}
		return &setting, nil
	case err != nil:
		return nil, err
	}
	return &setting, nil
}
