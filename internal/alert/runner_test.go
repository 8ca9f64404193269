package alert

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kridmal/nerd-stationery-sub000/internal/domain"
	"github.com/kridmal/nerd-stationery-sub000/internal/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sendCall struct {
	To      string
	Cc      []string
	Subject string
	HTML    string
}

type fakeSender struct {
	mu      sync.Mutex
	calls   []sendCall
	block   chan struct{} // when non-nil, Send waits until closed
	started chan struct{} // signalled when Send begins
}

func (f *fakeSender) Send(to string, cc []string, subject, html string) error {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sendCall{To: to, Cc: cc, Subject: subject, HTML: html})
	return nil
}

func (f *fakeSender) sent() []sendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sendCall(nil), f.calls...)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, code string, qty, minQty int) {
	t.Helper()
	require.NoError(t, db.Create(&domain.Product{
		ItemCode:    code,
		Name:        "Product " + code,
		Quantity:    qty,
		MinQuantity: minQty,
	}).Error)
}

func seedSetting(t *testing.T, db *gorm.DB, receiver, cc, sendHour, lastSent string) *domain.AlertSetting {
	t.Helper()
	setting, err := LoadOrCreateSetting(context.Background(), db)
	require.NoError(t, err)
	require.NoError(t, db.Model(setting).Updates(map[string]interface{}{
		"receiver_email": receiver,
		"cc_emails":      cc,
		"send_hour":      sendHour,
		"last_sent_date": lastSent,
	}).Error)
	setting, err = LoadOrCreateSetting(context.Background(), db)
	require.NoError(t, err)
	return setting
}

func newTestRunner(t *testing.T, db *gorm.DB, sender Sender, at time.Time) *Runner {
	t.Helper()
	r := NewRunner(db, inventory.NewLedger(db), sender)
	r.now = func() time.Time { return at }
	return r
}

var nineThirty = time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)

func TestClassifyDisjoint(t *testing.T) {
	products := []domain.Product{
		{ItemCode: "NS-01", Quantity: 2, MinQuantity: 5}, // low
		{ItemCode: "NS-02", Quantity: 0, MinQuantity: 3}, // out
		{ItemCode: "NS-03", Quantity: 5, MinQuantity: 5}, // neither
		{ItemCode: "NS-04", Quantity: 7, MinQuantity: 3}, // neither
		{ItemCode: "NS-05", Quantity: 0, MinQuantity: 0}, // alerting disabled
	}
	low, out := Classify(products)
	require.Len(t, low, 1)
	require.Len(t, out, 1)
	assert.Equal(t, "NS-01", low[0].ItemCode)
	assert.Equal(t, "NS-02", out[0].ItemCode)
}

func TestValidSendHour(t *testing.T) {
	for _, valid := range []string{"00", "09", "15", "23"} {
		assert.True(t, ValidSendHour(valid), valid)
	}
	for _, invalid := range []string{"", "9", "24", "99", "ab", "123", "-1"} {
		assert.False(t, ValidSendHour(invalid), invalid)
	}
}

func TestRunCycleSendsAtConfiguredHour(t *testing.T) {
	db := newTestDB(t)
	seedProduct(t, db, "NS-01", 2, 5)
	seedProduct(t, db, "NS-02", 0, 3)
	seedSetting(t, db, "admin@nerdstationery.test", "boss@nerdstationery.test, ", "09", "")
	sender := &fakeSender{}
	runner := newTestRunner(t, db, sender, nineThirty)

	res := runner.RunCycle(context.Background())
	assert.Equal(t, StatusSent, res.Status)
	assert.Equal(t, 2, res.SentEmails)
	assert.Equal(t, 1, res.LowStockCount)
	assert.Equal(t, 1, res.OutOfStockCount)
	assert.False(t, res.Forced)

	calls := sender.sent()
	require.Len(t, calls, 2)
	assert.Equal(t, "admin@nerdstationery.test", calls[0].To)
	assert.Equal(t, []string{"boss@nerdstationery.test"}, calls[0].Cc)
	assert.Contains(t, calls[0].Subject, "2026-08-28")
	assert.Contains(t, calls[0].HTML, "NS-01")
	assert.Contains(t, calls[1].HTML, "NS-02")

	setting, err := LoadOrCreateSetting(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-28", setting.LastSentDate)
}

func TestRunCycleIdempotentWithinDay(t *testing.T) {
	db := newTestDB(t)
	seedProduct(t, db, "NS-01", 2, 5)
	seedSetting(t, db, "admin@nerdstationery.test", "", "09", "")
	sender := &fakeSender{}
	runner := newTestRunner(t, db, sender, nineThirty)

	first := runner.RunCycle(context.Background())
	second := runner.RunCycle(context.Background())

	assert.Equal(t, StatusSent, first.Status)
	assert.Equal(t, StatusSkipped, second.Status)
	assert.Equal(t, ReasonAlreadySent, second.Reason)
	assert.Len(t, sender.sent(), 1)
}

func TestRunCycleGateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("no receiver", func(t *testing.T) {
		db := newTestDB(t)
		seedSetting(t, db, "", "", "09", "")
		runner := newTestRunner(t, db, &fakeSender{}, nineThirty)
		res := runner.RunCycle(ctx)
		assert.Equal(t, StatusSkipped, res.Status)
		assert.Equal(t, ReasonNoReceiver, res.Reason)
	})

	t.Run("no transporter", func(t *testing.T) {
		db := newTestDB(t)
		seedSetting(t, db, "admin@nerdstationery.test", "", "09", "")
		runner := newTestRunner(t, db, nil, nineThirty)
		res := runner.RunCycle(ctx)
		assert.Equal(t, StatusSkipped, res.Status)
		assert.Equal(t, ReasonNoTransporter, res.Reason)
	})

	t.Run("invalid send hour", func(t *testing.T) {
		db := newTestDB(t)
		seedSetting(t, db, "admin@nerdstationery.test", "", "9am", "")
		runner := newTestRunner(t, db, &fakeSender{}, nineThirty)
		res := runner.RunCycle(ctx)
		assert.Equal(t, StatusSkipped, res.Status)
		assert.Equal(t, ReasonInvalidSendHour, res.Reason)
	})

	t.Run("not send hour", func(t *testing.T) {
		db := newTestDB(t)
		seedSetting(t, db, "admin@nerdstationery.test", "", "14", "")
		runner := newTestRunner(t, db, &fakeSender{}, nineThirty)
		res := runner.RunCycle(ctx)
		assert.Equal(t, StatusSkipped, res.Status)
		assert.Equal(t, ReasonNotSendHour, res.Reason)
	})
}

func TestRunCycleNoStockIssuesMarksDay(t *testing.T) {
	db := newTestDB(t)
	seedProduct(t, db, "NS-01", 10, 5)
	seedSetting(t, db, "admin@nerdstationery.test", "", "09", "")
	sender := &fakeSender{}
	runner := newTestRunner(t, db, sender, nineThirty)

	res := runner.RunCycle(context.Background())
	assert.Equal(t, StatusSkipped, res.Status)
	assert.Equal(t, ReasonNoStockIssues, res.Reason)
	assert.Empty(t, sender.sent())

	// the day is still marked so the gate does not re-evaluate all hour
	setting, err := LoadOrCreateSetting(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-28", setting.LastSentDate)
}

func TestTriggerNowBypassesGatesWithoutMarker(t *testing.T) {
	db := newTestDB(t)
	seedProduct(t, db, "NS-01", 2, 5)
	// wrong hour and already marked for today: force ignores both
	seedSetting(t, db, "admin@nerdstationery.test", "", "23", "2026-08-28")
	sender := &fakeSender{}
	runner := newTestRunner(t, db, sender, nineThirty)

	res := runner.TriggerNow(context.Background())
	assert.Equal(t, StatusSent, res.Status)
	assert.Equal(t, 1, res.SentEmails)
	assert.Equal(t, 1, res.LowStockCount)
	assert.Equal(t, 0, res.OutOfStockCount)
	assert.True(t, res.Forced)
	assert.Len(t, sender.sent(), 1)

	// dedup marker untouched, a scheduled run later still fires
	setting, err := LoadOrCreateSetting(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-28", setting.LastSentDate)
}

func TestRunCycleSingleFlight(t *testing.T) {
	db := newTestDB(t)
	seedProduct(t, db, "NS-01", 2, 5)
	seedSetting(t, db, "admin@nerdstationery.test", "", "09", "")
	sender := &fakeSender{
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	runner := newTestRunner(t, db, sender, nineThirty)

	var wg sync.WaitGroup
	var firstRes Result
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstRes = runner.TriggerNow(context.Background())
	}()
	<-sender.started

	second := runner.RunCycle(context.Background())
	assert.Equal(t, StatusSkipped, second.Status)
	assert.Equal(t, ReasonInFlight, second.Reason)

	close(sender.block)
	wg.Wait()
	assert.Equal(t, StatusSent, firstRes.Status)
	assert.Len(t, sender.sent(), 1)
}

func TestLoadOrCreateSettingDefaults(t *testing.T) {
	db := newTestDB(t)
	setting, err := LoadOrCreateSetting(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, DefaultSendHour, setting.SendHour)
	assert.Empty(t, setting.ReceiverEmail)
	assert.Empty(t, setting.LastSentDate)

	// second access returns the same row
	again, err := LoadOrCreateSetting(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, setting.ID, again.ID)
}
