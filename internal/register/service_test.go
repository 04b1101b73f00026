package register

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"pizzeria-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testRegisterID = "test-cash-register"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// her test kendi in-memory veritabanını alır; cache=shared aynı test
	// içindeki transaction bağlantılarının aynı db'yi görmesini sağlar
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.CashRegister{},
		&models.CashMovement{},
		&models.CashTicket{},
		&models.Product{},
		&models.Sale{},
		&models.SaleItem{},
		&models.AuditLog{},
	))

	reg := models.CashRegister{
		ID:             testRegisterID,
		IsOpen:         false,
		CurrentBalance: decimal.Zero,
	}
	require.NoError(t, db.Create(&reg).Error)

	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{
		Name:         "Maria",
		LastName:     "Gonzalez",
		Email:        "maria@test.local",
		PasswordHash: "x",
		Role:         models.RoleAdmin,
		Active:       true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func newTestService(db *gorm.DB, at time.Time) *Service {
	svc := NewService(db, testRegisterID, time.UTC)
	svc.now = func() time.Time { return at }
	return svc
}

func addSale(t *testing.T, db *gorm.DB, userID uint, method models.PaymentMethod, total string, at time.Time) {
	t.Helper()
	amount, err := decimal.NewFromString(total)
	require.NoError(t, err)
	sale := models.Sale{
		OrderNumber:   fmt.Sprintf("V-%d-%s", at.UnixNano(), method),
		UserID:        userID,
		PaymentMethod: method,
		Subtotal:      amount,
		Discount:      decimal.Zero,
		Total:         amount,
		CreatedAt:     at,
	}
	require.NoError(t, db.Create(&sale).Error)
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestOpenRejectsNegativeAmount(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := newTestService(db, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	_, err := svc.Open(user, decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.EqualValues(t, 0, countRows(t, db, &models.CashMovement{}))
	assert.EqualValues(t, 0, countRows(t, db, &models.AuditLog{}))
}

func TestOpenTwiceReturnsAlreadyOpen(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	openAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(db, openAt)

	res, err := svc.Open(user, decimal.NewFromInt(100000))
	require.NoError(t, err)
	assert.True(t, res.Register.IsOpen)
	assert.Equal(t, models.MovementOpening, res.Movement.Type)
	require.NotNil(t, res.Register.LastOpenedAt)
	assert.True(t, res.Register.LastOpenedAt.Equal(openAt))

	_, err = svc.Open(user, decimal.NewFromInt(50000))
	assert.ErrorIs(t, err, ErrAlreadyOpen)

	// kaybeden istek hiçbir satır bırakmamalı
	var movs int64
	require.NoError(t, db.Model(&models.CashMovement{}).
		Where("type = ?", models.MovementOpening).Count(&movs).Error)
	assert.EqualValues(t, 1, movs)
	assert.EqualValues(t, 1, countRows(t, db, &models.AuditLog{}))

	// bakiye ilk açılışın tutarında kalır
	reg, err := svc.Register()
	require.NoError(t, err)
	assert.Equal(t, "100000.00", reg.CurrentBalance.StringFixed(2))
}

func TestCloseWithoutOpen(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	svc := newTestService(db, time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC))

	_, err := svc.Close(user, decimal.Zero)
	assert.ErrorIs(t, err, ErrAlreadyClosed)

	assert.EqualValues(t, 0, countRows(t, db, &models.CashMovement{}))
	assert.EqualValues(t, 0, countRows(t, db, &models.CashTicket{}))
	assert.EqualValues(t, 0, countRows(t, db, &models.AuditLog{}))
}

func TestSessionWindowBoundaries(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	openAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	closeAt := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

	svc := newTestService(db, openAt)
	_, err := svc.Open(user, decimal.Zero)
	require.NoError(t, err)

	// açılıştan önceki satış pencereye girmez
	addSale(t, db, user.ID, models.PaymentCash, "9999.00", openAt.Add(-time.Minute))
	// tam açılış anındaki satış dahildir (start dahil)
	addSale(t, db, user.ID, models.PaymentCash, "1000.00", openAt)
	// pencere içindeki satış
	addSale(t, db, user.ID, models.PaymentCard, "2000.00", openAt.Add(3*time.Hour))
	// tam kapanış anındaki satış hariçtir (end hariç)
	addSale(t, db, user.ID, models.PaymentTransfer, "5000.00", closeAt)

	svc.now = func() time.Time { return closeAt }
	res, err := svc.Close(user, decimal.NewFromInt(3000))
	require.NoError(t, err)

	assert.Equal(t, "1000.00", res.Ticket.CashTotal.StringFixed(2))
	assert.Equal(t, "2000.00", res.Ticket.CardTotal.StringFixed(2))
	assert.Equal(t, "0.00", res.Ticket.TransferTotal.StringFixed(2))
	assert.Equal(t, "3000.00", res.Ticket.TotalSales.StringFixed(2))
}

func TestFullDaySessionScenario(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	openAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	closeAt := time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)

	svc := newTestService(db, openAt)
	_, err := svc.Open(user, decimal.NewFromInt(100000))
	require.NoError(t, err)

	addSale(t, db, user.ID, models.PaymentCash, "20000.00", openAt.Add(3*time.Hour+15*time.Minute))
	addSale(t, db, user.ID, models.PaymentCard, "15000.00", openAt.Add(4*time.Hour+40*time.Minute))
	addSale(t, db, user.ID, models.PaymentTransfer, "5000.00", openAt.Add(8*time.Hour+5*time.Minute))

	// gün içi çekim bakiyeyi değiştirmez, sadece deftere yazılır
	svc.now = func() time.Time { return openAt.Add(5 * time.Hour) }
	_, err = svc.Extract(user, decimal.NewFromInt(30000), "Tedarikçi ödemesi")
	require.NoError(t, err)

	reg, err := svc.Register()
	require.NoError(t, err)
	assert.Equal(t, "100000.00", reg.CurrentBalance.StringFixed(2))

	// kapanıştan önce özet alınır; fiş aynı rakamları vermeli
	svc.now = func() time.Time { return closeAt }
	sum, err := svc.Summary()
	require.NoError(t, err)
	assert.True(t, sum.IsOpen)
	assert.Equal(t, "20000.00", sum.Cash.StringFixed(2))
	assert.Equal(t, "15000.00", sum.Card.StringFixed(2))
	assert.Equal(t, "5000.00", sum.Transfer.StringFixed(2))
	assert.Equal(t, "40000.00", sum.Total.StringFixed(2))
	assert.InDelta(t, 9.5, sum.HoursOpen, 0.001)

	res, err := svc.Close(user, decimal.NewFromInt(90000))
	require.NoError(t, err)

	assert.Equal(t, sum.Cash.StringFixed(2), res.Ticket.CashTotal.StringFixed(2))
	assert.Equal(t, sum.Card.StringFixed(2), res.Ticket.CardTotal.StringFixed(2))
	assert.Equal(t, sum.Transfer.StringFixed(2), res.Ticket.TransferTotal.StringFixed(2))
	assert.Equal(t, sum.Total.StringFixed(2), res.Ticket.TotalSales.StringFixed(2))
	assert.InDelta(t, 9.5, res.Ticket.HoursOpen, 0.001)
	assert.True(t, res.Ticket.OpenedAt.Equal(openAt))
	assert.True(t, res.Ticket.ClosedAt.Equal(closeAt))

	assert.False(t, res.Register.IsOpen)
	assert.Equal(t, "90000.00", res.Register.CurrentBalance.StringFixed(2))

	// kapanıştan sonra özet pencereyi kapanışta bitirir
	svc.now = func() time.Time { return closeAt.Add(2 * time.Hour) }
	addSale(t, db, user.ID, models.PaymentCash, "7777.00", closeAt.Add(time.Hour))
	after, err := svc.Summary()
	require.NoError(t, err)
	assert.False(t, after.IsOpen)
	assert.Equal(t, "40000.00", after.Total.StringFixed(2))
}

func TestExtractValidation(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(db, at)

	// kapalı kasadan çekim yapılamaz
	_, err := svc.Extract(user, decimal.NewFromInt(1000), "")
	assert.ErrorIs(t, err, ErrAlreadyClosed)

	_, err = svc.Open(user, decimal.NewFromInt(50000))
	require.NoError(t, err)

	_, err = svc.Extract(user, decimal.Zero, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Extract(user, decimal.NewFromInt(-100), "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	res, err := svc.Extract(user, decimal.NewFromInt(10000), "")
	require.NoError(t, err)
	assert.Equal(t, models.MovementExtraction, res.Movement.Type)
	assert.Equal(t, "Kasadan para çekildi", res.Movement.Description)
	assert.Equal(t, "50000.00", res.Register.CurrentBalance.StringFixed(2))
}

func TestNewServiceClockUsesLocation(t *testing.T) {
	db := newTestDB(t)
	loc := time.FixedZone("PYT", -4*3600)

	svc := NewService(db, testRegisterID, loc)
	assert.Equal(t, loc, svc.now().Location())

	// nil lokasyon sunucunun yerel saatine düşer
	svc = NewService(db, testRegisterID, nil)
	assert.Equal(t, time.Local, svc.now().Location())
}

func TestExtractGuardsRegisterRow(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	openAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	extractAt := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	svc := newTestService(db, openAt)
	_, err := svc.Open(user, decimal.NewFromInt(50000))
	require.NoError(t, err)

	// çekim kasa satırına koşullu update ile dokunur; salt okuma yeterli
	// değildir çünkü eşzamanlı bir kapanış okuma ile yazma arasına girebilir
	svc.now = func() time.Time { return extractAt }
	_, err = svc.Extract(user, decimal.NewFromInt(5000), "")
	require.NoError(t, err)

	reg, err := svc.Register()
	require.NoError(t, err)
	assert.True(t, reg.UpdatedAt.Equal(extractAt))

	// kapalı kasada koşullu update hiçbir satırı etkilemez, çekim yazılmaz
	closeAt := extractAt.Add(time.Hour)
	svc.now = func() time.Time { return closeAt }
	_, err = svc.Close(user, decimal.NewFromInt(45000))
	require.NoError(t, err)

	movs := countRows(t, db, &models.CashMovement{})
	_, err = svc.Extract(user, decimal.NewFromInt(1000), "")
	assert.ErrorIs(t, err, ErrAlreadyClosed)
	assert.Equal(t, movs, countRows(t, db, &models.CashMovement{}))
}

func TestFailedTransitionWritesNothing(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(db, at)

	_, err := svc.Open(user, decimal.NewFromInt(1000))
	require.NoError(t, err)
	svc.now = func() time.Time { return at.Add(8 * time.Hour) }
	_, err = svc.Close(user, decimal.NewFromInt(1000))
	require.NoError(t, err)

	movs := countRows(t, db, &models.CashMovement{})
	tickets := countRows(t, db, &models.CashTicket{})
	logs := countRows(t, db, &models.AuditLog{})

	// zaten kapalı kasayı tekrar kapatmak hiçbir iz bırakmaz
	_, err = svc.Close(user, decimal.NewFromInt(500))
	assert.ErrorIs(t, err, ErrAlreadyClosed)

	assert.Equal(t, movs, countRows(t, db, &models.CashMovement{}))
	assert.Equal(t, tickets, countRows(t, db, &models.CashTicket{}))
	assert.Equal(t, logs, countRows(t, db, &models.AuditLog{}))
}

func TestReopenStartsFreshSession(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	day1Open := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	day1Close := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	day2Open := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)

	svc := newTestService(db, day1Open)
	_, err := svc.Open(user, decimal.Zero)
	require.NoError(t, err)
	addSale(t, db, user.ID, models.PaymentCash, "10000.00", day1Open.Add(time.Hour))

	svc.now = func() time.Time { return day1Close }
	_, err = svc.Close(user, decimal.NewFromInt(10000))
	require.NoError(t, err)

	svc.now = func() time.Time { return day2Open }
	_, err = svc.Open(user, decimal.NewFromInt(20000))
	require.NoError(t, err)
	addSale(t, db, user.ID, models.PaymentCard, "3000.00", day2Open.Add(time.Hour))

	svc.now = func() time.Time { return day2Open.Add(4 * time.Hour) }
	sum, err := svc.Summary()
	require.NoError(t, err)

	// önceki oturumun satışları yeni pencereye sızmaz
	assert.Equal(t, "0.00", sum.Cash.StringFixed(2))
	assert.Equal(t, "3000.00", sum.Card.StringFixed(2))
	assert.Equal(t, "3000.00", sum.Total.StringFixed(2))

	// fiş sadece kapanışta yazılır, yeniden açılış fiş üretmez
	assert.EqualValues(t, 1, countRows(t, db, &models.CashTicket{}))
}

func TestTicketNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db, time.Now())

	_, err := svc.Ticket(999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRecordSaleOnlyWhenOpen(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(db, at)

	// kapalı kasa: hareket yazılmaz, hata da dönmez
	require.NoError(t, svc.RecordSale(db, user.ID, decimal.NewFromInt(5000), "V-1", at))
	assert.EqualValues(t, 0, countRows(t, db, &models.CashMovement{}))

	_, err := svc.Open(user, decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, svc.RecordSale(db, user.ID, decimal.NewFromInt(5000), "V-2", at))

	var mov models.CashMovement
	require.NoError(t, db.Where("type = ?", models.MovementSale).First(&mov).Error)
	assert.Equal(t, "5000.00", mov.Amount.StringFixed(2))
	assert.Equal(t, "Satış V-2", mov.Description)
}
