package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/teleshopapp/teleshop-backend/internal/goods"
	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
)

type sqliteTx struct {
	db *gorm.DB
}

func (s sqliteTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

type cartTableClearer struct{}

func (cartTableClearer) ClearTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return tx.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

var orderSchema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT,
		phone TEXT,
		full_name TEXT NOT NULL DEFAULT '',
		telegram_id INTEGER,
		password_hash TEXT,
		role TEXT NOT NULL DEFAULT 'customer',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE goods (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		vat_rate TEXT NOT NULL DEFAULT 'vat_5',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE good_variations (
		id TEXT PRIMARY KEY,
		good_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		latest_price_cents INTEGER,
		latest_price_date DATETIME,
		weight_kg REAL NOT NULL DEFAULT 0,
		length_cm REAL NOT NULL DEFAULT 0,
		width_cm REAL NOT NULL DEFAULT 0,
		height_cm REAL NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE good_variation_photos (
		id TEXT PRIMARY KEY,
		variation_id TEXT NOT NULL,
		url TEXT NOT NULL,
		is_main INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME
	)`,
	`CREATE TABLE cart_items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		variation_id TEXT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		currency TEXT NOT NULL DEFAULT 'RUB',
		delivery_method TEXT NOT NULL,
		delivery_point_code TEXT NOT NULL DEFAULT '',
		carrier_order_id TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE order_details (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		variation_id TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		unit_price_cents INTEGER NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE payments (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		method TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'created',
		link TEXT NOT NULL DEFAULT '',
		created_at DATETIME,
		updated_at DATETIME
	)`,
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	for _, stmt := range orderSchema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return conn
}

type stubStatusReader struct {
	status enums.DeliveryStatus
	err    error
	calls  int
}

func (s *stubStatusReader) GetStatus(ctx context.Context, order *models.Order) (enums.DeliveryStatus, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.status, nil
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	return newTestServiceWithStatus(t, conn, &stubStatusReader{status: enums.DeliveryStatusWaitingForPayment})
}

func newTestServiceWithStatus(t *testing.T, conn *gorm.DB, statuses *stubStatusReader) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), goods.NewRepository(conn), cartTableClearer{}, statuses, sqliteTx{db: conn})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedVariation(t *testing.T, conn *gorm.DB, priceCents *int) *models.GoodVariation {
	t.Helper()
	goodID := uuid.New()
	if err := conn.Create(&models.Good{ID: goodID, Title: "Куртка"}).Error; err != nil {
		t.Fatalf("seed good: %v", err)
	}
	variation := &models.GoodVariation{
		ID:       uuid.New(),
		GoodID:   goodID,
		Title:    "Чёрная M",
		WeightKG: 1.5,
	}
	if priceCents != nil {
		now := time.Now()
		variation.LatestPriceCents = priceCents
		variation.LatestPriceDate = &now
	}
	if err := conn.Create(variation).Error; err != nil {
		t.Fatalf("seed variation: %v", err)
	}
	return variation
}

func countRows(t *testing.T, conn *gorm.DB, model any) int64 {
	t.Helper()
	var count int64
	if err := conn.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return count
}

func TestCreateSnapshotsPrices(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	userID := uuid.New()

	priceA, priceB := 100, 50
	a := seedVariation(t, conn, &priceA)
	b := seedVariation(t, conn, &priceB)

	order, err := svc.Create(ctx, userID, CreateInput{
		Items: []LineInput{
			{VariationID: a.ID, Quantity: 2},
			{VariationID: b.ID, Quantity: 1},
		},
		DeliveryMethod:    enums.DeliveryMethodCDEK,
		DeliveryPointCode: "MSK1",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if got := order.AmountCents(); got != 250 {
		t.Fatalf("expected total 250, got %d", got)
	}

	// Later catalog price changes must not move the snapshot.
	if err := conn.Model(&models.GoodVariation{}).
		Where("id = ?", a.ID).
		Update("latest_price_cents", 99999).Error; err != nil {
		t.Fatalf("reprice variation: %v", err)
	}

	loaded, err := svc.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if got := loaded.AmountCents(); got != 250 {
		t.Fatalf("expected snapshot total 250 after reprice, got %d", got)
	}
}

func TestCreateUnknownVariationPersistsNothing(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	price := 100
	known := seedVariation(t, conn, &price)

	_, err := svc.Create(ctx, uuid.New(), CreateInput{
		Items: []LineInput{
			{VariationID: known.ID, Quantity: 1},
			{VariationID: uuid.New(), Quantity: 1},
		},
		DeliveryMethod:    enums.DeliveryMethodCDEK,
		DeliveryPointCode: "MSK1",
	})
	var typed *pkgerrors.Error
	if !pkgerrors.As(err, &typed) || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}

	if countRows(t, conn, &models.Order{}) != 0 || countRows(t, conn, &models.OrderDetail{}) != 0 {
		t.Fatal("expected nothing persisted")
	}
}

func TestCreateUnpricedVariationPersistsNothing(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	unpriced := seedVariation(t, conn, nil)

	_, err := svc.Create(ctx, uuid.New(), CreateInput{
		Items:             []LineInput{{VariationID: unpriced.ID, Quantity: 1}},
		DeliveryMethod:    enums.DeliveryMethodCDEK,
		DeliveryPointCode: "MSK1",
	})
	var typed *pkgerrors.Error
	if !pkgerrors.As(err, &typed) || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if countRows(t, conn, &models.Order{}) != 0 {
		t.Fatal("expected no order persisted")
	}
}

func TestCreateClearsCartInSameTransaction(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	userID := uuid.New()

	price := 100
	variation := seedVariation(t, conn, &price)
	if err := conn.Create(&models.CartItem{
		ID:          uuid.New(),
		UserID:      userID,
		VariationID: variation.ID,
		Quantity:    2,
	}).Error; err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	if _, err := svc.Create(ctx, userID, CreateInput{
		Items:             []LineInput{{VariationID: variation.ID, Quantity: 2}},
		DeliveryMethod:    enums.DeliveryMethodCDEK,
		DeliveryPointCode: "MSK1",
	}); err != nil {
		t.Fatalf("create order: %v", err)
	}

	if countRows(t, conn, &models.CartItem{}) != 0 {
		t.Fatal("expected cart cleared with the order insert")
	}
}

func TestGetOwnedEnforcesOwnership(t *testing.T) {
	conn := openTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	owner := uuid.New()

	price := 100
	variation := seedVariation(t, conn, &price)
	order, err := svc.Create(ctx, owner, CreateInput{
		Items:             []LineInput{{VariationID: variation.ID, Quantity: 1}},
		DeliveryMethod:    enums.DeliveryMethodCDEK,
		DeliveryPointCode: "MSK1",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if _, err := svc.GetOwned(ctx, order.ID, owner); err != nil {
		t.Fatalf("get owned: %v", err)
	}

	_, err = svc.GetOwned(ctx, order.ID, uuid.New())
	var typed *pkgerrors.Error
	if !pkgerrors.As(err, &typed) || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestGetStatusDelegatesToDelivery(t *testing.T) {
	conn := openTestDB(t)
	statuses := &stubStatusReader{status: enums.DeliveryStatusShipped}
	svc := newTestServiceWithStatus(t, conn, statuses)
	ctx := context.Background()
	owner := uuid.New()

	price := 100
	variation := seedVariation(t, conn, &price)
	order, err := svc.Create(ctx, owner, CreateInput{
		Items:             []LineInput{{VariationID: variation.ID, Quantity: 1}},
		DeliveryMethod:    enums.DeliveryMethodCDEK,
		DeliveryPointCode: "MSK1",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	status, err := svc.GetStatus(ctx, order.ID, owner)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if status == nil || *status != enums.DeliveryStatusShipped {
		t.Fatalf("expected SHIPPED, got %v", status)
	}
}

func TestGetStatusDegradesOnCarrierFailure(t *testing.T) {
	conn := openTestDB(t)
	statuses := &stubStatusReader{err: pkgerrors.New(pkgerrors.CodeDependency, "carrier down")}
	svc := newTestServiceWithStatus(t, conn, statuses)
	ctx := context.Background()
	owner := uuid.New()

	price := 100
	variation := seedVariation(t, conn, &price)
	order, err := svc.Create(ctx, owner, CreateInput{
		Items:             []LineInput{{VariationID: variation.ID, Quantity: 1}},
		DeliveryMethod:    enums.DeliveryMethodCDEK,
		DeliveryPointCode: "MSK1",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	status, err := svc.GetStatus(ctx, order.ID, owner)
	if err != nil {
		t.Fatalf("expected graceful degradation, got %v", err)
	}
	if status != nil {
		t.Fatalf("expected nil status, got %v", status)
	}

	// Ownership is still enforced ahead of the carrier call.
	_, err = svc.GetStatus(ctx, order.ID, uuid.New())
	var typed *pkgerrors.Error
	if !pkgerrors.As(err, &typed) || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestListByUserNewestFirst(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()

	older := &models.Order{
		ID:             uuid.New(),
		UserID:         userID,
		DeliveryMethod: enums.DeliveryMethodCDEK,
		CreatedAt:      time.Now().Add(-time.Hour),
	}
	newer := &models.Order{
		ID:             uuid.New(),
		UserID:         userID,
		DeliveryMethod: enums.DeliveryMethodCDEK,
		CreatedAt:      time.Now(),
	}
	for _, order := range []*models.Order{older, newer} {
		if _, err := repo.Create(ctx, order); err != nil {
			t.Fatalf("create order: %v", err)
		}
	}

	list, err := repo.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}
}
