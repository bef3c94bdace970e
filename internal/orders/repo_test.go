package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
)

func TestRepositoryCreatePersistsDetails(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	price := 12500
	variation := seedVariation(t, conn, &price)

	created, err := repo.Create(context.Background(), &models.Order{
		UserID:            uuid.New(),
		Currency:          enums.CurrencyRUB,
		DeliveryMethod:    enums.DeliveryMethodCDEK,
		DeliveryPointCode: "MSK67",
		Details: []models.OrderDetail{
			{VariationID: variation.ID, Quantity: 2, UnitPriceCents: 12500},
		},
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	loaded, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Details, 1)
	assert.Equal(t, 25000, loaded.AmountCents())
	assert.Equal(t, variation.ID, loaded.Details[0].VariationID)
	require.NotNil(t, loaded.Details[0].Variation)
	assert.Equal(t, "Чёрная M", loaded.Details[0].Variation.Title)
}

func TestRepositoryFindByIDMissing(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListByUserNewestFirst(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	userID := uuid.New()

	first, err := repo.Create(context.Background(), &models.Order{
		UserID:            userID,
		DeliveryMethod:    enums.DeliveryMethodCDEK,
		DeliveryPointCode: "MSK67",
	})
	require.NoError(t, err)
	second, err := repo.Create(context.Background(), &models.Order{
		UserID:            userID,
		DeliveryMethod:    enums.DeliveryMethodCDEK,
		DeliveryPointCode: "SPB12",
	})
	require.NoError(t, err)
	require.NoError(t, conn.Model(&models.Order{}).
		Where("id = ?", second.ID).
		Update("created_at", first.CreatedAt.Add(time.Second)).Error)

	_, err = repo.Create(context.Background(), &models.Order{
		UserID:            uuid.New(),
		DeliveryMethod:    enums.DeliveryMethodCDEK,
		DeliveryPointCode: "EKB01",
	})
	require.NoError(t, err)

	list, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestRepositorySetCarrierRef(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)

	created, err := repo.Create(context.Background(), &models.Order{
		UserID:            uuid.New(),
		DeliveryMethod:    enums.DeliveryMethodCDEK,
		DeliveryPointCode: "MSK67",
	})
	require.NoError(t, err)

	require.NoError(t, repo.SetCarrierRef(context.Background(), created.ID, "cdek-72753031"))

	loaded, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.CarrierOrderID)
	assert.Equal(t, "cdek-72753031", *loaded.CarrierOrderID)
}
