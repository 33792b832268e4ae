package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"nepse-stock-scryper/internal/entity"
)

func nullDecimal(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func tradeDate(year int, month time.Month, day int) datatypes.Date {
	return datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func TestRepositories(t *testing.T) {
	tdb := setupTestDB(t)
	ctx := context.Background()
	companies := NewCompanyRepository(tdb.gorm)
	marketData := NewDailyMarketDataRepository(tdb.gorm)

	t.Run("CreateIfAbsent creates once", func(t *testing.T) {
		tdb.truncate(t)

		first := &entity.Company{TickerSymbol: "NABIL", Name: "NABIL (placeholder - needs name correction)", IsActive: true}
		created, err := companies.CreateIfAbsent(ctx, first)
		require.NoError(t, err)
		assert.True(t, created)
		require.NotEmpty(t, first.ID)

		second := &entity.Company{TickerSymbol: "NABIL", Name: "Nabil Bank Limited", IsActive: true}
		created, err = companies.CreateIfAbsent(ctx, second)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)

		found, err := companies.FindByTicker(ctx, "NABIL")
		require.NoError(t, err)
		assert.Equal(t, "NABIL (placeholder - needs name correction)", found.Name)

		_, err = companies.FindByTicker(ctx, "NOPE")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UpsertBatch is idempotent per company and day", func(t *testing.T) {
		tdb.truncate(t)

		company := &entity.Company{TickerSymbol: "HDL", Name: "HDL", IsActive: true}
		_, err := companies.CreateIfAbsent(ctx, company)
		require.NoError(t, err)

		day := tradeDate(2026, time.March, 5)
		row := entity.DailyMarketData{
			CompanyID:  company.ID,
			TradeDate:  day,
			ClosePrice: nullDecimal("2100.5"),
			MarketCap:  nullDecimal("5000000"),
		}
		affected, err := marketData.UpsertBatch(ctx, []entity.DailyMarketData{row})
		require.NoError(t, err)
		assert.EqualValues(t, 1, affected)

		rerun := entity.DailyMarketData{
			CompanyID:  company.ID,
			TradeDate:  day,
			ClosePrice: nullDecimal("2150"),
		}
		affected, err = marketData.UpsertBatch(ctx, []entity.DailyMarketData{rerun})
		require.NoError(t, err)
		assert.EqualValues(t, 1, affected)

		rows, err := marketData.FindByCompany(ctx, company.ID, 10)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.True(t, rows[0].ClosePrice.Decimal.Equal(decimal.RequireFromString("2150")))
		// market cap is not part of the update set
		assert.True(t, rows[0].MarketCap.Valid)
	})

	t.Run("FindLatestByCompany orders by trade date", func(t *testing.T) {
		tdb.truncate(t)

		company := &entity.Company{TickerSymbol: "NTC", Name: "NTC", IsActive: true}
		_, err := companies.CreateIfAbsent(ctx, company)
		require.NoError(t, err)

		_, err = marketData.FindLatestByCompany(ctx, company.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		for _, d := range []int{3, 5, 4} {
			require.NoError(t, marketData.Upsert(ctx, &entity.DailyMarketData{
				CompanyID:  company.ID,
				TradeDate:  tradeDate(2026, time.March, d),
				ClosePrice: nullDecimal("900"),
			}))
		}

		latest, err := marketData.FindLatestByCompany(ctx, company.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, time.Time(latest.TradeDate).Day())

		rows, err := marketData.FindByCompany(ctx, company.ID, 2)
		require.NoError(t, err)
		assert.Len(t, rows, 2)

		all, err := companies.FindAll(ctx, true)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}
