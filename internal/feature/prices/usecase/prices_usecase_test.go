package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metals_backend/internal/feature/prices/domain/entity"
)

// mockProvider is a hand-rolled PriceProvider with per-method hooks.
type mockProvider struct {
	statusFunc     func() entity.ConnectionStatus
	snapshotFunc   func(ctx context.Context, symbols []string) ([]entity.Quote, error)
	historicalFunc func(ctx context.Context, symbol string, start, end time.Time) ([]entity.PricePoint, error)

	snapshotCalls   int
	historicalCalls int
}

func (m *mockProvider) Status() entity.ConnectionStatus {
	if m.statusFunc != nil {
		return m.statusFunc()
	}
	return entity.ConnectionStatus{Available: true, Connected: true}
}

func (m *mockProvider) Snapshot(ctx context.Context, symbols []string) ([]entity.Quote, error) {
	m.snapshotCalls++
	return m.snapshotFunc(ctx, symbols)
}

func (m *mockProvider) HistoricalRange(ctx context.Context, symbol string, start, end time.Time) ([]entity.PricePoint, error) {
	m.historicalCalls++
	return m.historicalFunc(ctx, symbol, start, end)
}

// mockStore is a hand-rolled ObservationRepository recording every merge.
type mockStore struct {
	findRangeFunc func(ctx context.Context, symbol string, start, end time.Time) ([]entity.Observation, error)

	upsertCalls int
	upserted    []entity.Observation
}

func (m *mockStore) FindRange(ctx context.Context, symbol string, start, end time.Time) ([]entity.Observation, error) {
	if m.findRangeFunc != nil {
		return m.findRangeFunc(ctx, symbol, start, end)
	}
	return nil, nil
}

func (m *mockStore) UpsertBatch(ctx context.Context, observations []entity.Observation) error {
	m.upsertCalls++
	m.upserted = append(m.upserted, observations...)
	return nil
}

type mockSettlementStore struct {
	rows []entity.SettlementPrice
}

func (m *mockSettlementStore) FindRange(ctx context.Context, symbol string, start, end time.Time) ([]entity.SettlementPrice, error) {
	return m.rows, nil
}

func (m *mockSettlementStore) UpsertBatch(ctx context.Context, settlements []entity.SettlementPrice) error {
	m.rows = append(m.rows, settlements...)
	return nil
}

func newTestUsecase(provider *mockProvider, store *mockStore) *PricesUsecase {
	uc := NewPricesUsecase(provider, store, &mockSettlementStore{})
	uc.now = func() time.Time {
		return time.Date(2024, 6, 12, 14, 30, 0, 0, time.UTC)
	}
	return uc
}

func fptr(v float64) *float64 { return &v }

func dayUTC(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cachedRows(symbol string, dates ...time.Time) []entity.Observation {
	rows := make([]entity.Observation, 0, len(dates))
	for i, d := range dates {
		rows = append(rows, entity.Observation{Symbol: symbol, Date: d, PxLast: 9000 + float64(i)})
	}
	return rows
}

func TestGetHistoricalRange_SufficientCacheSkipsTerminal(t *testing.T) {
	t.Parallel()

	start := dayUTC(2024, 6, 3)
	end := dayUTC(2024, 6, 10) // 8 calendar days, threshold 6.4

	// 7 cached rows out of 8 days is above 80% coverage.
	dates := make([]time.Time, 0, 7)
	for i := 0; i < 7; i++ {
		dates = append(dates, start.AddDate(0, 0, i))
	}
	store := &mockStore{
		findRangeFunc: func(ctx context.Context, symbol string, s, e time.Time) ([]entity.Observation, error) {
			return cachedRows(symbol, dates...), nil
		},
	}
	provider := &mockProvider{}

	uc := newTestUsecase(provider, store)
	points, err := uc.GetHistoricalRange(context.Background(), "LMCADS03", start, end)
	require.NoError(t, err)

	assert.Equal(t, 0, provider.historicalCalls, "sufficient cache must not hit the terminal")
	require.Len(t, points, 7)
	assert.Equal(t, dates[0], points[0].Date)
	assert.Equal(t, 9000.0, points[0].Price)
}

func TestGetHistoricalRange_InsufficientCacheFetchesAndMerges(t *testing.T) {
	t.Parallel()

	start := dayUTC(2024, 6, 3)
	end := dayUTC(2024, 6, 10)

	// 6 cached rows out of 8 days is below the 80% threshold.
	dates := make([]time.Time, 0, 6)
	for i := 0; i < 6; i++ {
		dates = append(dates, start.AddDate(0, 0, i))
	}
	store := &mockStore{
		findRangeFunc: func(ctx context.Context, symbol string, s, e time.Time) ([]entity.Observation, error) {
			return cachedRows(symbol, dates...), nil
		},
	}
	fetched := []entity.PricePoint{
		{Date: dayUTC(2024, 6, 3), Price: 9510},
		{Date: dayUTC(2024, 6, 4), Price: 9520},
		{Date: dayUTC(2024, 6, 5), Price: 9530},
	}
	provider := &mockProvider{
		historicalFunc: func(ctx context.Context, symbol string, s, e time.Time) ([]entity.PricePoint, error) {
			assert.Equal(t, start, s)
			assert.Equal(t, end, e)
			return fetched, nil
		},
	}

	uc := newTestUsecase(provider, store)
	points, err := uc.GetHistoricalRange(context.Background(), "LMCADS03", start, end)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.historicalCalls)
	assert.Equal(t, fetched, points, "result is the fresh terminal set, not a store re-read")

	require.Len(t, store.upserted, 3, "every fetched point must be merged")
	assert.Equal(t, "LMCADS03", store.upserted[0].Symbol)
	assert.Equal(t, 9510.0, store.upserted[0].PxLast)
}

func TestGetHistoricalRange_EmptyTerminalFallsBackToCache(t *testing.T) {
	t.Parallel()

	start := dayUTC(2024, 6, 3)
	end := dayUTC(2024, 6, 10)

	cached := cachedRows("XAU=", dayUTC(2024, 6, 3), dayUTC(2024, 6, 4))
	store := &mockStore{
		findRangeFunc: func(ctx context.Context, symbol string, s, e time.Time) ([]entity.Observation, error) {
			return cached, nil
		},
	}
	provider := &mockProvider{
		historicalFunc: func(ctx context.Context, symbol string, s, e time.Time) ([]entity.PricePoint, error) {
			return nil, nil
		},
	}

	uc := newTestUsecase(provider, store)
	points, err := uc.GetHistoricalRange(context.Background(), "XAU=", start, end)
	require.NoError(t, err, "an unavailable terminal degrades to cached data, never an error")

	require.Len(t, points, 2)
	assert.Equal(t, 0, store.upsertCalls, "nothing to merge on an empty terminal response")
}

func TestGetHistoricalRange_EmptyCacheAndEmptyTerminal(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{
		historicalFunc: func(ctx context.Context, symbol string, s, e time.Time) ([]entity.PricePoint, error) {
			return nil, nil
		},
	}
	uc := newTestUsecase(provider, &mockStore{})

	points, err := uc.GetHistoricalRange(context.Background(), "LMNIDS03", dayUTC(2024, 6, 3), dayUTC(2024, 6, 10))
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestGetHistoricalRange_ProviderErrorAbortsWithoutMerge(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	provider := &mockProvider{
		historicalFunc: func(ctx context.Context, symbol string, s, e time.Time) ([]entity.PricePoint, error) {
			return nil, context.Canceled
		},
	}

	uc := newTestUsecase(provider, store)
	_, err := uc.GetHistoricalRange(context.Background(), "LMCADS03", dayUTC(2024, 6, 3), dayUTC(2024, 6, 10))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, store.upsertCalls, "an abandoned fetch must not merge anything")
}

func TestGetLatestQuotes_ProviderErrorAbortsWithoutMerge(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	provider := &mockProvider{
		snapshotFunc: func(ctx context.Context, symbols []string) ([]entity.Quote, error) {
			return nil, context.Canceled
		},
	}

	uc := newTestUsecase(provider, store)
	_, err := uc.GetLatestQuotes(context.Background(), []string{"LMCADS03"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, store.upsertCalls, "an abandoned snapshot must not merge anything")
}

func TestGetLatestQuotes_MergesAndDerivesChangePct(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{
		snapshotFunc: func(ctx context.Context, symbols []string) ([]entity.Quote, error) {
			assert.Equal(t, []string{"LMCADS03", "XAU="}, symbols)
			return []entity.Quote{
				{
					Symbol:      "LMCADS03",
					Description: "LME Copper 3M",
					Category:    "CA",
					LastPrice:   fptr(105),
					Change:      fptr(5),
				},
				{
					Symbol:    "XAU=",
					LastPrice: fptr(2300),
					Change:    fptr(10),
					ChangePct: fptr(0.42),
				},
			}, nil
		},
	}
	store := &mockStore{}

	uc := newTestUsecase(provider, store)
	quotes, err := uc.GetLatestQuotes(context.Background(), []string{"LMCADS03", "XAU="})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	assert.True(t, quotes[0].IsLive)
	assert.Equal(t, 105.0, quotes[0].PxLast)
	// change_pct absent: derived from change against the implied open of 100.
	require.NotNil(t, quotes[0].ChangePct)
	assert.InDelta(t, 5.0, *quotes[0].ChangePct, 1e-9)
	// change_pct present: passed through untouched.
	require.NotNil(t, quotes[1].ChangePct)
	assert.Equal(t, 0.42, *quotes[1].ChangePct)

	require.Len(t, store.upserted, 2, "live quotes must be merged before returning")
	assert.Equal(t, dayUTC(2024, 6, 12), store.upserted[0].Date, "merge dates at today midnight UTC")
	assert.Equal(t, "LME Copper 3M", store.upserted[0].Description)
}

func TestGetLatestQuotes_OmitsUnpricedSymbols(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{
		snapshotFunc: func(ctx context.Context, symbols []string) ([]entity.Quote, error) {
			return []entity.Quote{
				{Symbol: "LMCADS03", LastPrice: fptr(9500)},
				{Symbol: "BOGUS"}, // terminal answered but carried no price
			}, nil
		},
	}
	store := &mockStore{}

	uc := newTestUsecase(provider, store)
	quotes, err := uc.GetLatestQuotes(context.Background(), []string{"LMCADS03", "BOGUS"})
	require.NoError(t, err)

	require.Len(t, quotes, 1)
	assert.Equal(t, "LMCADS03", quotes[0].Symbol)
	assert.Len(t, store.upserted, 1, "unpriced symbols must not be merged")
}

func TestRecordSettlements_NormalizesDates(t *testing.T) {
	t.Parallel()

	settlements := &mockSettlementStore{}
	uc := NewPricesUsecase(&mockProvider{}, &mockStore{}, settlements)

	err := uc.RecordSettlements(context.Background(), []entity.SettlementPrice{
		{Symbol: "LMCADS03", Date: time.Date(2024, 6, 10, 17, 45, 0, 0, time.UTC), SettlementPrice: 9480},
	})
	require.NoError(t, err)
	require.Len(t, settlements.rows, 1)
	assert.Equal(t, dayUTC(2024, 6, 10), settlements.rows[0].Date)
}

func TestChangePercent(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 10.0, changePercent(110, 100), 1e-9)
	assert.Equal(t, 0.0, changePercent(110, 0), "zero open yields zero, not a division error")
}

func TestCalendarDays(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, calendarDays(dayUTC(2024, 6, 10), dayUTC(2024, 6, 10)))
	assert.Equal(t, 8, calendarDays(dayUTC(2024, 6, 3), dayUTC(2024, 6, 10)))
}
