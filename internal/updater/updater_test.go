package updater

import (
	"context"
	"fmt"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"diabatcher/internal/asset"
	"diabatcher/internal/dia"
	"diabatcher/internal/storage"
)

var quoteTime = time.Date(2022, 12, 24, 13, 33, 59, 0, time.UTC)

// mockDia is a fixed in-memory DiaApi implementation.
type mockDia struct {
	quotable      []dia.QuotedAsset
	quotations    map[asset.Specifier]dia.Quotation
	discoveryErr  error
	discoverCalls atomic.Int64
}

func (m *mockDia) GetQuotableAssets(context.Context) ([]dia.QuotedAsset, error) {
	m.discoverCalls.Add(1)
	if m.discoveryErr != nil {
		return nil, m.discoveryErr
	}
	return m.quotable, nil
}

func (m *mockDia) GetQuotation(_ context.Context, quoted dia.QuotedAsset) (dia.Quotation, error) {
	spec := asset.Specifier{Blockchain: quoted.Asset.Blockchain, Symbol: quoted.Asset.Symbol}
	q, ok := m.quotations[spec]
	if !ok {
		return dia.Quotation{}, fmt.Errorf("no quotation for %s", spec)
	}
	return q, nil
}

func quotation(symbol, name, blockchain, price, volume string) dia.Quotation {
	return dia.Quotation{
		Symbol:          symbol,
		Name:            name,
		Blockchain:      blockchain,
		Price:           decimal.RequireFromString(price),
		PriceYesterday:  decimal.RequireFromString(price),
		VolumeYesterday: decimal.RequireFromString(volume),
		Time:            quoteTime,
		Source:          "diadata.org",
	}
}

func newMockDia() *mockDia {
	return &mockDia{
		quotable: []dia.QuotedAsset{
			{Asset: dia.Asset{Symbol: "BTC", Name: "Bitcoin", Blockchain: "Bitcoin", Address: "0x0", Decimals: 8}, Volume: 3818975389.095178},
			{Asset: dia.Asset{Symbol: "ETH", Name: "Ether", Blockchain: "Ethereum", Address: "0x0", Decimals: 18}, Volume: 791232743.889491},
			{Asset: dia.Asset{Symbol: "USDT", Name: "Tether USD", Blockchain: "Ethereum", Address: "0xdAC1", Decimals: 6}, Volume: 294107237.463418},
			{Asset: dia.Asset{Symbol: "USDC", Name: "USD Coin", Blockchain: "Ethereum", Address: "0xA0b8", Decimals: 6}, Volume: 205584209.531937},
		},
		quotations: map[asset.Specifier]dia.Quotation{
			{Blockchain: "Bitcoin", Symbol: "BTC"}:   quotation("BTC", "BTC", "Bitcoin", "1.000000000000", "0.123456789012345"),
			{Blockchain: "Ethereum", Symbol: "ETH"}:  quotation("ETH", "ETH", "Ethereum", "1.000000000000", "298134760"),
			{Blockchain: "Ethereum", Symbol: "USDT"}: quotation("USDT", "USDT", "Ethereum", "1.000000000001", "0.000000000001"),
			{Blockchain: "Ethereum", Symbol: "USDC"}: quotation("USDC", "USDC", "Ethereum", "123456789.123456789012345", "298134760"),
			{Blockchain: "FIAT", Symbol: "MXN-USD"}: {
				Symbol:          "MXN-USD",
				Name:            "MXNUSD=X",
				Price:           decimal.RequireFromString("0.053712327"),
				PriceYesterday:  decimal.RequireFromString("0.053910317166666666"),
				VolumeYesterday: decimal.Zero,
				Time:            quoteTime,
				Source:          "YahooFinance",
			},
			{Blockchain: "FIAT", Symbol: "USD-USD"}: dia.DefaultFiatUSDQuotation(),
		},
	}
}

func newTestUpdater(t *testing.T, api DiaApi, allow asset.Set) (*Updater, *storage.CoinInfoStorage) {
	t.Helper()

	store := storage.New()
	u, err := New(Config{IterationBudget: time.Minute}, api, store, allow, nil)
	require.NoError(t, err)
	return u, store
}

func TestUpdatePrices_OpenModeStoresAllDiscovered(t *testing.T) {
	t.Parallel()

	u, store := newTestUpdater(t, newMockDia(), nil)
	u.UpdatePrices(context.Background())

	got := store.GetByAssets([]asset.Specifier{
		{Blockchain: "Bitcoin", Symbol: "BTC"},
		{Blockchain: "Ethereum", Symbol: "ETH"},
		{Blockchain: "Ethereum", Symbol: "USDT"},
		{Blockchain: "Ethereum", Symbol: "USDC"},
	})
	require.Len(t, got, 4)
	require.Equal(t, big.NewInt(1000000000000), got[1].Price)
	require.Equal(t, "ETH", got[1].Name)
	require.Equal(t, uint64(quoteTime.Unix()), got[1].LastUpdateTimestamp)
}

func TestUpdatePrices_ConvertedValues(t *testing.T) {
	t.Parallel()

	u, store := newTestUpdater(t, newMockDia(), nil)
	u.UpdatePrices(context.Background())

	got := store.GetByAssets([]asset.Specifier{
		{Blockchain: "Bitcoin", Symbol: "BTC"},
		{Blockchain: "Ethereum", Symbol: "USDC"},
		{Blockchain: "Ethereum", Symbol: "USDT"},
	})
	require.Len(t, got, 3)

	require.Equal(t, big.NewInt(1000000000000), got[0].Price)
	require.Equal(t, big.NewInt(123456789012), got[0].Supply)

	wantPrice, ok := new(big.Int).SetString("123456789123456789012", 10)
	require.True(t, ok)
	wantSupply, ok := new(big.Int).SetString("298134760000000000000", 10)
	require.True(t, ok)
	require.Equal(t, wantPrice, got[1].Price)
	require.Equal(t, wantSupply, got[1].Supply)

	require.Equal(t, big.NewInt(1000000000001), got[2].Price)
	require.Equal(t, big.NewInt(1), got[2].Supply)
}

func TestUpdatePrices_AllowSetWithFiatAndCrypto(t *testing.T) {
	t.Parallel()

	allow := asset.NewSet(
		asset.Specifier{Blockchain: "Bitcoin", Symbol: "BTC"},
		asset.Specifier{Blockchain: "FIAT", Symbol: "MXN-USD"},
	)
	u, store := newTestUpdater(t, newMockDia(), allow)
	u.UpdatePrices(context.Background())

	got := store.GetByAssets([]asset.Specifier{
		{Blockchain: "Bitcoin", Symbol: "BTC"},
		{Blockchain: "FIAT", Symbol: "MXN-USD"},
	})
	require.Len(t, got, 2)
	require.Equal(t, big.NewInt(53712327000), got[1].Price)
	require.Equal(t, "MXNUSD=X", got[1].Name)

	// Non-selected discovered assets were not published.
	require.Empty(t, store.GetByAssets([]asset.Specifier{{Blockchain: "Ethereum", Symbol: "ETH"}}))
}

func TestUpdatePrices_FiatUSDReference(t *testing.T) {
	t.Parallel()

	allow := asset.NewSet(asset.Specifier{Blockchain: "FIAT", Symbol: "USD-USD"})
	u, store := newTestUpdater(t, newMockDia(), allow)
	u.UpdatePrices(context.Background())

	got := store.GetByAssets([]asset.Specifier{{Blockchain: "FIAT", Symbol: "USD-USD"}})
	require.Len(t, got, 1)
	require.Equal(t, big.NewInt(1000000000000), got[0].Price)
	require.Equal(t, "USD-X", got[0].Name)
	require.Equal(t, "FIAT", got[0].Blockchain)
}

func TestUpdatePrices_UnknownKeysAbsent(t *testing.T) {
	t.Parallel()

	u, store := newTestUpdater(t, newMockDia(), nil)
	u.UpdatePrices(context.Background())

	require.Empty(t, store.GetByAssets([]asset.Specifier{
		{Blockchain: "Bitcoin", Symbol: "BTCCash"},
		{Blockchain: "Ethereum", Symbol: "ETHCase"},
	}))
	require.Empty(t, store.GetByAssets(nil))

	got := store.GetByAssets([]asset.Specifier{
		{Blockchain: "Bitcoin", Symbol: "BTC"},
		{Blockchain: "Ethereum", Symbol: "ETHCase"},
	})
	require.Len(t, got, 1)
	require.Equal(t, "BTC", got[0].Name)
}

func TestUpdatePrices_DiscoveryFailureKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()

	api := newMockDia()
	u, store := newTestUpdater(t, api, nil)
	u.UpdatePrices(context.Background())
	require.Len(t, store.GetBySymbols([]string{"BTC"}), 1)

	// Next iteration fails discovery entirely; nothing is replaced.
	api.discoveryErr = fmt.Errorf("connection refused")
	u.UpdatePrices(context.Background())

	got := store.GetBySymbols([]string{"BTC", "ETH", "USDT", "USDC"})
	require.Len(t, got, 4)
}

func TestUpdatePrices_OneBadAssetSkipsOnlyThatAsset(t *testing.T) {
	t.Parallel()

	api := newMockDia()
	// ETH quotation becomes unavailable.
	delete(api.quotations, asset.Specifier{Blockchain: "Ethereum", Symbol: "ETH"})
	u, store := newTestUpdater(t, api, nil)

	u.UpdatePrices(context.Background())

	require.Empty(t, store.GetBySymbols([]string{"ETH"}))
	require.Len(t, store.GetBySymbols([]string{"BTC", "USDT", "USDC"}), 3)
}

func TestUpdatePrices_ConversionFailureSkipsAsset(t *testing.T) {
	t.Parallel()

	api := newMockDia()
	q := api.quotations[asset.Specifier{Blockchain: "Bitcoin", Symbol: "BTC"}]
	q.Price = decimal.RequireFromString("-1")
	api.quotations[asset.Specifier{Blockchain: "Bitcoin", Symbol: "BTC"}] = q

	u, store := newTestUpdater(t, api, nil)
	u.UpdatePrices(context.Background())

	require.Empty(t, store.GetBySymbols([]string{"BTC"}))
	require.Len(t, store.GetBySymbols([]string{"ETH"}), 1)
}

func TestRun_RepeatsUntilCanceled(t *testing.T) {
	t.Parallel()

	api := newMockDia()
	store := storage.New()
	u, err := New(Config{IterationBudget: 5 * time.Millisecond}, api, store, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	u.Run(ctx)

	// The loop kept iterating on its budget until cancellation.
	require.GreaterOrEqual(t, api.discoverCalls.Load(), int64(2))
	require.Len(t, store.GetBySymbols([]string{"BTC"}), 1)
}

func TestNew_ValidatesConfig(t *testing.T) {
	t.Parallel()

	store := storage.New()
	api := newMockDia()

	_, err := New(Config{IterationBudget: time.Minute}, nil, store, nil, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config{IterationBudget: time.Minute}, api, nil, nil, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config{}, api, store, nil, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config{IterationBudget: time.Minute, PacingDelay: -time.Second}, api, store, nil, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConvertToCoinInfo_FiatBlockchainFallback(t *testing.T) {
	t.Parallel()

	info, err := convertToCoinInfo(dia.Quotation{
		Symbol:          "MXN-USD",
		Name:            "MXNUSD=X",
		Price:           decimal.RequireFromString("0.053712327"),
		VolumeYesterday: decimal.Zero,
		Time:            quoteTime,
	})
	require.NoError(t, err)
	require.Equal(t, "FIAT", info.Blockchain)
	require.Equal(t, big.NewInt(53712327000), info.Price)
	require.Equal(t, big.NewInt(0), info.Supply)
}
