package updater

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"diabatcher/internal/asset"
	"diabatcher/internal/dia"
	"diabatcher/internal/fixedpoint"
	"diabatcher/internal/storage"
)

// DiaApi is the slice of the DIA client the updater consumes. Test doubles
// substitute an in-memory implementation.
type DiaApi interface {
	GetQuotableAssets(ctx context.Context) ([]dia.QuotedAsset, error)
	GetQuotation(ctx context.Context, quoted dia.QuotedAsset) (dia.Quotation, error)
}

var ErrInvalidConfig = errors.New("invalid updater config")

type Config struct {
	// IterationBudget is the wall-clock duration one full
	// discovery+fetch+publish cycle should take. An iteration that overruns
	// it is followed immediately by the next one.
	IterationBudget time.Duration
	// PacingDelay spaces consecutive per-asset quotation requests.
	PacingDelay time.Duration
	// RequestTimeout bounds each quotation request. Zero disables the bound.
	RequestTimeout time.Duration
}

// Updater polls the DIA API and publishes whole snapshots into storage.
// It is the single producer for its storage instance.
type Updater struct {
	cfg     Config
	api     DiaApi
	storage *storage.CoinInfoStorage
	allow   asset.Set
	logger  *slog.Logger
}

// New validates the configuration and wires the updater. A nil allow set
// aggregates every discovered asset.
func New(cfg Config, api DiaApi, store *storage.CoinInfoStorage, allow asset.Set, logger *slog.Logger) (*Updater, error) {
	switch {
	case api == nil:
		return nil, errors.Wrap(ErrInvalidConfig, "api cannot be nil")
	case store == nil:
		return nil, errors.Wrap(ErrInvalidConfig, "storage cannot be nil")
	case cfg.IterationBudget <= 0:
		return nil, errors.Wrap(ErrInvalidConfig, "iteration budget must be positive")
	case cfg.PacingDelay < 0:
		return nil, errors.Wrap(ErrInvalidConfig, "pacing delay cannot be negative")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Updater{cfg: cfg, api: api, storage: store, allow: allow, logger: logger}, nil
}

// Run drives UpdatePrices until ctx is canceled. Each iteration starts
// IterationBudget after the previous one began, or immediately when the
// previous one ran long; iterations never overlap and are never skipped.
func (u *Updater) Run(ctx context.Context) {
	for {
		start := time.Now()
		u.UpdatePrices(ctx)
		if err := sleep(ctx, u.cfg.IterationBudget-time.Since(start)); err != nil {
			return
		}
	}
}

// UpdatePrices runs one aggregation iteration: discover the quotable assets,
// fetch and normalize the selected ones at the configured pace, then publish
// the batch as one snapshot replacement. Errors never propagate out of an
// iteration: a discovery failure leaves the previous snapshot untouched and
// any per-asset failure only skips that asset until the next iteration.
func (u *Updater) UpdatePrices(ctx context.Context) {
	quotable, err := u.api.GetQuotableAssets(ctx)
	if err != nil {
		u.logger.Error("listing quotable assets failed, keeping previous snapshot", "error", err)
		return
	}
	u.logger.Info("quotable assets discovered", "count", len(quotable))

	currencies := make([]storage.CoinInfo, 0, len(quotable))
	for _, quoted := range quotable {
		spec := asset.Specifier{Blockchain: quoted.Asset.Blockchain, Symbol: quoted.Asset.Symbol}
		if !asset.Selected(spec, u.allow) {
			continue
		}

		if info, ok := u.fetchOne(ctx, quoted); ok {
			currencies = append(currencies, info)
		}
		if err := sleep(ctx, u.cfg.PacingDelay); err != nil {
			return
		}
	}

	// Fiat pairs never appear in the discovery list; fetch configured ones
	// directly, the specifier itself standing in for a discovered asset.
	for spec := range u.allow {
		if spec.Blockchain != "FIAT" {
			continue
		}
		quoted := dia.QuotedAsset{Asset: dia.Asset{Symbol: spec.Symbol, Blockchain: spec.Blockchain}}
		if info, ok := u.fetchOne(ctx, quoted); ok {
			currencies = append(currencies, info)
		}
	}

	if ctx.Err() != nil {
		return
	}
	u.storage.Replace(currencies)
	u.logger.Info("currencies updated", "count", len(currencies))
}

func (u *Updater) fetchOne(ctx context.Context, quoted dia.QuotedAsset) (storage.CoinInfo, bool) {
	qctx := ctx
	if u.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		qctx, cancel = context.WithTimeout(ctx, u.cfg.RequestTimeout)
		defer cancel()
	}

	q, err := u.api.GetQuotation(qctx, quoted)
	if err != nil {
		u.logger.Error("retrieving quotation failed",
			"blockchain", quoted.Asset.Blockchain, "symbol", quoted.Asset.Symbol, "error", err)
		return storage.CoinInfo{}, false
	}

	info, err := convertToCoinInfo(q)
	if err != nil {
		u.logger.Error("converting quotation failed",
			"blockchain", quoted.Asset.Blockchain, "symbol", quoted.Asset.Symbol, "error", err)
		return storage.CoinInfo{}, false
	}
	return info, true
}

func convertToCoinInfo(q dia.Quotation) (storage.CoinInfo, error) {
	price, err := fixedpoint.FromDecimal(q.Price)
	if err != nil {
		return storage.CoinInfo{}, errors.Wrap(err, "price")
	}
	supply, err := fixedpoint.FromDecimal(q.VolumeYesterday)
	if err != nil {
		return storage.CoinInfo{}, errors.Wrap(err, "supply")
	}

	blockchain := q.Blockchain
	if blockchain == "" {
		blockchain = "FIAT"
	}

	var ts uint64
	if unix := q.Time.Unix(); unix > 0 {
		ts = uint64(unix)
	}

	return storage.CoinInfo{
		Symbol:              q.Symbol,
		Name:                q.Name,
		Blockchain:          blockchain,
		Supply:              supply,
		LastUpdateTimestamp: ts,
		Price:               price,
	}, nil
}

// sleep waits d unless ctx is canceled first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
