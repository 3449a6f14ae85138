package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates the requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Store is the catalog lookup collaborator: given an identifier it
// returns the full product fact, promotional records already resolved
// to the current store. The calculation engine never queries it
// directly; callers load products up front.
type Store interface {
	Product(ctx context.Context, id uuid.UUID) (Product, error)
}

// PGStore loads products from Postgres. Monetary columns are selected
// as text and parsed into decimals so no binary float ever appears.
type PGStore struct {
	Pool *pgxpool.Pool
}

// Product fetches one product with its sale windows, bulk tiers, and
// tax rates.
func (s *PGStore) Product(ctx context.Context, id uuid.UUID) (Product, error) {
	if s == nil || s.Pool == nil {
		return Product{}, errors.New("catalog store not configured")
	}

	const productSQL = `
SELECT id, sku, name,
       retail_price::text, cost::text, floor_price::text,
       crv::text, bottle_deposit::text, bag_fee::text, other_fee::text,
       tax_exempt, snap_eligible, wic_eligible, wic_category, wic_max_qty::text
FROM products
WHERE id = $1`

	var (
		p                                  Product
		retail, cost, floor                string
		crv, bottle, bag, other, wicMaxQty string
	)
	row := s.Pool.QueryRow(ctx, productSQL, id)
	if err := row.Scan(
		&p.ID, &p.SKU, &p.Name,
		&retail, &cost, &floor,
		&crv, &bottle, &bag, &other,
		&p.TaxExempt, &p.SNAPEligible, &p.WICEligible, &p.WICCategory, &wicMaxQty,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("load product: %w", err)
	}

	var err error
	if p.RetailPrice, err = decimal.NewFromString(retail); err != nil {
		return Product{}, fmt.Errorf("parse retail price: %w", err)
	}
	if p.Cost, err = decimal.NewFromString(cost); err != nil {
		return Product{}, fmt.Errorf("parse cost: %w", err)
	}
	if p.FloorPrice, err = decimal.NewFromString(floor); err != nil {
		return Product{}, fmt.Errorf("parse floor price: %w", err)
	}
	if p.Deposits.CRV, err = decimal.NewFromString(crv); err != nil {
		return Product{}, fmt.Errorf("parse crv: %w", err)
	}
	if p.Deposits.BottleDeposit, err = decimal.NewFromString(bottle); err != nil {
		return Product{}, fmt.Errorf("parse bottle deposit: %w", err)
	}
	if p.Deposits.BagFee, err = decimal.NewFromString(bag); err != nil {
		return Product{}, fmt.Errorf("parse bag fee: %w", err)
	}
	if p.Deposits.OtherFee, err = decimal.NewFromString(other); err != nil {
		return Product{}, fmt.Errorf("parse other fee: %w", err)
	}
	if p.WICMaxQty, err = decimal.NewFromString(wicMaxQty); err != nil {
		return Product{}, fmt.Errorf("parse wic max qty: %w", err)
	}

	if p.TaxRates, err = s.taxRates(ctx, id); err != nil {
		return Product{}, err
	}
	if p.Sales, err = s.sales(ctx, id); err != nil {
		return Product{}, err
	}
	if p.BulkTiers, err = s.bulkTiers(ctx, id); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *PGStore) taxRates(ctx context.Context, id uuid.UUID) ([]decimal.Decimal, error) {
	rows, err := s.Pool.Query(ctx, `SELECT rate::text FROM product_tax_rates WHERE product_id = $1 ORDER BY rate`, id)
	if err != nil {
		return nil, fmt.Errorf("load tax rates: %w", err)
	}
	defer rows.Close()

	var rates []decimal.Decimal
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan tax rate: %w", err)
		}
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse tax rate: %w", err)
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

func (s *PGStore) sales(ctx context.Context, id uuid.UUID) ([]Sale, error) {
	const saleSQL = `
SELECT price::text, active, start_date, end_date, day_mask, start_minute, end_minute
FROM product_sales
WHERE product_id = $1
ORDER BY price`

	rows, err := s.Pool.Query(ctx, saleSQL, id)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		var (
			sale       Sale
			raw        string
			start, end *time.Time
			mask       int16
		)
		if err := rows.Scan(&raw, &sale.Active, &start, &end, &mask, &sale.StartMinute, &sale.EndMinute); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		if sale.Price, err = decimal.NewFromString(raw); err != nil {
			return nil, fmt.Errorf("parse sale price: %w", err)
		}
		sale.StartDate = start
		sale.EndDate = end
		sale.DayMask = uint8(mask)
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

func (s *PGStore) bulkTiers(ctx context.Context, id uuid.UUID) ([]BulkTier, error) {
	const tierSQL = `
SELECT min_qty::text, max_qty::text, kind, value::text
FROM product_bulk_tiers
WHERE product_id = $1
ORDER BY min_qty`

	rows, err := s.Pool.Query(ctx, tierSQL, id)
	if err != nil {
		return nil, fmt.Errorf("load bulk tiers: %w", err)
	}
	defer rows.Close()

	var tiers []BulkTier
	for rows.Next() {
		var (
			tier     BulkTier
			min, val string
			max      *string
			kind     string
		)
		if err := rows.Scan(&min, &max, &kind, &val); err != nil {
			return nil, fmt.Errorf("scan bulk tier: %w", err)
		}
		if tier.MinQty, err = decimal.NewFromString(min); err != nil {
			return nil, fmt.Errorf("parse tier min qty: %w", err)
		}
		if max != nil {
			parsed, err := decimal.NewFromString(*max)
			if err != nil {
				return nil, fmt.Errorf("parse tier max qty: %w", err)
			}
			tier.MaxQty = &parsed
		}
		if tier.Value, err = decimal.NewFromString(val); err != nil {
			return nil, fmt.Errorf("parse tier value: %w", err)
		}
		tier.Kind = TierKind(kind)
		tiers = append(tiers, tier)
	}
	return tiers, rows.Err()
}
