package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/solstrike/chipgate/internal/model"
	"github.com/solstrike/chipgate/internal/registry"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// One table holds both record kinds under a namespaced key, so the native
// config and per-asset entries cannot collide:
//
//	chip_price/native
//	chip_price/asset/<asset_id>
const (
	nativePriceKey   = "chip_price/native"
	assetPricePrefix = "chip_price/asset/"
)

type priceRow struct {
	RecordKey string `gorm:"primaryKey;column:record_key"`
	AssetID   string `gorm:"column:asset_id"`
	UnitPrice uint64 `gorm:"column:unit_price"`
	Bump      uint8  `gorm:"column:bump"`
}

func (priceRow) TableName() string { return "chip_prices" }

// PostgresPriceStore implements registry.Store on Postgres.
type PostgresPriceStore struct {
	db *gorm.DB
}

func NewPostgresPriceStore(db *gorm.DB) (*PostgresPriceStore, error) {
	if err := db.AutoMigrate(&priceRow{}); err != nil {
		return nil, err
	}
	return &PostgresPriceStore{db: db}, nil
}

func (s *PostgresPriceStore) GetConfig(ctx context.Context) (*model.PriceConfig, error) {
	var row priceRow
	err := s.db.WithContext(ctx).First(&row, "record_key = ?", nativePriceKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, registry.ErrNotFound
		}
		return nil, err
	}
	return &model.PriceConfig{UnitPrice: row.UnitPrice, Bump: row.Bump}, nil
}

func (s *PostgresPriceStore) InitConfig(ctx context.Context, cfg model.PriceConfig) error {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&priceRow{
		RecordKey: nativePriceKey,
		UnitPrice: cfg.UnitPrice,
		Bump:      cfg.Bump,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return registry.ErrAlreadyInitialized
	}
	return nil
}

func (s *PostgresPriceStore) SetUnitPrice(ctx context.Context, unitPrice uint64) error {
	res := s.db.WithContext(ctx).Model(&priceRow{}).
		Where("record_key = ?", nativePriceKey).
		Update("unit_price", unitPrice)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return registry.ErrNotFound
	}
	return nil
}

func (s *PostgresPriceStore) GetAsset(ctx context.Context, assetID string) (*model.AssetPrice, error) {
	var row priceRow
	err := s.db.WithContext(ctx).First(&row, "record_key = ?", assetPricePrefix+assetID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, registry.ErrNotFound
		}
		return nil, err
	}
	return &model.AssetPrice{AssetID: row.AssetID, UnitPrice: row.UnitPrice, Bump: row.Bump}, nil
}

func (s *PostgresPriceStore) RegisterAsset(ctx context.Context, entry model.AssetPrice) error {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&priceRow{
		RecordKey: assetPricePrefix + entry.AssetID,
		AssetID:   entry.AssetID,
		UnitPrice: entry.UnitPrice,
		Bump:      entry.Bump,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return registry.ErrAlreadyRegistered
	}
	return nil
}

func (s *PostgresPriceStore) RepriceAsset(ctx context.Context, assetID string, unitPrice uint64) error {
	res := s.db.WithContext(ctx).Model(&priceRow{}).
		Where("record_key = ?", assetPricePrefix+assetID).
		Update("unit_price", unitPrice)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return registry.ErrNotFound
	}
	return nil
}

func (s *PostgresPriceStore) ListAssets(ctx context.Context) ([]model.AssetPrice, error) {
	var rows []priceRow
	err := s.db.WithContext(ctx).
		Where("record_key LIKE ?", assetPricePrefix+"%").
		Order("asset_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.AssetPrice, 0, len(rows))
	for _, row := range rows {
		assetID := row.AssetID
		if assetID == "" {
			assetID = strings.TrimPrefix(row.RecordKey, assetPricePrefix)
		}
		out = append(out, model.AssetPrice{AssetID: assetID, UnitPrice: row.UnitPrice, Bump: row.Bump})
	}
	return out, nil
}
