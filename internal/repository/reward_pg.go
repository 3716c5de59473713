package repository

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/solstrike/chipgate/internal/model"
	"github.com/solstrike/chipgate/internal/rewards"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type rewardRow struct {
	Recipient string    `gorm:"primaryKey;column:recipient"`
	Amount    uint64    `gorm:"column:amount"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (rewardRow) TableName() string { return "claimable_rewards" }

// PostgresRewardStore implements rewards.Store. Credit and Claim run inside
// one database transaction with row locks, so each call commits in full or
// not at all.
type PostgresRewardStore struct {
	db *gorm.DB
}

func NewPostgresRewardStore(db *gorm.DB) (*PostgresRewardStore, error) {
	if err := db.AutoMigrate(&rewardRow{}); err != nil {
		return nil, err
	}
	return &PostgresRewardStore{db: db}, nil
}

func (s *PostgresRewardStore) Credit(ctx context.Context, credits map[string]uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for recipient, amount := range credits {
			var row rewardRow
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&row, "recipient = ?", recipient).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				row = rewardRow{Recipient: recipient}
			case err != nil:
				return err
			}
			if row.Amount > math.MaxUint64-amount {
				return rewards.ErrOverflow
			}
			row.Amount += amount
			row.UpdatedAt = time.Now().UTC()
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PostgresRewardStore) Pending(ctx context.Context, recipient string) (uint64, error) {
	var row rewardRow
	err := s.db.WithContext(ctx).First(&row, "recipient = ?", recipient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Amount, nil
}

func (s *PostgresRewardStore) Claim(ctx context.Context, recipient string, fn func(amount uint64) error) (uint64, error) {
	var claimed uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row rewardRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&row, "recipient = ?", recipient).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Absent record legitimately has balance zero.
			return fn(0)
		}
		if err != nil {
			return err
		}
		if err := fn(row.Amount); err != nil {
			return err
		}
		claimed = row.Amount
		if claimed == 0 {
			return nil
		}
		row.Amount = 0
		row.UpdatedAt = time.Now().UTC()
		return tx.Save(&row).Error
	})
	if err != nil {
		return 0, err
	}
	return claimed, nil
}

func (s *PostgresRewardStore) List(ctx context.Context) ([]model.ClaimableReward, error) {
	var rows []rewardRow
	if err := s.db.WithContext(ctx).Order("recipient").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.ClaimableReward, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.ClaimableReward{
			Recipient: row.Recipient,
			Amount:    row.Amount,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return out, nil
}
