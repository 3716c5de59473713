package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/solstrike/chipgate/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrAccountNotFound = errors.New("account not found")

type accountRow struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	ApiKey    string `gorm:"uniqueIndex"`
	Address   string
	RateJSON  []byte `gorm:"type:jsonb;column:rate_limit_config"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (accountRow) TableName() string { return "accounts" }

type PostgresAccountRepo struct {
	db *gorm.DB
}

func NewPostgresAccountRepo(db *gorm.DB) (*PostgresAccountRepo, error) {
	if err := db.AutoMigrate(&accountRow{}); err != nil {
		return nil, err
	}
	return &PostgresAccountRepo{db: db}, nil
}

func (r *PostgresAccountRepo) GetByApiKey(ctx context.Context, apiKey string) (*model.Account, error) {
	var row accountRow
	err := r.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return toAccount(&row)
}

func (r *PostgresAccountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	var row accountRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return toAccount(&row)
}

func (r *PostgresAccountRepo) Upsert(ctx context.Context, a *model.Account) error {
	rateJSON, _ := json.Marshal(a.Rate)
	row := accountRow{
		ID:       a.ID,
		Name:     a.Name,
		ApiKey:   a.ApiKey,
		Address:  a.Address,
		RateJSON: rateJSON,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "api_key", "address", "rate_limit_config", "updated_at"}),
		}).
		Create(&row).Error
}

func (r *PostgresAccountRepo) List(ctx context.Context, limit, offset int) ([]*model.Account, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	var rows []accountRow
	err := r.db.WithContext(ctx).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	results := make([]*model.Account, 0, len(rows))
	for i := range rows {
		account, err := toAccount(&rows[i])
		if err != nil {
			return nil, err
		}
		results = append(results, account)
	}
	return results, nil
}

func toAccount(row *accountRow) (*model.Account, error) {
	a := &model.Account{
		ID:      row.ID,
		Name:    row.Name,
		ApiKey:  row.ApiKey,
		Address: row.Address,
	}
	if len(row.RateJSON) > 0 {
		if err := json.Unmarshal(row.RateJSON, &a.Rate); err != nil {
			return nil, err
		}
	}
	return a, nil
}
