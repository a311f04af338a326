package mysql

import (
	"context"

	"water-chiller-check/internal/domain/check"
	"water-chiller-check/internal/domain/uow"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Headers: &CheckRepository{db: tx},
		Results: &ResultRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	})
}

func (u *GormUoW) WithinCheckTx(ctx context.Context, checkID string, fn func(r uow.Repos, h *check.CheckHeader) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// lock the header row up-front so concurrent edits serialize
		var h check.CheckHeader
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("check_id = ?", checkID).
			First(&h).Error; err != nil {
			return err
		}
		return fn(repos(tx), &h)
	})
}
