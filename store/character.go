package store

import (
	"context"
	"errors"

	"github.com/kasuganosora/roadquest/apperr"
	"github.com/kasuganosora/roadquest/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CharacterRepo loads and saves the character aggregate: the character row,
// its skills and its inventory.
type CharacterRepo struct {
	db     *gorm.DB
	items  Source[model.Item]
	logger *zap.Logger
}

// NewCharacterRepo creates a CharacterRepo. Inventory rows are hydrated with
// their catalog item from items.
func NewCharacterRepo(db *gorm.DB, items Source[model.Item], logger *zap.Logger) *CharacterRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CharacterRepo{db: db, items: items, logger: logger}
}

// Create inserts a new character with its skills and inventory.
func (r *CharacterRepo) Create(ctx context.Context, c *model.Character) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
			return err
		}
		return saveChildren(tx, c)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflictf("character name %q taken", c.Name)
	}
	if err != nil {
		return apperr.Wrap(err, "create character")
	}
	return nil
}

// Load returns the character aggregate with id.
func (r *CharacterRepo) Load(ctx context.Context, id int64) (*model.Character, error) {
	var c model.Character
	err := r.db.WithContext(ctx).
		Preload("Skills", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Inventory", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("character %d", id)
	}
	if err != nil {
		return nil, apperr.Wrapf(err, "load character %d", id)
	}
	for i := range c.Inventory {
		inv := &c.Inventory[i]
		it, err := r.items.Get(ctx, inv.ItemID)
		if err != nil {
			// The row stays usable in the bag; it just contributes nothing.
			r.logger.Warn("inventory item missing from catalog",
				zap.Int64("char_id", id), zap.String("item_id", inv.ItemID), zap.Error(err))
			continue
		}
		inv.Item = it
	}
	return &c, nil
}

// Save writes the character row, its skills and inventory rows in one
// transaction.
func (r *CharacterRepo) Save(ctx context.Context, c *model.Character) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(c).Error; err != nil {
			return err
		}
		return saveChildren(tx, c)
	})
	if err != nil {
		r.logger.Error("save character failed", zap.Int64("char_id", c.ID), zap.Error(err))
		return apperr.Wrapf(err, "save character %d", c.ID)
	}
	return nil
}

func saveChildren(tx *gorm.DB, c *model.Character) error {
	for i := range c.Skills {
		c.Skills[i].CharID = c.ID
		if err := tx.Save(&c.Skills[i]).Error; err != nil {
			return err
		}
	}
	for i := range c.Inventory {
		c.Inventory[i].CharID = c.ID
		if err := tx.Omit("Item").Save(&c.Inventory[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// SaveBattleRecord stores a finalised battle summary.
func (r *CharacterRepo) SaveBattleRecord(ctx context.Context, rec *model.BattleRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return apperr.Wrap(err, "save battle record")
	}
	return nil
}

// BattleRecords returns the most recent battles of charID, newest first.
func (r *CharacterRepo) BattleRecords(ctx context.Context, charID int64, limit int) ([]model.BattleRecord, error) {
	var recs []model.BattleRecord
	err := r.db.WithContext(ctx).Where("char_id = ?", charID).
		Order("id DESC").Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, apperr.Wrap(err, "list battle records")
	}
	return recs, nil
}
