package item

import (
	"context"

	"github.com/kasuganosora/roadquest/apperr"
	"github.com/kasuganosora/roadquest/model"
	"github.com/kasuganosora/roadquest/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxInventorySlots = 99

// InventoryService grants catalog items to characters.
type InventoryService struct {
	db     *gorm.DB
	items  store.Source[model.Item]
	logger *zap.Logger
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(db *gorm.DB, items store.Source[model.Item], logger *zap.Logger) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{db: db, items: items, logger: logger}
}

// AddItem puts one itemID into charID's bag. Every item is its own row.
func (svc *InventoryService) AddItem(ctx context.Context, charID int64, itemID string) (*model.Inventory, error) {
	it, err := svc.items.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	inv := &model.Inventory{CharID: charID, ItemID: itemID}
	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Inventory{}).Where("char_id = ?", charID).Count(&count).Error; err != nil {
			return err
		}
		if count >= maxInventorySlots {
			return apperr.InsufficientResourcef("inventory full (%d slots)", maxInventorySlots)
		}
		return tx.Omit("Item").Create(inv).Error
	})
	if err != nil {
		if apperr.GetCode(err) == apperr.CodeInternal {
			svc.logger.Error("add item failed", zap.Int64("char_id", charID), zap.String("item_id", itemID), zap.Error(err))
		}
		return nil, apperr.Wrap(err, "add item")
	}
	inv.Item = it
	svc.logger.Info("item granted", zap.Int64("char_id", charID), zap.String("item_id", itemID))
	return inv, nil
}

// List returns all inventory rows for charID without item details.
func (svc *InventoryService) List(ctx context.Context, charID int64) ([]model.Inventory, error) {
	var rows []model.Inventory
	if err := svc.db.WithContext(ctx).Where("char_id = ?", charID).Order("id").Find(&rows).Error; err != nil {
		return nil, apperr.Wrap(err, "list inventory")
	}
	return rows, nil
}
