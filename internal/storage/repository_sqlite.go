package storage

import (
	"context"
	"errors"

	"github.com/littbk/rpg-battle/internal/game"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateName
	}
	return err
}

func (r *sqliteRepository) CreateCombatant(ctx context.Context, c *game.Combatant) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *sqliteRepository) GetCombatantByKey(ctx context.Context, key string) (*game.Combatant, error) {
	var c game.Combatant
	if err := r.db.WithContext(ctx).Where("name_key = ?", key).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *sqliteRepository) SaveCombatant(ctx context.Context, c *game.Combatant) error {
	if c.ID == 0 {
		return ErrNotFound
	}
	return translate(r.db.WithContext(ctx).Save(c).Error)
}

func (r *sqliteRepository) SaveCombatants(ctx context.Context, cs []*game.Combatant) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range cs {
			if c.ID == 0 {
				return ErrNotFound
			}
			if err := tx.Save(c).Error; err != nil {
				return err
			}
		}
		return nil
	}))
}

// DeleteCombatantByKey removes the row permanently. Soft deletion would
// keep the unique name key reserved.
func (r *sqliteRepository) DeleteCombatantByKey(ctx context.Context, key string) error {
	res := r.db.WithContext(ctx).Unscoped().Where("name_key = ?", key).Delete(&game.Combatant{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRepository) ListCombatants(ctx context.Context) ([]game.Combatant, error) {
	var cs []game.Combatant
	if err := r.db.WithContext(ctx).Order("id").Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}

func (r *sqliteRepository) ListActiveCombatants(ctx context.Context) ([]game.Combatant, error) {
	var cs []game.Combatant
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("id").Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}

func (r *sqliteRepository) FindActiveByController(ctx context.Context, controllerID string) (*game.Combatant, error) {
	var c game.Combatant
	err := r.db.WithContext(ctx).
		Where("controller_id = ? AND active = ?", controllerID, true).
		Order("id").
		First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *sqliteRepository) GetEncounter(ctx context.Context, channelID string) (*game.Encounter, error) {
	var e game.Encounter
	if err := r.db.WithContext(ctx).Where("channel_id = ?", channelID).First(&e).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *sqliteRepository) SetEncounterActing(ctx context.Context, channelID, actingName string) error {
	e := game.Encounter{ChannelID: channelID, ActingName: actingName}
	// Upsert keyed by channel so the facilitator command works whether or
	// not the encounter row already exists.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"acting_name", "updated_at"}),
	}).Create(&e).Error
}
