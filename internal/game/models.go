package game

import (
	"github.com/littbk/rpg-battle/internal/keys"

	"gorm.io/gorm"
)

// Combatant is the persisted combat state of one character sheet. It is
// addressed by NameKey, the case-folded form of Name.
type Combatant struct {
	gorm.Model
	Name string `json:"name"`
	// NameKey is derived from Name in BeforeSave and never exposed.
	NameKey string `json:"-" gorm:"uniqueIndex;not null"`

	// ControllerID is the platform id of the controlling participant and is
	// empty for mobs. ControllerName keeps the participant's username for
	// records created before ids were tracked.
	ControllerID   string `json:"controller_id" gorm:"index"`
	ControllerName string `json:"controller_name"`

	HPCurrent        int     `json:"hp_current"`
	HPMax            int     `json:"hp_max"`
	EnergyCurrent    int     `json:"energy_current"`
	EnergyMax        int     `json:"energy_max"`
	ActionPoints     float64 `json:"action_points"`
	ActionPointsTemp float64 `json:"action_points_temp"`
	InitiativeStep   int     `json:"initiative_step"`
	Active           bool    `json:"active" gorm:"index"`
	BattlerID        string  `json:"battler_id"`

	// LinkedName names the twin sheet. It is a weak reference: the twin may
	// not exist and does not need to link back.
	LinkedName string `json:"linked_name"`

	Money          int    `json:"money"`
	LifeDice       string `json:"life_dice"`
	Status1        string `json:"status1"`
	Status2        string `json:"status2"`
	Status3        string `json:"status3"`
	StatusCounter1 int    `json:"status_counter1"`
	StatusCounter2 int    `json:"status_counter2"`
	StatusCounter3 int    `json:"status_counter3"`
	Position       string `json:"position"`
	Target         string `json:"target"`
	DamageLevel    int    `json:"damage_level"`
	DamageClass    int    `json:"damage_class"`

	Age       int    `json:"age"`
	Sex       string `json:"sex"`
	BirthDate string `json:"birth_date"`
}

func (Combatant) TableName() string { return "combatants" }

// BeforeSave is a GORM hook that keeps the storage key in sync with the
// display name, including renames done through an overwrite patch.
func (c *Combatant) BeforeSave(tx *gorm.DB) (err error) {
	c.NameKey = keys.NameKey(c.Name)
	if c.NameKey == "" {
		return gorm.ErrInvalidData
	}
	return nil
}

// Clone returns an independent copy of the record.
func (c *Combatant) Clone() *Combatant {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Linked reports whether the record declares a twin.
func (c *Combatant) Linked() bool {
	return keys.NameKey(c.LinkedName) != ""
}

// Encounter stores per-channel battle state. ActingName is the facilitator
// override: the combatant forced to act first regardless of initiative.
type Encounter struct {
	gorm.Model
	ChannelID  string `json:"channel_id" gorm:"uniqueIndex;not null"`
	ActingName string `json:"acting_name"`
}

func (Encounter) TableName() string { return "encounters" }

// Participant identifies the real-world user behind a roster operation.
type Participant struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Bot      bool   `json:"bot"`
}

// MobUsername is the reserved username used by the platform bot when it
// speaks for non-player combatants. It never resolves to a sheet.
const MobUsername = "Mob"
