package game

// Field names a patchable Combatant attribute by its JSON key.
type Field string

const (
	FieldName             Field = "name"
	FieldControllerID     Field = "controller_id"
	FieldControllerName   Field = "controller_name"
	FieldHPCurrent        Field = "hp_current"
	FieldHPMax            Field = "hp_max"
	FieldEnergyCurrent    Field = "energy_current"
	FieldEnergyMax        Field = "energy_max"
	FieldActionPoints     Field = "action_points"
	FieldActionPointsTemp Field = "action_points_temp"
	FieldInitiativeStep   Field = "initiative_step"
	FieldActive           Field = "active"
	FieldBattlerID        Field = "battler_id"
	FieldLinkedName       Field = "linked_name"
	FieldMoney            Field = "money"
	FieldLifeDice         Field = "life_dice"
	FieldStatus1          Field = "status1"
	FieldStatus2          Field = "status2"
	FieldStatus3          Field = "status3"
	FieldStatusCounter1   Field = "status_counter1"
	FieldStatusCounter2   Field = "status_counter2"
	FieldStatusCounter3   Field = "status_counter3"
	FieldPosition         Field = "position"
	FieldTarget           Field = "target"
	FieldDamageLevel      Field = "damage_level"
	FieldDamageClass      Field = "damage_class"
	FieldAge              Field = "age"
	FieldSex              Field = "sex"
	FieldBirthDate        Field = "birth_date"
)

// Patch carries field values keyed by Field name, usually decoded from a
// JSON request body. Values are converted per field by the engine.
type Patch map[string]interface{}

// FieldSet is a named allow-list of fields.
type FieldSet map[Field]struct{}

func newFieldSet(fields ...Field) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

// Has reports whether f belongs to the set.
func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

// Filter returns the subset of p whose keys belong to the set.
func (s FieldSet) Filter(p Patch) Patch {
	out := make(Patch, len(p))
	for k, v := range p {
		if s.Has(Field(k)) {
			out[k] = v
		}
	}
	return out
}

// OverwriteMirrorFields are the shared combat-state fields copied onto a
// twin after an overwrite update. Identity and control fields are absent.
var OverwriteMirrorFields = newFieldSet(
	FieldMoney,
	FieldHPCurrent,
	FieldLifeDice,
	FieldStatus1,
	FieldStatus2,
	FieldStatus3,
	FieldStatusCounter1,
	FieldStatusCounter2,
	FieldStatusCounter3,
	FieldPosition,
	FieldTarget,
	FieldDamageLevel,
	FieldDamageClass,
	FieldBattlerID,
	FieldActionPoints,
	FieldActionPointsTemp,
)

// AdditiveFields are the numeric pools accepted by an additive update. The
// same deltas are applied to the twin.
var AdditiveFields = newFieldSet(
	FieldHPCurrent,
	FieldEnergyCurrent,
	FieldActionPoints,
	FieldActionPointsTemp,
)

// IdentityFields belong to one sheet only and never propagate.
var IdentityFields = newFieldSet(
	FieldName,
	FieldControllerID,
	FieldControllerName,
	FieldInitiativeStep,
	FieldActive,
	FieldLinkedName,
)

// FieldRef returns a pointer to the attribute of c named by f: one of
// *int, *float64, *string or *bool. ok is false for unknown fields.
func (c *Combatant) FieldRef(f Field) (ref interface{}, ok bool) {
	switch f {
	case FieldName:
		return &c.Name, true
	case FieldControllerID:
		return &c.ControllerID, true
	case FieldControllerName:
		return &c.ControllerName, true
	case FieldHPCurrent:
		return &c.HPCurrent, true
	case FieldHPMax:
		return &c.HPMax, true
	case FieldEnergyCurrent:
		return &c.EnergyCurrent, true
	case FieldEnergyMax:
		return &c.EnergyMax, true
	case FieldActionPoints:
		return &c.ActionPoints, true
	case FieldActionPointsTemp:
		return &c.ActionPointsTemp, true
	case FieldInitiativeStep:
		return &c.InitiativeStep, true
	case FieldActive:
		return &c.Active, true
	case FieldBattlerID:
		return &c.BattlerID, true
	case FieldLinkedName:
		return &c.LinkedName, true
	case FieldMoney:
		return &c.Money, true
	case FieldLifeDice:
		return &c.LifeDice, true
	case FieldStatus1:
		return &c.Status1, true
	case FieldStatus2:
		return &c.Status2, true
	case FieldStatus3:
		return &c.Status3, true
	case FieldStatusCounter1:
		return &c.StatusCounter1, true
	case FieldStatusCounter2:
		return &c.StatusCounter2, true
	case FieldStatusCounter3:
		return &c.StatusCounter3, true
	case FieldPosition:
		return &c.Position, true
	case FieldTarget:
		return &c.Target, true
	case FieldDamageLevel:
		return &c.DamageLevel, true
	case FieldDamageClass:
		return &c.DamageClass, true
	case FieldAge:
		return &c.Age, true
	case FieldSex:
		return &c.Sex, true
	case FieldBirthDate:
		return &c.BirthDate, true
	}
	return nil, false
}
