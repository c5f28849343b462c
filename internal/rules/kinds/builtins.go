// Package kinds is the library of rule element kinds the catalog builds
// from item sources.
package kinds

import (
	"fmt"

	"github.com/KirkDiggler/rule-elements/internal/rules"
)

// Definitions returns a fresh definition of every builtin kind
func Definitions() []*rules.Definition {
	return []*rules.Definition{
		activeEffectLikeDefinition(),
		actorTraitsDefinition(),
		adjustDegreeOfSuccessDefinition(),
		adjustModifierDefinition(),
		baseSpeedDefinition(),
		choiceSetDefinition(),
		craftingEntryDefinition(),
		creatureSizeDefinition(),
		damageDiceDefinition(),
		dexterityModifierCapDefinition(),
		ephemeralEffectDefinition(),
		fastHealingDefinition(),
		flatModifierDefinition(),
		grantItemDefinition(),
		iwrDefinition("Immunity", categoryImmunity),
		iwrDefinition("Weakness", categoryWeakness),
		iwrDefinition("Resistance", categoryResistance),
		loseHitPointsDefinition(),
		multipleAttackPenaltyDefinition(),
		noteDefinition("Note"),
		noteDefinition("RollNote"),
		rollOptionDefinition(),
		rollTwiceDefinition(),
		senseDefinition(),
		specialResourceDefinition(),
		strikeDefinition(),
		strikingDefinition(),
		substituteRollDefinition(),
		tempHPDefinition(),
		weaponPotencyDefinition(),
	}
}

// RegisterBuiltins adds every builtin kind to catalog
func RegisterBuiltins(catalog *rules.Catalog) error {
	for _, def := range Definitions() {
		if err := catalog.Register(def); err != nil {
			return fmt.Errorf("failed to register %s: %w", def.Key, err)
		}
	}
	return nil
}

// NewCatalog returns a catalog holding every builtin kind
func NewCatalog() (*rules.Catalog, error) {
	catalog := rules.NewCatalog()
	if err := RegisterBuiltins(catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}
