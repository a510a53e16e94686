// Package item derives the normalized, flat item records published in the
// JSON database from raw blueprints.
package item

import (
	"github.com/cory-johannsen/rtdb/internal/blueprint"
)

// WeaponsCategory is the category whose items must carry damage to be valid.
const WeaponsCategory = "weapons"

// DefaultRarity is used when a blueprint has no rarity.
const DefaultRarity = "Common"

// Ability is one weapon ability and its action point cost.
type Ability struct {
	Type string  `json:"type"`
	AP   float64 `json:"ap"`
}

// WeaponStats holds the fields extracted for personal weapons.
// A nil pointer field means the value was stripped as a sentinel.
type WeaponStats struct {
	DamageMin        *float64  `json:"damageMin,omitempty"`
	DamageMax        *float64  `json:"damageMax,omitempty"`
	Penetration      *float64  `json:"penetration,omitempty"`
	DodgePenetration *float64  `json:"dodgePenetration,omitempty"`
	Range            *float64  `json:"range,omitempty"`
	Ammo             *float64  `json:"ammo,omitempty"`
	RateOfFire       *float64  `json:"rateOfFire,omitempty"`
	Recoil           *float64  `json:"recoil,omitempty"`
	Family           string    `json:"family,omitempty"`
	HoldingType      string    `json:"holdingType,omitempty"`
	IsRanged         *bool     `json:"isRanged,omitempty"`
	IsMelee          *bool     `json:"isMelee,omitempty"`
	DamageType       string    `json:"damageType,omitempty"`
	Abilities        []Ability `json:"abilities,omitempty"`
}

// ArmorStats holds the fields extracted for body armor.
type ArmorStats struct {
	DamageAbsorption *float64 `json:"damageAbsorption,omitempty"`
	DamageDeflection *float64 `json:"damageDeflection,omitempty"`
	ArmorCategory    string   `json:"armorCategory,omitempty"`
}

// StarshipWeaponStats holds the fields extracted for starship weapons.
type StarshipWeaponStats struct {
	WeaponType      string   `json:"weaponType,omitempty"`
	DamageInstances *float64 `json:"damageInstances,omitempty"`
	AllowedSlots    []string `json:"allowedSlots,omitempty"`
}

// VoidShieldStats holds the fields extracted for void shield generators.
type VoidShieldStats struct {
	ShieldStrength *float64 `json:"shieldStrength,omitempty"`
}

// PlasmaDriveStats holds the fields extracted for plasma drives.
type PlasmaDriveStats struct {
	Speed           *float64 `json:"speed,omitempty"`
	Maneuverability *float64 `json:"maneuverability,omitempty"`
}

// AugerArrayStats holds the fields extracted for auger arrays.
type AugerArrayStats struct {
	DetectionRadius *float64 `json:"detectionRadius,omitempty"`
}

// Item is the normalized record of one blueprint. Exactly one of the embedded
// stat groups is non-nil, selected by Kind; none for blueprint.KindUnknown.
// Empty strings are omitted on output.
type Item struct {
	Kind blueprint.Kind `json:"-"`

	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Category    string `json:"category,omitempty"`
	Type        string `json:"type,omitempty"`
	Rarity      string `json:"rarity,omitempty"`
	Description string `json:"description,omitempty"`
	FlavorText  string `json:"flavorText,omitempty"`

	*WeaponStats
	*ArmorStats
	*StarshipWeaponStats
	*VoidShieldStats
	*PlasmaDriveStats
	*AugerArrayStats
}

// Valid reports whether the item belongs in the database. Items need a name;
// weapons additionally need non-zero damage unless they are melee weapons.
// Valid must run before Clean, which may strip the fields it reads.
func (it *Item) Valid() bool {
	if it.Name == "" {
		return false
	}
	if it.Category != WeaponsCategory {
		return true
	}
	var minDmg, maxDmg float64
	var melee bool
	if w := it.WeaponStats; w != nil {
		minDmg, maxDmg, melee = deref(w.DamageMin), deref(w.DamageMax), derefBool(w.IsMelee)
	}
	return minDmg != 0 || maxDmg != 0 || melee
}

// zeroIsSentinel lists the numeric fields for which 0 means "not applicable".
var zeroIsSentinel = map[string]bool{
	"dodgePenetration": true,
	"rateOfFire":       true,
	"recoil":           true,
	"shieldStrength":   true,
	"detectionRadius":  true,
}

// falseIsSentinel lists the boolean fields for which false is not published.
var falseIsSentinel = map[string]bool{
	"isRanged": true,
	"isMelee":  true,
}

// Clean strips placeholder values: -1 on any numeric field, 0 on the fields in
// zeroIsSentinel, false on the fields in falseIsSentinel, and empty lists.
// Other zeros, such as damageMin, are kept. Clean is idempotent.
func (it *Item) Clean() {
	for key, p := range it.numbers() {
		if *p == nil {
			continue
		}
		if v := **p; v == -1 || (v == 0 && zeroIsSentinel[key]) {
			*p = nil
		}
	}
	for key, p := range it.bools() {
		if *p != nil && !**p && falseIsSentinel[key] {
			*p = nil
		}
	}
	if w := it.WeaponStats; w != nil && len(w.Abilities) == 0 {
		w.Abilities = nil
	}
	if s := it.StarshipWeaponStats; s != nil && len(s.AllowedSlots) == 0 {
		s.AllowedSlots = nil
	}
}

// numbers returns the addresses of the item's numeric fields keyed by their
// JSON names.
func (it *Item) numbers() map[string]**float64 {
	out := make(map[string]**float64)
	if w := it.WeaponStats; w != nil {
		out["damageMin"] = &w.DamageMin
		out["damageMax"] = &w.DamageMax
		out["penetration"] = &w.Penetration
		out["dodgePenetration"] = &w.DodgePenetration
		out["range"] = &w.Range
		out["ammo"] = &w.Ammo
		out["rateOfFire"] = &w.RateOfFire
		out["recoil"] = &w.Recoil
	}
	if a := it.ArmorStats; a != nil {
		out["damageAbsorption"] = &a.DamageAbsorption
		out["damageDeflection"] = &a.DamageDeflection
	}
	if s := it.StarshipWeaponStats; s != nil {
		out["damageInstances"] = &s.DamageInstances
	}
	if v := it.VoidShieldStats; v != nil {
		out["shieldStrength"] = &v.ShieldStrength
	}
	if p := it.PlasmaDriveStats; p != nil {
		out["speed"] = &p.Speed
		out["maneuverability"] = &p.Maneuverability
	}
	if a := it.AugerArrayStats; a != nil {
		out["detectionRadius"] = &a.DetectionRadius
	}
	return out
}

func (it *Item) bools() map[string]**bool {
	out := make(map[string]**bool)
	if w := it.WeaponStats; w != nil {
		out["isRanged"] = &w.IsRanged
		out["isMelee"] = &w.IsMelee
	}
	return out
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func derefBool(p *bool) bool {
	return p != nil && *p
}
