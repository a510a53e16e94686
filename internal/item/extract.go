package item

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/cory-johannsen/rtdb/internal/blueprint"
)

// Extract derives the normalized record of bp for the given category. The
// stat group is chosen by bp.Kind(). Extract never fails: absent or malformed
// fields fall back to their defaults. The result is not cleaned.
//
// Precondition: bp must be non-nil.
// Postcondition: returns a non-nil Item whose Kind equals bp.Kind().
func Extract(bp *blueprint.Blueprint, category string) *Item {
	data := bp.Data()
	it := &Item{
		Kind:        bp.Kind(),
		ID:          bp.GUID(),
		Name:        ResolveName(bp),
		Category:    category,
		Type:        bp.TypeName(),
		Rarity:      str(data.Get("Rarity"), DefaultRarity),
		Description: str(data.Get("Description"), ""),
		FlavorText:  str(data.Get("FlavorText"), ""),
	}

	switch bp.Kind() {
	case blueprint.KindWeapon:
		it.WeaponStats = extractWeapon(data)
	case blueprint.KindArmor:
		it.ArmorStats = &ArmorStats{
			DamageAbsorption: num(data.Get("DamageAbsorption"), 0),
			DamageDeflection: num(data.Get("DamageDeflection"), 0),
			ArmorCategory:    str(data.Get("Category"), ""),
		}
	case blueprint.KindStarshipWeapon:
		it.StarshipWeaponStats = &StarshipWeaponStats{
			WeaponType:      str(data.Get("WeaponType"), ""),
			DamageInstances: num(data.Get("DamageInstances"), 1),
			AllowedSlots:    Slots(data),
		}
	case blueprint.KindVoidShield:
		it.VoidShieldStats = &VoidShieldStats{
			ShieldStrength: num(data.Get("ShieldStrengthBonus"), 0),
		}
	case blueprint.KindPlasmaDrive:
		it.PlasmaDriveStats = &PlasmaDriveStats{
			Speed:           num(data.Get("Speed"), 0),
			Maneuverability: num(data.Get("Maneuverability"), 0),
		}
	case blueprint.KindAugerArray:
		it.AugerArrayStats = &AugerArrayStats{
			DetectionRadius: num(data.Get("DetectionRadiusBonus"), 0),
		}
	}
	return it
}

// ResolveName returns the display name of bp: data.Name, else the top-level
// name, else data.name with underscores turned into spaces, else "".
func ResolveName(bp *blueprint.Blueprint) string {
	data := bp.Data()
	if name := data.Get("Name").String(); name != "" {
		return name
	}
	if name := bp.Name(); name != "" {
		return name
	}
	return strings.ReplaceAll(data.Get("name").String(), "_", " ")
}

// Slots returns the strings listed in data.AllowedSlots.items, or nil when the
// container is absent or not shaped as expected.
func Slots(data gjson.Result) []string {
	slots := data.Get("AllowedSlots")
	if !slots.IsObject() {
		return nil
	}
	items := slots.Get("items")
	if !items.IsArray() {
		return nil
	}
	var out []string
	for _, s := range items.Array() {
		out = append(out, s.String())
	}
	return out
}

func extractWeapon(data gjson.Result) *WeaponStats {
	damage := data.Get("WarhammerDamage")
	maxDamage := data.Get("WarhammerMaxDamage")
	if !present(maxDamage) {
		maxDamage = damage
	}
	attackRange := data.Get("WarhammerMaxDistance")
	if !present(attackRange) {
		attackRange = data.Get("AttackRange")
	}

	damageType := ""
	if dt := data.Get("m_DamageType"); dt.IsObject() {
		damageType = str(dt.Get("Type"), "")
	}

	return &WeaponStats{
		DamageMin:        num(damage, 0),
		DamageMax:        num(maxDamage, 0),
		Penetration:      num(data.Get("WarhammerPenetration"), 0),
		DodgePenetration: num(data.Get("DodgePenetration"), 0),
		Range:            num(attackRange, 0),
		Ammo:             num(data.Get("WarhammerMaxAmmo"), 0),
		RateOfFire:       num(data.Get("RateOfFire"), 0),
		Recoil:           num(data.Get("WarhammerRecoil"), 0),
		Family:           str(data.Get("Family"), ""),
		HoldingType:      str(data.Get("HoldingType"), ""),
		IsRanged:         boolean(data.Get("IsRanged")),
		IsMelee:          boolean(data.Get("IsMelee")),
		DamageType:       damageType,
		Abilities:        abilities(data.Get("WeaponAbilities")),
	}
}

// abilities lists the configured abilities of a weapon. Slots marked IsNone,
// or lacking the IsNone flag or a type, are skipped.
func abilities(wa gjson.Result) []Ability {
	if !wa.IsObject() {
		return nil
	}
	items := wa.Get("items")
	if !items.IsArray() {
		return nil
	}
	var out []Ability
	for _, ab := range items.Array() {
		if !ab.IsObject() {
			continue
		}
		if isNone := ab.Get("IsNone"); !isNone.Exists() || isNone.Bool() {
			continue
		}
		typ := ab.Get("Type").String()
		if typ == "" {
			continue
		}
		out = append(out, Ability{Type: typ, AP: *num(ab.Get("AP"), 0)})
	}
	return out
}

// present reports whether r holds a non-null value.
func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

func num(r gjson.Result, def float64) *float64 {
	v := def
	if present(r) {
		v = r.Float()
	}
	return &v
}

func str(r gjson.Result, def string) string {
	if !present(r) {
		return def
	}
	return r.String()
}

func boolean(r gjson.Result) *bool {
	v := r.Bool()
	return &v
}
