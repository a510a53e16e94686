package site

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/cory-johannsen/rtdb/internal/blueprint"
	"github.com/cory-johannsen/rtdb/internal/config"
	"github.com/cory-johannsen/rtdb/internal/item"
)

// rarityClasses maps in-game rarity names to their CSS class suffix.
var rarityClasses = map[string]string{
	"Common":   "common",
	"Uncommon": "uncommon",
	"Rare":     "rare",
	"VeryRare": "veryrare",
	"Unique":   "unique",
}

// RarityClass returns the CSS class suffix for rarity, "common" when unknown.
func RarityClass(rarity string) string {
	if class, ok := rarityClasses[rarity]; ok {
		return class
	}
	return "common"
}

// chrome is the layout shared by every page.
type chrome struct {
	Site      config.SiteConfig
	PageTitle string
	// Base is the relative path from the page back to the site root.
	Base      string
	Nav       []navSection
	Script    bool
}

type navItem struct {
	ID     string
	Title  string
	Count  int
	Active bool
}

type navSection struct {
	Title string
	Items []navItem
}

type stat struct {
	Label string
	Value string
	Class string
}

type card struct {
	GUID        string
	Name        string
	RarityClass string
	Subtitle    string
	Stats       []stat
}

type listingPage struct {
	chrome
	Heading     string
	Description string
	Cards       []card
}

type detailPage struct {
	chrome
	CategoryID    string
	CategoryTitle string
	Name          string
	GUID          string
	Rarity        string
	RarityClass   string
	Description   string
	Stats         []stat
}

type featuredCategory struct {
	ID      string
	Title   string
	Icon    string
	Count   int
	Summary string
}

type indexPage struct {
	chrome
	Heading  string
	Total    string
	Featured []featuredCategory
}

// cardBuilder renders the subtitle and stat rows of a listing card.
type cardBuilder func(data gjson.Result, title string) (subtitle string, stats []stat)

// cardBuilders selects the card layout by category id; other categories use
// genericCard.
var cardBuilders = map[string]cardBuilder{
	"weapons":          weaponCard,
	"armor":            armorCard,
	"starship-weapons": starshipWeaponCard,
}

// newCard builds the listing card of bp for the category titled title.
func newCard(bp *blueprint.Blueprint, categoryID, title string) card {
	data := bp.Data()
	build, ok := cardBuilders[categoryID]
	if !ok {
		build = genericCard
	}
	subtitle, stats := build(data, title)

	rarity := text(data.Get("Rarity"), item.DefaultRarity)
	rarityClass := RarityClass(rarity)
	stats = append(stats, stat{Label: "Rarity", Value: rarity, Class: "rarity-" + rarityClass})

	return card{
		GUID:        bp.GUID(),
		Name:        displayName(bp),
		RarityClass: rarityClass,
		Subtitle:    subtitle,
		Stats:       stats,
	}
}

func weaponCard(data gjson.Result, _ string) (string, []stat) {
	attackType := "Unknown"
	switch {
	case data.Get("IsRanged").Bool():
		attackType = "Ranged"
	case data.Get("IsMelee").Bool():
		attackType = "Melee"
	}
	minDmg, maxDmg := damage(data)
	return attackType + " • " + text(data.Get("Family"), "Unknown"), []stat{
		{Label: "Damage", Value: minDmg + "-" + maxDmg},
		{Label: "Penetration", Value: text(data.Get("WarhammerPenetration"), "0")},
		{Label: "Range", Value: attackRange(data)},
	}
}

func armorCard(data gjson.Result, _ string) (string, []stat) {
	return text(data.Get("Category"), "Unknown") + " Armor", []stat{
		{Label: "Absorption", Value: text(data.Get("DamageAbsorption"), "0")},
		{Label: "Deflection", Value: text(data.Get("DamageDeflection"), "0")},
	}
}

func starshipWeaponCard(data gjson.Result, _ string) (string, []stat) {
	return text(data.Get("WeaponType"), "Unknown"), []stat{
		{Label: "Shots", Value: text(data.Get("DamageInstances"), "1")},
		{Label: "Slot", Value: slots(data)},
	}
}

func genericCard(_ gjson.Result, title string) (string, []stat) {
	return strings.TrimRight(title, "s"), nil
}

// detailStats returns the stat boxes of the detail page. Only personal
// weapons, armor and starship weapons carry a stat block.
func detailStats(bp *blueprint.Blueprint) []stat {
	data := bp.Data()
	switch bp.Kind() {
	case blueprint.KindWeapon:
		minDmg, maxDmg := damage(data)
		return []stat{
			{Label: "Damage", Value: minDmg + " - " + maxDmg},
			{Label: "Penetration", Value: text(data.Get("WarhammerPenetration"), "0")},
			{Label: "Range", Value: attackRange(data)},
			{Label: "Ammo", Value: text(data.Get("WarhammerMaxAmmo"), "N/A")},
			{Label: "Rate of Fire", Value: text(data.Get("RateOfFire"), "N/A")},
			{Label: "Recoil", Value: text(data.Get("WarhammerRecoil"), "0")},
			{Label: "Family", Value: text(data.Get("Family"), "Unknown")},
			{Label: "Holding", Value: text(data.Get("HoldingType"), "Unknown")},
		}
	case blueprint.KindArmor:
		return []stat{
			{Label: "Damage Absorption", Value: text(data.Get("DamageAbsorption"), "0")},
			{Label: "Damage Deflection", Value: text(data.Get("DamageDeflection"), "0")},
			{Label: "Category", Value: text(data.Get("Category"), "Unknown")},
		}
	case blueprint.KindStarshipWeapon:
		return []stat{
			{Label: "Weapon Type", Value: text(data.Get("WeaponType"), "Unknown")},
			{Label: "Damage Instances", Value: text(data.Get("DamageInstances"), "1")},
			{Label: "Allowed Slots", Value: slots(data)},
		}
	}
	return nil
}

// damage returns the minimum and maximum damage; the maximum defaults to the
// minimum.
func damage(data gjson.Result) (string, string) {
	minDmg := text(data.Get("WarhammerDamage"), "0")
	return minDmg, text(data.Get("WarhammerMaxDamage"), minDmg)
}

func attackRange(data gjson.Result) string {
	return text(data.Get("WarhammerMaxDistance"), text(data.Get("AttackRange"), "0"))
}

func slots(data gjson.Result) string {
	list := item.Slots(data)
	if len(list) == 0 {
		return "Any"
	}
	return strings.Join(list, ", ")
}

// displayName is the blueprint's top-level name, "Unknown" when absent.
func displayName(bp *blueprint.Blueprint) string {
	return text(gjson.GetBytes(bp.Raw(), "name"), "Unknown")
}

// text renders r the way it appears in the source JSON, or def when r is
// absent or null. Strings are unquoted.
func text(r gjson.Result, def string) string {
	if !r.Exists() || r.Type == gjson.Null {
		return def
	}
	if r.Type == gjson.String {
		return r.Str
	}
	return r.Raw
}
