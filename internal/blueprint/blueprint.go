// Package blueprint reads extracted game blueprint files and classifies them
// by the kind of item their type tag describes.
package blueprint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind is the item kind derived from a blueprint's $type tag.
type Kind int

// Kinds, in classification priority order.
const (
	KindUnknown Kind = iota
	KindWeapon
	KindArmor
	KindStarshipWeapon
	KindVoidShield
	KindPlasmaDrive
	KindAugerArray
)

var kindNames = map[Kind]string{
	KindUnknown:        "unknown",
	KindWeapon:         "weapon",
	KindArmor:          "armor",
	KindStarshipWeapon: "starship-weapon",
	KindVoidShield:     "void-shield",
	KindPlasmaDrive:    "plasma-drive",
	KindAugerArray:     "auger-array",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Classify maps a $type tag to a Kind. The checks run in a fixed order and the
// first match wins, so a starship weapon is never KindWeapon and starship
// armor plating is never KindArmor.
func Classify(typeTag string) Kind {
	has := func(s string) bool { return strings.Contains(typeTag, s) }
	switch {
	case has("Weapon") && !has("Starship"):
		return KindWeapon
	case has("Armor") && !has("Plating"):
		return KindArmor
	case has("StarshipWeapon"):
		return KindStarshipWeapon
	case has("VoidShield"):
		return KindVoidShield
	case has("PlasmaDrives"):
		return KindPlasmaDrive
	case has("AugerArray"):
		return KindAugerArray
	default:
		return KindUnknown
	}
}

// ErrNotObject is returned by Parse when the document is valid JSON but not an
// object.
var ErrNotObject = errors.New("blueprint is not a JSON object")

// Blueprint is one raw item definition. Fields are read lazily from the raw
// JSON and every accessor tolerates absence.
type Blueprint struct {
	raw  []byte
	path string
	root gjson.Result
	kind Kind
}

// Parse validates data as a JSON object and wraps it as a Blueprint. path is
// recorded for diagnostics only.
//
// Postcondition: returns a non-nil Blueprint or a non-nil error.
func Parse(path string, data []byte) (*Blueprint, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON in %s", path)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotObject)
	}
	return &Blueprint{
		raw:  data,
		path: path,
		root: root,
		kind: Classify(root.Get("\\$type").String()),
	}, nil
}

// Raw returns the original JSON bytes.
func (b *Blueprint) Raw() []byte { return b.raw }

// Path returns the file the blueprint was read from.
func (b *Blueprint) Path() string { return b.path }

// Kind returns the kind classified from the type tag.
func (b *Blueprint) Kind() Kind { return b.kind }

// GUID returns the guid field, or "".
func (b *Blueprint) GUID() string { return b.root.Get("guid").String() }

// Name returns the top-level name field, or "".
func (b *Blueprint) Name() string { return b.root.Get("name").String() }

// TypeTag returns the full $type tag, or "".
func (b *Blueprint) TypeTag() string { return b.root.Get("\\$type").String() }

// TypeName returns the last dot-separated segment of the type tag.
func (b *Blueprint) TypeName() string {
	tag := b.TypeTag()
	return tag[strings.LastIndex(tag, ".")+1:]
}

// Data returns the data object. The result does not exist when data is
// absent; lookups on it then return non-existent results as well.
func (b *Blueprint) Data() gjson.Result {
	return b.root.Get("data")
}
