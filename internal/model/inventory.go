package model

import "github.com/google/uuid"

// RollPreset represents a reusable master roll definition: the stock a
// shop actually buys, with its length and per-roll cost.
type RollPreset struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Length   int     `json:"length"` // mm
	Material string  `json:"material"`
	UnitCost float64 `json:"unit_cost,omitempty"`
}

// NewRollPreset creates a new RollPreset with a generated ID.
func NewRollPreset(name string, length int, material string, unitCost float64) RollPreset {
	return RollPreset{
		ID:       uuid.New().String()[:8],
		Name:     name,
		Length:   length,
		Material: material,
		UnitCost: unitCost,
	}
}

// Apply sets the roll length and cost of a request from this preset.
func (rp RollPreset) Apply(req Request) Request {
	req.MasterRollLength = rp.Length
	req.UnitCost = rp.UnitCost
	return req
}

// Inventory holds the user's saved roll presets.
type Inventory struct {
	Rolls []RollPreset `json:"rolls"`
}

// DefaultInventory returns an inventory populated with common stock
// lengths.
func DefaultInventory() Inventory {
	return Inventory{
		Rolls: []RollPreset{
			NewRollPreset("Steel bar 6000mm", 6000, "Steel", 0),
			NewRollPreset("Steel bar 12000mm", 12000, "Steel", 0),
			NewRollPreset("Rebar 6100mm", 6100, "Steel", 0),
			NewRollPreset("Aluminium extrusion 5800mm", 5800, "Aluminium", 0),
			NewRollPreset("Copper pipe 3000mm", 3000, "Copper", 0),
			NewRollPreset("Timber stud 2400mm", 2400, "Timber", 0),
		},
	}
}

// FindRollByID returns a pointer to the preset with the given ID, or nil.
func (inv *Inventory) FindRollByID(id string) *RollPreset {
	for i := range inv.Rolls {
		if inv.Rolls[i].ID == id {
			return &inv.Rolls[i]
		}
	}
	return nil
}

// FindRollByName returns a pointer to the first preset with the given
// name, or nil.
func (inv *Inventory) FindRollByName(name string) *RollPreset {
	for i := range inv.Rolls {
		if inv.Rolls[i].Name == name {
			return &inv.Rolls[i]
		}
	}
	return nil
}

// RollNames returns a list of preset names for pickers.
func (inv Inventory) RollNames() []string {
	names := make([]string, len(inv.Rolls))
	for i, r := range inv.Rolls {
		names[i] = r.Name
	}
	return names
}
