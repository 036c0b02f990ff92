package config

import (
	"fmt"
)

// DefaultHardforkHeight is the activation height used for every hardfork
// not mentioned in the testbed, all of them are enabled from the first block
// by default.
const DefaultHardforkHeight = 1

// Testbed names of the known hardforks.
const (
	HFAspidochelone = "HF_Aspidochelone"
	HFBasilisk      = "HF_Basilisk"
	HFCockatrice    = "HF_Cockatrice"
	HFDomovoi       = "HF_Domovoi"
	HFEchidna       = "HF_Echidna"
	HFFaun          = "HF_Faun"
)

// Hardfork holds activation heights of the known protocol upgrades for the
// network under test.
type Hardfork struct {
	Aspidochelone uint32
	Basilisk      uint32
	Cockatrice    uint32
	Domovoi       uint32
	Echidna       uint32
	Faun          uint32
}

// hardforkField binds a testbed name to the corresponding Hardfork field.
type hardforkField struct {
	name  string
	field func(*Hardfork) *uint32
}

// hardforkFields is the closed set of hardforks in activation order.
var hardforkFields = []hardforkField{
	{HFAspidochelone, func(h *Hardfork) *uint32 { return &h.Aspidochelone }},
	{HFBasilisk, func(h *Hardfork) *uint32 { return &h.Basilisk }},
	{HFCockatrice, func(h *Hardfork) *uint32 { return &h.Cockatrice }},
	{HFDomovoi, func(h *Hardfork) *uint32 { return &h.Domovoi }},
	{HFEchidna, func(h *Hardfork) *uint32 { return &h.Echidna }},
	{HFFaun, func(h *Hardfork) *uint32 { return &h.Faun }},
}

// DefaultHardfork returns Hardfork with every upgrade active since
// DefaultHardforkHeight.
func DefaultHardfork() Hardfork {
	var h Hardfork
	for _, f := range hardforkFields {
		*f.field(&h) = DefaultHardforkHeight
	}
	return h
}

// HardforkNames returns testbed names of all known hardforks in activation
// order.
func HardforkNames() []string {
	var names = make([]string, 0, len(hardforkFields))
	for _, f := range hardforkFields {
		names = append(names, f.name)
	}
	return names
}

// NewHardforkFromMap creates Hardfork from the name->height mapping. Names not
// present in m keep their default height, unknown names are an error.
func NewHardforkFromMap(m map[string]any) (Hardfork, error) {
	var h = DefaultHardfork()
	for name, v := range m {
		f, ok := findHardfork(name)
		if !ok {
			return Hardfork{}, keyError(KeyHardforks, fmt.Errorf("%w: %s", ErrUnknownHardfork, name))
		}
		height, err := toUint32(v)
		if err != nil {
			return Hardfork{}, keyError(KeyHardforks, fmt.Errorf("%s: %w", name, err))
		}
		*f.field(&h) = height
	}
	return h, nil
}

// ToMap returns name->height mapping for all hardforks.
func (h Hardfork) ToMap() map[string]uint32 {
	var m = make(map[string]uint32, len(hardforkFields))
	for _, f := range hardforkFields {
		m[f.name] = *f.field(&h)
	}
	return m
}

// Height returns activation height of the hardfork with the given testbed
// name.
func (h Hardfork) Height(name string) (uint32, bool) {
	f, ok := findHardfork(name)
	if !ok {
		return 0, false
	}
	return *f.field(&h), true
}

// IsActive denotes whether the named hardfork is enabled at the given height.
func (h Hardfork) IsActive(name string, height uint32) bool {
	hfHeight, ok := h.Height(name)
	return ok && height >= hfHeight
}

func findHardfork(name string) (hardforkField, bool) {
	for _, f := range hardforkFields {
		if f.name == name {
			return f, true
		}
	}
	return hardforkField{}, false
}
