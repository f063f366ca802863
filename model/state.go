package model

import (
	kitlog "github.com/go-kit/kit/log"

	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/path"
)

// NameEntry, OrbitableEntry, VesselEntry and PathEntry pair a component
// value with the entity it belongs to, the form package persist needs
// since entity.Entity (a struct) cannot be a JSON map key the way
// componentStore's internal map uses it directly.
type NameEntry struct {
	Entity entity.Entity `json:"entity"`
	Value  Name          `json:"value"`
}

type OrbitableEntry struct {
	Entity entity.Entity
	Value  Orbitable
}

type VesselEntry struct {
	Entity entity.Entity `json:"entity"`
	Value  Vessel        `json:"value"`
}

type PathEntry struct {
	Entity entity.Entity
	Value  *path.Path
}

// State is every field needed to reconstruct a Model exactly: the
// allocator bookkeeping (so reloaded entity handles keep the same
// Index/Generation pairs the restored components reference) plus each
// component store flattened to entity-keyed entries, plus the Clock.
type State struct {
	Allocator  entity.State
	Names      []NameEntry
	Orbitables []OrbitableEntry
	Vessels    []VesselEntry
	Paths      []PathEntry
	Clock      Clock
}

// ExportState snapshots every field package persist needs to save this
// Model, in deterministic entity-index order.
func (m *Model) ExportState() State {
	s := State{Allocator: m.allocator.ExportState(), Clock: m.Clock}
	for _, e := range m.names.Entities() {
		v, _ := m.names.Get(e)
		s.Names = append(s.Names, NameEntry{Entity: e, Value: v})
	}
	for _, e := range m.orbitables.Entities() {
		v, _ := m.orbitables.Get(e)
		s.Orbitables = append(s.Orbitables, OrbitableEntry{Entity: e, Value: v})
	}
	for _, e := range m.vessels.Entities() {
		v, _ := m.vessels.Get(e)
		s.Vessels = append(s.Vessels, VesselEntry{Entity: e, Value: v})
	}
	for _, e := range m.paths.Entities() {
		v, _ := m.paths.Get(e)
		s.Paths = append(s.Paths, PathEntry{Entity: e, Value: v})
	}
	return s
}

// Restore rebuilds a Model from a previously exported State, used by
// package persist's Load. The Paths' segments must already have been
// reconstructed by the caller (persist alone knows how to rebuild each
// segment kind from its recorded construction parameters).
func Restore(logger kitlog.Logger, s State) *Model {
	m := &Model{
		allocator:  entity.RestoreAllocator(s.Allocator),
		names:      newComponentStore[Name](),
		orbitables: newComponentStore[Orbitable](),
		paths:      newComponentStore[*path.Path](),
		vessels:    newComponentStore[Vessel](),
		Clock:      s.Clock,
		logger:     logger,
	}
	for _, n := range s.Names {
		m.names.Set(n.Entity, n.Value)
	}
	for _, o := range s.Orbitables {
		m.orbitables.Set(o.Entity, o.Value)
	}
	for _, v := range s.Vessels {
		m.vessels.Set(v.Entity, v.Value)
	}
	for _, p := range s.Paths {
		m.paths.Set(p.Entity, p.Value)
	}
	return m
}
