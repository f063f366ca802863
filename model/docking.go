package model

import (
	"errors"

	"github.com/orbitalcombat/simcore/entity"
)

var (
	ErrNoDockPorts  = errors.New("model: station has no docking ports")
	ErrNoSuchPort   = errors.New("model: no such docking port")
	ErrPortOccupied = errors.New("model: docking port already occupied")
)

// fuelTransferRateKgPerSec is the continuous fuel-transfer rate used by
// an active docked FuelTransfer.
const fuelTransferRateKgPerSec = 5.0

// torpedoTransferIntervalSec is the fixed cadence of a discrete torpedo
// transfer between a docked vessel and a station.
const torpedoTransferIntervalSec = 1800.0

// CanDock reports whether entity e may dock at station's location. The
// command layer checks this before issuing a Dock command; an impossible
// dock is rejected here rather than mid-tick.
func (m *Model) CanDock(station entity.Entity, location DockLocation, e entity.Entity) bool {
	v, ok := m.vessels.Get(station)
	if !ok || v.DockPorts == nil {
		return false
	}
	port, ok := v.DockPorts[location]
	return ok && port.Docked.IsNil()
}

func (m *Model) dock(station entity.Entity, location DockLocation, e entity.Entity) error {
	v, ok := m.vessels.Get(station)
	if !ok {
		return ErrNotAVessel
	}
	if v.DockPorts == nil {
		return ErrNoDockPorts
	}
	port, ok := v.DockPorts[location]
	if !ok {
		return ErrNoSuchPort
	}
	if !port.Docked.IsNil() {
		return ErrPortOccupied
	}
	port.Docked = e
	port.FuelTransfer = false
	port.TorpedoTransfer = false
	v.DockPorts[location] = port
	m.vessels.Set(station, v)
	return nil
}

func (m *Model) undock(station entity.Entity, location DockLocation) error {
	v, ok := m.vessels.Get(station)
	if !ok {
		return ErrNotAVessel
	}
	port, ok := v.DockPorts[location]
	if !ok || port.Docked.IsNil() {
		return ErrNoSuchPort
	}
	v.DockPorts[location] = &DockState{}
	m.vessels.Set(station, v)
	return nil
}

func (m *Model) setFuelTransfer(station entity.Entity, location DockLocation, active bool) error {
	v, ok := m.vessels.Get(station)
	if !ok {
		return ErrNotAVessel
	}
	port, ok := v.DockPorts[location]
	if !ok || port.Docked.IsNil() {
		return ErrNoSuchPort
	}
	port.FuelTransfer = active
	v.DockPorts[location] = port
	m.vessels.Set(station, v)
	return nil
}

func (m *Model) setTorpedoTransfer(station entity.Entity, location DockLocation, active bool) error {
	v, ok := m.vessels.Get(station)
	if !ok {
		return ErrNotAVessel
	}
	port, ok := v.DockPorts[location]
	if !ok || port.Docked.IsNil() {
		return ErrNoSuchPort
	}
	port.TorpedoTransfer = active
	v.DockPorts[location] = port
	m.vessels.Set(station, v)
	return nil
}

// updateDocking advances continuous fuel transfer at a fixed rate, and
// discrete torpedo transfer on a fixed interval, for every active docking
// port across every vessel. Fuel flows from the station to the docked
// vessel (station acts as the depot); torpedoes likewise.
func (m *Model) updateDocking(dt float64) {
	for _, stationEntity := range m.vessels.Entities() {
		station, _ := m.vessels.Get(stationEntity)
		if station.DockPorts == nil {
			continue
		}
		changed := false
		for _, loc := range sortedDockLocations(station.DockPorts) {
			port := station.DockPorts[loc]
			if port.Docked.IsNil() {
				continue
			}
			docked, ok := m.vessels.Get(port.Docked)
			if !ok {
				continue
			}
			if port.FuelTransfer && station.FuelTank != nil && docked.FuelTank != nil {
				amount := fuelTransferRateKgPerSec * dt
				amount = minFloat(amount, station.FuelTank.MassKg)
				amount = minFloat(amount, docked.FuelTank.CapacityKg-docked.FuelTank.MassKg)
				if amount > 0 {
					station.FuelTank.MassKg -= amount
					docked.FuelTank.MassKg += amount
					m.vessels.Set(port.Docked, docked)
					changed = true
				}
			}
			if port.TorpedoTransfer && station.Torpedoes != nil && docked.Torpedoes != nil {
				port.TorpedoTransferElapsedSec += dt
				if port.TorpedoTransferElapsedSec >= torpedoTransferIntervalSec && station.Torpedoes.Count > 0 && docked.Torpedoes.Count < docked.Torpedoes.Capacity {
					port.TorpedoTransferElapsedSec -= torpedoTransferIntervalSec
					station.Torpedoes.Count--
					docked.Torpedoes.Count++
					m.vessels.Set(port.Docked, docked)
				}
				station.DockPorts[loc] = port
				changed = true
			}
		}
		if changed {
			m.vessels.Set(stationEntity, station)
		}
	}
}

// sortedDockLocations returns a station's port keys in ascending
// order; map iteration over DockPorts would otherwise make transfer
// ordering nondeterministic across runs.
func sortedDockLocations(ports map[DockLocation]*DockState) []DockLocation {
	out := make([]DockLocation, 0, len(ports))
	for loc := range ports {
		out = append(out, loc)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
