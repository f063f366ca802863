// Package persist saves and loads a Model to a single self-describing
// JSON document. All data is embedded; there are no external references.
//
// Rather than dumping every segment's dense per-sample table, Orbit,
// Burn and Turn are serialized as their construction-time inputs and
// rebuilt by replaying the same pure constructors (NewOrbit, NewBurn,
// NewTurn) on load: since those constructors are deterministic pure
// functions of their arguments, replaying them reproduces byte-identical
// tables without a second, fragile serialization format to keep in sync
// with the tabulation code. Guidance is the one exception: its table
// is the output of package guidance's closed-loop integrator querying a
// live target's future state, which isn't available in isolation at
// load time, so its dense table (already flat, JSON-friendly data) is
// serialized directly and wrapped back up with segment.NewGuidance.
package persist

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	kitlog "github.com/go-kit/kit/log"

	"github.com/orbitalcombat/simcore/conic"
	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/model"
	"github.com/orbitalcombat/simcore/path"
	"github.com/orbitalcombat/simcore/segment"
	"github.com/orbitalcombat/simcore/vector2"
)

// Schema is the current save-file format version. Load rejects any
// other value rather than guessing at a migration.
const Schema = 1

// ErrUnsupportedSchema is returned by Load when a save file's schema
// field doesn't match the version this build knows how to read.
type ErrUnsupportedSchema struct{ Found int }

func (e ErrUnsupportedSchema) Error() string {
	return fmt.Sprintf("persist: unsupported schema %d, want %d", e.Found, Schema)
}

// rocketEqRecord is the flat set of a RocketEquationFunction's fixed
// construction parameters (never its time-varying burnTime), shared by
// burnRecord and guidanceRecord.
type rocketEqRecord struct {
	DryMassKg                float64 `json:"dryMassKg"`
	InitialFuelMassKg        float64 `json:"initialFuelMassKg"`
	FuelConsumptionKgPerSec  float64 `json:"fuelConsumptionKgPerSec"`
	SpecificImpulse          float64 `json:"specificImpulse"`
}

func toRocketEqRecord(r segment.RocketEquationFunction) rocketEqRecord {
	return rocketEqRecord{
		DryMassKg:               r.DryMassKg(),
		InitialFuelMassKg:       r.InitialFuelMassKg(),
		FuelConsumptionKgPerSec: r.FuelConsumptionKgPerSec(),
		SpecificImpulse:         r.SpecificImpulse(),
	}
}

func (r rocketEqRecord) build() segment.RocketEquationFunction {
	return segment.NewRocketEquationFunction(r.DryMassKg, r.InitialFuelMassKg, r.FuelConsumptionKgPerSec, r.SpecificImpulse, 0)
}

type orbitRecord struct {
	Parent        entity.Entity `json:"parent"`
	Mass          float64       `json:"mass"`
	ParentMass    float64       `json:"parentMass"`
	StartPosition vector2.Vec2  `json:"startPosition"`
	StartVelocity vector2.Vec2  `json:"startVelocity"`
	StartTime     float64       `json:"startTime"`
	EndTime       *float64      `json:"endTime,omitempty"` // nil: unbounded
	CurrentTime   float64       `json:"currentTime"`
}

func toOrbitRecord(o *segment.Orbit) orbitRecord {
	r := orbitRecord{
		Parent:        o.Parent(),
		Mass:          o.StartMass(),
		ParentMass:    orbitParentMass(o),
		StartPosition: o.StartPosition(),
		StartVelocity: o.StartVelocity(),
		StartTime:     o.StartTime(),
		CurrentTime:   o.CurrentTime(),
	}
	if end := o.EndTime(); !math.IsInf(end, 1) {
		r.EndTime = &end
	}
	return r
}

// orbitParentMass recovers the parentMass argument NewOrbit was built
// with from the conic it derived (mu = G*parentMass), since Orbit
// exposes its Conic but not the raw parentMass directly.
func orbitParentMass(o *segment.Orbit) float64 {
	return o.Conic().Mu() / conic.GravitationalConstant
}

func (r orbitRecord) build() *segment.Orbit {
	o := segment.NewOrbit(r.Parent, r.Mass, r.ParentMass, r.StartPosition, r.StartVelocity, r.StartTime)
	if r.EndTime != nil {
		o.EndAt(*r.EndTime)
	}
	o.Next(r.CurrentTime - r.StartTime)
	return o
}

type burnRecord struct {
	Parent        entity.Entity  `json:"parent"`
	ParentMass    float64        `json:"parentMass"`
	Tangent       vector2.Vec2   `json:"tangent"`
	DeltaV        vector2.Vec2   `json:"deltaV"`
	StartTime     float64        `json:"startTime"`
	StartPosition vector2.Vec2   `json:"startPosition"`
	StartVelocity vector2.Vec2   `json:"startVelocity"`
	RocketEq      rocketEqRecord `json:"rocketEq"`
	CurrentTime   float64        `json:"currentTime"`
}

func toBurnRecord(b *segment.Burn) burnRecord {
	return burnRecord{
		Parent:        b.Parent(),
		ParentMass:    burnParentMass(b),
		Tangent:       b.Tangent(),
		DeltaV:        b.DeltaV(),
		StartTime:     b.StartTime(),
		StartPosition: b.StartPosition(),
		StartVelocity: b.StartVelocity(),
		RocketEq:      toRocketEqRecord(b.StartRocketEq()),
		CurrentTime:   b.CurrentTime(),
	}
}

// burnParentMass recovers the parentMass NewBurn was built with from
// the BurnPoint table's own ParentMass field, carried on every point.
func burnParentMass(b *segment.Burn) float64 {
	return b.PointAtTime(b.StartTime()).ParentMass
}

func (r burnRecord) build() *segment.Burn {
	b := segment.NewBurn(r.Parent, r.ParentMass, r.Tangent, r.DeltaV, r.StartTime, r.RocketEq.build(), r.StartPosition, r.StartVelocity)
	b.Next(r.CurrentTime - r.StartTime)
	return b
}

type turnRecord struct {
	Parent        entity.Entity `json:"parent"`
	ParentMass    float64       `json:"parentMass"`
	StartTime     float64       `json:"startTime"`
	StartMass     float64       `json:"startMass"`
	StartPosition vector2.Vec2  `json:"startPosition"`
	StartVelocity vector2.Vec2  `json:"startVelocity"`
	StartHeading  float64       `json:"startHeading"`
	TargetHeading float64       `json:"targetHeading"`
	Omega         float64       `json:"omega"`
	CurrentTime   float64       `json:"currentTime"`
}

func toTurnRecord(t *segment.Turn, omega float64) turnRecord {
	return turnRecord{
		Parent:        t.Parent(),
		ParentMass:    t.ParentMass(),
		StartTime:     t.StartTime(),
		StartMass:     t.StartMass(),
		StartPosition: t.StartPosition(),
		StartVelocity: t.StartVelocity(),
		StartHeading:  t.StartHeading(),
		TargetHeading: t.TargetHeading(),
		Omega:         omega,
		CurrentTime:   t.CurrentTime(),
	}
}

func (r turnRecord) build() *segment.Turn {
	t := segment.NewTurn(r.Parent, r.ParentMass, r.StartTime, r.StartMass, r.StartPosition, r.StartVelocity, r.StartHeading, r.TargetHeading, r.Omega)
	t.Next(r.CurrentTime - r.StartTime)
	return t
}

type guidanceRecord struct {
	Parent         entity.Entity          `json:"parent"`
	TargetEntity   entity.Entity          `json:"targetEntity"`
	RocketEq       rocketEqRecord         `json:"rocketEq"`
	InterceptRange float64                `json:"interceptRange"`
	Points         []segment.GuidancePoint `json:"points"`
	CurrentTime    float64                `json:"currentTime"`
}

func toGuidanceRecord(g *segment.Guidance) guidanceRecord {
	return guidanceRecord{
		Parent:         g.Parent(),
		TargetEntity:   g.TargetEntity(),
		RocketEq:       toRocketEqRecord(g.StartRocketEq()),
		InterceptRange: g.InterceptRange(),
		Points:         g.Points(),
		CurrentTime:    g.CurrentTime(),
	}
}

func (r guidanceRecord) build() *segment.Guidance {
	g := segment.NewGuidance(r.Parent, r.TargetEntity, r.RocketEq.build(), r.InterceptRange, r.Points)
	g.Next(r.CurrentTime - g.StartTime())
	return g
}

// segmentRecord is the tagged union over the four Segment kinds, one of
// whose pointer fields is populated depending on Kind.
type segmentRecord struct {
	Kind     string          `json:"kind"`
	Orbit    *orbitRecord    `json:"orbit,omitempty"`
	Burn     *burnRecord     `json:"burn,omitempty"`
	Turn     *turnRecord     `json:"turn,omitempty"`
	Guidance *guidanceRecord `json:"guidance,omitempty"`
}

// turnOmegaLookup supplies the RCS turn rate for a vessel entity, needed
// to rebuild a Turn (NewTurn takes omega, not duration, as input).
type turnOmegaLookup func(entity.Entity) float64

func toSegmentRecord(s segment.Segment, owner entity.Entity, omegaOf turnOmegaLookup) segmentRecord {
	switch v := s.(type) {
	case *segment.Orbit:
		r := toOrbitRecord(v)
		return segmentRecord{Kind: "orbit", Orbit: &r}
	case *segment.Burn:
		r := toBurnRecord(v)
		return segmentRecord{Kind: "burn", Burn: &r}
	case *segment.Turn:
		r := toTurnRecord(v, omegaOf(owner))
		return segmentRecord{Kind: "turn", Turn: &r}
	case *segment.Guidance:
		r := toGuidanceRecord(v)
		return segmentRecord{Kind: "guidance", Guidance: &r}
	default:
		panic(fmt.Sprintf("persist: unknown segment type %T", s))
	}
}

func (r segmentRecord) build() segment.Segment {
	switch r.Kind {
	case "orbit":
		return r.Orbit.build()
	case "burn":
		return r.Burn.build()
	case "turn":
		return r.Turn.build()
	case "guidance":
		return r.Guidance.build()
	default:
		panic(fmt.Sprintf("persist: unknown segment kind %q", r.Kind))
	}
}

type pathRecord struct {
	Entity entity.Entity   `json:"entity"`
	Past   []segmentRecord `json:"past"`
	Future []segmentRecord `json:"future"`
}

// orbitableRecord mirrors model.Orbitable, substituting its embedded
// *segment.Orbit (Physics.Orbit) for an orbitRecord.
type orbitableRecord struct {
	Entity         entity.Entity       `json:"entity"`
	Mass           float64             `json:"mass"`
	Radius         float64             `json:"radius"`
	RotationPeriod float64             `json:"rotationPeriod"`
	RotationAngle0 float64             `json:"rotationAngle0"`
	Kind           model.OrbitableKind `json:"kind"`
	Stationary     bool                `json:"stationary"`
	Position       vector2.Vec2        `json:"position"` // valid only if Stationary
	Orbit          *orbitRecord        `json:"orbit,omitempty"` // valid only if !Stationary
	Atmosphere     model.Atmosphere    `json:"atmosphere"`
}

func toOrbitableRecord(e entity.Entity, o model.Orbitable) orbitableRecord {
	r := orbitableRecord{
		Entity:         e,
		Mass:           o.Mass,
		Radius:         o.Radius,
		RotationPeriod: o.RotationPeriod,
		RotationAngle0: o.RotationAngle0,
		Kind:           o.Kind,
		Stationary:     o.Physics.Stationary,
		Position:       o.Physics.Position,
		Atmosphere:     o.Atmosphere,
	}
	if !o.Physics.Stationary && o.Physics.Orbit != nil {
		or := toOrbitRecord(o.Physics.Orbit)
		r.Orbit = &or
	}
	return r
}

func (r orbitableRecord) build() model.Orbitable {
	physics := model.Physics{Stationary: r.Stationary, Position: r.Position}
	if !r.Stationary && r.Orbit != nil {
		physics.Orbit = r.Orbit.build()
	}
	return model.Orbitable{
		Mass:           r.Mass,
		Radius:         r.Radius,
		RotationPeriod: r.RotationPeriod,
		RotationAngle0: r.RotationAngle0,
		Kind:           r.Kind,
		Physics:        physics,
		Atmosphere:     r.Atmosphere,
	}
}

// saveFile is the top-level persisted document: a schema tag guarding
// format compatibility, the clock, and every component store flattened
// to JSON-friendly entity-keyed slices.
type saveFile struct {
	Schema     int                  `json:"schema"`
	Clock      model.Clock          `json:"clock"`
	Allocator  entity.State         `json:"allocator"`
	Names      []model.NameEntry    `json:"names"`
	Orbitables []orbitableRecord    `json:"orbitables"`
	Vessels    []model.VesselEntry  `json:"vessels"`
	Paths      []pathRecord         `json:"paths"`
}

// Save serializes m to a JSON document.
func Save(m *model.Model) (string, error) {
	state := m.ExportState()

	omegaOf := func(e entity.Entity) float64 {
		for _, v := range state.Vessels {
			if v.Entity == e && v.Value.RCS != nil {
				return v.Value.RCS.TurnRateRadPerSec
			}
		}
		return 0
	}

	f := saveFile{
		Schema:    Schema,
		Clock:     state.Clock,
		Allocator: state.Allocator,
		Names:     state.Names,
		Vessels:   state.Vessels,
	}
	for _, o := range state.Orbitables {
		f.Orbitables = append(f.Orbitables, toOrbitableRecord(o.Entity, o.Value))
	}
	sort.Slice(f.Orbitables, func(i, j int) bool { return f.Orbitables[i].Entity.Index < f.Orbitables[j].Entity.Index })

	for _, p := range state.Paths {
		pr := pathRecord{Entity: p.Entity}
		for _, s := range p.Value.PastSegments() {
			pr.Past = append(pr.Past, toSegmentRecord(s, p.Entity, omegaOf))
		}
		for _, s := range p.Value.FutureSegments() {
			pr.Future = append(pr.Future, toSegmentRecord(s, p.Entity, omegaOf))
		}
		f.Paths = append(f.Paths, pr)
	}

	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return "", fmt.Errorf("persist: save: %w", err)
	}
	return string(b), nil
}

// Load deserializes a previously-Saved document into a fresh Model.
// logger is wired the same way model.New's caller would.
func Load(data string, logger kitlog.Logger) (*model.Model, error) {
	var f saveFile
	if err := json.Unmarshal([]byte(data), &f); err != nil {
		return nil, fmt.Errorf("persist: load: %w", err)
	}
	if f.Schema != Schema {
		return nil, ErrUnsupportedSchema{Found: f.Schema}
	}

	state := model.State{
		Allocator: f.Allocator,
		Names:     f.Names,
		Vessels:   f.Vessels,
		Clock:     f.Clock,
	}
	for _, o := range f.Orbitables {
		state.Orbitables = append(state.Orbitables, model.OrbitableEntry{Entity: o.Entity, Value: o.build()})
	}
	for _, p := range f.Paths {
		var past, future []segment.Segment
		for _, s := range p.Past {
			past = append(past, s.build())
		}
		for _, s := range p.Future {
			future = append(future, s.build())
		}
		state.Paths = append(state.Paths, model.PathEntry{Entity: p.Entity, Value: path.Restore(past, future)})
	}

	return model.Restore(logger, state), nil
}
