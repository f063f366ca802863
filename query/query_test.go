package query

import (
	"math"
	"testing"

	"github.com/orbitalcombat/simcore/entity"
	"github.com/orbitalcombat/simcore/segment"
	"github.com/orbitalcombat/simcore/vector2"
)

const earthMass = 5.972e24

func almostEqualQ(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

// TestClosestApproachOfCounterRotatingShipsScenario: two ships sharing a
// circular orbit of radius 1e8, phased a
// half-revolution apart and travelling in opposite directions, have
// their first closest approach at T/4 and their second at 3T/4: the two
// minima of their separation, not the T/2 maximum in between.
func TestClosestApproachOfCounterRotatingShipsScenario(t *testing.T) {
	mu := 6.674e-11 * earthMass
	r := 1e8
	v := math.Sqrt(mu / r)

	oa := segment.NewOrbit(entity.Nil, 1000, earthMass, vector2.New(r, 0), vector2.New(0, v), 0)
	ob := segment.NewOrbit(entity.Nil, 1000, earthMass, vector2.New(-r, 0), vector2.New(0, v), 0)

	period := approachPeriod(oa)
	oa.EndAt(period)
	ob.EndAt(period)

	approaches := sampleApproach(oa, ob, period)
	if len(approaches) < 2 {
		t.Fatalf("expected at least 2 closest-approach minima, got %d: %+v", len(approaches), approaches)
	}

	wantFirst := period / 4
	wantSecond := 3 * period / 4
	if !almostEqualQ(approaches[0].Time, wantFirst, wantFirst*0.001) {
		t.Fatalf("first approach time: got %v, want %v (±0.1%%)", approaches[0].Time, wantFirst)
	}
	if !almostEqualQ(approaches[1].Time, wantSecond, wantSecond*0.001) {
		t.Fatalf("second approach time: got %v, want %v (±0.1%%)", approaches[1].Time, wantSecond)
	}
	if approaches[0].Distance > 1 || approaches[1].Distance > 1 {
		t.Fatalf("both minima should be near-zero-distance meetings, got %v and %v", approaches[0].Distance, approaches[1].Distance)
	}
}
