package geom

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRect_Intersects(t *testing.T) {
	box := Rect{X: 0, Y: 0, Width: 100, Height: 50}

	tests := []struct {
		name string
		o    Rect
		want bool
	}{
		{"overlap", Rect{X: 50, Y: 25, Width: 100, Height: 100}, true},
		{"contained", Rect{X: 10, Y: 10, Width: 5, Height: 5}, true},
		{"containing", Rect{X: -10, Y: -10, Width: 500, Height: 500}, true},
		{"touching right edge", Rect{X: 100, Y: 0, Width: 10, Height: 10}, false},
		{"touching bottom edge", Rect{X: 0, Y: 50, Width: 10, Height: 10}, false},
		{"left", Rect{X: -20, Y: 0, Width: 10, Height: 10}, false},
		{"above", Rect{X: 0, Y: -20, Width: 10, Height: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, box.Intersects(tt.o))
			assert.Equal(t, tt.want, tt.o.Intersects(box))
		})
	}
}

func TestRectFromPoints_Normalizes(t *testing.T) {
	r := RectFromPoints(Pt(30, 40), Pt(10, 5))
	assert.Equal(t, Rect{X: 10, Y: 5, Width: 20, Height: 35}, r)
}

func TestScalarHelpers(t *testing.T) {
	assert.Equal(t, 5.0, Distance(Pt(0, 0), Pt(3, 4)))
	assert.Equal(t, 5.0, Clamp(12, 0, 5))
	assert.Equal(t, 0.1, Clamp(0.01, 0.1, 5))
	assert.Equal(t, 2.5, Clamp(2.5, 0.1, 5))
	assert.Equal(t, 15.0, Lerp(10, 20, 0.5))
	assert.InDelta(t, 90.0, RadToDeg(Angle(Pt(0, 0), Pt(0, 1))), 1e-9)
	assert.InDelta(t, 3.14159265, DegToRad(180), 1e-6)
}

func TestBoundingBox(t *testing.T) {
	assert.Equal(t, Rect{}, BoundingBox(nil))

	bb := BoundingBox([]Point{{1, 9}, {-3, 4}, {7, 2}})
	assert.Equal(t, Rect{X: -3, Y: 2, Width: 10, Height: 7}, bb)
}

func TestWireCurve_ControlPointsPointOutward(t *testing.T) {
	// Target to the left of the source: the curve still leaves rightwards.
	c := WireCurve(Pt(300, 100), Pt(100, 200))
	assert.Equal(t, Pt(420, 100), c.C1)
	assert.Equal(t, Pt(-20, 200), c.C2)

	c = WireCurve(Pt(0, 0), Pt(100, 0))
	assert.Equal(t, Pt(60, 0), c.C1)
	assert.Equal(t, Pt(40, 0), c.C2)
	assert.Equal(t, "M 0.00 0.00 C 60.00 0.00, 40.00 0.00, 100.00 0.00", c.Path())

	assert.Equal(t, c.Start, c.Point(0))
	assert.Equal(t, c.End, c.Point(1))
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	require.NotEqual(t, a, b)
	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}
