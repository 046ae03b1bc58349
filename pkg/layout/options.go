package layout

import "math"

// Options tunes both engines. Zero fields take the defaults.
type Options struct {
	// Force
	LinkDistance      float64 `json:"linkDistance" yaml:"linkDistance"`           // default 200
	LinkStrength      float64 `json:"linkStrength" yaml:"linkStrength"`           // default 0.03
	Charge            float64 `json:"charge" yaml:"charge"`                       // default -400
	ChargeDistanceMax float64 `json:"chargeDistanceMax" yaml:"chargeDistanceMax"` // default 500
	ChargeDistanceMin float64 `json:"chargeDistanceMin" yaml:"chargeDistanceMin"` // default 1
	CenterStrength    float64 `json:"centerStrength" yaml:"centerStrength"`       // default 0.01
	CollideScale      float64 `json:"collideScale" yaml:"collideScale"`           // default 0.7
	CollidePadding    float64 `json:"collidePadding" yaml:"collidePadding"`       // default 30
	CollideStrength   float64 `json:"collideStrength" yaml:"collideStrength"`     // default 0.9
	AlphaMin          float64 `json:"alphaMin" yaml:"alphaMin"`                   // default 0.001
	AlphaDecay        float64 `json:"alphaDecay" yaml:"alphaDecay"`               // default 1 - 0.001^(1/300)
	VelocityDecay     float64 `json:"velocityDecay" yaml:"velocityDecay"`         // default 0.4
	Seed              int64   `json:"seed" yaml:"seed"`                           // default 1

	// Grid
	GridOriginX   float64 `json:"gridOriginX" yaml:"gridOriginX"`     // default 50
	GridOriginY   float64 `json:"gridOriginY" yaml:"gridOriginY"`     // default 50
	GridRowGap    float64 `json:"gridRowGap" yaml:"gridRowGap"`       // default 100
	GridColumn    float64 `json:"gridColumn" yaml:"gridColumn"`       // default 350
	GridWrapRatio float64 `json:"gridWrapRatio" yaml:"gridWrapRatio"` // default 0.7
}

func (o *Options) withDefaults() Options {
	d := Options{
		LinkDistance:      200,
		LinkStrength:      0.03,
		Charge:            -400,
		ChargeDistanceMax: 500,
		ChargeDistanceMin: 1,
		CenterStrength:    0.01,
		CollideScale:      0.7,
		CollidePadding:    30,
		CollideStrength:   0.9,
		AlphaMin:          0.001,
		AlphaDecay:        1 - math.Pow(0.001, 1.0/300),
		VelocityDecay:     0.4,
		Seed:              1,
		GridOriginX:       50,
		GridOriginY:       50,
		GridRowGap:        100,
		GridColumn:        350,
		GridWrapRatio:     0.7,
	}
	if o == nil {
		return d
	}
	if o.LinkDistance != 0 {
		d.LinkDistance = o.LinkDistance
	}
	if o.LinkStrength != 0 {
		d.LinkStrength = o.LinkStrength
	}
	if o.Charge != 0 {
		d.Charge = o.Charge
	}
	if o.ChargeDistanceMax != 0 {
		d.ChargeDistanceMax = o.ChargeDistanceMax
	}
	if o.ChargeDistanceMin != 0 {
		d.ChargeDistanceMin = o.ChargeDistanceMin
	}
	// Allow the centering pull to be explicitly disabled with a negative value
	if o.CenterStrength > 0 {
		d.CenterStrength = o.CenterStrength
	} else if o.CenterStrength < 0 {
		d.CenterStrength = 0
	}
	if o.CollideScale != 0 {
		d.CollideScale = o.CollideScale
	}
	if o.CollidePadding != 0 {
		d.CollidePadding = o.CollidePadding
	}
	if o.CollideStrength != 0 {
		d.CollideStrength = o.CollideStrength
	}
	if o.AlphaMin != 0 {
		d.AlphaMin = o.AlphaMin
	}
	if o.AlphaDecay != 0 {
		d.AlphaDecay = o.AlphaDecay
	}
	if o.VelocityDecay != 0 {
		d.VelocityDecay = o.VelocityDecay
	}
	if o.Seed != 0 {
		d.Seed = o.Seed
	}
	if o.GridOriginX != 0 {
		d.GridOriginX = o.GridOriginX
	}
	if o.GridOriginY != 0 {
		d.GridOriginY = o.GridOriginY
	}
	if o.GridRowGap != 0 {
		d.GridRowGap = o.GridRowGap
	}
	if o.GridColumn != 0 {
		d.GridColumn = o.GridColumn
	}
	if o.GridWrapRatio != 0 {
		d.GridWrapRatio = o.GridWrapRatio
	}
	return d
}
