package systems

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/botsofcog/sandtable/config"
)

// Weather is the ambient state forcing the water and particle systems.
type Weather struct {
	WindSpeed     float32 // m/s, [0, 20]
	WindDirDeg    float32 // compass degrees, [0, 360)
	HumidityPct   float32 // [0, 100]
	TemperatureC  float32 // [-10, 45]
	Precipitation float32 // [0, 1], operator-controlled, never drifted
	PressureHPa   float32 // [950, 1050]
}

// WeatherPartial is a sparse update: nil fields retain their current
// value.
type WeatherPartial struct {
	WindSpeed     *float32
	WindDirDeg    *float32
	HumidityPct   *float32
	TemperatureC  *float32
	Precipitation *float32
	PressureHPa   *float32
}

// WeatherSystem drifts the ambient scalars with smooth noise so
// conditions wander rather than jump. Each scalar samples its own
// offset channel of one noise field. Precipitation is excluded from
// the drift: rain is turned on and off by commands only, so a dry
// table stays bit-identical however long the weather wanders.
type WeatherSystem struct {
	cur   Weather
	noise opensimplex.Noise
	t     float64

	driftSpeed float32
	windStep   float32
	dirStep    float32
	humStep    float32
	tempStep   float32
	pressStep  float32
}

// Noise channel offsets, one per drifted scalar.
const (
	chWind  = 0.0
	chDir   = 37.0
	chHum   = 71.0
	chTemp  = 113.0
	chPress = 157.0
)

// NewWeatherSystem starts from the configured baseline.
func NewWeatherSystem(cfg *config.Config, seed int64) *WeatherSystem {
	wc := cfg.Weather
	return &WeatherSystem{
		cur: Weather{
			WindSpeed:     float32(wc.WindSpeed),
			WindDirDeg:    wrapDeg(float32(wc.WindDirDeg)),
			HumidityPct:   float32(wc.HumidityPct),
			TemperatureC:  float32(wc.TemperatureC),
			Precipitation: float32(wc.Precipitation),
			PressureHPa:   float32(wc.PressureHPa),
		},
		noise:      opensimplex.New(seed),
		driftSpeed: float32(wc.DriftSpeed),
		windStep:   float32(wc.WindStep),
		dirStep:    float32(wc.DirStep),
		humStep:    float32(wc.HumidityStep),
		tempStep:   float32(wc.TemperatureStep),
		pressStep:  float32(wc.PressureStep),
	}
}

// Step advances the drift clock and nudges each scalar.
func (w *WeatherSystem) Step(dt float32) {
	w.t += float64(dt * w.driftSpeed)

	w.cur.WindSpeed = clampFloat(w.cur.WindSpeed+w.sample(chWind)*w.windStep*dt, 0, 20)
	w.cur.WindDirDeg = wrapDeg(w.cur.WindDirDeg + w.sample(chDir)*w.dirStep*dt)
	w.cur.HumidityPct = clampFloat(w.cur.HumidityPct+w.sample(chHum)*w.humStep*dt, 0, 100)
	w.cur.TemperatureC = clampFloat(w.cur.TemperatureC+w.sample(chTemp)*w.tempStep*dt, -10, 45)
	w.cur.PressureHPa = clampFloat(w.cur.PressureHPa+w.sample(chPress)*w.pressStep*dt, 950, 1050)
}

// sample returns a smooth drift impulse in [-1, 1] for one channel.
func (w *WeatherSystem) sample(channel float64) float32 {
	return float32(w.noise.Eval2(w.t, channel))
}

// Set merges a sparse update into the current state, clamping each
// supplied field to its valid range. NaN inputs are dropped.
func (w *WeatherSystem) Set(p WeatherPartial) {
	if v, ok := finite(p.WindSpeed); ok {
		w.cur.WindSpeed = clampFloat(v, 0, 20)
	}
	if v, ok := finite(p.WindDirDeg); ok {
		w.cur.WindDirDeg = wrapDeg(v)
	}
	if v, ok := finite(p.HumidityPct); ok {
		w.cur.HumidityPct = clampFloat(v, 0, 100)
	}
	if v, ok := finite(p.TemperatureC); ok {
		w.cur.TemperatureC = clampFloat(v, -10, 45)
	}
	if v, ok := finite(p.Precipitation); ok {
		w.cur.Precipitation = clampFloat(v, 0, 1)
	}
	if v, ok := finite(p.PressureHPa); ok {
		w.cur.PressureHPa = clampFloat(v, 950, 1050)
	}
}

// Snapshot returns the current weather state by value.
func (w *WeatherSystem) Snapshot() Weather {
	return w.cur
}

// WindVector returns the wind as grid-axis components. Direction is
// meteorological: the compass bearing the wind blows toward, 0 = +y.
func (w *WeatherSystem) WindVector() (float32, float32) {
	rad := float64(w.cur.WindDirDeg) * math.Pi / 180
	return float32(math.Sin(rad)) * w.cur.WindSpeed, float32(math.Cos(rad)) * w.cur.WindSpeed
}

func finite(p *float32) (float32, bool) {
	if p == nil {
		return 0, false
	}
	v := float64(*p)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return *p, true
}
