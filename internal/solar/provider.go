package solar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"

	"github.com/nerrad567/sunveil-core/internal/cover"
)

// Provider computes solar angles and day boundaries for one site.
// Immutable after construction and safe for concurrent use.
type Provider struct {
	latitude  float64
	longitude float64
	location  *time.Location
}

// NewProvider returns a provider for the given site coordinates.
// Latitude and longitude are in degrees, east and north positive; loc is
// the site's local timezone, used to anchor "today" for sunrise/sunset.
func NewProvider(latitude, longitude float64, loc *time.Location) *Provider {
	if loc == nil {
		loc = time.UTC
	}
	return &Provider{latitude: latitude, longitude: longitude, location: loc}
}

// Position returns the sun's compass azimuth and elevation at t.
func (p *Provider) Position(t time.Time) cover.SolarAngle {
	azimuth, elevation := p.horizontal(t.UTC())
	return cover.SolarAngle{Azimuth: azimuth, Elevation: elevation}
}

// Times returns sunrise and sunset for the local calendar day containing t.
//
// During polar day the whole day counts as daylight (sunrise at local
// midnight, sunset at the following midnight); during polar night both
// collapse onto local noon so the night-time default applies all day.
func (p *Provider) Times(t time.Time) cover.SolarTimes {
	local := t.In(p.location)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, p.location)
	dayEnd := dayStart.Add(24 * time.Hour)
	noon := dayStart.Add(12 * time.Hour)

	sunrise, riseOK := p.crossing(dayStart, noon, false)
	sunset, setOK := p.crossing(noon, dayEnd, true)

	if !riseOK || !setOK {
		_, noonAlt := p.horizontal(noon.UTC())
		if noonAlt > 0 {
			// Polar day
			return cover.SolarTimes{Sunrise: dayStart, Sunset: dayEnd}
		}
		// Polar night
		return cover.SolarTimes{Sunrise: noon, Sunset: noon}
	}

	return cover.SolarTimes{Sunrise: sunrise, Sunset: sunset}
}

// crossing binary-searches [start, end] for the instant the sun crosses
// the horizon. descending selects the evening (altitude falling) branch.
func (p *Provider) crossing(start, end time.Time, descending bool) (time.Time, bool) {
	_, startAlt := p.horizontal(start.UTC())
	_, endAlt := p.horizontal(end.UTC())
	if startAlt*endAlt > 0 {
		return time.Time{}, false
	}

	const epsilon = time.Minute
	for end.Sub(start) > epsilon {
		mid := start.Add(end.Sub(start) / 2)
		_, alt := p.horizontal(mid.UTC())
		if (alt > 0) == descending {
			start = mid
		} else {
			end = mid
		}
	}
	return start.Round(time.Minute), true
}

// horizontal converts the sun's apparent equatorial coordinates at UTC
// time t into compass azimuth (degrees clockwise from north) and
// altitude (degrees above the horizon) for the provider's site.
func (p *Provider) horizontal(t time.Time) (azimuth, altitude float64) {
	jd := julian.TimeToJD(t)

	theta := sidereal.Apparent(jd).Rad()
	theta += radians(p.longitude)

	ra, dec := solar.ApparentEquatorial(jd)
	hourAngle := math.Mod(theta-ra.Rad()+2*math.Pi, 2*math.Pi)

	lat := radians(p.latitude)
	delta := dec.Rad()

	sinAlt := math.Sin(lat)*math.Sin(delta) + math.Cos(lat)*math.Cos(delta)*math.Cos(hourAngle)
	altitude = degrees(math.Asin(sinAlt))

	// atan2 form measures from south, westward positive; shift to a
	// compass bearing from north.
	az := math.Atan2(math.Sin(hourAngle), math.Cos(hourAngle)*math.Sin(lat)-math.Tan(delta)*math.Cos(lat))
	azimuth = math.Mod(degrees(az)+180+360, 360)
	return azimuth, altitude
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
