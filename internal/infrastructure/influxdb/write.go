package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/sunveil-core/internal/cover"
)

// WriteEvaluation writes a single cover evaluation to InfluxDB.
//
// This is the primary method for recording position calculations over
// time. The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - coverID: Unique identifier for the cover (e.g., "living-south")
//   - pos: The calculated position with its diagnostic angles
//
// Example:
//
//	client.WriteEvaluation("living-south", result)
func (c *Client) WriteEvaluation(coverID string, pos cover.CalculatedPosition) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"evaluations",
		map[string]string{
			"cover_id": coverID,
			"rule":     string(pos.Rule),
		},
		map[string]interface{}{
			"value":         pos.Value,
			"gamma":         pos.Gamma,
			"elevation":     pos.Elevation,
			"safety_margin": pos.SafetyMargin,
			"sun_valid":     pos.Flags.SunValid,
			"in_blind_spot": pos.Flags.InBlindSpot,
			"sunset_period": pos.Flags.SunsetPeriod,
			"edge_case":     pos.Flags.EdgeCase,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCommand writes a dispatched cover command.
//
// Only commands that passed delta and time gating reach this method, so
// the series reflects actual cover movement rather than raw evaluations.
//
// Parameters:
//   - coverID: Cover identifier
//   - value: Position sent to the cover (0-100)
//   - service: Service name for non-positionable covers, empty otherwise
func (c *Client) WriteCommand(coverID string, value float64, service string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"commands",
		map[string]string{
			"cover_id": coverID,
		},
		map[string]interface{}{
			"value":   value,
			"service": service,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSolarPosition writes the computed solar position.
//
// One series for the whole site; covers share the same sun.
//
// Parameters:
//   - siteID: Site identifier
//   - sun: Solar azimuth and elevation in degrees
func (c *Client) WriteSolarPosition(siteID string, sun cover.SolarAngle) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"solar",
		map[string]string{
			"site_id": siteID,
		},
		map[string]interface{}{
			"azimuth":   sun.Azimuth,
			"elevation": sun.Elevation,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "core-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
