package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSignalMetric records one sighting for a tracked device: the raw
// RSSI in dBm, the EMA-smoothed value, and the estimated distance in
// metres. Non-blocking; points are batched and sent asynchronously.
//
//	client.WriteSignalMetric("aa-bb-cc-dd-ee-ff_public", -67, -65.2, 2.1)
func (c *Client) WriteSignalMetric(deviceKey string, rssi int, smoothed float64, distance float64) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint("signal",
		map[string]string{"device_key": deviceKey},
		map[string]any{
			"rssi":       rssi,
			"smoothed":   smoothed,
			"distance_m": distance,
		},
		time.Now()))
}

// WriteProximityMetric records the proximity band (immediate, near,
// far, unknown) and classification confidence in [0,1] for a device,
// giving band transitions a queryable history.
func (c *Client) WriteProximityMetric(deviceKey string, band string, confidence float64) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint("proximity",
		map[string]string{"device_key": deviceKey, "band": band},
		map[string]any{"confidence": confidence},
		time.Now()))
}

// WriteScanMetric records a per-session statistic such as device_count
// or sighting_rate.
func (c *Client) WriteScanMetric(sessionID string, metricName string, value float64) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint("scan",
		map[string]string{"session_id": sessionID, "metric": metricName},
		map[string]any{"value": value},
		time.Now()))
}

// WritePoint writes an arbitrary measurement. Tags index the point and
// should stay low-cardinality; fields carry the data.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime is WritePoint with an explicit timestamp, for data
// that arrives delayed.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]any, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, timestamp))
}
