// Package influxdb stores time-series telemetry in InfluxDB v2.
//
// The engine records three kinds of points: per-sighting signal
// telemetry (raw and smoothed RSSI, estimated distance), proximity band
// and confidence history, and per-session scan statistics.
//
// Writes use the client library's non-blocking batched API, sized by
// batch_size and flush_interval in config.yaml, so telemetry never
// stalls the ingestion path. Batch failures surface through the OnError
// callback; connection and health errors are returned directly. All
// methods are safe for concurrent use.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteSignalMetric("aa-bb-cc-dd-ee-ff_public", -67, -65.2, 2.1)
//	client.WriteProximityMetric("aa-bb-cc-dd-ee-ff_public", "near", 0.82)
package influxdb
