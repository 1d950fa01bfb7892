// Package tracking implements the device proximity tracking engine.
//
// The engine ingests raw sighting events (address, RSSI, advertisement
// metadata) from an external radio source and maintains an in-memory
// registry of device records: smoothed signal state, estimated distance,
// proximity band, identity heuristics, and baseline membership.
//
// # Components
//
//   - Estimator: per-device RSSI smoothing (EMA), windowed statistics,
//     log-distance path-loss distance estimation, and confidence scoring.
//   - Classifier: address-randomization detection and behavioural flags
//     (persistent, beacon_like) from arrival-timing history.
//   - Registry: the authoritative store. Observe() upserts a record for
//     each accepted sighting, applies the estimator and classifier, and
//     publishes the updated record to the event broadcaster.
//   - BaselineManager: snapshots a "known devices" set against which
//     records are diffed for new/known status.
//
// # Concurrency
//
// All Registry mutations are serialized under a single mutation lock.
// Snapshots are taken under the same lock, so readers always see a
// consistent point-in-time copy. Records handed out by Get/Snapshot are
// deep copies; callers can safely retain or modify them.
//
// # Usage
//
//	registry := tracking.NewRegistry(tracking.RegistryDeps{
//	    Estimator:  tracking.NewEstimator(cfg.Tracking),
//	    Classifier: tracking.NewClassifier(cfg.Tracking),
//	    Baseline:   baseline,
//	    Publisher:  broadcaster,
//	    Logger:     logger,
//	})
//
//	record, err := registry.Observe(sighting)
package tracking
