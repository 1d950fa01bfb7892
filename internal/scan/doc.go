// Package scan gates ingestion behind a single-active-session controller.
//
// The Controller owns the lifecycle of the external sighting source: at
// most one session may be Scanning process-wide. Starting a session
// clears the tracking registry, attaches the source, and emits a
// scan_started event; stopping detaches the source, cancels any pending
// auto-stop timer, persists the session outcome, and emits scan_stopped
// with the final device count and duration.
//
// State machine: Idle -> Starting -> Scanning -> Stopping -> Idle.
// Start while not Idle reports already_scanning without side effects;
// Stop is idempotent. A source failure during Scanning forces a stop
// with an error event, so a session can never remain stuck in Scanning.
//
// The Source interface abstracts the producer. MQTTSource implements it
// over the MQTT bus: an external radio daemon publishes raw sightings as
// JSON on the sensor topics and accepts start/stop commands.
package scan
