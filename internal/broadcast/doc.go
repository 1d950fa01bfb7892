// Package broadcast fans out engine events to independent subscribers.
//
// Each subscriber owns a bounded event queue. Publishing never blocks:
// when a subscriber's queue is full the oldest queued event is dropped
// in its favour, so a slow or stalled consumer can never hold up the
// ingestion path or starve other subscribers. Device update payloads are
// full-state snapshots, so losing an older one is safe.
//
// FIFO order is preserved within each subscriber's own queue; no
// ordering is guaranteed across subscribers.
//
//	broadcaster := broadcast.New(queueSize, logger)
//	sub := broadcaster.Subscribe()
//	defer broadcaster.Unsubscribe(sub)
//
//	for ev := range sub.Events() {
//	    handle(ev)
//	}
package broadcast
