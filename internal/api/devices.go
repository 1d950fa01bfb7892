package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nearwatch-io/nearwatch-core/internal/tracking"
)

// handleListDevices returns a snapshot of all tracked devices, most
// recently seen first. Optional filters:
//
//	?band=near          only devices in the given proximity band
//	?new_only=true      only devices not present in the baseline
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	records := s.registry.Snapshot()

	band := r.URL.Query().Get("band")
	newOnly := r.URL.Query().Get("new_only") == "true"

	if band != "" || newOnly {
		filtered := records[:0]
		for _, rec := range records {
			if band != "" && string(rec.ProximityBand) != band {
				continue
			}
			if newOnly && rec.InBaseline {
				continue
			}
			filtered = append(filtered, rec)
		}
		records = filtered
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": records,
		"count":   len(records),
	})
}

// handleGetDevice returns a single tracked device by its device key.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	record, err := s.registry.Get(key)
	if err != nil {
		if errors.Is(err, tracking.ErrDeviceNotFound) {
			writeNotFound(w, "device not found: "+key)
			return
		}
		s.logger.Error("device lookup failed", "device_key", key, "error", err)
		writeInternalError(w, "failed to load device")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// handleExportDevices exports the current registry snapshot as a
// downloadable file. Supported formats: json (default) and csv.
func (s *Server) handleExportDevices(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	records := s.registry.Snapshot()
	filename := fmt.Sprintf("nearwatch-devices-%s", time.Now().UTC().Format("20060102-150405"))

	switch format {
	case "json":
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`.json"`)
		writeJSON(w, http.StatusOK, map[string]any{
			"exported_at": time.Now().UTC().Format(time.RFC3339),
			"count":       len(records),
			"devices":     records,
		})
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`.csv"`)
		w.WriteHeader(http.StatusOK)
		if err := writeDevicesCSV(w, records); err != nil {
			s.logger.Error("csv export failed", "error", err)
		}
	default:
		writeBadRequest(w, "unsupported export format: "+format)
	}
}

// csvHeader is the column layout for device exports.
var csvHeader = []string{
	"device_key", "address", "address_type", "protocol", "name",
	"manufacturer", "rssi_current", "rssi_ema", "rssi_min", "rssi_max",
	"rssi_median", "distance_m", "confidence", "band", "flags",
	"in_baseline", "seen_count", "first_seen", "last_seen",
}

// writeDevicesCSV streams the records as CSV rows.
func writeDevicesCSV(w http.ResponseWriter, records []tracking.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for i := range records {
		rec := &records[i]
		flags := make([]string, 0, len(rec.HeuristicFlags))
		for _, f := range rec.HeuristicFlags {
			flags = append(flags, string(f))
		}

		row := []string{
			rec.DeviceKey,
			rec.Address,
			string(rec.AddressType),
			string(rec.Protocol),
			rec.Name,
			rec.ManufacturerName,
			strconv.Itoa(rec.RSSICurrent),
			strconv.FormatFloat(rec.RSSIEMA, 'f', 2, 64),
			strconv.Itoa(rec.RSSIMin),
			strconv.Itoa(rec.RSSIMax),
			strconv.FormatFloat(rec.RSSIMedian, 'f', 2, 64),
			strconv.FormatFloat(rec.EstimatedDistanceM, 'f', 2, 64),
			strconv.FormatFloat(rec.DistanceConfidence, 'f', 2, 64),
			string(rec.ProximityBand),
			strings.Join(flags, ";"),
			strconv.FormatBool(rec.InBaseline),
			strconv.Itoa(rec.SeenCount),
			rec.FirstSeen.UTC().Format(time.RFC3339),
			rec.LastSeen.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}
