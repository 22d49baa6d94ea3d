package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wavealert360/wavealert360/pkg/hazard"
	"github.com/wavealert360/wavealert360/server/internal/history"
	"github.com/wavealert360/wavealert360/server/internal/metrics"
	"github.com/wavealert360/wavealert360/server/internal/registry"
)

// AlertFetcher fetches active alerts from the upstream weather API.
type AlertFetcher interface {
	ActiveAlerts(ctx context.Context, lat, lon float64) ([]hazard.Alert, error)
	ActiveAlertsByZone(ctx context.Context, zone string) ([]hazard.Alert, error)
}

// TransitionLog records and queries alert level transitions. Satisfied by
// *history.Store; nil disables history.
type TransitionLog interface {
	Record(ctx context.Context, mac, level, mode, source string) error
	Recent(ctx context.Context, mac string, limit int) ([]history.Entry, error)
}

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	registry *registry.Registry
	fetcher  AlertFetcher
	log      TransitionLog
	hazard   hazard.Config
	logger   *slog.Logger
	mux      *http.ServeMux

	now func() time.Time
}

// New creates a Handler and registers all routes. authMW wraps the mutating
// endpoints; pass auth.APIKeyMiddleware(...) or nil to leave them open.
// transitions may be nil to disable history.
func New(reg *registry.Registry, fetcher AlertFetcher, transitions TransitionLog,
	cfg hazard.Config, authMW func(http.Handler) http.Handler, logger *slog.Logger) http.Handler {

	if logger == nil {
		logger = slog.Default()
	}
	if authMW == nil {
		authMW = func(next http.Handler) http.Handler { return next }
	}

	h := &Handler{
		registry: reg,
		fetcher:  fetcher,
		log:      transitions,
		hazard:   cfg,
		logger:   logger,
		mux:      http.NewServeMux(),
		now:      time.Now,
	}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/alert/", h.alert) // subtree — extracts {mac}
	h.mux.HandleFunc("/api/v1/devices", h.listDevices)
	h.mux.Handle("/api/v1/devices/", h.deviceSubtree(authMW))

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// deviceSubtree routes /api/v1/devices/{mac}/{action}. The mutating actions
// are wrapped in authMW; history is open.
func (h *Handler) deviceSubtree(authMW func(http.Handler) http.Handler) http.Handler {
	mutating := authMW(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mac, action := splitDevicePath(r.URL.Path)
		switch action {
		case "mode":
			h.setMode(w, r, mac)
		case "test-scenario":
			h.setTestScenario(w, r, mac)
		default:
			jsonErr(w, http.StatusNotFound, "not found")
		}
	}))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mac, action := splitDevicePath(r.URL.Path)
		if mac == "" {
			jsonErr(w, http.StatusNotFound, "not found")
			return
		}
		switch action {
		case "history":
			h.deviceHistory(w, r, mac)
		case "mode", "test-scenario":
			mutating.ServeHTTP(w, r)
		default:
			jsonErr(w, http.StatusNotFound, "not found")
		}
	})
}

// splitDevicePath extracts {mac} and {action} from /api/v1/devices/{mac}/{action}.
func splitDevicePath(path string) (mac, action string) {
	rest := strings.TrimPrefix(path, "/api/v1/devices/")
	parts := strings.SplitN(rest, "/", 2)
	mac = parts[0]
	if len(parts) == 2 {
		action = parts[1]
	}
	return mac, action
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := HealthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	}
	if devices, err := h.registry.List(r.Context()); err == nil {
		resp.DeviceCount = len(devices)
	} else {
		resp.Status = "degraded"
	}
	jsonResp(w, http.StatusOK, resp)
}

// alert returns GET /api/v1/alert/{mac} — the level the device should show.
func (h *Handler) alert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	mac := strings.TrimPrefix(r.URL.Path, "/api/v1/alert/")
	if mac == "" {
		jsonErr(w, http.StatusNotFound, "not found")
		return
	}

	device, err := h.registry.Lookup(r.Context(), mac)
	if errors.Is(err, registry.ErrNotFound) {
		// Unknown device still gets a safe-but-attentive payload.
		jsonResp(w, http.StatusNotFound, h.cautionFallback(mac))
		return
	}
	if err != nil {
		h.logger.Error("registry lookup failed", "mac", mac, "error", err)
		jsonResp(w, http.StatusOK, h.cautionFallback(mac))
		return
	}

	var (
		level  hazard.Level
		source string
	)
	if device.OperatingMode == registry.ModeTest {
		level, source = h.testLevel(device), "test"
	} else {
		level, source = h.liveLevel(r.Context(), device)
	}

	h.record(r.Context(), device, level, source)
	metrics.IncAlertRequest(level.ServiceCode(), source)

	jsonResp(w, http.StatusOK, AlertResponse{
		MACAddress: device.MACAddress,
		AlertLevel: level.ServiceCode(),
		LEDColor:   level.LEDColor(),
		AudioURL:   device.AudioFiles[level.ServiceCode()],
		DeviceMode: device.OperatingMode,
		Source:     source,
		Timestamp:  h.now().UTC().Format(time.RFC3339),
	})
}

// testLevel resolves the pinned level of a TEST device. An unset or
// unparsable scenario pins SAFE: TEST mode is operator-driven, not a
// transport boundary.
func (h *Handler) testLevel(device registry.Device) hazard.Level {
	if device.TestScenario == "" {
		return hazard.LevelNormal
	}
	level, err := hazard.ParseServiceCode(device.TestScenario)
	if err != nil {
		h.logger.Warn("unknown test scenario, pinning SAFE",
			"mac", device.MACAddress, "scenario", device.TestScenario)
		return hazard.LevelNormal
	}
	return level
}

// liveLevel fetches upstream alerts for the device location and evaluates
// them. A fetch failure resolves to CAUTION, never SAFE.
func (h *Handler) liveLevel(ctx context.Context, device registry.Device) (hazard.Level, string) {
	var (
		alerts []hazard.Alert
		err    error
	)
	if device.NWSZone != "" {
		alerts, err = h.fetcher.ActiveAlertsByZone(ctx, device.NWSZone)
	} else {
		alerts, err = h.fetcher.ActiveAlerts(ctx, device.Lat, device.Lon)
	}
	if err != nil {
		metrics.IncNWSFetch(metrics.ResultError)
		h.logger.Error("alert fetch failed, resolving CAUTION",
			"mac", device.MACAddress, "error", err)
		return hazard.LevelMedium, "fallback"
	}
	metrics.IncNWSFetch(metrics.ResultSuccess)

	return hazard.Evaluate(alerts, h.hazard, h.now()), "live"
}

// cautionFallback is the payload served when the device or its data cannot
// be resolved at all.
func (h *Handler) cautionFallback(mac string) AlertResponse {
	metrics.IncAlertRequest(hazard.LevelMedium.ServiceCode(), "fallback")
	return AlertResponse{
		MACAddress: mac,
		AlertLevel: hazard.LevelMedium.ServiceCode(),
		LEDColor:   hazard.LevelMedium.LEDColor(),
		Source:     "fallback",
		Timestamp:  h.now().UTC().Format(time.RFC3339),
	}
}

func (h *Handler) record(ctx context.Context, device registry.Device, level hazard.Level, source string) {
	if h.log == nil {
		return
	}
	err := h.log.Record(ctx, device.MACAddress, level.ServiceCode(), device.OperatingMode, source)
	if err != nil {
		h.logger.Error("history record failed", "mac", device.MACAddress, "error", err)
	}
}

// listDevices returns GET /api/v1/devices — the registered fleet.
func (h *Handler) listDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	devices, err := h.registry.List(r.Context())
	if err != nil {
		jsonErr(w, http.StatusServiceUnavailable, "registry unavailable")
		return
	}
	out := make([]DeviceResponse, 0, len(devices))
	for _, d := range devices {
		out = append(out, toDeviceResponse(d))
	}
	jsonResp(w, http.StatusOK, out)
}

// setMode handles POST /api/v1/devices/{mac}/mode.
func (h *Handler) setMode(w http.ResponseWriter, r *http.Request, mac string) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Mode != registry.ModeLive && req.Mode != registry.ModeTest {
		jsonErr(w, http.StatusBadRequest, "mode must be LIVE or TEST")
		return
	}

	device, err := h.registry.SetMode(r.Context(), mac, req.Mode)
	if errors.Is(err, registry.ErrNotFound) {
		jsonErr(w, http.StatusNotFound, "device not found")
		return
	}
	if err != nil {
		jsonErr(w, http.StatusServiceUnavailable, "registry unavailable")
		return
	}

	h.logger.Info("device mode changed", "mac", mac, "mode", req.Mode)
	jsonResp(w, http.StatusOK, UpdateResponse{Device: toDeviceResponse(device)})
}

// setTestScenario handles POST /api/v1/devices/{mac}/test-scenario.
func (h *Handler) setTestScenario(w http.ResponseWriter, r *http.Request, mac string) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req scenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := hazard.ParseServiceCode(req.Scenario); err != nil {
		jsonErr(w, http.StatusBadRequest, "scenario must be SAFE, CAUTION, or DANGER")
		return
	}

	device, err := h.registry.SetTestScenario(r.Context(), mac, req.Scenario)
	if errors.Is(err, registry.ErrNotFound) {
		jsonErr(w, http.StatusNotFound, "device not found")
		return
	}
	if err != nil {
		jsonErr(w, http.StatusServiceUnavailable, "registry unavailable")
		return
	}

	h.logger.Info("test scenario changed", "mac", mac, "scenario", req.Scenario)
	jsonResp(w, http.StatusOK, UpdateResponse{Device: toDeviceResponse(device)})
}

// deviceHistory handles GET /api/v1/devices/{mac}/history.
func (h *Handler) deviceHistory(w http.ResponseWriter, r *http.Request, mac string) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.log == nil {
		jsonErr(w, http.StatusNotFound, "history disabled")
		return
	}

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.log.Recent(r.Context(), mac, limit)
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, "history query failed")
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	jsonResp(w, http.StatusOK, entries)
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

func toDeviceResponse(d registry.Device) DeviceResponse {
	return DeviceResponse{
		MACAddress:    d.MACAddress,
		DisplayName:   d.DisplayName,
		LocationName:  d.LocationName,
		Lat:           d.Lat,
		Lon:           d.Lon,
		NWSZone:       d.NWSZone,
		OperatingMode: d.OperatingMode,
		TestScenario:  d.TestScenario,
	}
}
