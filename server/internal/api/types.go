package api

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status      string `json:"status"`
	DeviceCount int    `json:"device_count"`
	Timestamp   string `json:"timestamp"` // RFC3339
}

// AlertResponse is the payload for GET /api/v1/alert/{mac}.
type AlertResponse struct {
	MACAddress string `json:"mac_address"`
	AlertLevel string `json:"alert_level"` // SAFE | CAUTION | DANGER
	LEDColor   string `json:"led_color"`   // GREEN | YELLOW | RED
	AudioURL   string `json:"audio_url,omitempty"`
	DeviceMode string `json:"device_mode,omitempty"` // LIVE | TEST
	Source     string `json:"source"`                // live | test | fallback
	Timestamp  string `json:"timestamp"`             // RFC3339
}

// DeviceResponse is one device in GET /api/v1/devices.
type DeviceResponse struct {
	MACAddress    string  `json:"mac_address"`
	DisplayName   string  `json:"display_name"`
	LocationName  string  `json:"location_name,omitempty"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	NWSZone       string  `json:"nws_zone,omitempty"`
	OperatingMode string  `json:"operating_mode"`
	TestScenario  string  `json:"test_scenario,omitempty"`
}

// modeRequest is the body for POST /api/v1/devices/{mac}/mode.
type modeRequest struct {
	Mode string `json:"mode"`
}

// scenarioRequest is the body for POST /api/v1/devices/{mac}/test-scenario.
type scenarioRequest struct {
	Scenario string `json:"scenario"`
}

// UpdateResponse acknowledges a mode or scenario change. Persisted is always
// false: the change lives in the server's cached registry copy and the next
// registry refresh overwrites it.
type UpdateResponse struct {
	Device    DeviceResponse `json:"device"`
	Persisted bool           `json:"persisted"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
