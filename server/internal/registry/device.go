package registry

// Operating modes and the levels a TEST device may be pinned to.
const (
	ModeLive = "LIVE"
	ModeTest = "TEST"
)

// Device is one registered appliance, keyed by MAC address.
type Device struct {
	MACAddress   string  `json:"mac_address"`
	DisplayName  string  `json:"display_name"`
	LocationName string  `json:"location_name"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`

	// NWSZone is the forecast zone covering the device, e.g. "CAZ529".
	NWSZone string `json:"nws_zone"`

	// OperatingMode is LIVE (evaluate real alerts) or TEST (pinned level).
	OperatingMode string `json:"operating_mode"`

	// TestScenario is the pinned service-vocabulary level for TEST mode.
	TestScenario string `json:"test_scenario,omitempty"`

	// AudioFiles maps service-vocabulary levels to audio asset URLs.
	AudioFiles map[string]string `json:"audio_files,omitempty"`

	LastSeen string `json:"last_seen,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Document is the registry file shape.
type Document struct {
	Devices []Device `json:"devices"`
}
