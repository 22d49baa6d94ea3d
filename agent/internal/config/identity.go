package config

import (
	"fmt"
	"os"
	"strings"
)

// interfaces checked for a hardware address, in preference order.
var macInterfaces = []string{"eth0", "wlan0"}

// DeviceID returns the appliance's identity: the MAC address of the first
// network interface that has one. Off-target (dev laptops, CI) there is no
// stable MAC to read, so the hostname is used with a "test-" prefix to make
// the synthetic identity obvious in the registry.
func DeviceID() string {
	for _, iface := range macInterfaces {
		mac, err := readMAC(iface)
		if err == nil && mac != "" {
			return mac
		}
	}

	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return "test-" + host
}

func readMAC(iface string) (string, error) {
	data, err := os.ReadFile(fmt.Sprintf("/sys/class/net/%s/address", iface))
	if err != nil {
		return "", err
	}
	mac := strings.TrimSpace(string(data))
	if mac == "00:00:00:00:00:00" {
		return "", fmt.Errorf("interface %s has a null address", iface)
	}
	return mac, nil
}
