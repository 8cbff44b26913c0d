package license

import (
	"crypto/sha256"
	"encoding/hex"
	"net"

	"github.com/denisbrodbeck/machineid"
)

const (
	UnknownMAC    = "unknown"
	UnknownDevice = "unknown-device"
)

// MachineProbe reports the two machine binding factors.
type MachineProbe interface {
	MACAddress() string
	DeviceID() string
}

// MachineInfo is what the activation screen shows the operator.
type MachineInfo struct {
	MACAddress string `json:"macAddress"`
	MACHash    string `json:"macHash"`
	DeviceID   string `json:"deviceId"`
}

// SystemProbe reads the real network interfaces and the OS machine id.
type SystemProbe struct {
	// AppID salts the machine id so it is not the raw OS identifier.
	AppID string
}

// MACAddress returns the hardware address of the first non-loopback interface
// carrying an IPv4 address.
func (p SystemProbe) MACAddress() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return UnknownMAC
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		mac := iface.HardwareAddr.String()
		if mac == "" || mac == "00:00:00:00:00:00" {
			continue
		}
		if hasIPv4(iface) {
			return mac
		}
	}
	return UnknownMAC
}

func (p SystemProbe) DeviceID() string {
	var (
		id  string
		err error
	)
	if p.AppID != "" {
		id, err = machineid.ProtectedID(p.AppID)
	} else {
		id, err = machineid.ID()
	}
	if err != nil || id == "" {
		return UnknownDevice
	}
	return id
}

func hasIPv4(iface net.Interface) bool {
	addrs, err := iface.Addrs()
	if err != nil {
		return false
	}
	for _, addr := range addrs {
		if ipNet, ok := addr.(*net.IPNet); ok && ipNet.IP.To4() != nil {
			return true
		}
	}
	return false
}

// HashMAC is the hex SHA-256 of the MAC string, as carried in licenses.
func HashMAC(mac string) string {
	sum := sha256.Sum256([]byte(mac))
	return hex.EncodeToString(sum[:])
}

// Describe collects the probe's factors.
func Describe(p MachineProbe) MachineInfo {
	mac := p.MACAddress()
	return MachineInfo{MACAddress: mac, MACHash: HashMAC(mac), DeviceID: p.DeviceID()}
}
