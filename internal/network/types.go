// Package network configures macOS network interfaces by wrapping the
// `networksetup` command: it scrapes the tool's textual output into typed
// records, diffs them against the declared config, and invokes only the
// subcommands needed to converge, reporting a changelog of what differed.
package network

// Addressing configuration modes of a network service, as reported by
// `networksetup -getinfo`.
const (
	ConfigDHCP              = "dhcp"
	ConfigDHCPManualAddress = "dhcp_with_manual_address"
	ConfigManual            = "manual"
)

// IPv6 configuration modes. LinkLocal is inferred: -getinfo omits the IPv6
// line entirely when the service is link-local only.
const (
	IPv6Off       = "off"
	IPv6Automatic = "automatic"
	IPv6LinkLocal = "link_local"
	IPv6Manual    = "manual"
)

// HardwarePort is one entry of `networksetup -listallhardwareports`.
type HardwarePort struct {
	Name    string // e.g. "Ethernet"
	Device  string // e.g. "en0"
	Address string // MAC address
}

// MediaConfig is a media configuration supported by (or set on) a hardware
// port. Comparable, so desired configs can be checked against the supported
// list directly.
type MediaConfig struct {
	Speed                   int    // 10, 100, 1000
	Duplex                  string // "half-duplex" or "full-duplex"
	FlowControl             bool
	EnergyEfficientEthernet bool
}

// CurrentMedia is the configured and active media of a hardware port as
// reported by `networksetup -getmedia`. Current is nil when the port is set
// to autoselect.
type CurrentMedia struct {
	Current *MediaConfig
	Active  MediaConfig
}

// MTUStatus is the configured and active MTU of a hardware port.
type MTUStatus struct {
	Current int
	Active  int
}

// ServiceInfo is the parsed output of `networksetup -getinfo <service>`.
// String fields are empty when the interface is inactive or the value is
// reported as "none"; IPv6PrefixLength is 0 when not set manually.
type ServiceInfo struct {
	Name              string
	Configuration     string // ConfigDHCP, ConfigDHCPManualAddress, ConfigManual
	IPAddress         string
	SubnetMask        string
	Router            string
	Address           string // MAC address of the underlying port
	IPv6Configuration string // IPv6Off, IPv6Automatic, IPv6LinkLocal, IPv6Manual
	IPv6Address       string
	IPv6Router        string
	IPv6PrefixLength  int
}
