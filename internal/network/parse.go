package network

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Regexes for screen-scraping networksetup output. The tool has no machine
// readable output mode, so this is the interface.
var (
	hardwarePortRegexp = regexp.MustCompile(
		`Hardware Port: (.+)\nDevice: (\w+)\nEthernet Address: ([\w:]+)`)

	mtuRegexp      = regexp.MustCompile(`Active MTU: (\d+) \(Current Setting: (\d+)\)`)
	mtuRangeRegexp = regexp.MustCompile(`Valid MTU Range: (\d+)-(\d+)`)
	mediaRegexp    = regexp.MustCompile(`(\d+baseT[/\w]*) <(.+)>`)

	// -getinfo fields
	configurationRegexp = regexp.MustCompile(`(.+) Configuration\n`)
	ipAddressRegexp     = regexp.MustCompile(`IP address: ([\d.]+)\n`)
	subnetMaskRegexp    = regexp.MustCompile(`Subnet mask: ([\d.]+)\n`)
	routerRegexp        = regexp.MustCompile(`Router: ([\d.]+)\n`)
	macAddressRegexp    = regexp.MustCompile(`(?:Ethernet Address|Wi-Fi ID): ([\w:]+)\n`)
	ipv6ConfigRegexp    = regexp.MustCompile(`IPv6: (Off|Automatic|Manual)\n`)
	ipv6AddressRegexp   = regexp.MustCompile(`IPv6 IP address: ([\w:]+)`)
	ipv6RouterRegexp    = regexp.MustCompile(`IPv6 Router: ([\w:]+)`)
	ipv6PrefixRegexp    = regexp.MustCompile(`IPv6 Prefix Length: (\d+)`)
)

// configurationNames maps -getinfo configuration headers to our mode names.
var configurationNames = map[string]string{
	"DHCP":                       ConfigDHCP,
	"Manually Using DHCP Router": ConfigDHCPManualAddress,
	"Manual":                     ConfigManual,
}

// speedTokens maps config speeds to the media tokens networksetup uses.
var speedTokens = map[int]string{
	10:   "10baseT/UTP",
	100:  "100baseTX",
	1000: "1000baseT",
}

// speedValues is the reverse of speedTokens.
var speedValues = func() map[string]int {
	m := make(map[string]int, len(speedTokens))
	for v, token := range speedTokens {
		m[token] = v
	}
	return m
}()

// ParseHardwarePorts parses `networksetup -listallhardwareports` output into
// a mapping from MAC address to port entry.
func ParseHardwarePorts(stdout string) map[string]HardwarePort {
	ports := make(map[string]HardwarePort)
	for _, m := range hardwarePortRegexp.FindAllStringSubmatch(stdout, -1) {
		ports[m[3]] = HardwarePort{Name: m[1], Device: m[2], Address: m[3]}
	}
	return ports
}

// ParseMTU parses `networksetup -getMTU` output.
func ParseMTU(stdout string) (MTUStatus, bool) {
	m := mtuRegexp.FindStringSubmatch(stdout)
	if m == nil {
		return MTUStatus{}, false
	}
	active, _ := strconv.Atoi(m[1])
	current, _ := strconv.Atoi(m[2])
	return MTUStatus{Current: current, Active: active}, true
}

// ParseMTURange parses `networksetup -listvalidMTUrange` output into
// (min, max).
func ParseMTURange(stdout string) (int, int, bool) {
	m := mtuRangeRegexp.FindStringSubmatch(stdout)
	if m == nil {
		return 0, 0, false
	}
	min, _ := strconv.Atoi(m[1])
	max, _ := strconv.Atoi(m[2])
	return min, max, true
}

// ParseMedia parses one media configuration line as printed by
// `networksetup -listvalidmedia` and `-getmedia`, e.g.
// "1000baseT <full-duplex, flow-control, energy-efficient-ethernet>".
func ParseMedia(line string) (MediaConfig, bool) {
	m := mediaRegexp.FindStringSubmatch(line)
	if m == nil {
		return MediaConfig{}, false
	}
	speed, ok := speedValues[m[1]]
	if !ok {
		return MediaConfig{}, false
	}

	options := make(map[string]bool)
	for _, item := range strings.Split(m[2], ",") {
		options[strings.TrimSpace(item)] = true
	}
	duplex := "full-duplex"
	if options["half-duplex"] {
		duplex = "half-duplex"
	}
	return MediaConfig{
		Speed:                   speed,
		Duplex:                  duplex,
		FlowControl:             options["flow-control"],
		EnergyEfficientEthernet: options["energy-efficient-ethernet"],
	}, true
}

// ParseValidMedia parses `networksetup -listvalidmedia` output. When the port
// only supports "autoselect" the result is empty.
func ParseValidMedia(stdout string) []MediaConfig {
	var configs []MediaConfig
	for _, line := range strings.Split(stdout, "\n") {
		if mc, ok := ParseMedia(line); ok {
			configs = append(configs, mc)
		}
	}
	return configs
}

// ParseCurrentMedia parses `networksetup -getmedia` output, which reports the
// configured ("Current") and negotiated ("Active") media on two lines.
func ParseCurrentMedia(stdout string) (CurrentMedia, error) {
	lines := strings.Split(stdout, "\n")
	if len(lines) < 2 || !strings.HasPrefix(lines[0], "Current: ") || !strings.HasPrefix(lines[1], "Active: ") {
		return CurrentMedia{}, fmt.Errorf("unable to parse media configuration lines")
	}

	var media CurrentMedia

	currentStr := strings.TrimSpace(strings.TrimPrefix(lines[0], "Current: "))
	if currentStr != "autoselect" {
		mc, ok := ParseMedia(currentStr)
		if !ok {
			return CurrentMedia{}, fmt.Errorf("unable to parse current media configuration %q", currentStr)
		}
		media.Current = &mc
	}

	activeStr := strings.TrimSpace(strings.TrimPrefix(lines[1], "Active: "))
	active, ok := ParseMedia(activeStr)
	if !ok {
		return CurrentMedia{}, fmt.Errorf("unable to parse active media configuration %q", activeStr)
	}
	media.Active = active

	return media, nil
}

// ParseServiceInfo parses `networksetup -getinfo <service>` output. It returns
// an error when the configuration header is missing or not one of the known
// modes (which happens for services like VPNs that have no IP configuration).
func ParseServiceInfo(name, stdout string) (ServiceInfo, error) {
	configuration, ok := configurationNames[searchGroup(configurationRegexp, stdout)]
	if !ok {
		return ServiceInfo{}, fmt.Errorf("unable to parse network configuration for service %q", name)
	}

	info := ServiceInfo{
		Name:          name,
		Configuration: configuration,
		IPAddress:     searchGroup(ipAddressRegexp, stdout),
		SubnetMask:    searchGroup(subnetMaskRegexp, stdout),
		Router:        searchGroup(routerRegexp, stdout),
		Address:       searchGroup(macAddressRegexp, stdout),
		IPv6Address:   searchGroup(ipv6AddressRegexp, stdout),
		IPv6Router:    searchGroup(ipv6RouterRegexp, stdout),
	}

	// The IPv6 line is absent entirely when the service only uses IPv6 for
	// link local.
	switch searchGroup(ipv6ConfigRegexp, stdout) {
	case "Off":
		info.IPv6Configuration = IPv6Off
	case "Automatic":
		info.IPv6Configuration = IPv6Automatic
	case "Manual":
		info.IPv6Configuration = IPv6Manual
	default:
		info.IPv6Configuration = IPv6LinkLocal
	}

	if prefix := searchGroup(ipv6PrefixRegexp, stdout); prefix != "" {
		info.IPv6PrefixLength, _ = strconv.Atoi(prefix)
	}

	return info, nil
}

// searchGroup returns the first capture group of the first match, with the
// literal "none" (used by networksetup for unset values) normalized to empty.
func searchGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	if strings.EqualFold(m[1], "none") {
		return ""
	}
	return m[1]
}
