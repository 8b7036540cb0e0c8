package network

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"dotfiles/internal/config"
	"dotfiles/internal/logger"
	"dotfiles/internal/shell"
)

// Runner executes one networksetup invocation and returns its stdout. The
// production runner shells out through sudo; tests substitute a fake that
// serves canned output and records calls.
type Runner func(args ...string) (string, error)

// Exec is the production Runner.
func Exec(args ...string) (string, error) {
	return shell.Sudo("networksetup", args...)
}

// ignoredServicePrefixes are network services skipped when indexing services
// by MAC address: disabled services ("*" prefix) and bridge/debug services
// that have no configurable hardware port.
var ignoredServicePrefixes = []string{
	"*",
	"Chimp",
	"Kanzi",
	"Koba",
	"Thunderbolt Bridge",
}

// Configurator converges network interfaces to their declared config. Live
// lookups (hardware ports, service info) are cached for the duration of a
// run, so each networksetup query happens at most once.
type Configurator struct {
	run   Runner
	check bool // when set, write commands are planned and logged but not run

	ports    map[string]HardwarePort // keyed by MAC address
	services map[string]ServiceInfo  // keyed by MAC address

	// Changelog lists the settings that actually differed from the declared
	// config; CommandsRun lists every networksetup invocation, including the
	// unconditional converge writes that turned out to be no-ops.
	Changelog   []string
	CommandsRun []string
}

// New returns a Configurator using the given runner. check enables plan-only
// mode: reads run, writes are skipped.
func New(run Runner, check bool) *Configurator {
	return &Configurator{run: run, check: check}
}

// read records and runs a query command.
func (c *Configurator) read(args ...string) (string, error) {
	c.CommandsRun = append(c.CommandsRun, "networksetup "+strings.Join(args, " "))
	return c.run(args...)
}

// write records a mutating command and runs it unless in check mode.
func (c *Configurator) write(args ...string) error {
	c.CommandsRun = append(c.CommandsRun, "networksetup "+strings.Join(args, " "))
	if c.check {
		logger.Debug("[DEBUG] Check mode, skipping: networksetup %s\n", strings.Join(args, " "))
		return nil
	}
	_, err := c.run(args...)
	return err
}

func (c *Configurator) changed(format string, a ...any) {
	c.Changelog = append(c.Changelog, fmt.Sprintf(format, a...))
}

// HardwarePorts returns the machine's hardware network ports keyed by MAC
// address. The listing is fetched once and cached.
func (c *Configurator) HardwarePorts() (map[string]HardwarePort, error) {
	if c.ports != nil {
		return c.ports, nil
	}

	stdout, err := c.read("-listallhardwareports")
	if err != nil {
		return nil, err
	}
	ports := ParseHardwarePorts(stdout)
	if len(ports) == 0 {
		return nil, fmt.Errorf("no hardware ports found")
	}
	c.ports = ports
	return ports, nil
}

// servicesByMAC returns service info for every parseable network service,
// keyed by the MAC address of its port. Fetched once and cached.
func (c *Configurator) servicesByMAC() (map[string]ServiceInfo, error) {
	if c.services != nil {
		return c.services, nil
	}

	stdout, err := c.read("-listallnetworkservices")
	if err != nil {
		return nil, err
	}

	services := make(map[string]ServiceInfo)
	lines := strings.Split(stdout, "\n")
	if len(lines) > 0 {
		lines = lines[1:] // first line is the "An asterisk denotes..." banner
	}
	for _, line := range lines {
		service := strings.TrimSpace(line)
		if service == "" || hasIgnoredPrefix(service) {
			continue
		}

		infoOut, err := c.read("-getinfo", service)
		if err != nil {
			return nil, err
		}
		info, err := ParseServiceInfo(service, infoOut)
		if err != nil {
			// Services without an IP configuration (VPNs etc.) are not
			// configurable here; skip them.
			logger.Debug("[DEBUG] Skipping service %q: %v\n", service, err)
			continue
		}
		if info.Address != "" {
			services[info.Address] = info
		}
	}

	c.services = services
	return services, nil
}

func hasIgnoredPrefix(service string) bool {
	for _, prefix := range ignoredServicePrefixes {
		if strings.HasPrefix(service, prefix) {
			return true
		}
	}
	return false
}

// dnsServers returns the DNS servers configured for a service, empty when
// none are configured.
func (c *Configurator) dnsServers(service string) ([]string, error) {
	stdout, err := c.read("-getdnsservers", service)
	if err != nil {
		return nil, err
	}
	return parseServerList(stdout), nil
}

// searchDomains returns the search domains configured for a service.
func (c *Configurator) searchDomains(service string) ([]string, error) {
	stdout, err := c.read("-getsearchdomains", service)
	if err != nil {
		return nil, err
	}
	return parseServerList(stdout), nil
}

// parseServerList handles the shared output shape of -getdnsservers and
// -getsearchdomains: one entry per line, or a "There aren't any ..." message.
func parseServerList(stdout string) []string {
	if strings.Contains(stdout, "There aren't any") {
		return nil
	}
	var entries []string
	for _, line := range strings.Split(stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			entries = append(entries, line)
		}
	}
	return entries
}

// validMTURange returns the MTU range supported by a hardware port.
func (c *Configurator) validMTURange(port string) (int, int, error) {
	stdout, err := c.read("-listvalidMTUrange", port)
	if err != nil {
		return 0, 0, err
	}
	min, max, ok := ParseMTURange(stdout)
	if !ok {
		return 0, 0, fmt.Errorf("unable to parse valid MTU range for hardware port %q", port)
	}
	return min, max, nil
}

// portMTU returns the configured/active MTU of a hardware port.
func (c *Configurator) portMTU(port string) (MTUStatus, error) {
	stdout, err := c.read("-getMTU", port)
	if err != nil {
		return MTUStatus{}, err
	}
	mtu, ok := ParseMTU(stdout)
	if !ok {
		return MTUStatus{}, fmt.Errorf("unable to parse current/active MTU for hardware port %q", port)
	}
	return mtu, nil
}

// portMedia returns the configured/active media of a hardware port.
func (c *Configurator) portMedia(port string) (CurrentMedia, error) {
	stdout, err := c.read("-getmedia", port)
	if err != nil {
		return CurrentMedia{}, err
	}
	media, err := ParseCurrentMedia(stdout)
	if err != nil {
		return CurrentMedia{}, fmt.Errorf("%w for hardware port %q", err, port)
	}
	return media, nil
}

// validMedia returns the media configurations supported by a hardware port,
// empty when only autoselect is supported.
func (c *Configurator) validMedia(port string) ([]MediaConfig, error) {
	stdout, err := c.read("-listvalidmedia", port)
	if err != nil {
		return nil, err
	}
	return ParseValidMedia(stdout), nil
}

// Validate checks the declared interfaces against the actual hardware before
// anything is mutated: every MAC must map to a hardware port, MTU settings
// must be within the port's supported range, and requested media configs must
// be in the port's supported list.
func (c *Configurator) Validate(interfaces []config.Interface) error {
	ports, err := c.HardwarePorts()
	if err != nil {
		return err
	}

	for i, iface := range interfaces {
		port, ok := ports[iface.MACAddress]
		if !ok {
			macs := make([]string, 0, len(ports))
			for mac := range ports {
				macs = append(macs, mac)
			}
			sort.Strings(macs)
			return fmt.Errorf("no network interface with MAC address %q found (available: %s)",
				iface.MACAddress, strings.Join(macs, ", "))
		}

		hw := iface.Hardware
		if hw == nil {
			continue
		}

		if hw.MTU != 0 {
			min, max, err := c.validMTURange(port.Name)
			if err != nil {
				return err
			}
			if hw.MTU < min || hw.MTU > max {
				return fmt.Errorf(
					"MTU setting (%d) for interface %d (%s) outside supported range %d-%d",
					hw.MTU, i, port.Address, min, max)
			}
		}

		if hw.Speed != 0 {
			supported, err := c.validMedia(port.Name)
			if err != nil {
				return err
			}
			desired := mediaFromConfig(hw)
			if !slices.Contains(supported, desired) {
				return fmt.Errorf(
					"hardware configuration %+v not supported by interface %d (%s)",
					desired, i, port.Address)
			}
		}
	}
	return nil
}

// mediaFromConfig builds the MediaConfig a hardware block asks for. Only
// valid when hw.Speed is set (validated earlier).
func mediaFromConfig(hw *config.Hardware) MediaConfig {
	duplex := "full-duplex"
	if hw.Duplex == "half" || hw.Duplex == "half-duplex" {
		duplex = "half-duplex"
	}
	mc := MediaConfig{Speed: hw.Speed, Duplex: duplex}
	if hw.FlowControl != nil {
		mc.FlowControl = *hw.FlowControl
	}
	if hw.EnergyEfficientEthernet != nil {
		mc.EnergyEfficientEthernet = *hw.EnergyEfficientEthernet
	}
	return mc
}

// Apply converges a single interface. Convergence commands run regardless of
// whether the setting already matched (networksetup writes are idempotent);
// the changelog only records settings whose observed prior state differed.
func (c *Configurator) Apply(iface config.Interface) error {
	ports, err := c.HardwarePorts()
	if err != nil {
		return err
	}
	port := ports[iface.MACAddress]

	services, err := c.servicesByMAC()
	if err != nil {
		return err
	}
	service, ok := services[iface.MACAddress]
	if !ok {
		return fmt.Errorf("no active network service found for MAC address %q (port %q)",
			iface.MACAddress, port.Name)
	}

	if err := c.applyAddressing(service, iface); err != nil {
		return err
	}
	if err := c.applyIPv6(service, iface.IPv6); err != nil {
		return err
	}
	if err := c.applyResolver(service, iface); err != nil {
		return err
	}
	if err := c.applyHardware(port, iface.Hardware); err != nil {
		return err
	}

	// Renaming runs last so the service name stays stable while every other
	// setting is being modified.
	if iface.Name != "" {
		if err := c.write("-renamenetworkservice", service.Name, iface.Name); err != nil {
			return err
		}
		if service.Name != iface.Name {
			c.changed("Set service %q name to %q", service.Name, iface.Name)
		}
	}

	return nil
}

func (c *Configurator) applyAddressing(service ServiceInfo, iface config.Interface) error {
	switch {
	case iface.DHCP:
		if err := c.write("-setdhcp", service.Name); err != nil {
			return err
		}
		if service.Configuration != ConfigDHCP {
			c.changed("Set service %q to DHCP", service.Name)
		}

	case iface.DHCPWithManualAddress != nil:
		newIP := iface.DHCPWithManualAddress.IPAddress
		if err := c.write("-setmanualwithdhcprouter", service.Name, newIP); err != nil {
			return err
		}
		if service.Configuration != ConfigDHCPManualAddress || service.IPAddress != newIP {
			c.changed("Set service %q to DHCP w/ manual address %q", service.Name, newIP)
		}

	case iface.Manual != nil:
		manual := iface.Manual
		args := []string{"-setmanual", service.Name, manual.IPAddress, manual.SubnetMask}
		if manual.Router != "" {
			args = append(args, manual.Router)
		}
		if err := c.write(args...); err != nil {
			return err
		}
		if service.Configuration != ConfigManual {
			c.changed("Set service %q to manual", service.Name)
		}
		if service.IPAddress != manual.IPAddress {
			c.changed("Set service %q IP address to %q", service.Name, manual.IPAddress)
		}
		if service.SubnetMask != manual.SubnetMask {
			c.changed("Set service %q subnet mask to %q", service.Name, manual.SubnetMask)
		}
		if service.Router != manual.Router {
			c.changed("Set service %q router to %q", service.Name, manual.Router)
		}
	}
	return nil
}

func (c *Configurator) applyIPv6(service ServiceInfo, v6 *config.IPv6) error {
	if v6 == nil {
		return nil
	}

	switch {
	case v6.Off:
		if err := c.write("-setv6off", service.Name); err != nil {
			return err
		}
		if service.IPv6Configuration != IPv6Off {
			c.changed("Turn IPv6 off for service %q", service.Name)
		}

	case v6.Automatic:
		if err := c.write("-setv6automatic", service.Name); err != nil {
			return err
		}
		if service.IPv6Configuration != IPv6Automatic {
			c.changed("Set service %q to get its IPv6 info automatically", service.Name)
		}

	case v6.LinkLocal:
		if err := c.write("-setv6LinkLocal", service.Name); err != nil {
			return err
		}
		if service.IPv6Configuration != IPv6LinkLocal {
			c.changed("Set service %q to use its IPv6 only for link local", service.Name)
		}

	case v6.Manual != nil:
		manual := v6.Manual
		if err := c.write("-setv6manual", service.Name, manual.Address,
			strconv.Itoa(manual.PrefixLength), manual.Router); err != nil {
			return err
		}
		if service.IPv6Address != manual.Address {
			c.changed("Set service %q IPv6 address to %q", service.Name, manual.Address)
		}
		if service.IPv6Router != manual.Router {
			c.changed("Set service %q IPv6 router to %q", service.Name, manual.Router)
		}
		if service.IPv6PrefixLength != manual.PrefixLength {
			c.changed("Set service %q IPv6 prefix length to %d", service.Name, manual.PrefixLength)
		}
	}
	return nil
}

// applyResolver handles DNS servers and search domains. Nil means preserve
// the existing values; an explicit empty list clears them (networksetup uses
// the literal argument "Empty" for that).
func (c *Configurator) applyResolver(service ServiceInfo, iface config.Interface) error {
	if iface.DNSServers != nil {
		existing, err := c.dnsServers(service.Name)
		if err != nil {
			return err
		}
		if len(iface.DNSServers) == 0 {
			if err := c.write("-setdnsservers", service.Name, "Empty"); err != nil {
				return err
			}
			if len(existing) > 0 {
				c.changed("Clear DNS servers from service %q", service.Name)
			}
		} else {
			args := append([]string{"-setdnsservers", service.Name}, iface.DNSServers...)
			if err := c.write(args...); err != nil {
				return err
			}
			if !sameSet(existing, iface.DNSServers) {
				c.changed("Set service %q DNS servers to: %s", service.Name, strings.Join(iface.DNSServers, ", "))
			}
		}
	}

	if iface.SearchDomains != nil {
		existing, err := c.searchDomains(service.Name)
		if err != nil {
			return err
		}
		if len(iface.SearchDomains) == 0 {
			if err := c.write("-setsearchdomains", service.Name, "Empty"); err != nil {
				return err
			}
			if len(existing) > 0 {
				c.changed("Clear search domains from service %q", service.Name)
			}
		} else {
			args := append([]string{"-setsearchdomains", service.Name}, iface.SearchDomains...)
			if err := c.write(args...); err != nil {
				return err
			}
			if !sameSet(existing, iface.SearchDomains) {
				c.changed("Set service %q search domains to: %s", service.Name, strings.Join(iface.SearchDomains, ", "))
			}
		}
	}

	return nil
}

func sameSet(a, b []string) bool {
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	return slices.Equal(as, bs)
}

// applyHardware converges port media and MTU. No hardware block means the
// port is set back to full automatic; a block without a speed pins the MTU
// but leaves media on autoselect.
func (c *Configurator) applyHardware(port HardwarePort, hw *config.Hardware) error {
	media, err := c.portMedia(port.Name)
	if err != nil {
		return err
	}

	if hw == nil {
		if err := c.write("-setMTUAndMediaAutomatically", port.Name); err != nil {
			return err
		}
		if media.Current != nil {
			c.changed("Set port %q media/MTU configuration to autoselect", port.Name)
		}
		return nil
	}

	if hw.Speed == 0 {
		if err := c.write("-setmedia", port.Name, "autoselect"); err != nil {
			return err
		}
		if media.Current != nil {
			c.changed("Set port %q media configuration to autoselect", port.Name)
		}
	} else {
		desired := mediaFromConfig(hw)
		args := []string{"-setmedia", port.Name, speedTokens[desired.Speed], desired.Duplex}
		if desired.FlowControl {
			args = append(args, "flow-control")
		}
		if desired.EnergyEfficientEthernet {
			args = append(args, "energy-efficient-ethernet")
		}
		if err := c.write(args...); err != nil {
			return err
		}
		if media.Current == nil || *media.Current != desired {
			c.changed("Set port %q media configuration to: %+v", port.Name, desired)
		}
	}

	existingMTU, err := c.portMTU(port.Name)
	if err != nil {
		return err
	}
	mtu := hw.MTU
	if mtu == 0 {
		mtu = 1500 // standard MTU when none declared
	}
	if err := c.write("-setMTU", port.Name, strconv.Itoa(mtu)); err != nil {
		return err
	}
	if existingMTU.Current != mtu {
		c.changed("Set port %q MTU to %d", port.Name, mtu)
	}

	return nil
}

// Run validates all declared interfaces against the hardware, then converges
// each one.
func (c *Configurator) Run(interfaces []config.Interface) error {
	if err := config.ValidateInterfaces(interfaces); err != nil {
		return err
	}
	if err := c.Validate(interfaces); err != nil {
		return err
	}
	for _, iface := range interfaces {
		if err := c.Apply(iface); err != nil {
			return err
		}
	}
	return nil
}
