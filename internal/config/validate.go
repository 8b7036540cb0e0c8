package config

import (
	"fmt"
)

// validSpeeds are the port speeds networksetup accepts for -setmedia.
var validSpeeds = map[int]bool{10: true, 100: true, 1000: true}

// validDuplex are the accepted duplex spellings; "full"/"half" are shorthand.
var validDuplex = map[string]bool{
	"full": true, "full-duplex": true,
	"half": true, "half-duplex": true,
}

// ValidateInterfaces checks the declarative constraints on interface configs
// that can be verified without talking to the host: exactly one addressing
// mode, exactly one IPv6 mode, and the hardware media fields provided
// together. Host-dependent checks (MAC existence, supported MTU/media) happen
// in the network package against live networksetup output.
func ValidateInterfaces(interfaces []Interface) error {
	for i, iface := range interfaces {
		if iface.MACAddress == "" {
			return fmt.Errorf("interface %d: mac_address is required", i)
		}

		modes := 0
		if iface.DHCP {
			modes++
		}
		if iface.DHCPWithManualAddress != nil {
			modes++
		}
		if iface.Manual != nil {
			modes++
		}
		if modes != 1 {
			return fmt.Errorf(
				"interface %d (%s): exactly one of dhcp, dhcp_with_manual_address, manual must be set",
				i, iface.MACAddress)
		}

		if iface.DHCPWithManualAddress != nil && iface.DHCPWithManualAddress.IPAddress == "" {
			return fmt.Errorf("interface %d (%s): dhcp_with_manual_address.ip_address is required", i, iface.MACAddress)
		}
		if iface.Manual != nil {
			if iface.Manual.IPAddress == "" || iface.Manual.SubnetMask == "" {
				return fmt.Errorf("interface %d (%s): manual requires ip_address and subnet_mask", i, iface.MACAddress)
			}
		}

		if iface.IPv6 != nil {
			v6modes := 0
			if iface.IPv6.Off {
				v6modes++
			}
			if iface.IPv6.Automatic {
				v6modes++
			}
			if iface.IPv6.LinkLocal {
				v6modes++
			}
			if iface.IPv6.Manual != nil {
				v6modes++
			}
			if v6modes != 1 {
				return fmt.Errorf(
					"interface %d (%s): exactly one of ipv6.off, ipv6.automatic, ipv6.link_local, ipv6.manual must be set",
					i, iface.MACAddress)
			}
			if iface.IPv6.Manual != nil {
				if iface.IPv6.Manual.Address == "" || iface.IPv6.Manual.PrefixLength == 0 {
					return fmt.Errorf(
						"interface %d (%s): ipv6.manual requires address and prefix_length", i, iface.MACAddress)
				}
			}
		}

		if hw := iface.Hardware; hw != nil {
			mediaFields := 0
			if hw.Speed != 0 {
				mediaFields++
			}
			if hw.Duplex != "" {
				mediaFields++
			}
			if hw.FlowControl != nil {
				mediaFields++
			}
			if hw.EnergyEfficientEthernet != nil {
				mediaFields++
			}
			if mediaFields != 0 && mediaFields != 4 {
				return fmt.Errorf(
					"interface %d (%s): hardware speed, duplex, flow_control, energy_efficient_ethernet must be provided together",
					i, iface.MACAddress)
			}
			if hw.Speed != 0 && !validSpeeds[hw.Speed] {
				return fmt.Errorf("interface %d (%s): unsupported hardware speed %d (choose 10, 100, 1000)",
					i, iface.MACAddress, hw.Speed)
			}
			if hw.Duplex != "" && !validDuplex[hw.Duplex] {
				return fmt.Errorf("interface %d (%s): unsupported duplex setting %q", i, iface.MACAddress, hw.Duplex)
			}
		}
	}
	return nil
}
