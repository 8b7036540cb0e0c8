package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInterface() Interface {
	return Interface{MACAddress: "aa:bb:cc:dd:ee:ff", DHCP: true}
}

func TestValidateInterfaces(t *testing.T) {
	t.Run("valid dhcp", func(t *testing.T) {
		assert.NoError(t, ValidateInterfaces([]Interface{validInterface()}))
	})

	t.Run("missing mac", func(t *testing.T) {
		err := ValidateInterfaces([]Interface{{DHCP: true}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mac_address")
	})

	t.Run("no addressing mode", func(t *testing.T) {
		err := ValidateInterfaces([]Interface{{MACAddress: "aa:bb:cc:dd:ee:ff"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly one")
	})

	t.Run("two addressing modes", func(t *testing.T) {
		iface := validInterface()
		iface.Manual = &ManualAddress{IPAddress: "10.0.0.2", SubnetMask: "255.255.255.0"}
		err := ValidateInterfaces([]Interface{iface})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly one")
	})

	t.Run("dhcp manual address requires ip", func(t *testing.T) {
		iface := Interface{MACAddress: "aa:bb:cc:dd:ee:ff", DHCPWithManualAddress: &DHCPManualAddress{}}
		err := ValidateInterfaces([]Interface{iface})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ip_address")
	})

	t.Run("manual requires ip and mask", func(t *testing.T) {
		iface := Interface{MACAddress: "aa:bb:cc:dd:ee:ff", Manual: &ManualAddress{IPAddress: "10.0.0.2"}}
		err := ValidateInterfaces([]Interface{iface})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "subnet_mask")
	})

	t.Run("ipv6 needs exactly one mode", func(t *testing.T) {
		iface := validInterface()
		iface.IPv6 = &IPv6{Off: true, Automatic: true}
		err := ValidateInterfaces([]Interface{iface})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ipv6")

		iface.IPv6 = &IPv6{}
		err = ValidateInterfaces([]Interface{iface})
		assert.Error(t, err)
	})

	t.Run("ipv6 manual requires address and prefix", func(t *testing.T) {
		iface := validInterface()
		iface.IPv6 = &IPv6{Manual: &IPv6Manual{Address: "fd00::2"}}
		err := ValidateInterfaces([]Interface{iface})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "prefix_length")
	})

	t.Run("partial media fields", func(t *testing.T) {
		iface := validInterface()
		iface.Hardware = &Hardware{Speed: 1000, Duplex: "full"}
		err := ValidateInterfaces([]Interface{iface})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "provided together")
	})

	t.Run("mtu only is fine", func(t *testing.T) {
		iface := validInterface()
		iface.Hardware = &Hardware{MTU: 9000}
		assert.NoError(t, ValidateInterfaces([]Interface{iface}))
	})

	t.Run("bad speed", func(t *testing.T) {
		on := true
		iface := validInterface()
		iface.Hardware = &Hardware{Speed: 2500, Duplex: "full", FlowControl: &on, EnergyEfficientEthernet: &on}
		err := ValidateInterfaces([]Interface{iface})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported hardware speed")
	})

	t.Run("bad duplex", func(t *testing.T) {
		on := true
		iface := validInterface()
		iface.Hardware = &Hardware{Speed: 1000, Duplex: "sideways", FlowControl: &on, EnergyEfficientEthernet: &on}
		err := ValidateInterfaces([]Interface{iface})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplex")
	})
}
