package config

// Interface declares the desired configuration of one macOS network interface,
// identified by the MAC address of its hardware port. Exactly one of DHCP,
// DHCPWithManualAddress, and Manual must be set.
type Interface struct {
	MACAddress            string             `yaml:"mac_address"`
	Name                  string             `yaml:"name"`
	DHCP                  bool               `yaml:"dhcp"`
	DHCPWithManualAddress *DHCPManualAddress `yaml:"dhcp_with_manual_address"`
	Manual                *ManualAddress     `yaml:"manual"`
	IPv6                  *IPv6              `yaml:"ipv6"`

	// Nil preserves the existing values; an explicit empty list clears them.
	DNSServers    []string `yaml:"dns_servers"`
	SearchDomains []string `yaml:"search_domains"`

	Hardware *Hardware `yaml:"hardware"`
}

// DHCPManualAddress configures DHCP with a manually assigned IP address.
type DHCPManualAddress struct {
	IPAddress string `yaml:"ip_address"`
}

// ManualAddress is a fully manual IPv4 configuration.
type ManualAddress struct {
	IPAddress  string `yaml:"ip_address"`
	SubnetMask string `yaml:"subnet_mask"`
	Router     string `yaml:"router"`
}

// IPv6 selects one of the four IPv6 modes for a network service.
type IPv6 struct {
	Off       bool        `yaml:"off"`
	Automatic bool        `yaml:"automatic"`
	LinkLocal bool        `yaml:"link_local"`
	Manual    *IPv6Manual `yaml:"manual"`
}

// IPv6Manual configures a static IPv6 address.
type IPv6Manual struct {
	Address      string `yaml:"address"`
	PrefixLength int    `yaml:"prefix_length"`
	Router       string `yaml:"router"`
}

// Hardware declares media and MTU settings for the hardware port behind a
// network service. The four media fields (Speed, Duplex, FlowControl,
// EnergyEfficientEthernet) must be provided together; not every port supports
// every combination, which is validated against `networksetup -listvalidmedia`
// before anything is applied.
type Hardware struct {
	Speed                   int    `yaml:"speed"`  // 10, 100, 1000
	Duplex                  string `yaml:"duplex"` // "full", "full-duplex", "half", "half-duplex"
	FlowControl             *bool  `yaml:"flow_control"`
	EnergyEfficientEthernet *bool  `yaml:"energy_efficient_ethernet"`
	MTU                     int    `yaml:"mtu"` // 0 means the default (1500)
}

// Power declares pmset settings per power source. Keys are pmset parameter
// names as shown by `pmset -g custom` (displaysleep, disksleep, ...); values
// may be numbers or strings in YAML and are normalized before comparison.
type Power struct {
	OnBattery map[string]any `yaml:"on_battery"`
	OnCharger map[string]any `yaml:"on_charger"`
}

// Tool is a CLI tool managed by the tools sync: installed from a GitHub
// release (Source "github") or a custom URL (Source "url").
type Tool struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Source  string `yaml:"source"`
	URL     string `yaml:"url"`
	Repo    string `yaml:"repo"` // GitHub repo, e.g. astral-sh/uv; defaults to Name
	Tag     string `yaml:"tag"`  // release tag; defaults to "v" + Version
}

// Setting is one macOS `defaults` key.
type Setting struct {
	Domain string `yaml:"domain"` // e.g. com.apple.finder
	Key    string `yaml:"key"`
	Value  string `yaml:"value"`
	Type   string `yaml:"type"` // "bool", "int", "float", "string"
}

// Aliases holds shell alias definitions plus raw rc-file lines.
type Aliases struct {
	Shell      string   `yaml:"shell"`
	RawConfigs []string `yaml:"raw_configs"`
	Entries    []Alias  `yaml:"entries"`
}

// Alias is a single shell alias (ll = ls -al).
type Alias struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Font is a downloadable font release.
type Font struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Source  string `yaml:"source"` // only "github" supported
	Repo    string `yaml:"repo"`   // e.g. JetBrains/JetBrainsMono
	Tag     string `yaml:"tag"`    // e.g. v2.304
}

// Config is the assembled result of loading the main config file and all the
// per-area sub-config files it references.
type Config struct {
	Interfaces []Interface
	Power      Power
	Tools      []Tool
	Settings   []Setting
	Aliases    Aliases
	Fonts      []Font
}
