package config

// NetworkConfig stores binding settings of a network service
type NetworkConfig struct {
	Binding          string `config:"binding"`
	SkipOccupiedPort bool   `config:"skip_occupied_port"`
}

func (cfg NetworkConfig) GetBindingAddr() string {
	return cfg.Binding
}

// SecurityConfig protects the API with basic auth
type SecurityConfig struct {
	Enabled  bool   `config:"enabled"`
	Username string `config:"username"`
	Password string `config:"password"`
}

// CrossDomainConfig controls CORS behavior of the API
type CrossDomainConfig struct {
	AllowedOrigins []string `config:"allowed_origins"`
}

// TLSConfig stores certificate settings of a TLS-enabled service, when no
// cert files are given a self-signed pair is generated under the data dir
type TLSConfig struct {
	TLSEnabled            bool   `config:"enabled" json:"enabled,omitempty"`
	TLSCertFile           string `config:"cert_file" json:"cert_file,omitempty"`
	TLSKeyFile            string `config:"key_file" json:"key_file,omitempty"`
	TLSCACertFile         string `config:"ca_file" json:"ca_file,omitempty"`
	TLSInsecureSkipVerify bool   `config:"skip_insecure_verify" json:"skip_insecure_verify,omitempty"`
	DefaultDomain         string `config:"default_domain" json:"default_domain,omitempty"`
}

// APIConfig stores the settings of the management API
type APIConfig struct {
	Enabled       bool `config:"enabled"`
	NetworkConfig `config:"network"`

	BasePath    string            `config:"base_path"`
	TLSConfig   TLSConfig         `config:"tls"`
	Security    SecurityConfig    `config:"security"`
	CrossDomain CrossDomainConfig `config:"cors"`
}

// NodeConfig stores node settings
type NodeConfig struct {
	ID   string `config:"id"`
	Name string `config:"name"`
	IP   string `config:"ip"`
}

// PathConfig stores path settings
type PathConfig struct {
	Data   string `config:"data"`
	Log    string `config:"logs"`
	Config string `config:"configs"`
}

// LoggingConfig stores logging settings
type LoggingConfig struct {
	LogLevel          string `config:"level"`
	LogFormat         string `config:"format"`
	FileFilterPattern string `config:"file_filter_pattern"`
	FuncFilterPattern string `config:"func_filter_pattern"`
	DisableFileOutput bool   `config:"disable_file_output"`
}

// SystemConfig is a high priority config, init from the environment or startup,
// can't be changed on the fly, need to restart to make config apply
type SystemConfig struct {
	APIConfig APIConfig `config:"api"`

	NodeConfig NodeConfig `config:"node"`

	PathConfig PathConfig `config:"path"`

	LoggingConfig LoggingConfig `config:"log"`

	Modules []*Config `config:"modules"`

	Plugins []*Config `config:"plugins"`
}
