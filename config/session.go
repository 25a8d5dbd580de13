package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"cortexdbg/cortexerr"
)

// Session is a single debug session's static launch configuration.
type Session struct {
	// Binary is the path to the ELF image carrying the DWARF debug
	// information to load.
	Binary string

	// Chip is the target part name (e.g. "STM32F405RG"), passed to the
	// probe driver so it can select the right flash/RAM layout.
	Chip string

	// ProbeNumber selects among multiple attached debug probes; 0 is
	// the default and most common case.
	ProbeNumber int

	// DAPPort is the TCP port the Debug Adapter Protocol server listens
	// on, bound to 127.0.0.1 only.
	DAPPort int

	// Breakpoints is a list of "file:line" strings to resolve and set
	// automatically once a session attaches.
	Breakpoints []string
}

const (
	keyBinary      = "binary"
	keyChip        = "chip"
	keyProbeNumber = "probe-number"
	keyDAPPort     = "dap-port"
	keyBreakpoints = "breakpoints"

	envPrefix = "CORTEXDBG"

	// DefaultDAPPort is used when neither a flag, an env var, nor a
	// config file sets one.
	DefaultDAPPort = 8800
)

// New returns a viper instance pre-configured with this session's
// defaults, environment prefix, and (if configFile is non-empty) config
// file. Flags, when bound with BindFlags, take precedence over the
// environment, which takes precedence over the file.
func New(configFile string) *viper.Viper {
	v := viper.New()

	v.SetDefault(keyProbeNumber, 0)
	v.SetDefault(keyDAPPort, DefaultDAPPort)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("toml")
	}

	return v
}

// BindFlags binds a cobra/pflag flag set so that explicit flags override
// environment and file values.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	return v.BindPFlags(flags)
}

// Load reads the optional config file (if one was set on v via New) and
// materializes a Session. Missing Binary or Chip is a non-fatal
// cortexerr.ConfigurationMissing error: the caller can still run in a
// mode that doesn't need a target yet (e.g. to print help or replay a
// captured session).
func Load(v *viper.Viper) (*Session, error) {
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, cortexerr.Coded(cortexerr.ConfigurationMissing, "reading config file: %s", err)
		}
	}

	s := &Session{
		Binary:      v.GetString(keyBinary),
		Chip:        v.GetString(keyChip),
		ProbeNumber: v.GetInt(keyProbeNumber),
		DAPPort:     v.GetInt(keyDAPPort),
		Breakpoints: v.GetStringSlice(keyBreakpoints),
	}

	if s.Binary == "" {
		return s, cortexerr.Coded(cortexerr.ConfigurationMissing, "binary path not set")
	}
	if s.Chip == "" {
		return s, cortexerr.Coded(cortexerr.ConfigurationMissing, "chip name not set")
	}

	return s, nil
}
