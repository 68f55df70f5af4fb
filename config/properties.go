package config

import (
	stderrors "errors"
	"maps"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/guregu/null.v4"

	"github.com/c360/brokerboot/errors"
)

// Configuration keys consumed from the messaging.broker namespace
const (
	Namespace = "messaging.broker"

	KeyHost     = Namespace + ".host"
	KeyPort     = Namespace + ".port"
	KeyUsername = Namespace + ".username"
	KeyPassword = Namespace + ".password"
	KeyDynamic  = Namespace + ".dynamic"
)

// Defaults applied for omitted keys
const (
	DefaultHost    = "localhost"
	DefaultPort    = 5672
	DefaultDynamic = true
)

var errPortRange = stderrors.New("port must be between 1 and 65535")

// Properties is the raw flat key/value configuration input.
// Keys use dotted notation (e.g. "messaging.broker.host").
type Properties map[string]string

// Lookup returns the trimmed value for key. Blank values count as unset.
func (p Properties) Lookup(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p[key]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}

// Merge returns a copy of p with every entry of override applied on top
func (p Properties) Merge(override Properties) Properties {
	merged := make(Properties, len(p)+len(override))
	maps.Copy(merged, p)
	maps.Copy(merged, override)
	return merged
}

// Keys returns the property keys in sorted order
func (p Properties) Keys() []string {
	var keys []string
	for key := range p {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// ConnectionConfig is the resolved broker connection configuration.
// Username and Password stay invalid (unset) when the operator did not
// supply them, so the broker client keeps its own defaults.
type ConnectionConfig struct {
	Host     string      `json:"host"`
	Port     int         `json:"port"`
	Username null.String `json:"username"`
	Password null.String `json:"-"`
	Dynamic  bool        `json:"dynamic"`
}

// DefaultConnectionConfig returns the configuration used when no keys are set
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		Host:    DefaultHost,
		Port:    DefaultPort,
		Dynamic: DefaultDynamic,
	}
}

// Resolve binds the messaging.broker keys of props into a ConnectionConfig.
// Missing keys take their defaults. A malformed value fails with a
// *errors.ConfigurationError naming the key; no partial record is returned.
func Resolve(props Properties) (ConnectionConfig, error) {
	cfg := DefaultConnectionConfig()

	if v, ok := props.Lookup(KeyHost); ok {
		cfg.Host = v
	}

	if v, ok := props.Lookup(KeyPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return ConnectionConfig{}, errors.NewConfigurationError(KeyPort, v, err)
		}
		if port < 1 || port > 65535 {
			return ConnectionConfig{}, errors.NewConfigurationError(KeyPort, v, errPortRange)
		}
		cfg.Port = port
	}

	if v, ok := props.Lookup(KeyUsername); ok {
		cfg.Username = null.StringFrom(v)
	}

	if v, ok := props.Lookup(KeyPassword); ok {
		cfg.Password = null.StringFrom(v)
	}

	if v, ok := props.Lookup(KeyDynamic); ok {
		dynamic, err := strconv.ParseBool(v)
		if err != nil {
			return ConnectionConfig{}, errors.NewConfigurationError(KeyDynamic, v, err)
		}
		cfg.Dynamic = dynamic
	}

	return cfg, nil
}
