package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"
)

// DefaultEnvPrefix is the environment prefix for broker overrides.
// MESSAGING_BROKER_HOST overrides messaging.broker.host, and so on.
const DefaultEnvPrefix = "MESSAGING_BROKER"

// envKeys are the messaging.broker keys that may be overridden from the environment
var envKeys = []string{KeyHost, KeyPort, KeyUsername, KeyPassword, KeyDynamic}

// Loader handles configuration loading with layers and overrides.
// Later layers override earlier ones; environment overrides apply last.
type Loader struct {
	layers    []string
	envPrefix string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		layers:    []string{},
		envPrefix: DefaultEnvPrefix,
	}
}

// AddLayer adds a configuration file layer
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// SetEnvPrefix changes the environment prefix. An empty prefix disables
// environment overrides.
func (l *Loader) SetEnvPrefix(prefix string) {
	l.envPrefix = prefix
}

// LoadFile loads properties from a single file plus environment overrides.
// Layers added with AddLayer are neither read nor changed.
func (l *Loader) LoadFile(path string) (Properties, error) {
	return l.load([]string{path})
}

// Load reads and merges all configuration layers
func (l *Loader) Load() (Properties, error) {
	return l.load(l.layers)
}

func (l *Loader) load(layers []string) (Properties, error) {
	props := Properties{}

	for _, path := range layers {
		layer, err := l.loadLayer(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		props = props.Merge(layer)
	}

	if err := l.applyEnvOverrides(props); err != nil {
		return nil, err
	}

	return props, nil
}

// loadLayer parses a single file according to its extension
func (l *Loader) loadLayer(path string) (Properties, error) {
	data, err := safeReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".properties":
		return parseProperties(data)
	case ".yaml", ".yml":
		return parseYAML(data)
	case ".json":
		return parseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported config file type: %s", path)
	}
}

// parseProperties parses Java-style key=value property files
func parseProperties(data []byte) (Properties, error) {
	p, err := properties.Load(data, properties.UTF8)
	if err != nil {
		return nil, fmt.Errorf("parse properties: %w", err)
	}
	return Properties(p.Map()), nil
}

// parseYAML parses a YAML document and flattens nested mappings into dotted keys.
// Scalars keep their source text, so 1.10 stays "1.10" and 0x1F stays "0x1F".
func parseYAML(data []byte) (Properties, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	props := Properties{}
	if len(doc.Content) == 0 {
		return props, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.AliasNode {
		root = root.Alias
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse yaml: document root must be a mapping")
	}

	flattenNode("", root, props)
	return props, nil
}

// flattenNode walks a YAML node and writes scalar leaves into out.
// Sequences are indexed as key[0], key[1], ...
func flattenNode(prefix string, node *yaml.Node, out Properties) {
	switch node.Kind {
	case yaml.AliasNode:
		flattenNode(prefix, node.Alias, out)
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if key.Tag == "!!merge" {
				flattenNode(prefix, value, out)
				continue
			}
			flattenNode(joinKey(prefix, key.Value), value, out)
		}
	case yaml.SequenceNode:
		for i, child := range node.Content {
			flattenNode(fmt.Sprintf("%s[%d]", prefix, i), child, out)
		}
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return
		}
		out[prefix] = node.Value
	}
}

// parseJSON parses a JSON document and flattens nested objects into dotted keys.
// Numbers keep their source text.
func parseJSON(data []byte) (Properties, error) {
	if err := validateJSONDepth(data); err != nil {
		return nil, fmt.Errorf("invalid JSON structure: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if decoder.More() {
		return nil, fmt.Errorf("parse json: unexpected data after document")
	}

	props := Properties{}
	flatten("", raw, props)
	return props, nil
}

// flatten walks a decoded JSON document and writes scalar leaves into out
func flatten(prefix string, value any, out Properties) {
	switch v := value.(type) {
	case nil:
		return
	case map[string]any:
		for k, child := range v {
			flatten(joinKey(prefix, k), child, out)
		}
	case []any:
		for i, child := range v {
			flatten(fmt.Sprintf("%s[%d]", prefix, i), child, out)
		}
	case json.Number:
		out[prefix] = v.String()
	case string:
		out[prefix] = v
	case bool:
		out[prefix] = strconv.FormatBool(v)
	default:
		out[prefix] = fmt.Sprint(v)
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// applyEnvOverrides applies environment variable overrides
func (l *Loader) applyEnvOverrides(props Properties) error {
	if l.envPrefix == "" {
		return nil
	}

	for _, key := range envKeys {
		name := EnvName(l.envPrefix, key)
		val, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		if err := validateEnvVar(name, val); err != nil {
			return err
		}
		props[key] = val
	}
	return nil
}

// EnvName returns the environment variable that overrides key under prefix.
// EnvName("MESSAGING_BROKER", "messaging.broker.host") is "MESSAGING_BROKER_HOST".
func EnvName(prefix, key string) string {
	suffix := strings.TrimPrefix(key, Namespace+".")
	suffix = strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(suffix))
	return prefix + "_" + suffix
}
