package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/vango-dev/statebox/internal/errors"
	"github.com/vango-dev/statebox/pkg/state"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "statebox.json"

	// DefaultPort is the default inspector port.
	DefaultPort = 7070

	// DefaultHost is the default inspector host.
	DefaultHost = "localhost"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "statebox"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "statebox"
)

// Snapshot backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendS3     = "s3"
)

// Config is the contents of statebox.json.
type Config struct {
	// Name identifies the deployment in logs.
	Name string `json:"name,omitempty"`

	Server   ServerConfig   `json:"server"`
	Metrics  MetricsConfig  `json:"metrics"`
	Tracing  TracingConfig  `json:"tracing"`
	Snapshot SnapshotConfig `json:"snapshot"`
	Log      LogConfig      `json:"log"`

	// NotifyMode is "locked" (default) or "unlocked".
	NotifyMode string `json:"notifyMode,omitempty"`

	// States maps container names to their initial JSON values.
	States map[string]json.RawMessage `json:"states,omitempty"`

	configPath string
}

// ServerConfig configures the HTTP inspector.
type ServerConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`

	// WatchBuffer is the per-connection frame queue for watch streams.
	WatchBuffer int `json:"watchBuffer,omitempty"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled"`
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig configures OpenTelemetry spans for sets.
type TracingConfig struct {
	Enabled    bool   `json:"enabled"`
	TracerName string `json:"tracerName,omitempty"`

	// TraceUnchanged also records sets rejected by the equality check.
	TraceUnchanged bool `json:"traceUnchanged,omitempty"`
}

// SnapshotConfig configures where container values are persisted.
type SnapshotConfig struct {
	// Backend is "none", "memory" or "s3".
	Backend string `json:"backend,omitempty"`

	Bucket    string `json:"bucket,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
	Region    string `json:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	PathStyle bool   `json:"pathStyle,omitempty"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
		Snapshot: SnapshotConfig{
			Backend: BackendNone,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		NotifyMode: state.NotifyLocked.String(),
		States:     map[string]json.RawMessage{},
	}
}

// FileNames are the config file names looked for in a directory, in order.
var FileNames = []string{ConfigFileName, "statebox.yaml", "statebox.yml"}

// Load reads the first of FileNames found in dir.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads and validates the config at path. Files ending in .yaml or
// .yml are parsed as YAML, anything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetail("No config file found at " + path).
				WithSuggestion("Run 'statebox init' to create one")
		}
		return nil, errors.New("E101").Wrap(err)
	}

	if isYAML(path) {
		data, err = yaml.YAMLToJSON(data)
		if err != nil {
			return nil, errors.New("E101").
				WithDetail("The config file is not valid YAML").
				Wrap(err)
		}
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		if isYAML(path) {
			return nil, errors.New("E102").Wrap(err)
		}
		return nil, decodeError(path, data, err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeError(path string, data []byte, err error) error {
	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		return errors.New("E101").
			WithOffset(path, data, syntaxErr.Offset).
			WithSuggestion("Check for missing commas, trailing commas or unquoted keys").
			Wrap(err)
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		return errors.New("E102").
			WithOffset(path, data, typeErr.Offset).
			WithDetail(fmt.Sprintf("Field %q must be a %s, not a %s", typeErr.Field, typeErr.Type, typeErr.Value)).
			Wrap(err)
	}

	return errors.New("E101").Wrap(err)
}

// Save writes the config back to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("E103").WithDetail("The config has no associated file")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the config to path, as YAML if path ends in .yaml or .yml and
// as indented JSON otherwise.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E103").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E103").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the file the config was loaded from or saved to.
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
	if c.Snapshot.Backend == "" {
		c.Snapshot.Backend = BackendNone
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.NotifyMode == "" {
		c.NotifyMode = state.NotifyLocked.String()
	}
	if c.States == nil {
		c.States = map[string]json.RawMessage{}
	}
}

// Validate checks field values and returns an E102 error for the first
// invalid one.
func (c *Config) Validate() error {
	invalid := func(detail string) error {
		return errors.New("E102").WithDetail(detail)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return invalid("server.port must be between 0 and 65535")
	}
	if c.Server.WatchBuffer < 0 {
		return invalid("server.watchBuffer must not be negative")
	}

	switch c.Snapshot.Backend {
	case BackendNone, BackendMemory:
	case BackendS3:
		if c.Snapshot.Bucket == "" {
			return invalid("snapshot.bucket is required for the s3 backend")
		}
	default:
		return invalid(fmt.Sprintf("snapshot.backend %q must be one of none, memory, s3", c.Snapshot.Backend))
	}

	if _, err := c.SlogLevel(); err != nil {
		return invalid(err.Error())
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid(fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}

	if _, ok := state.ParseNotifyMode(c.NotifyMode); !ok {
		return invalid(fmt.Sprintf("notifyMode %q must be locked or unlocked", c.NotifyMode))
	}

	for name := range c.States {
		if strings.TrimSpace(name) == "" {
			return invalid("states must not contain an empty name")
		}
	}
	return nil
}

// Address returns host:port for the inspector.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// SlogLevel parses Log.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	return c.Log.SlogLevel()
}

// SlogLevel parses Level, returning slog.LevelInfo with the error when it is
// not a level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level %q must be debug, info, warn or error", l.Level)
	}
	return level, nil
}

// Mode returns the parsed NotifyMode. Call Validate first.
func (c *Config) Mode() state.NotifyMode {
	mode, _ := state.ParseNotifyMode(c.NotifyMode)
	return mode
}

// Exists reports whether dir contains one of FileNames.
func Exists(dir string) bool {
	for _, name := range FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// FindRoot walks up from startDir to the first directory containing a config
// file.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E100").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'statebox init' to create one")
		}
		dir = parent
	}
}
