// Package configuration loads the shell settings from an optional dotenv-style
// file, with the process environment taking precedence over the file.
package configuration

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertwitch/gshell/internal/accounts"
)

const (
	KeyConfigFile = "GSHELL_CONFIG"
	KeyDataDir    = "GSHELL_DATA_DIR"
	KeyUsersFile  = "GSHELL_USERS_FILE"
	KeyBcryptCost = "GSHELL_BCRYPT_COST"
	KeyLogLevel   = "GSHELL_LOG_LEVEL"
	KeyLogFile    = "GSHELL_LOG_FILE"
	KeyShowDir    = "GSHELL_SHOW_DIR"

	DefaultDirName    = ".gshell"
	DefaultConfigName = "gshell.env"
	DefaultUsersName  = "users.db"
)

type genericConfigProvider interface {
	Read(filenames ...string) (envMap map[string]string, err error)
}

type envProvider interface {
	LookupEnv(key string) (string, bool)
}

// Config is the principal structure holding the application configuration.
type Config struct {
	ConfigFile string
	DataDir    string
	UsersFile  string
	BcryptCost int
	LogLevel   slog.Level
	LogFile    string
	ShowDir    bool
}

// Handler is the principal implementation of the configuration loader.
type Handler struct {
	ConfigProvider genericConfigProvider
	EnvProvider    envProvider
	HomeDir        string
}

// NewHandler returns a pointer to a new configuration [Handler]. The home
// directory anchors all default paths.
func NewHandler(configProvider genericConfigProvider, envProvider envProvider, homeDir string) *Handler {
	return &Handler{
		ConfigProvider: configProvider,
		EnvProvider:    envProvider,
		HomeDir:        homeDir,
	}
}

// Load returns the effective [Config]. An explicitly given configuration file
// must exist, while the default one is optional.
func (c *Handler) Load(explicitFile string) (*Config, error) {
	configFile := explicitFile
	required := explicitFile != ""

	if !required {
		if envFile, ok := c.EnvProvider.LookupEnv(KeyConfigFile); ok && envFile != "" {
			configFile = envFile
			required = true
		} else {
			configFile = filepath.Join(c.HomeDir, DefaultDirName, DefaultConfigName)
		}
	}

	fileMap, err := c.ConfigProvider.Read(configFile)
	if err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("(config) failed to read %s: %w", configFile, err)
		}
		fileMap = map[string]string{}
	}

	envMap := c.merge(fileMap)

	cfg := &Config{
		ConfigFile: configFile,
		DataDir:    c.MapKeyToString(envMap, KeyDataDir),
		UsersFile:  c.MapKeyToString(envMap, KeyUsersFile),
		BcryptCost: c.MapKeyToInt(envMap, KeyBcryptCost),
		LogFile:    c.MapKeyToString(envMap, KeyLogFile),
		ShowDir:    c.MapKeyToBool(envMap, KeyShowDir),
		LogLevel:   slog.LevelWarn,
	}

	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(c.HomeDir, DefaultDirName)
	}

	if cfg.UsersFile == "" {
		cfg.UsersFile = filepath.Join(cfg.DataDir, DefaultUsersName)
	}

	if cfg.BcryptCost < accounts.MinCost {
		cfg.BcryptCost = accounts.MinCost
	}

	if level := c.MapKeyToString(envMap, KeyLogLevel); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("(config) invalid %s %q: %w", KeyLogLevel, level, err)
		}
	}

	return cfg, nil
}

// merge overlays the process environment over the values read from file.
func (c *Handler) merge(fileMap map[string]string) map[string]string {
	envMap := make(map[string]string, len(fileMap))
	for k, v := range fileMap {
		envMap[k] = v
	}

	for _, key := range []string{KeyDataDir, KeyUsersFile, KeyBcryptCost, KeyLogLevel, KeyLogFile, KeyShowDir} {
		if value, ok := c.EnvProvider.LookupEnv(key); ok {
			envMap[key] = value
		}
	}

	return envMap
}

func (c *Handler) MapKeyToString(envMap map[string]string, key string) string {
	if value, exists := envMap[key]; exists {
		return strings.TrimSpace(value)
	}

	return ""
}

func (c *Handler) MapKeyToInt(envMap map[string]string, key string) int {
	value := c.MapKeyToString(envMap, key)
	if value == "" {
		return -1
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return -1
	}

	return intValue
}

func (c *Handler) MapKeyToBool(envMap map[string]string, key string) bool {
	value := c.MapKeyToString(envMap, key)

	switch strings.ToLower(value) {
	case "1", "yes", "true", "on":
		return true
	default:
		return false
	}
}
