package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	envConfigFile      = "STACKCTL_CONFIG"
	envComposeFile     = "STACKCTL_COMPOSE_FILE"
	envProjectName     = "STACKCTL_PROJECT"
	envDockerHost      = "STACKCTL_DOCKER_HOST"
	envSettingsFile    = "STACKCTL_SETTINGS_FILE"
	envWalletDir       = "STACKCTL_WALLET_DIR"
	envDatabaseService = "STACKCTL_DATABASE_SERVICE"
	envAppService      = "STACKCTL_APP_SERVICE"
	envHealthURL       = "STACKCTL_HEALTH_URL"
	envReadinessMarker = "STACKCTL_READINESS_MARKER"
	envPollAttempts    = "STACKCTL_POLL_ATTEMPTS"
	envPollDelay       = "STACKCTL_POLL_DELAY"
	envProbeTimeout    = "STACKCTL_PROBE_TIMEOUT"
	envLogTail         = "STACKCTL_LOG_TAIL"
	envSnapshotFile    = "STACKCTL_SNAPSHOT_FILE"
	envDebug           = "STACKCTL_DEBUG"
)

const (
	defaultConfigFile      = "stackctl.yaml"
	defaultComposeFile     = "docker-compose.yml"
	defaultProjectName     = "aidemo"
	defaultSettingsFile    = ".env"
	defaultWalletDir       = "oracle-wallets/production"
	defaultDatabaseService = "oracle-demo"
	defaultAppService      = "agent"
	defaultHealthURL       = "http://localhost:8000/health"
	defaultReadinessMarker = "DATABASE IS READY TO USE!"
	defaultPollAttempts    = 30
	defaultPollDelay       = 10 * time.Second
	defaultProbeTimeout    = 10 * time.Second
	defaultLogTail         = 50
	defaultSnapshotFile    = ".stackctl/stack-snapshot.json"
)

// Config describes runtime configuration for one managed stack. Values come
// from built-in defaults, then an optional stackctl.yaml, then environment
// variables. Environment variables win.
type Config struct {
	ComposeFile     string        `yaml:"compose_file"`
	ProjectName     string        `yaml:"project"`
	DockerHost      string        `yaml:"docker_host"`
	SettingsFile    string        `yaml:"settings_file"`
	WalletDir       string        `yaml:"wallet_dir"`
	DatabaseService string        `yaml:"database_service"`
	AppService      string        `yaml:"app_service"`
	HealthURL       string        `yaml:"health_url"`
	ReadinessMarker string        `yaml:"readiness_marker"`
	PollAttempts    uint64        `yaml:"poll_attempts"`
	PollDelay       time.Duration `yaml:"poll_delay"`
	ProbeTimeout    time.Duration `yaml:"probe_timeout"`
	LogTail         int           `yaml:"log_tail"`
	SnapshotFile    string        `yaml:"snapshot_file"`
	Debug           bool          `yaml:"debug"`
}

// Load reads configuration from the optional config file and the environment.
// The configured settings file is loaded into the environment so its variables
// are visible; variables already set in the environment take precedence.
func Load() (Config, error) {
	cfg := Config{
		ComposeFile:     defaultComposeFile,
		ProjectName:     defaultProjectName,
		SettingsFile:    defaultSettingsFile,
		WalletDir:       defaultWalletDir,
		DatabaseService: defaultDatabaseService,
		AppService:      defaultAppService,
		HealthURL:       defaultHealthURL,
		ReadinessMarker: defaultReadinessMarker,
		PollAttempts:    defaultPollAttempts,
		PollDelay:       defaultPollDelay,
		ProbeTimeout:    defaultProbeTimeout,
		LogTail:         defaultLogTail,
		SnapshotFile:    defaultSnapshotFile,
	}

	configFile := defaultConfigFile
	explicit := false
	if value, ok := lookupTrimmed(envConfigFile); ok && value != "" {
		configFile = value
		explicit = true
	}
	if err := loadFileIfPresent(configFile, explicit, &cfg); err != nil {
		return Config{}, err
	}

	// The settings file location itself may be configured, so resolve it
	// before preloading it into the environment.
	settingsPath := cfg.SettingsFile
	if value, ok := lookupTrimmed(envSettingsFile); ok && value != "" {
		settingsPath = value
	}
	if err := loadDotEnvIfPresent(settingsPath); err != nil {
		return Config{}, err
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	for _, field := range []struct {
		env  string
		dest *string
	}{
		{envComposeFile, &cfg.ComposeFile},
		{envProjectName, &cfg.ProjectName},
		{envDockerHost, &cfg.DockerHost},
		{envSettingsFile, &cfg.SettingsFile},
		{envWalletDir, &cfg.WalletDir},
		{envDatabaseService, &cfg.DatabaseService},
		{envAppService, &cfg.AppService},
		{envHealthURL, &cfg.HealthURL},
		{envReadinessMarker, &cfg.ReadinessMarker},
		{envSnapshotFile, &cfg.SnapshotFile},
	} {
		if value, ok := lookupTrimmed(field.env); ok {
			*field.dest = value
		}
	}

	if value, ok := lookupTrimmed(envPollAttempts); ok {
		attempts, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", envPollAttempts, err)
		}
		if attempts == 0 {
			return fmt.Errorf("%s must be greater than zero", envPollAttempts)
		}
		cfg.PollAttempts = attempts
	}

	if value, ok := lookupTrimmed(envPollDelay); ok {
		delay, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", envPollDelay, err)
		}
		if delay <= 0 {
			return fmt.Errorf("%s must be greater than zero", envPollDelay)
		}
		cfg.PollDelay = delay
	}

	if value, ok := lookupTrimmed(envProbeTimeout); ok {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", envProbeTimeout, err)
		}
		if timeout <= 0 {
			return fmt.Errorf("%s must be greater than zero", envProbeTimeout)
		}
		cfg.ProbeTimeout = timeout
	}

	if value, ok := lookupTrimmed(envLogTail); ok {
		tail, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", envLogTail, err)
		}
		if tail <= 0 {
			return fmt.Errorf("%s must be greater than zero", envLogTail)
		}
		cfg.LogTail = tail
	}

	if value, ok := lookupTrimmed(envDebug); ok {
		debug, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", envDebug, err)
		}
		cfg.Debug = debug
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.ComposeFile == "" {
		return errors.New("compose file must not be empty")
	}
	if cfg.ProjectName == "" {
		return errors.New("project name must not be empty")
	}
	if err := validateURL(cfg.HealthURL, "health URL"); err != nil {
		return err
	}
	if cfg.DockerHost != "" {
		if err := validateURL(cfg.DockerHost, "docker host"); err != nil {
			return err
		}
	}
	if cfg.ReadinessMarker == "" {
		return errors.New("readiness marker must not be empty")
	}
	if cfg.PollAttempts == 0 {
		return errors.New("poll attempts must be greater than zero")
	}
	if cfg.PollDelay <= 0 {
		return errors.New("poll delay must be greater than zero")
	}
	return nil
}

func loadFileIfPresent(path string, explicit bool, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func lookupTrimmed(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func loadDotEnvIfPresent(path string) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, os.ErrNotExist) {
		return nil
	}

	return err
}

func validateURL(value, name string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid %s: must include scheme and host", name)
	}
	return nil
}
