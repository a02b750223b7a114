package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

type Config struct {
	DataDir          string   `mapstructure:"data_dir"`
	ExportDir        string   `mapstructure:"export_dir"`
	RetentionDays    int      `mapstructure:"retention_days"`
	MaxEventsPerSync int      `mapstructure:"max_events_per_sync"`
	WindowsChannels  []string `mapstructure:"windows_channels"`
	LogFormat        string   `mapstructure:"log_format"`
	LogLevel         string   `mapstructure:"log_level"`
}

func Default() *Config {
	return &Config{
		DataDir:          dataDir(),
		ExportDir:        exportDir(),
		RetentionDays:    7,
		MaxEventsPerSync: 2000,
		WindowsChannels:  []string{"Application", "System", "Security"},
		LogFormat:        "text",
		LogLevel:         "info",
	}
}

func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("collector")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("HERMES")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func Save(cfg *Config) error {
	return SaveTo(cfg, "")
}

func SaveTo(cfg *Config, cfgFile string) error {
	viper.Set("data_dir", cfg.DataDir)
	viper.Set("export_dir", cfg.ExportDir)
	viper.Set("retention_days", cfg.RetentionDays)
	viper.Set("max_events_per_sync", cfg.MaxEventsPerSync)
	viper.Set("windows_channels", cfg.WindowsChannels)
	viper.Set("log_format", cfg.LogFormat)
	viper.Set("log_level", cfg.LogLevel)

	var cfgPath string
	if cfgFile != "" {
		cfgPath = cfgFile
		dir := filepath.Dir(cfgPath)
		if dir != "." {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return err
			}
		}
	} else {
		cfgPath = filepath.Join(configDir(), "collector.yaml")
		if err := os.MkdirAll(configDir(), 0700); err != nil {
			return err
		}
	}

	if err := viper.WriteConfigAs(cfgPath); err != nil {
		return err
	}

	return os.Chmod(cfgPath, 0600)
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "Hermes")
	case "darwin":
		return "/Library/Application Support/Hermes"
	default:
		return "/etc/hermes"
	}
}

func dataDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "Hermes", "data")
	case "darwin":
		return "/Library/Application Support/Hermes/data"
	default:
		return "/var/lib/hermes"
	}
}

func exportDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, "hermes-exports")
}
