package config

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/Joyersch/jellydump/pkg/logger"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Library  LibraryConfig  `mapstructure:"library"`
	Download DownloadConfig `mapstructure:"download"`
	Apprise  AppriseConfig  `mapstructure:"apprise"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LibraryConfig struct {
	// BasePath is the root of the media library. Show and season folders
	// are created underneath it.
	BasePath string `mapstructure:"base_path"`
}

type DownloadConfig struct {
	// Format is the yt-dlp format selector.
	Format string `mapstructure:"format"`
	// Container is the target container for merge and recode (e.g. "mp4").
	// Completed episodes are counted by this extension.
	Container string `mapstructure:"container"`
	// ProgressIntervalMs is how often the downloader reports progress.
	ProgressIntervalMs int `mapstructure:"progress_interval_ms"`
}

type AppriseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"` // Apprise API URL
	Key     string `mapstructure:"key"`      // Apprise config key
	Tag     string `mapstructure:"tag"`      // Tag to filter services
}

func setDefaults() {
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("library.base_path", "/data/library")
	viper.SetDefault("download.format", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]")
	viper.SetDefault("download.container", "mp4")
	viper.SetDefault("download.progress_interval_ms", 500)
}

// ChangeCallback is called when config changes.
type ChangeCallback func(old, new *Config)

// Manager handles config loading and hot-reload.
type Manager struct {
	mu        sync.RWMutex
	cfg       *Config
	callbacks []ChangeCallback
	stop      chan struct{}

	path        string
	lastModTime time.Time
}

// NewManager creates a config manager with hot-reload support via polling.
func NewManager(path string) (*Manager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	var lastMod time.Time
	if stat, err := os.Stat(path); err == nil {
		lastMod = stat.ModTime()
	}

	m := &Manager{
		cfg:         cfg,
		stop:        make(chan struct{}),
		path:        path,
		lastModTime: lastMod,
	}

	go m.pollForChanges(10 * time.Second)

	logger.Infof("📋 Config loaded (polling every 10s for changes)")

	return m, nil
}

func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) OnChange(cb ChangeCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, cb)
}

func (m *Manager) Stop() {
	close(m.stop)
}

func (m *Manager) pollForChanges(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			stat, err := os.Stat(m.path)
			if err != nil {
				continue
			}

			m.mu.RLock()
			lastMod := m.lastModTime
			m.mu.RUnlock()

			if stat.ModTime().After(lastMod) {
				logger.Infof("🔄 Config file changed, reloading...")

				newCfg, err := Load(m.path)
				if err != nil {
					logger.Errorf("❌ Failed to reload config: %v", err)
					continue
				}

				m.mu.Lock()
				oldCfg := m.cfg
				m.cfg = newCfg
				m.lastModTime = stat.ModTime()
				callbacks := m.callbacks
				m.mu.Unlock()

				logger.Infof("✅ Config reloaded")

				for _, cb := range callbacks {
					cb(oldCfg, newCfg)
				}
			}
		}
	}
}

// Load reads and unmarshals the config file once.
func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("JELLYDUMP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Legacy env override from the pre-config-file days.
	if base := os.Getenv("BASE_DATA_PATH"); base != "" {
		cfg.Library.BasePath = base
	}

	return &cfg, nil
}
