// Package config loads client configuration from a YAML file and the
// environment. Precedence is the usual viper order: explicit values in
// the config file, then BRIGHTSET_* environment variables, then built-in
// defaults.
package config

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/brightset/brightset-go"
)

// Config carries everything needed to construct a client.
type Config struct {
	ServerURL        string
	Token            string
	DownloadWorkers  int
	VerboseDownloads bool
	HTTPTimeout      time.Duration
}

// Load reads configuration. cfgFile, when non-empty, names an explicit
// config file and failing to read it is an error. Otherwise config.yaml
// is searched for in ., ./.brightset and ~/.brightset, and running on
// defaults plus environment variables alone is fine. Nested keys map to
// environment variables with underscores, e.g. download.workers is
// BRIGHTSET_DOWNLOAD_WORKERS.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(".")
		v.AddConfigPath(".brightset")
		v.AddConfigPath(filepath.Join(home, ".brightset"))
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("BRIGHTSET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	return &Config{
		ServerURL:        v.GetString("server_url"),
		Token:            v.GetString("token"),
		DownloadWorkers:  v.GetInt("download.workers"),
		VerboseDownloads: v.GetBool("download.verbose"),
		HTTPTimeout:      v.GetDuration("http.timeout"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_url", "https://api.brightset.io")
	v.SetDefault("download.workers", 8)
	v.SetDefault("download.verbose", true)
	v.SetDefault("http.timeout", time.Minute)
}

// ClientOptions translates the configuration into client options.
func (c *Config) ClientOptions() []brightset.ClientOptions {
	return []brightset.ClientOptions{
		brightset.WithBaseURL(c.ServerURL),
		brightset.WithHTTPClient(&http.Client{Timeout: c.HTTPTimeout}),
	}
}

// NewClient builds a client from the configuration.
func (c *Config) NewClient() *brightset.Client {
	return brightset.NewClient(c.Token, c.ClientOptions()...)
}
