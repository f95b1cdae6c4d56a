// Package config provides a reusable loader for node configuration files and
// environment variables. It is versioned so that applications can depend on
// a stable API contract.
//
// Version: v0.1.0
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"corechain/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config represents the unified configuration for a node. It mirrors the
// structure of the YAML files Load reads (default.yaml plus an optional
// environment-specific file, looked up in cmd/config and config).
type Config struct {
	Chain struct {
		ID          string `mapstructure:"id" json:"id"`
		GenesisFile string `mapstructure:"genesis_file" json:"genesis_file"`
	} `mapstructure:"chain" json:"chain"`

	Storage struct {
		DBPath string `mapstructure:"db_path" json:"db_path"`
		Prune  bool   `mapstructure:"prune" json:"prune"`
	} `mapstructure:"storage" json:"storage"`

	Merkle struct {
		// PruneKeepVersions is loaded from configuration but not read by the
		// node: nothing calls Tree.Prune, so orphaned nodes are never
		// reclaimed whatever its value.
		PruneKeepVersions uint64 `mapstructure:"prune_keep_versions" json:"prune_keep_versions"`
	} `mapstructure:"merkle" json:"merkle"`

	VM struct {
		ModuleCacheCapacity int  `mapstructure:"module_cache_capacity" json:"module_cache_capacity"`
		OpcodeDebug         bool `mapstructure:"opcode_debug" json:"opcode_debug"`
	} `mapstructure:"vm" json:"vm"`

	Gas struct {
		MaxReplyDepth int `mapstructure:"max_reply_depth" json:"max_reply_depth"`
		MaxQueryDepth int `mapstructure:"max_query_depth" json:"max_query_depth"`
	} `mapstructure:"gas" json:"gas"`

	Cronjobs struct {
		Enabled bool `mapstructure:"enabled" json:"enabled"`
	} `mapstructure:"cronjobs" json:"cronjobs"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and
// returned.
//
// The function uses the provided environment name to merge additional
// config files. If env is empty, only the default configuration is loaded.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv() // picks up overrides from environment variables

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the CHAIND_ENV environment variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("CHAIND_ENV", ""))
}
