package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "smtx.cfg.json"

// Load sets defaults, binds SMTX_ environment variables and reads the
// optional JSON config file from configDir. A missing file is not an error.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFile", "")

	viper.SetDefault("teamsDir", "data/teams")
	viper.SetDefault("dataDir", "data")
	viper.SetDefault("rostersFile", "rosters.yaml")

	viper.SetDefault("net.port", 9999)
	viper.SetDefault("net.addr", "localhost:9999")
	viper.SetDefault("mcp.port", 9999)
	viper.SetDefault("web.port", 8080)

	viper.SetEnvPrefix("smtx")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %v", err)
	}
	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}
