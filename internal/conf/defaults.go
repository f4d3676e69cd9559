// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "FeatherQuest")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/featherquest.log")

	viper.SetDefault("ebird.apikey", "")
	viper.SetDefault("ebird.baseurl", "https://api.ebird.org/v2")
	viper.SetDefault("ebird.timeout", 30*time.Second)
	viper.SetDefault("ebird.cachettl", 15*time.Minute)
	viper.SetDefault("ebird.ratelimitms", 100)
	viper.SetDefault("ebird.lookbackdays", 14)

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "featherquest.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "featherquest")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.database", "featherquest")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
}
