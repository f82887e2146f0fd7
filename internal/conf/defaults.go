// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "PathoTrack")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/pathotrack.log")

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "pathotrack.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "pathotrack")
	viper.SetDefault("output.mysql.password", "")
	viper.SetDefault("output.mysql.database", "pathotrack")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")

	viper.SetDefault("gbif.baseurl", "https://api.gbif.org/v1")
	viper.SetDefault("gbif.timeout", 30*time.Second)
	viper.SetDefault("gbif.cachettl", 24*time.Hour)
	viper.SetDefault("gbif.ratelimitms", 100)
	viper.SetDefault("gbif.minconfidence", 85)

	viper.SetDefault("import.verbose", false)
}
