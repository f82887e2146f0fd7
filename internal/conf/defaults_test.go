package conf

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestSetDefaultConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setDefaultConfig()

	assert.True(t, viper.GetBool("output.sqlite.enabled"))
	assert.False(t, viper.GetBool("output.mysql.enabled"))
	assert.Equal(t, "https://api.gbif.org/v1", viper.GetString("gbif.baseurl"))
	assert.Equal(t, 85, viper.GetInt("gbif.minconfidence"))
	assert.Equal(t, 24*time.Hour, viper.GetDuration("gbif.cachettl"))
	assert.False(t, viper.GetBool("import.verbose"))
}
