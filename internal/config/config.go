package config

import "github.com/spf13/viper"

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	Store struct {
		Path string
	} `mapstructure:"store"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Stock struct {
		LowStockThreshold int64 `mapstructure:"low_stock_threshold"`
	} `mapstructure:"stock"`
}

func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	// Позже можно будет переопределять через ENV (APP_*), если надо
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}
