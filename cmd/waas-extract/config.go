package main

import (
	"errors"
	"os"

	"waas-extractor/lib/util/configutil"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type YcConfig struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AlgoliaConfig struct {
	AppId  string `json:"app_id" validate:"required"`
	ApiKey string `json:"api_key" validate:"required"`
}

type ExtractConfig struct {
	Count  int    `json:"count" validate:"gte=0"`
	Output string `json:"output"`
}

type Config struct {
	Yc      YcConfig      `json:"yc"`
	Algolia AlgoliaConfig `json:"algolia"`
	Extract ExtractConfig `json:"extract"`
}

var validate = validator.New()

// loadConfig assembles the run configuration: config.json5 (with local
// overrides) as the base, the four credential environment variables on top.
// a missing config file is fine as long as the environment carries all
// credentials. fails fast when any credential ends up empty.
func loadConfig() (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	if v, ok := os.LookupEnv("YC_USERNAME"); ok {
		config.Yc.Username = v
	}
	if v, ok := os.LookupEnv("YC_PASSWORD"); ok {
		config.Yc.Password = v
	}
	if v, ok := os.LookupEnv("ALGOLIA_APP_ID"); ok {
		config.Algolia.AppId = v
	}
	if v, ok := os.LookupEnv("ALGOLIA_API_KEY"); ok {
		config.Algolia.ApiKey = v
	}

	err = validate.Struct(config)
	if err != nil {
		return Config{}, err
	}
	return config, nil
}
