package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/vincentino1/account-service/internal/timex"
)

// parseEnv overlays variables that are set in the environment. PORT is
// honoured as a shorthand for HTTP_ADDR=":PORT" when HTTP_ADDR is unset.
// Durations also accept the "7d" style (see timex.ParseDuration).
func parseEnv(config *Config) error {
	opts := env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(time.Duration(0)): func(v string) (any, error) {
				return timex.ParseDuration(v)
			},
		},
	}
	if err := env.ParseWithOptions(config, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if _, ok := os.LookupEnv("HTTP_ADDR"); !ok {
		if port, ok := os.LookupEnv("PORT"); ok && port != "" {
			n, err := strconv.Atoi(port)
			if err != nil || n <= 0 {
				return fmt.Errorf("parse env: invalid PORT %q", port)
			}
			config.HTTPAddr = ":" + port
		}
	}

	return nil
}
