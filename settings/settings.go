// Package settings resolves the module configuration from the gocore
// hierarchy, environment variables first and settings.conf second, with
// optional overrides from a .env or yaml/json file.
package settings

import (
	"path/filepath"
	"strings"

	"github.com/bsv-blockchain/go-histogram/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func NewSettings() *Settings {
	return &Settings{
		Context:    getString("SETTINGS_CONTEXT", "dev"),
		LogLevel:   getString("logLevel", "INFO"),
		LoggerType: getString("loggerType", "zerolog"),
		Histogram: HistogramSettings{
			PowersOf2:    getInt("histogram_powersOf2", 32),
			FractionBits: getInt("histogram_fractionBits", 7),
		},
		Report: ReportSettings{
			Format:           getString("report_format", "text"),
			Output:           getString("report_output", ""),
			Workers:          getInt("report_workers", 4),
			Progress:         getBool("report_progress", false),
			ProgressInterval: getDuration("report_progressInterval", "5s"),
		},
		Bench: BenchSettings{
			Rounds:        getInt("bench_rounds", 5),
			Iterations:    getInt("bench_iterations", 1_000_000),
			RatePerSecond: getInt("bench_ratePerSecond", 0),
			Profile:       getBool("bench_profile", false),
			ProfileFile:   getString("bench_profileFile", "fgprof.pprof"),
		},
	}
}

// LoadFile returns the settings with overrides from path applied on top of
// the environment driven defaults.
//
// A .env file is loaded into the process environment with godotenv, which
// does not override variables that are already set, so the usual priority
// order is preserved. Any other extension is handed to viper, which accepts
// yaml and json.
func LoadFile(path string) (*Settings, error) {
	if isEnvFile(path) {
		if err := godotenv.Load(path); err != nil {
			return nil, errors.NewConfigurationError("failed to load env file %s", path, err)
		}

		return NewSettings(), nil
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.NewConfigurationError("failed to read config file %s", path, err)
	}

	s := NewSettings()

	if err := v.Unmarshal(s); err != nil {
		return nil, errors.NewConfigurationError("failed to unmarshal config file %s", path, err)
	}

	return s, nil
}

// isEnvFile checks if the file is .env
func isEnvFile(f string) bool {
	ext := filepath.Ext(f)
	if len(ext) > 1 {
		return ext[1:] == "env"
	}

	return false
}
