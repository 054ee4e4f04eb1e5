package settings

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

type HistogramSettings struct {
	PowersOf2    int `mapstructure:"powersOf2" json:"powersOf2" yaml:"powersOf2"`
	FractionBits int `mapstructure:"fractionBits" json:"fractionBits" yaml:"fractionBits"`
}

type ReportSettings struct {
	Format           string        `mapstructure:"format" json:"format" yaml:"format"`
	Output           string        `mapstructure:"output" json:"output" yaml:"output"`
	Workers          int           `mapstructure:"workers" json:"workers" yaml:"workers"`
	Progress         bool          `mapstructure:"progress" json:"progress" yaml:"progress"`
	ProgressInterval time.Duration `mapstructure:"progressInterval" json:"progressInterval" yaml:"progressInterval"`
}

type BenchSettings struct {
	Rounds        int    `mapstructure:"rounds" json:"rounds" yaml:"rounds"`
	Iterations    int    `mapstructure:"iterations" json:"iterations" yaml:"iterations"`
	RatePerSecond int    `mapstructure:"ratePerSecond" json:"ratePerSecond" yaml:"ratePerSecond"`
	Profile       bool   `mapstructure:"profile" json:"profile" yaml:"profile"`
	ProfileFile   string `mapstructure:"profileFile" json:"profileFile" yaml:"profileFile"`
}

type Settings struct {
	Context    string            `mapstructure:"context" json:"context" yaml:"context"`
	LogLevel   string            `mapstructure:"logLevel" json:"logLevel" yaml:"logLevel"`
	LoggerType string            `mapstructure:"loggerType" json:"loggerType" yaml:"loggerType"`
	Histogram  HistogramSettings `mapstructure:"histogram" json:"histogram" yaml:"histogram"`
	Report     ReportSettings    `mapstructure:"report" json:"report" yaml:"report"`
	Bench      BenchSettings     `mapstructure:"bench" json:"bench" yaml:"bench"`
}

// StringYAML return the config string in yaml format
func (s *Settings) StringYAML() string {
	strYAML, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Sprintf("Error marshalling to YAML: %v\n", err)
	}

	return string(strYAML)
}
