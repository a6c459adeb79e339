package walkroute

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Configuration holds tunables of routing engine and paths of input data
type Configuration struct {
	// WalkingSpeed is meters per minute
	WalkingSpeed        float64 `yaml:"walking_speed"`
	GradientCoefficient float64 `yaml:"gradient_coefficient"`
	// CrosswalkWaitSeconds is constant wait at unsignalized crosswalk. Zero disables it
	CrosswalkWaitSeconds float64 `yaml:"crosswalk_wait_seconds"`
	// ArrivalMode is 'entry' or 'exit'
	ArrivalMode string  `yaml:"arrival_mode"`
	StartTime   float64 `yaml:"start_time"`

	K                    int `yaml:"k"`
	PermutationCap       int `yaml:"permutation_cap"`
	MaxRoutes            int `yaml:"max_routes"`
	MaxDesignatedSignals int `yaml:"max_designated_signals"`
	// ExpectedWaitPerSignal is seconds. Zero means mean expected wait of designated signals
	ExpectedWaitPerSignal float64 `yaml:"expected_wait_per_signal"`
	// DesignatedSignals is a list of 'u-v' keys
	DesignatedSignals []string `yaml:"designated_signals"`
	// UseContraction enables contraction hierarchies for enumerator legs
	UseContraction bool `yaml:"use_contraction"`
	// RetainAllEnumerated keeps every enumerated route instead of the best one
	RetainAllEnumerated bool `yaml:"retain_all_enumerated"`
	// IgnoreSignals treats every signal as always green. Worst-case wait is still reported
	IgnoreSignals bool `yaml:"ignore_signals"`

	Bearing *BearingConfiguration `yaml:"bearing"`
	Files   FilesConfiguration    `yaml:"files"`
	Verbose bool                  `yaml:"verbose"`
}

// BearingConfiguration restricts solver to edges heading towards Target (degrees)
type BearingConfiguration struct {
	Target    float64 `yaml:"target"`
	Tolerance float64 `yaml:"tolerance"`
}

// FilesConfiguration lists input sources. Every field is optional except Attributes
type FilesConfiguration struct {
	Weights    string `yaml:"weights"`
	Attributes string `yaml:"attributes"`
	Signals    string `yaml:"signals"`
	Nodes      string `yaml:"nodes"`
}

// DefaultConfiguration returns configuration with default values
func DefaultConfiguration() *Configuration {
	return &Configuration{
		WalkingSpeed:         DefaultWalkingSpeed,
		GradientCoefficient:  DefaultGradientCoefficient,
		CrosswalkWaitSeconds: DefaultCrosswalkWait,
		ArrivalMode:          ARRIVAL_EDGE_ENTRY.String(),
		K:                    5,
		PermutationCap:       DefaultPermutationCap,
		MaxDesignatedSignals: DefaultMaxDesignatedSignals,
	}
}

// LoadConfiguration reads YAML file on top of default configuration
func LoadConfiguration(fname string) (*Configuration, error) {
	cfg := DefaultConfiguration()
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read configuration file")
	}
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "Can't parse configuration file")
	}
	return cfg, cfg.Validate()
}

// Validate checks configuration consistency
func (cfg *Configuration) Validate() error {
	err := cfg.CostModel().Validate()
	if err != nil {
		return err
	}
	_, err = ParseArrivalMode(cfg.ArrivalMode)
	if err != nil {
		return err
	}
	_, err = cfg.DesignatedKeys()
	if err != nil {
		return err
	}
	if cfg.K < 0 {
		return errors.Errorf("k must be non-negative, got %d", cfg.K)
	}
	return nil
}

// CostModel returns cost model built from configuration
func (cfg *Configuration) CostModel() CostModel {
	return CostModel{
		WalkingSpeed:        cfg.WalkingSpeed,
		GradientCoefficient: cfg.GradientCoefficient,
	}
}

// DesignatedKeys parses designated signals
func (cfg *Configuration) DesignatedKeys() ([]EdgeKey, error) {
	keys := make([]EdgeKey, 0, len(cfg.DesignatedSignals))
	for _, s := range cfg.DesignatedSignals {
		key, err := ParseEdgeKey(s)
		if err != nil {
			return nil, errors.Wrap(err, "Can't parse designated signal")
		}
		keys = append(keys, key)
	}
	return keys, nil
}
