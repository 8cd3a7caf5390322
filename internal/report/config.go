package report

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfig []byte

type Config struct {
	Office     Office   `yaml:"office"`
	Decision   Decision `yaml:"decision"`
	Commission []Member `yaml:"commission"`
	Recipients []string `yaml:"recipients"`
}

type Office struct {
	Lines         []string `yaml:"lines"`
	Certification string   `yaml:"certification"`
	Registration  string   `yaml:"registration"`
	FooterNote    string   `yaml:"footer_note"`
}

type Decision struct {
	// Date is printed next to the page number in the header (Nr. N/<Date>).
	Date        string `yaml:"date"`
	Appointment string `yaml:"appointment"`
	DefaultUAT  string `yaml:"default_uat"`
}

type Member struct {
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
	Position string `yaml:"position"`
}

// LoadConfig reads the report configuration from path, or returns the
// built-in configuration when path is empty.
func LoadConfig(path string) (*Config, error) {
	data := defaultConfig
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read report config: %w", err)
		}
	}

	return parseConfig(data)
}

func parseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse report config: %w", err)
	}

	if len(cfg.Commission) == 0 {
		return nil, fmt.Errorf("report config lists no commission members")
	}

	return &cfg, nil
}
