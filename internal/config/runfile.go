package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/copyleftdev/amosa/internal/optimization/amosa"
	"github.com/copyleftdev/amosa/internal/optimization/problems"
)

// RunFile is the YAML description of a single optimization run.
//
//	amosa:
//	  archive_hard_limit: 20
//	  seed: 7
//	problem:
//	  name: zdt1
//	  options:
//	    variables: 10
//	output: front.csv
type RunFile struct {
	AMOSA   amosa.Config `yaml:"amosa"`
	Problem struct {
		Name    string           `yaml:"name"`
		Options problems.Options `yaml:"options"`
	} `yaml:"problem"`
	Output string `yaml:"output"`
}

// LoadRunFile reads a run file. AMOSA parameters missing from the file keep
// their defaults.
func LoadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	return ParseRunFile(data)
}

// ParseRunFile decodes a run file, rejecting unknown fields.
func ParseRunFile(data []byte) (*RunFile, error) {
	rf := &RunFile{AMOSA: amosa.DefaultConfig()}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(rf); err != nil {
		return nil, fmt.Errorf("parsing run file: %w", err)
	}
	if rf.Problem.Name == "" {
		return nil, fmt.Errorf("run file: problem name is required")
	}
	if err := rf.AMOSA.Validate(); err != nil {
		return nil, err
	}
	return rf, nil
}
