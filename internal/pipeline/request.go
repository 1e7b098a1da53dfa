package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RequestFile is the on-disk form of an analysis request.
type RequestFile struct {
	Persona  string `yaml:"persona"`
	Job      string `yaml:"job_to_be_done"`
	InputDir string `yaml:"input_dir"`
}

// LoadRequest reads a YAML request file.
func LoadRequest(path string) (RequestFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RequestFile{}, fmt.Errorf("read request file: %w", err)
	}
	var rf RequestFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return RequestFile{}, fmt.Errorf("parse request file %s: %w", path, err)
	}
	return rf, nil
}

// Merge overlays non-empty values from o onto rf.
func (rf RequestFile) Merge(o RequestFile) RequestFile {
	if o.Persona != "" {
		rf.Persona = o.Persona
	}
	if o.Job != "" {
		rf.Job = o.Job
	}
	if o.InputDir != "" {
		rf.InputDir = o.InputDir
	}
	return rf
}
