// Package config loads YAML configuration files. Files are rendered as Go
// templates with the process environment as data, so deployments can inject
// secrets without rewriting the file.
package config

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v2"
)

// FromFile reads the YAML file at filePath into cfg. Template actions in the
// file see the environment as a map, e.g. {{.DATABASE_PASSWORD}}, and plain
// $VAR references are expanded as well.
func FromFile(filePath string, cfg interface{}) error {
	envMap := make(map[string]string)
	for _, envStr := range os.Environ() {
		pair := strings.SplitN(envStr, "=", 2)
		envMap[pair[0]] = pair[1]
	}

	t, err := template.ParseFiles(filePath)
	if err != nil {
		return fmt.Errorf("parse config template: %w", err)
	}
	rendered := &strings.Builder{}
	if err := t.Execute(rendered, envMap); err != nil {
		return fmt.Errorf("render config template: %w", err)
	}

	content := os.ExpandEnv(rendered.String())
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
