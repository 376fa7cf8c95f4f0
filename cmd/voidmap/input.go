package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadMapping reads and decodes a JSON or YAML state file. The format
// follows the file extension; anything that is not .json decodes as YAML
// (which accepts JSON too).
func loadMapping(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var decoded any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &decoded); err != nil {
			return nil, fmt.Errorf("failed to parse %s as JSON: %w", path, err)
		}
		return decoded, nil
	}

	if err := yaml.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse %s as YAML: %w", path, err)
	}
	return decoded, nil
}

// loadInputs loads the current and goal states plus the optional context.
func loadInputs() (pointA, pointB, runContext any, err error) {
	if pointA, err = loadMapping(currentPath); err != nil {
		return nil, nil, nil, err
	}
	if pointB, err = loadMapping(goalPath); err != nil {
		return nil, nil, nil, err
	}
	if contextPath != "" {
		if runContext, err = loadMapping(contextPath); err != nil {
			return nil, nil, nil, err
		}
	}
	return pointA, pointB, runContext, nil
}
