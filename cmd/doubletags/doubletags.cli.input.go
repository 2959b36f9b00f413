package main

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// readInput reads content from a file or stdin
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(path)
}

// writeOutput writes content to a file or stdout
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == FlagDefaultOutput {
		_, err := stdout.Write(data)
		return err
	}

	return os.WriteFile(path, data, FilePermissions)
}

// loadData reads the render view from a JSON string or a JSON/YAML file.
// With neither given the view is empty.
func loadData(jsonStr, filePath string) (map[string]any, error) {
	var result map[string]any

	switch {
	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		ext := strings.ToLower(filepath.Ext(filePath))
		if ext == DataExtYAML || ext == DataExtYML {
			if err := yaml.Unmarshal(data, &result); err != nil {
				return nil, err
			}
		} else if err := json.Unmarshal(data, &result); err != nil {
			return nil, err
		}
	case jsonStr != "":
		if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
			return nil, err
		}
	default:
		return make(map[string]any), nil
	}

	if result == nil {
		return nil, errors.New(ErrMsgDataNotMapping)
	}
	return result, nil
}
