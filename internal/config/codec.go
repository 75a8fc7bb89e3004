package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"circuitpy-sync/pkg/models"
)

func decode(format models.FileFormat, data []byte, cfg *models.Config) error {
	var err error

	switch format {
	case models.FormatJSON:
		err = json.Unmarshal(data, cfg)
	case models.FormatYAML:
		err = yaml.Unmarshal(data, cfg)
	case models.FormatTOML:
		err = toml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported file format: %s", format)
	}

	if err != nil {
		return fmt.Errorf("failed to parse %s file: %w", format, err)
	}
	return nil
}

func encode(format models.FileFormat, cfg *models.Config) ([]byte, error) {
	var output []byte
	var err error

	switch format {
	case models.FormatJSON:
		output, err = json.MarshalIndent(cfg, "", "  ")
	case models.FormatYAML:
		output, err = yaml.Marshal(cfg)
	case models.FormatTOML:
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(cfg)
		output = buf.Bytes()
	default:
		return nil, fmt.Errorf("unsupported file format: %s", format)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s data: %w", format, err)
	}
	return output, nil
}
