package requests

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/brettbedarf/foldertree"
	"github.com/brettbedarf/foldertree/internal/util"
)

// shared instance, validator caches struct info
var validate = validator.New()

// UnmarshalCommand decodes and validates a single JSON command
func UnmarshalCommand(data []byte) (*foldertree.CommandRequest, error) {
	var dto CommandDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, err
	}
	return ConvertCommandDTO(dto)
}

// ConvertCommandDTO validates dto and converts it with defaults applied
func ConvertCommandDTO(dto CommandDTO) (*foldertree.CommandRequest, error) {
	if err := validate.Struct(dto); err != nil {
		return nil, fmt.Errorf("invalid %q command: %w", dto.Type, err)
	}
	return &foldertree.CommandRequest{
		ID:   util.ValueOrDefault(dto.ID, uuid.New().String()),
		Type: dto.Type,
		Path: dto.Path,
		Dest: dto.Dest,
		Key:  dto.Key,
	}, nil
}

// ParseScript decodes a command script in the given format ("json", "yaml"
// or "yml"). Invalid commands are skipped; the returned error joins the
// reasons for every skipped command, so callers may still apply the rest.
func ParseScript(data []byte, format string) ([]foldertree.CommandRequest, error) {
	dtos, err := decodeScript(data, strings.ToLower(format))
	if err != nil {
		return nil, err
	}

	cmds := make([]foldertree.CommandRequest, 0, len(dtos))
	var errs []error
	for i, dto := range dtos {
		req, err := ConvertCommandDTO(dto)
		if err != nil {
			errs = append(errs, fmt.Errorf("command %d: %w", i, err))
			continue
		}
		cmds = append(cmds, *req)
	}
	return cmds, errors.Join(errs...)
}

func decodeScript(data []byte, format string) ([]CommandDTO, error) {
	switch format {
	case "json":
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '{' {
			var doc ScriptDTO
			if err := json.Unmarshal(trimmed, &doc); err != nil {
				return nil, fmt.Errorf("failed to parse JSON script: %w", err)
			}
			return doc.Commands, nil
		}
		var dtos []CommandDTO
		if err := json.Unmarshal(trimmed, &dtos); err != nil {
			return nil, fmt.Errorf("failed to parse JSON script: %w", err)
		}
		return dtos, nil

	case "yaml", "yml":
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, fmt.Errorf("failed to parse YAML script: %w", err)
		}
		if len(node.Content) == 0 {
			return nil, nil
		}
		doc := node.Content[0]
		if doc.Kind == yaml.MappingNode {
			var script ScriptDTO
			if err := doc.Decode(&script); err != nil {
				return nil, fmt.Errorf("failed to parse YAML script: %w", err)
			}
			return script.Commands, nil
		}
		var dtos []CommandDTO
		if err := doc.Decode(&dtos); err != nil {
			return nil, fmt.Errorf("failed to parse YAML script: %w", err)
		}
		return dtos, nil

	default:
		return nil, fmt.Errorf("unsupported script format: %s (supported: json, yaml, yml)", format)
	}
}

// LoadScript reads the command script at path; the format follows the file
// extension
func LoadScript(path string) ([]foldertree.CommandRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	return ParseScript(data, format)
}
