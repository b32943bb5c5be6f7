package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dodgeblaster/orange-agent/pkg/policy"
	"github.com/dodgeblaster/orange-agent/pkg/schema"
	"github.com/getkin/kin-openapi/openapi3"
)

// ReadFile reads a file relative to Root. Read-only, never gated by default.
type ReadFile struct {
	// Root confines reads to a directory. Empty means the process CWD.
	Root string
}

type readFileParams struct {
	Path     string `mapstructure:"path"`
	MaxBytes int    `mapstructure:"max_bytes"`
}

func (t ReadFile) Name() string { return "read_file" }

func (t ReadFile) Description() string {
	return "Reads a UTF-8 text file and returns its contents."
}

func (t ReadFile) ParameterSchema() *openapi3.Schema {
	return schema.Object(map[string]*openapi3.Schema{
		"path":      schema.String("Path of the file to read, relative to the workspace root."),
		"max_bytes": schema.Integer("Optional cap on returned bytes."),
	}, "path")
}

func (t ReadFile) Validate(args map[string]any) error {
	if err := schema.Validate(t.ParameterSchema(), args); err != nil {
		return err
	}

	var params readFileParams
	if err := decode(args, &params); err != nil {
		return err
	}
	return t.checkPath(params.Path)
}

func (t ReadFile) RequiresConfirmation(args map[string]any) bool { return false }

func (t ReadFile) Effect() policy.Effect { return policy.EffectReadOnly }

func (t ReadFile) Execute(ctx context.Context, args map[string]any) (any, error) {
	var params readFileParams
	if err := decode(args, &params); err != nil {
		return nil, err
	}
	if err := t.checkPath(params.Path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(t.resolve(params.Path))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", params.Path, err)
	}
	if params.MaxBytes > 0 && len(data) > params.MaxBytes {
		data = data[:params.MaxBytes]
	}
	return string(data), nil
}

func (t ReadFile) resolve(path string) string {
	if t.Root == "" {
		return path
	}
	return filepath.Join(t.Root, path)
}

// checkPath rejects escapes from the workspace root.
func (t ReadFile) checkPath(path string) error {
	if path == "" {
		return fmt.Errorf("path must not be empty")
	}
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return fmt.Errorf("path %q escapes the workspace root", path)
	}
	return nil
}
