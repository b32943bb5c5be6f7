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

// WriteFile writes a file under Root. It declares the filesystem_write effect
// class, so the default confirmation policy always gates it even though its
// own RequiresConfirmation predicate says no.
type WriteFile struct {
	// Root confines writes to a directory. Empty means the process CWD.
	Root string
}

type writeFileParams struct {
	Path    string `mapstructure:"path"`
	Content string `mapstructure:"content"`
	Append  bool   `mapstructure:"append"`
}

func (t WriteFile) Name() string { return "write_file" }

func (t WriteFile) Description() string {
	return "Writes content to a file, creating parent directories as needed."
}

func (t WriteFile) ParameterSchema() *openapi3.Schema {
	return schema.Object(map[string]*openapi3.Schema{
		"path":    schema.String("Path of the file to write, relative to the workspace root."),
		"content": schema.String("Content to write."),
		"append":  schema.Boolean("Append instead of overwrite."),
	}, "path", "content")
}

func (t WriteFile) Validate(args map[string]any) error {
	if err := schema.Validate(t.ParameterSchema(), args); err != nil {
		return err
	}

	var params writeFileParams
	if err := decode(args, &params); err != nil {
		return err
	}
	return t.checkPath(params.Path)
}

func (t WriteFile) RequiresConfirmation(args map[string]any) bool { return false }

func (t WriteFile) Effect() policy.Effect { return policy.EffectFilesystemWrite }

func (t WriteFile) Execute(ctx context.Context, args map[string]any) (any, error) {
	var params writeFileParams
	if err := decode(args, &params); err != nil {
		return nil, err
	}
	if err := t.checkPath(params.Path); err != nil {
		return nil, err
	}

	target := t.resolve(params.Path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("creating parent directories: %w", err)
	}

	if params.Append {
		f, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", params.Path, err)
		}
		defer f.Close()
		if _, err := f.WriteString(params.Content); err != nil {
			return nil, fmt.Errorf("appending to %s: %w", params.Path, err)
		}
	} else {
		if err := os.WriteFile(target, []byte(params.Content), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", params.Path, err)
		}
	}

	return fmt.Sprintf("wrote %d bytes to %s", len(params.Content), params.Path), nil
}

func (t WriteFile) resolve(path string) string {
	if t.Root == "" {
		return path
	}
	return filepath.Join(t.Root, path)
}

func (t WriteFile) checkPath(path string) error {
	if path == "" {
		return fmt.Errorf("path must not be empty")
	}
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return fmt.Errorf("path %q escapes the workspace root", path)
	}
	return nil
}
