// Package loader reads service descriptors and reads and writes compiled
// CloudFormation templates.
package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apple/pkl-go/pkl"
	"github.com/picklr-io/slsloop/internal/ir"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for descriptor files of unknown type.
var ErrUnsupportedFormat = errors.New("unsupported descriptor format")

// ServiceFiles are the descriptor names looked up in a project directory.
var ServiceFiles = []string{"serverless.yml", "serverless.yaml", "serverless.json", "serverless.pkl"}

// Loader resolves descriptor and template paths relative to a project directory.
type Loader struct {
	projectDir string
}

func New(projectDir string) *Loader {
	return &Loader{
		projectDir: projectDir,
	}
}

// Path resolves p against the project directory.
func (l *Loader) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(l.projectDir, p)
}

// FindService returns the first descriptor file present in the project directory.
func (l *Loader) FindService() (string, error) {
	for _, name := range ServiceFiles {
		path := l.Path(name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no service descriptor found in %s (looked for %s)", l.projectDir, strings.Join(ServiceFiles, ", "))
}

// LoadService reads a service descriptor. YAML and JSON files are decoded
// directly; PKL modules are evaluated first.
func (l *Loader) LoadService(ctx context.Context, path string) (*ir.Service, error) {
	path = l.Path(path)

	var svc ir.Service
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml", ".json":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read service file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &svc); err != nil {
			return nil, fmt.Errorf("failed to parse service file %s: %w", path, err)
		}
	case ".pkl":
		if err := evaluatePkl(ctx, path, &svc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if svc.Provider == nil || svc.Provider.Name == "" {
		return nil, fmt.Errorf("service file %s: provider.name is required", path)
	}
	if svc.Functions == nil {
		svc.Functions = make(map[string]*ir.Function)
	}
	return &svc, nil
}

func evaluatePkl(ctx context.Context, path string, out *ir.Service) error {
	evaluator, err := pkl.NewEvaluator(ctx, pkl.PreconfiguredOptions)
	if err != nil {
		return fmt.Errorf("failed to create PKL evaluator: %w", err)
	}
	defer evaluator.Close()

	if err := evaluator.EvaluateModule(ctx, pkl.FileSource(path), out); err != nil {
		return fmt.Errorf("failed to evaluate service file %s: %w", path, err)
	}
	return nil
}

// LoadTemplate reads a compiled CloudFormation template.
func (l *Loader) LoadTemplate(path string) (*ir.Template, error) {
	path = l.Path(path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}

	var tpl ir.Template
	if err := json.Unmarshal(raw, &tpl); err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}
	if tpl.Resources == nil {
		tpl.Resources = make(map[string]*ir.Resource)
	}
	return &tpl, nil
}

// WriteTemplate writes tpl as indented JSON. The file is replaced atomically
// and keeps its permissions; new files are created 0644.
func (l *Loader) WriteTemplate(path string, tpl *ir.Template) error {
	path = l.Path(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create template directory: %w", err)
	}

	data, err := EncodeTemplate(tpl)
	if err != nil {
		return err
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set mode on %s: %w", tmp.Name(), err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write template %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write template %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace template %s: %w", path, err)
	}
	return nil
}

// EncodeTemplate renders tpl the way the host writes templates: two-space
// indented JSON without HTML escaping.
func EncodeTemplate(tpl *ir.Template) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tpl); err != nil {
		return nil, fmt.Errorf("failed to encode template: %w", err)
	}
	return buf.Bytes(), nil
}
