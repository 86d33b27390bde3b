// Package variant loads, validates and looks up experiment variants. Three
// variants are built in; more can be loaded from a directory of YAML files.
package variant

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/entrhq/vanish/pkg/experiment"
	"github.com/entrhq/vanish/pkg/logging"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// DefaultVariant is used when nothing else is configured.
const DefaultVariant = "transparency-probe"

// ErrUnknownVariant is returned when a variant name is not registered.
var ErrUnknownVariant = errors.New("unknown variant")

// Registry holds variants by name. Variants handed out are shared and must be
// treated as read-only.
type Registry struct {
	mu       sync.RWMutex
	variants map[string]*experiment.Variant
	sources  map[string]string
	logger   *logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.MustLogger("variant")
	}
	return &Registry{
		variants: make(map[string]*experiment.Variant),
		sources:  make(map[string]string),
		logger:   logger,
	}
}

// Builtin returns a registry holding only the built-in variants.
func Builtin(logger *logging.Logger) (*Registry, error) {
	r := NewRegistry(logger)
	if err := r.LoadBuiltins(); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadBuiltins registers the embedded variants.
func (r *Registry) LoadBuiltins() error {
	return fs.WalkDir(builtinFS, "builtin", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := builtinFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read builtin %s: %w", path, err)
		}
		v, err := Parse(data)
		if err != nil {
			return fmt.Errorf("builtin %s: %w", path, err)
		}
		return r.Add(v, "builtin:"+filepath.Base(path))
	})
}

// LoadDir registers every *.yaml and *.yml file in dir. A file whose variant
// name is already registered replaces the earlier one.
func (r *Registry) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read variants dir: %w", err)
	}

	loaded := 0
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := r.LoadFile(path); err != nil {
			return loaded, err
		}
		loaded++
	}
	r.logger.Infof("loaded %d variants from %s", loaded, dir)
	return loaded, nil
}

// LoadFile registers the variant in one YAML file.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read variant file: %w", err)
	}
	v, err := Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return r.Add(v, path)
}

// Parse decodes and validates one variant. Unknown keys are rejected so typos
// in stage materials do not silently fall back to opaque.
func Parse(data []byte) (*experiment.Variant, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var v experiment.Variant
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to parse variant YAML: %w", err)
	}
	if err := Validate(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Add validates and registers v. Lint findings are logged, not rejected.
func (r *Registry) Add(v *experiment.Variant, source string) error {
	if err := Validate(v); err != nil {
		return err
	}
	for _, w := range v.Lint() {
		r.logger.Warnf("variant %s: %s", v.Name, w)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.sources[v.Name]; ok {
		r.logger.Infof("variant %s from %s replaces %s", v.Name, source, prev)
	}
	r.variants[v.Name] = v
	r.sources[v.Name] = source
	return nil
}

// Get returns the named variant.
func (r *Registry) Get(name string) (*experiment.Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variants[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
	return v, nil
}

// Source returns where the named variant was loaded from.
func (r *Registry) Source(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources[name]
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.variants))
	for n := range r.variants {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Match returns the variants whose names match a glob pattern such as
// "*-probe", in name order.
func (r *Registry) Match(pattern string) ([]*experiment.Variant, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid variant pattern %q: %w", pattern, err)
	}

	var out []*experiment.Variant
	for _, name := range r.Names() {
		if g.Match(name) {
			v, _ := r.Get(name)
			out = append(out, v)
		}
	}
	return out, nil
}

// Render marshals a variant back to YAML.
func Render(v *experiment.Variant) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to render variant: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
