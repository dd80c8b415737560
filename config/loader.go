package config

import (
	"context"
	_ "embed"
	"fmt"
	"path"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/jmgilman/busybox/errors"
	"github.com/jmgilman/busybox/fs/core"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource []byte

// Issue is one schema violation.
type Issue struct {
	Path    string
	Message string
}

// Loader reads configuration files from a store and checks them against
// the schema.
type Loader struct {
	fs     core.ReadFS
	cueCtx *cue.Context
}

// NewLoader returns a loader reading from fsys.
func NewLoader(fsys core.ReadFS) *Loader {
	return &Loader{
		fs:     fsys,
		cueCtx: cuecontext.New(),
	}
}

// Load reads, validates and decodes the named file. The format follows the
// extension: .yaml and .yml are YAML, .json and .cue are compiled as CUE.
func (l *Loader) Load(ctx context.Context, name string) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, errors.Wrap(err, errors.CodeTimeout, "load config: context cancelled")
	}

	data, err := l.fs.ReadFile(name)
	if err != nil {
		return Config{}, errors.FromFS("read config", name, err)
	}
	return l.LoadBytes(ctx, data, name)
}

// LoadBytes validates and decodes data. filename selects the format and
// appears in error messages.
func (l *Loader) LoadBytes(ctx context.Context, data []byte, filename string) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, errors.Wrap(err, errors.CodeTimeout, "load config: context cancelled")
	}

	var value cue.Value
	switch ext := strings.ToLower(path.Ext(filename)); ext {
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Config{}, errors.WrapWithContext(err, errors.CodeInvalidConfig,
				"failed to parse YAML config", map[string]interface{}{"file": filename})
		}
		if doc == nil {
			doc = map[string]any{}
		}
		value = l.cueCtx.Encode(doc)
	case ".json", ".cue":
		value = l.cueCtx.CompileBytes(data, cue.Filename(filename))
	default:
		return Config{}, errors.Newf(errors.CodeInvalidInput,
			"config %s: unsupported format %q (want .yaml, .yml, .json or .cue)", filename, ext)
	}

	if err := value.Err(); err != nil {
		return Config{}, invalid(filename, "failed to compile config", err)
	}
	return l.decode(value, filename)
}

// Validate checks a configuration built in code, such as the result of
// applying command-line overrides.
func (l *Loader) Validate(c Config) error {
	value := l.cueCtx.Encode(c)
	if err := value.Err(); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to encode config")
	}
	_, err := l.decode(value, "<flags>")
	return err
}

func (l *Loader) decode(value cue.Value, filename string) (Config, error) {
	schema := l.cueCtx.CompileBytes(schemaSource, cue.Filename("schema.cue")).
		LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return Config{}, errors.Wrap(err, errors.CodeInternal, "config schema is invalid")
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true), cue.Final(), cue.All()); err != nil {
		return Config{}, invalid(filename, "config does not match schema", err)
	}

	var c Config
	if err := unified.Decode(&c); err != nil {
		return Config{}, invalid(filename, "failed to decode config", err)
	}
	return c, nil
}

// invalid wraps a CUE error, recording one issue per violation.
func invalid(filename, msg string, err error) errors.PlatformError {
	return errors.WrapWithContext(err, errors.CodeInvalidConfig, msg, map[string]interface{}{
		"file":   filename,
		"issues": Issues(err),
	})
}

// Issues lists the individual violations carried by a CUE error.
func Issues(err error) []Issue {
	var issues []Issue
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		issues = append(issues, Issue{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		})
	}
	return issues
}
