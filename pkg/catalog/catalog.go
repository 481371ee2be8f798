/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package catalog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/deploy-constraints/pkg/component"
	"github.com/NVIDIA/deploy-constraints/pkg/defaults"
	cerrors "github.com/NVIDIA/deploy-constraints/pkg/errors"
	"github.com/NVIDIA/deploy-constraints/pkg/role"
	"github.com/NVIDIA/deploy-constraints/pkg/settings"
)

// Kind names a catalog document.
type Kind string

const (
	KindRoles      Kind = "roles"
	KindComponents Kind = "components"
	KindSettings   Kind = "settings"
)

// Kinds lists every catalog document in load order.
var Kinds = []Kind{KindRoles, KindComponents, KindSettings}

// File returns the document's file name.
func (k Kind) File() string {
	return string(k) + ".yaml"
}

// SourceEmbedded is the Source of the built-in catalog.
const SourceEmbedded = "embedded"

var (
	//go:embed data/*.yaml
	dataFS embed.FS

	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Catalog bundles the static role, component and settings definitions.
type Catalog struct {
	Source      string             `json:"source" yaml:"source"`
	Roles       *role.Catalog      `json:"-" yaml:"-"`
	Components  *component.Catalog `json:"-" yaml:"-"`
	Settings    *settings.Catalog  `json:"-" yaml:"-"`
	Diagnostics []Diagnostic       `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Diagnostic reports a reference to an id that does not exist. Such references
// are tolerated and treated as null during evaluation.
type Diagnostic struct {
	Kind       Kind   `json:"kind" yaml:"kind"`
	Subject    string `json:"subject" yaml:"subject"`
	Reference  string `json:"reference" yaml:"reference"`
	Relation   string `json:"relation" yaml:"relation"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// String renders the diagnostic for humans.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s %q: %s references unknown %q", d.Kind, d.Subject, d.Relation, d.Reference)
	if d.Suggestion != "" {
		s += fmt.Sprintf(" (did you mean %q?)", d.Suggestion)
	}
	return s
}

// Default returns the embedded catalog. It is parsed once and shared; callers
// must not mutate it.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(dataFS, "data")
		if err != nil {
			defaultErr = err
			return
		}
		defaultCatalog, defaultErr = load(context.Background(), sub, nil, SourceEmbedded)
	})
	if defaultErr != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeInternal, "failed to load embedded catalog", defaultErr)
	}
	if defaultCatalog == nil {
		return nil, cerrors.New(cerrors.ErrCodeInternal, "catalog not initialized")
	}
	return defaultCatalog, nil
}

// Open returns the catalog in dir, or the embedded default when dir is empty.
func Open(ctx context.Context, dir string) (*Catalog, error) {
	if dir == "" {
		return Default()
	}
	ctx, cancel := context.WithTimeout(ctx, defaults.CatalogLoadTimeout)
	defer cancel()
	return LoadDir(ctx, dir)
}

// LoadDir loads a catalog from dir. Documents missing from dir fall back to the
// embedded ones.
func LoadDir(ctx context.Context, dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeNotFound, fmt.Sprintf("catalog directory %q", dir), err)
	}
	if !info.IsDir() {
		return nil, cerrors.New(cerrors.ErrCodeInvalidRequest, fmt.Sprintf("%q is not a directory", dir))
	}
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeInternal, "embedded catalog", err)
	}
	return load(ctx, os.DirFS(dir), sub, dir)
}

// Load reads every document from fsys and builds a catalog.
func Load(ctx context.Context, fsys fs.FS, source string) (*Catalog, error) {
	return load(ctx, fsys, nil, source)
}

func load(ctx context.Context, fsys, fallback fs.FS, source string) (*Catalog, error) {
	start := time.Now()
	docs := make([][]byte, len(Kinds))

	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range Kinds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, kind.File())
			if errors.Is(err, fs.ErrNotExist) && fallback != nil {
				slog.Debug("catalog document not found, using embedded", "kind", kind, "source", source)
				data, err = fs.ReadFile(fallback, kind.File())
			}
			if err != nil {
				return cerrors.Wrap(cerrors.ErrCodeNotFound, fmt.Sprintf("read %s", kind.File()), err)
			}
			docs[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		catalogLoadTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	c, err := Parse(docs[0], docs[1], docs[2])
	if err != nil {
		catalogLoadTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	c.Source = source

	catalogLoadTotal.WithLabelValues("success").Inc()
	catalogLoadDuration.Observe(time.Since(start).Seconds())
	slog.Debug("catalog loaded", "source", source,
		"roles", c.Roles.Len(), "components", len(c.Components.IDs()), "settings", c.Settings.Len(),
		"diagnostics", len(c.Diagnostics))
	return c, nil
}

// Parse validates the three documents against their schemas and builds a catalog.
func Parse(roles, components, settingsDoc []byte) (*Catalog, error) {
	docs := map[Kind][]byte{KindRoles: roles, KindComponents: components, KindSettings: settingsDoc}
	for _, kind := range Kinds {
		if err := ValidateDocument(kind, docs[kind]); err != nil {
			return nil, err
		}
	}

	var rs []*role.Role
	if err := yaml.Unmarshal(roles, &rs); err != nil {
		return nil, decodeError(KindRoles, err)
	}
	rc, err := role.NewCatalog(rs)
	if err != nil {
		return nil, decodeError(KindRoles, err)
	}

	var cs []*component.Component
	if err := yaml.Unmarshal(components, &cs); err != nil {
		return nil, decodeError(KindComponents, err)
	}
	cc, err := component.NewCatalog(cs)
	if err != nil {
		return nil, decodeError(KindComponents, err)
	}

	var gs []*settings.Group
	if err := yaml.Unmarshal(settingsDoc, &gs); err != nil {
		return nil, decodeError(KindSettings, err)
	}
	sc, err := settings.NewCatalog(gs)
	if err != nil {
		return nil, decodeError(KindSettings, err)
	}

	c := &Catalog{Roles: rc, Components: cc, Settings: sc}
	c.Diagnostics = diagnose(rc, cc)
	return c, nil
}

func decodeError(kind Kind, err error) error {
	return cerrors.WrapWithContext(cerrors.ErrCodeInvalidRequest, fmt.Sprintf("invalid %s document", kind), err,
		map[string]any{"kind": string(kind)})
}

func diagnose(rc *role.Catalog, cc *component.Catalog) []Diagnostic {
	var out []Diagnostic

	roleNames := rc.Names()
	for _, u := range rc.Unknown {
		out = append(out, Diagnostic{
			Kind:       KindRoles,
			Subject:    u.Role,
			Reference:  u.Conflict,
			Relation:   "conflicts",
			Suggestion: Suggest(u.Conflict, roleNames),
		})
	}

	ids := cc.IDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	for _, u := range cc.Unknown {
		out = append(out, Diagnostic{
			Kind:       KindComponents,
			Subject:    string(u.Component),
			Reference:  u.Reference,
			Relation:   u.Kind,
			Suggestion: Suggest(u.Reference, names),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Subject < out[j].Subject
	})
	return out
}
