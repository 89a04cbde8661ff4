package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed messages/*.json
var embeddedBundles embed.FS

// ErrBundleNotFound is returned by Load for locales outside Supported.
var ErrBundleNotFound = errors.New("i18n: bundle not found")

// Loader holds every parsed bundle. It is built once at startup and is
// read-only afterwards, so it is safe for concurrent use.
type Loader struct {
	bundles map[string]map[string]string
}

// NewLoader parses the embedded bundles.
func NewLoader() (*Loader, error) {
	return LoadFromFS(embeddedBundles)
}

// LoadFromFS parses messages/<locale>.json from fsys. Every Supported
// locale must have a bundle and the Default bundle must be present.
func LoadFromFS(fsys fs.FS) (*Loader, error) {
	paths, err := fs.Glob(fsys, "messages/*.json")
	if err != nil {
		return nil, fmt.Errorf("glob bundles: %w", err)
	}
	sort.Strings(paths)

	l := &Loader{bundles: make(map[string]map[string]string, len(paths))}
	for _, p := range paths {
		locale := strings.TrimSuffix(path.Base(p), ".json")
		if !IsSupported(locale) {
			return nil, fmt.Errorf("bundle %s: unsupported locale %q", p, locale)
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read bundle %s: %w", p, err)
		}
		var tree map[string]any
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("parse bundle %s: %w", p, err)
		}
		flat := make(map[string]string)
		flatten("", tree, flat)
		l.bundles[locale] = flat
	}
	for _, code := range Supported {
		if _, ok := l.bundles[code]; !ok {
			return nil, fmt.Errorf("missing bundle for locale %q", code)
		}
	}
	return l, nil
}

// flatten turns {"nav":{"home":"Home"}} into {"nav.home":"Home"}. Non-string
// leaves are formatted with %v.
func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch t := v.(type) {
		case map[string]any:
			flatten(key, t, out)
		case string:
			out[key] = t
		case nil:
		default:
			out[key] = fmt.Sprintf("%v", t)
		}
	}
}

// Load returns the messages for locale. Keys missing from a partial bundle
// resolve through the Default bundle.
func (l *Loader) Load(locale string) (Messages, error) {
	b, ok := l.bundles[locale]
	if !ok || !IsSupported(locale) {
		return Messages{}, fmt.Errorf("%w: %q", ErrBundleNotFound, locale)
	}
	m := Messages{Locale: locale, msgs: b}
	if locale != Default {
		m.fallback = l.bundles[Default]
	}
	return m, nil
}

// MustLoad is Load for locales known to be supported (e.g. already resolved
// by the middleware). It falls back to Default instead of failing.
func (l *Loader) MustLoad(locale string) Messages {
	m, err := l.Load(locale)
	if err != nil {
		m, _ = l.Load(Default)
	}
	return m
}

// Messages is an immutable view of one locale's translations.
type Messages struct {
	Locale   string
	msgs     map[string]string
	fallback map[string]string
}

// T returns the translation for key, the Default translation when the
// locale lacks it, or key itself when neither has it.
func (m Messages) T(key string) string {
	if v, ok := m.msgs[key]; ok {
		return v
	}
	if v, ok := m.fallback[key]; ok {
		return v
	}
	return key
}

// Tf is T with "{name}" placeholders replaced from pairs (name, value, ...).
func (m Messages) Tf(key string, pairs ...string) string {
	s := m.T(key)
	if len(pairs) < 2 {
		return s
	}
	args := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		args = append(args, "{"+pairs[i]+"}", pairs[i+1])
	}
	return strings.NewReplacer(args...).Replace(s)
}

// Has reports whether the locale bundle itself (without fallback) defines key.
func (m Messages) Has(key string) bool {
	_, ok := m.msgs[key]
	return ok
}
