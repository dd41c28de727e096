// Package manifest renders declarative manifest templates and verifies that
// the fixed set of manifest files exists before a deployment starts.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Render reads the manifest template at path and substitutes its
// placeholders from values. Templates use Go template syntax with sprig
// functions; an unresolved placeholder is an error rather than an empty
// substitution, so a half-rendered manifest can never be applied.
func Render(path string, values map[string]string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %q: %w", path, err)
	}

	tmpl, err := template.New(filepath.Base(path)).
		Funcs(sprig.FuncMap()).
		Option("missingkey=error").
		Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %q: %w", path, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, values); err != nil {
		return nil, fmt.Errorf("rendering manifest %q: %w", path, err)
	}
	return buf.Bytes(), nil
}

// VerifyPrereqs checks that every listed manifest file exists, reporting all
// missing paths in one error so the operator fixes them in one pass.
func VerifyPrereqs(paths ...string) error {
	var missing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required manifest files: %s", strings.Join(missing, ", "))
	}
	return nil
}
