package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	oerrors "github.com/opmodel/refgraph/internal/errors"
)

// clientReferenceSections are flattened one level deeper when comparing.
var clientReferenceSections = []string{"clientModules", "ssrModuleMapping", "entryCSSFiles"}

// Modified is an entry present in both manifests with different values.
type Modified struct {
	Key  string
	Old  any
	New  any
	Diff string
}

// Differ renders the difference of two entry values. An empty result means
// the values are equivalent.
type Differ func(old, new any) (string, error)

// Changes is the entry-level difference of two manifests.
type Changes struct {
	Added    []string
	Removed  []string
	Modified []Modified
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Modified) == 0
}

// Entries decodes a manifest into comparable entries. Client reference
// manifests are flattened so each module export is one entry, keyed
// "<section>:<key>".
func Entries(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	if _, ok := doc["clientModules"]; !ok {
		return doc, nil
	}

	entries := make(map[string]any)
	for _, section := range clientReferenceSections {
		values, _ := doc[section].(map[string]any)
		for k, v := range values {
			entries[section+":"+k] = v
		}
	}
	return entries, nil
}

// ReadEntries reads the manifest rel below dir. A missing file has no entries.
func ReadEntries(dir, rel string) (map[string]any, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if errors.Is(err, os.ErrNotExist) {
		return map[string]any{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", rel, err)
	}
	entries, err := Entries(data)
	if err != nil {
		return nil, true, oerrors.NewValidationError(err.Error(), filepath.Join(dir, rel), "", "Rebuild the manifests with refgraph build")
	}
	return entries, true, nil
}

// Compare returns the changes from old to new with keys in sorted order.
// An entry present in both is modified when diff reports a difference.
func Compare(old, new map[string]any, diff Differ) (Changes, error) {
	var c Changes
	for _, k := range sortedKeys(new) {
		prev, ok := old[k]
		if !ok {
			c.Added = append(c.Added, k)
			continue
		}
		d, err := diff(prev, new[k])
		if err != nil {
			return Changes{}, fmt.Errorf("comparing %s: %w", k, err)
		}
		if d != "" {
			c.Modified = append(c.Modified, Modified{Key: k, Old: prev, New: new[k], Diff: d})
		}
	}
	for _, k := range sortedKeys(old) {
		if _, ok := new[k]; !ok {
			c.Removed = append(c.Removed, k)
		}
	}
	return c, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
