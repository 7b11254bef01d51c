package compiler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"
	cueyaml "cuelang.org/go/encoding/yaml"

	"github.com/roach88/launchdeck/internal/queryir"
)

// Root keys of query documents.
const (
	CUERoot  = "query"
	YAMLRoot = "queries"
)

// NamedQuery is one compiled query of a document.
type NamedQuery struct {
	Name        string
	Description string
	Query       queryir.Query
	Pos         token.Pos
}

// IsQueryFile reports whether path has a query document extension.
func IsQueryFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue", ".yaml", ".yml":
		return true
	}
	return false
}

// LoadFile compiles every query in a .cue, .yaml or .yml document, in
// declaration order.
func LoadFile(path string) ([]NamedQuery, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read query document: %w", err)
	}
	return CompileDocument(path, src)
}

// CompileDocument compiles the named queries in src. The file name picks
// the format and appears in error positions.
func CompileDocument(filename string, src []byte) ([]NamedQuery, error) {
	ctx := cuecontext.New()

	var (
		value cue.Value
		root  string
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".cue":
		value = ctx.CompileBytes(src, cue.Filename(filename))
		root = CUERoot
	case ".yaml", ".yml":
		f, err := cueyaml.Extract(filename, src)
		if err != nil {
			return nil, formatCUEError(err)
		}
		value = ctx.BuildFile(f)
		root = YAMLRoot
	default:
		return nil, &CompileError{
			Field:   "document",
			Message: fmt.Sprintf("unsupported document type %q (want .cue, .yaml or .yml)", filepath.Ext(filename)),
		}
	}

	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	rootVal := value.LookupPath(cue.ParsePath(root))
	if !rootVal.Exists() {
		return nil, errorAt(value.Pos(), root, "no queries found (expected top-level %q)", root)
	}

	iter, err := rootVal.Fields()
	if err != nil {
		return nil, errorAt(rootVal.Pos(), root, "must map query names to queries")
	}

	var out []NamedQuery
	for iter.Next() {
		name := iter.Label()
		qv := iter.Value()

		q, err := CompileQuery(qv)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", root, name, err)
		}

		desc, err := optionalString(qv.LookupPath(cue.ParsePath("description")), "description")
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", root, name, err)
		}

		out = append(out, NamedQuery{
			Name:        name,
			Description: desc,
			Query:       q,
			Pos:         qv.Pos(),
		})
	}
	return out, nil
}

// LoadDir compiles every query document under dir, files in lexical
// order. Query names must be unique across files.
func LoadDir(dir string) ([]NamedQuery, error) {
	files, err := FindQueryFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no query documents found in %s", dir)
	}

	var all []NamedQuery
	seen := make(map[string]token.Pos)
	for _, path := range files {
		queries, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		for _, nq := range queries {
			if prev, dup := seen[nq.Name]; dup {
				return nil, errorAt(nq.Pos, "query",
					"duplicate query name %q (first defined at %s)", nq.Name, prev)
			}
			seen[nq.Name] = nq.Pos
			all = append(all, nq)
		}
	}
	return all, nil
}

// FindQueryFiles walks dir and returns every query document path, sorted.
func FindQueryFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsQueryFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan query documents: %w", err)
	}
	slices.Sort(files)
	return files, nil
}

// Find returns the query called name.
func Find(queries []NamedQuery, name string) (NamedQuery, bool) {
	for _, nq := range queries {
		if nq.Name == name {
			return nq, true
		}
	}
	return NamedQuery{}, false
}
