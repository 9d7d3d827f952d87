package project

import (
	"errors"
	"path"
	"strings"

	"weave/internal/source"
)

// Ext is the IDL source extension.
const Ext = ".wv"

// ImportMeta is one `import "..."` clause as written, with its resolved
// file path (empty while unresolved).
type ImportMeta struct {
	Path     string
	Resolved string
	Span     source.Span
}

// FileMeta is what the import graph needs to know about one IDL file.
type FileMeta struct {
	Path        string // нормализованный путь: "a/b.wv"
	Span        source.Span
	Imports     []ImportMeta
	ContentHash Digest // хеш содержимого файла (из FileSet)
	Hash        Digest // агрегированный хеш с учётом зависимостей
}

// NormalizePath приводит путь файла к каноническому виду "a/b.wv":
// прямые слэши, без "." и пустых сегментов. ".." допускается только
// внутри пути и не может выйти за корень.
func NormalizePath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" {
		return "", errors.New("empty path")
	}
	abs := strings.HasPrefix(p, "/")
	var out []string
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) == 0 || out[len(out)-1] == ".." {
				if abs {
					return "", errors.New("path escapes root")
				}
				out = append(out, "..")
				continue
			}
			out = out[:len(out)-1]
		default:
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "", errors.New("invalid path")
	}
	joined := strings.Join(out, "/")
	if abs {
		joined = "/" + joined
	}
	return joined, nil
}

// ImportCandidates lists the files an import written in from may refer to,
// in lookup order: relative to the importing file, then each source root.
func ImportCandidates(from, imp string, roots []string) []string {
	imp = strings.ReplaceAll(imp, "\\", "/")
	if path.Ext(imp) == "" {
		imp += Ext
	}
	var out []string
	add := func(p string) {
		if n, err := NormalizePath(p); err == nil {
			for _, have := range out {
				if have == n {
					return
				}
			}
			out = append(out, n)
		}
	}
	if strings.HasPrefix(imp, "/") {
		add(imp)
		return out
	}
	add(path.Join(path.Dir(strings.ReplaceAll(from, "\\", "/")), imp))
	for _, r := range roots {
		add(path.Join(strings.ReplaceAll(r, "\\", "/"), imp))
	}
	return out
}
