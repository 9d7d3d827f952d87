package dag

import (
	"sort"

	"weave/internal/project"
)

type NodeID uint32

type Index struct {
	NameToID map[string]NodeID
	IDToName []string
}

// BuildIndex собирает уникальные пути (файлы и их разрешённые импорты),
// сортирует и раздаёт ID по порядку.
func BuildIndex(metas []project.FileMeta) Index {
	uniq := make(map[string]struct{}, len(metas))
	for _, meta := range metas {
		if meta.Path != "" {
			uniq[meta.Path] = struct{}{}
		}
		for _, dep := range meta.Imports {
			if dep.Resolved == "" {
				continue
			}
			uniq[dep.Resolved] = struct{}{}
		}
	}

	paths := make([]string, 0, len(uniq))
	for path := range uniq {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	nameToID := make(map[string]NodeID, len(paths))
	for i, path := range paths {
		nameToID[path] = NodeID(i)
	}

	return Index{
		NameToID: nameToID,
		IDToName: paths,
	}
}
