package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rook-computer/cardkit/internal/logging"
)

const (
	ManifestJSON = "manifest.json"
	ManifestYAML = "manifest.yaml"

	launcherModule = "launcher"
)

// Manifest maps module names to display names.
type Manifest map[string]string

// Scanner builds the menu tree from manifests without loading any app.
type Scanner struct {
	FS     fs.FS
	Root   string
	Logger logging.Logger
}

// Scan is a convenience for Scanner{FS: fsys, Root: root}.Scan().
func Scan(fsys fs.FS, root string) (*Node, error) {
	return Scanner{FS: fsys, Root: root}.Scan()
}

// Scan walks the apps directory. An unreadable root yields an empty tree
// together with the error.
func (s Scanner) Scan() (*Node, error) {
	root := strings.Trim(path.Clean(s.Root), "/")
	if root == "" {
		root = "."
	}
	tree := &Node{Name: "Apps"}
	if s.FS == nil {
		return tree, errors.New("registry: no filesystem")
	}
	if _, err := fs.ReadDir(s.FS, root); err != nil {
		return tree, fmt.Errorf("read apps dir %s: %w", root, err)
	}
	s.scanDir(tree, root, "")
	return tree, nil
}

func (s Scanner) scanDir(node *Node, dir, rel string) {
	logger := logging.OrNoop(s.Logger)
	manifest := s.loadManifest(dir)

	entries, err := fs.ReadDir(s.FS, dir)
	if err != nil {
		logger.Errorf("scan", "cannot read directory %s: %v", dir, err)
		return
	}

	var submenus []*Node
	for _, entry := range entries {
		name := entry.Name()
		if hidden(name) || !entry.IsDir() {
			continue
		}
		subDir := path.Join(dir, name)
		if !s.hasManifest(subDir) {
			continue
		}
		sub := &Node{Name: DisplayName(name), Path: joinRel(rel, name)}
		s.scanDir(sub, subDir, sub.Path)
		submenus = append(submenus, sub)
		logger.Infof("scan", "found submenu %s (%s)", sub.Name, sub.Path)
	}

	var apps []*Node
	for module, display := range manifest {
		if hidden(module) || module == launcherModule {
			continue
		}
		if display == "" {
			display = module
		}
		apps = append(apps, &Node{Name: display, Path: joinRel(rel, module), Module: module})
	}

	sortByName(submenus)
	sortByName(apps)
	node.Children = append(submenus, apps...)
}

func (s Scanner) hasManifest(dir string) bool {
	for _, name := range []string{ManifestJSON, ManifestYAML} {
		if _, err := fs.Stat(s.FS, path.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

func (s Scanner) loadManifest(dir string) Manifest {
	logger := logging.OrNoop(s.Logger)
	for _, name := range []string{ManifestJSON, ManifestYAML} {
		file := path.Join(dir, name)
		data, err := fs.ReadFile(s.FS, file)
		if err != nil {
			continue
		}
		manifest, err := ParseManifest(name, data)
		if err != nil {
			logger.Errorf("scan", "invalid manifest %s: %v", file, err)
			return Manifest{}
		}
		return manifest
	}
	return Manifest{}
}

// ParseManifest decodes a manifest by file name extension.
func ParseManifest(name string, data []byte) (Manifest, error) {
	manifest := Manifest{}
	var err error
	switch path.Ext(name) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &manifest)
	default:
		err = json.Unmarshal(data, &manifest)
	}
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

func joinRel(rel, name string) string {
	if rel == "" {
		return name
	}
	return rel + "/" + name
}

func sortByName(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Name == nodes[j].Name {
			return nodes[i].Path < nodes[j].Path
		}
		return nodes[i].Name < nodes[j].Name
	})
}
