package synchronizer

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/thoreinstein/claudesync/internal/linkfs"
	"github.com/thoreinstein/claudesync/internal/paths"
)

// Category identifies one of the three kinds of linked documents.
type Category string

const (
	CategoryCommand Category = "command"
	CategoryRule    Category = "rule"
	CategorySkill   Category = "skill"
)

// SourceItem is a document or skill directory discovered in the bundle.
type SourceItem struct {
	Category Category
	// DisplayName is the name of the link created in the configuration root.
	DisplayName string
	// ResolvedPath is the absolute path the link points at.
	ResolvedPath string
}

// DiscoverFunc enumerates the source items of one category directory.
// A missing directory yields no items and no error.
type DiscoverFunc func(fsys linkfs.FS, dir string, opts Options) ([]SourceItem, error)

// Descriptor describes how one category is discovered and where it is linked.
type Descriptor struct {
	Category     Category
	SourceSubdir string
	TargetSubdir string
	Discover     DiscoverFunc
}

// Descriptors returns the category descriptors in processing order.
func Descriptors() []Descriptor {
	return []Descriptor{
		{
			Category:     CategoryCommand,
			SourceSubdir: paths.CommandsDir,
			TargetSubdir: paths.CommandsDir,
			Discover:     documentDiscoverer(CategoryCommand),
		},
		{
			Category:     CategoryRule,
			SourceSubdir: paths.RulesDir,
			TargetSubdir: paths.RulesDir,
			Discover:     documentDiscoverer(CategoryRule),
		},
		{
			Category:     CategorySkill,
			SourceSubdir: paths.SkillsDir,
			TargetSubdir: paths.SkillsDir,
			Discover:     discoverSkills,
		},
	}
}

// documentDiscoverer returns a DiscoverFunc for flat document categories:
// every regular file with a recognized extension is one item, named after
// the file.
func documentDiscoverer(category Category) DiscoverFunc {
	return func(fsys linkfs.FS, dir string, opts Options) ([]SourceItem, error) {
		entries, err := readEntries(fsys, dir)
		if err != nil {
			return nil, err
		}

		var items []SourceItem
		for _, entry := range entries {
			name := entry.Name()
			if !hasExtension(opts.Extensions, filepath.Ext(name)) {
				continue
			}
			path := filepath.Join(dir, name)
			info, ok := follow(fsys, path, entry)
			if !ok || !info.Mode().IsRegular() {
				continue
			}
			items = append(items, SourceItem{
				Category:     category,
				DisplayName:  name,
				ResolvedPath: path,
			})
		}
		return items, nil
	}
}

// discoverSkills treats every immediate subdirectory as one skill.
func discoverSkills(fsys linkfs.FS, dir string, opts Options) ([]SourceItem, error) {
	entries, err := readEntries(fsys, dir)
	if err != nil {
		return nil, err
	}

	var items []SourceItem
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, ok := follow(fsys, path, entry)
		if !ok || !info.IsDir() {
			continue
		}
		items = append(items, SourceItem{
			Category:     CategorySkill,
			DisplayName:  TrimSkillSuffix(entry.Name(), opts.SkillSuffix),
			ResolvedPath: ResolveSkillSourcePath(fsys, path, opts.SkillSubdir),
		})
	}
	return items, nil
}

// readEntries lists dir without hidden entries. A missing directory is empty.
func readEntries(fsys linkfs.FS, dir string) ([]fs.FileInfo, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		if linkfs.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return slices.DeleteFunc(entries, func(e fs.FileInfo) bool {
		return strings.HasPrefix(e.Name(), ".")
	}), nil
}

// follow resolves a symlinked entry to the info of its referent.
func follow(fsys linkfs.FS, path string, entry fs.FileInfo) (fs.FileInfo, bool) {
	if !linkfs.IsSymlink(entry) {
		return entry, true
	}
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, false
	}
	return info, true
}

func hasExtension(exts []string, ext string) bool {
	return ext != "" && slices.Contains(exts, ext)
}
