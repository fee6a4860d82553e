package content

import (
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SidebarConfig controls sidebar generation.
type SidebarConfig struct {
	Root          string   // only files below this directory are listed
	Exclude       []string // doublestar patterns relative to Root
	CollapseDepth int      // groups at this depth or deeper start collapsed; 0 never collapses
}

// SidebarItem is either a link or a group of items.
type SidebarItem struct {
	Text      string
	Link      string
	Collapsed bool
	Items     []SidebarItem
}

type sidebarNode struct {
	name     string
	index    *Record
	files    []Record
	children map[string]*sidebarNode
}

// BuildSidebar groups records into a directory tree. Drafts and ignored
// records are left out. Items at each level are sorted by text.
func BuildSidebar(records []Record, cfg SidebarConfig) []SidebarItem {
	root := strings.Trim(cfg.Root, "/")
	tree := &sidebarNode{children: map[string]*sidebarNode{}}
	for i := range records {
		rec := records[i]
		if rec.FrontMatter.Draft || rec.FrontMatter.Ignore {
			continue
		}
		rel := rec.Path
		if root != "" {
			if !strings.HasPrefix(rel, root+"/") {
				continue
			}
			rel = strings.TrimPrefix(rel, root+"/")
		}
		if excluded(rel, cfg.Exclude) {
			continue
		}
		dir, file := path.Split(rel)
		node := tree
		for _, part := range strings.Split(strings.Trim(dir, "/"), "/") {
			if part == "" {
				continue
			}
			child, ok := node.children[part]
			if !ok {
				child = &sidebarNode{name: part, children: map[string]*sidebarNode{}}
				node.children[part] = child
			}
			node = child
		}
		if file == "index.md" {
			node.index = &rec
			continue
		}
		node.files = append(node.files, rec)
	}
	return tree.items(1, cfg.CollapseDepth)
}

func (n *sidebarNode) items(depth, collapseDepth int) []SidebarItem {
	var out []SidebarItem
	for _, rec := range n.files {
		out = append(out, SidebarItem{Text: recordText(rec), Link: rec.URL})
	}
	for _, child := range n.children {
		group := SidebarItem{
			Text:      child.name,
			Collapsed: collapseDepth > 0 && depth >= collapseDepth,
			Items:     child.items(depth+1, collapseDepth),
		}
		if child.index != nil {
			group.Text = recordText(*child.index)
			group.Link = child.index.URL
		}
		out = append(out, group)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Text) < strings.ToLower(out[j].Text)
	})
	return out
}

func recordText(rec Record) string {
	if t := strings.TrimSpace(rec.FrontMatter.Title); t != "" {
		return t
	}
	return strings.TrimSuffix(path.Base(rec.Path), path.Ext(rec.Path))
}

func excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}
