package content

import "testing"

func sidebarRecords() []Record {
	rec := func(p, title string) Record {
		return Record{Path: p, URL: PathToURL(p, true), FrontMatter: FrontMatter{Title: title}}
	}
	draft := rec("posts/go/draft.md", "Draft")
	draft.FrontMatter.Draft = true
	return []Record{
		rec("posts/zeta.md", "Zeta"),
		rec("posts/alpha.md", ""),
		rec("posts/go/index.md", "Go Notes"),
		rec("posts/go/channels.md", "Channels"),
		rec("posts/go/deep/inner.md", "Inner"),
		rec("posts/private/secret.md", "Secret"),
		rec("about.md", "About"),
		draft,
	}
}

func TestBuildSidebar(t *testing.T) {
	items := BuildSidebar(sidebarRecords(), SidebarConfig{
		Root:          "posts",
		Exclude:       []string{"private/**"},
		CollapseDepth: 2,
	})
	if len(items) != 3 {
		t.Fatalf("top-level items = %d, want 3: %+v", len(items), items)
	}
	if items[0].Text != "alpha" || items[0].Link != "/posts/alpha" {
		t.Errorf("items[0] = %+v, want alpha falling back to file name", items[0])
	}
	group := items[1]
	if group.Text != "Go Notes" || group.Link != "/posts/go/" {
		t.Errorf("group = %q %q, want index title and link", group.Text, group.Link)
	}
	if group.Collapsed {
		t.Error("depth-1 group should be expanded with collapse depth 2")
	}
	if len(group.Items) != 2 {
		t.Fatalf("group items = %d, want 2 (draft skipped): %+v", len(group.Items), group.Items)
	}
	if group.Items[0].Text != "Channels" {
		t.Errorf("group.Items[0] = %q, want Channels", group.Items[0].Text)
	}
	deep := group.Items[1]
	if deep.Text != "deep" || !deep.Collapsed {
		t.Errorf("deep group = %+v, want collapsed group named deep", deep)
	}
	if items[2].Text != "Zeta" {
		t.Errorf("items[2] = %q, want Zeta", items[2].Text)
	}
}

func TestBuildSidebarNoCollapse(t *testing.T) {
	items := BuildSidebar(sidebarRecords(), SidebarConfig{})
	for _, it := range items {
		if it.Collapsed {
			t.Errorf("%q collapsed with collapse depth 0", it.Text)
		}
	}
}
