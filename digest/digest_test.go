package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/i18n-sheets/keypath"
	"github.com/teranos/i18n-sheets/table"
)

func grouped() table.Grouped {
	return table.Grouped{
		"account": {
			"ko": keypath.Map{"title": "계정", "menu.logout": "로그아웃"},
			"en": keypath.Map{"title": "Account"},
		},
		"common": {
			"ko": keypath.Map{"ok": "확인"},
			"en": keypath.Map{"ok": "OK"},
		},
	}
}

func TestEntryHashSeparatesFields(t *testing.T) {
	assert.Equal(t, EntryHash("a", "en", "x"), EntryHash("a", "en", "x"))
	assert.NotEqual(t, EntryHash("a.b", "en", "x"), EntryHash("a", "b.en", "x"))
	assert.NotEqual(t, EntryHash("k", "en", "x"), EntryHash("k", "ko", "x"))
	assert.NotEqual(t, EntryHash("k", "en", "x"), EntryHash("k", "en", "y"))
}

func TestEmptyTree(t *testing.T) {
	tree := NewTree()
	assert.Equal(t, Hash{}, tree.Root())
	assert.Zero(t, tree.Size())
	assert.Zero(t, tree.DomainCount())
}

func TestFromGroupedDeterministic(t *testing.T) {
	a := FromGrouped(grouped())
	b := FromGrouped(grouped())

	assert.Equal(t, a.Root(), b.Root())
	assert.Equal(t, 5, a.Size())
	assert.Equal(t, 2, a.DomainCount())
}

func TestInsertOrderIndependent(t *testing.T) {
	h1 := EntryHash("a", "en", "1")
	h2 := EntryHash("b", "en", "2")

	x := NewTree()
	x.Insert("d", h1)
	x.Insert("d", h2)

	y := NewTree()
	y.Insert("d", h2)
	y.Insert("d", h1)
	y.Insert("d", h1)

	assert.Equal(t, x.Root(), y.Root())
	assert.Equal(t, 2, y.Size())
}

func TestDomainNameInHash(t *testing.T) {
	h := EntryHash("a", "en", "1")
	x := NewTree()
	x.Insert("one", h)
	y := NewTree()
	y.Insert("two", h)

	assert.NotEqual(t, x.DomainHashes()["one"], y.DomainHashes()["two"])
}

func TestEmptyDomainIsPresent(t *testing.T) {
	g := table.Grouped{"empty": {"ko": keypath.Map{}, "en": keypath.Map{}}}
	tree := FromGrouped(g)

	assert.Equal(t, 1, tree.DomainCount())
	assert.NotEqual(t, Hash{}, tree.Root())

	drift := tree.Diff(FromGrouped(g).DomainHashes())
	assert.True(t, drift.InSync())
}

func TestDiff(t *testing.T) {
	local := grouped()
	remote := grouped()
	remote["account"]["en"]["title"] = "My account"
	delete(remote, "common")
	remote["errors"] = table.LocaleMaps{"en": keypath.Map{"e404": "Not found"}}
	local["help"] = table.LocaleMaps{"en": keypath.Map{"faq": "FAQ"}}

	drift := FromGrouped(local).Diff(FromGrouped(remote).DomainHashes())

	assert.False(t, drift.InSync())
	assert.Equal(t, []string{"common", "help"}, drift.LocalOnly)
	assert.Equal(t, []string{"errors"}, drift.RemoteOnly)
	assert.Equal(t, []string{"account"}, drift.Divergent)
}

func TestDiffInSync(t *testing.T) {
	drift := FromGrouped(grouped()).Diff(FromGrouped(grouped()).DomainHashes())
	assert.True(t, drift.InSync())
	assert.Empty(t, drift.RemoteOnly)
}

func TestShort(t *testing.T) {
	h := EntryHash("a", "en", "1")
	require.Len(t, HexHash(h), 64)
	assert.Equal(t, HexHash(h)[:12], Short(h))
}
