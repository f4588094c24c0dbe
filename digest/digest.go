// Package digest computes content digests of translation tables so two
// representations (local files and the sheet) can be compared without
// shipping the rows around.
//
// The digest is a two-level Merkle tree:
//
//	Root
//	└── Domain
//	    └── Entry (key, locale, value)
//
// Entry hashes are order independent, so two tables with the same entries in
// a different row order produce the same root.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	gosync "sync"

	"github.com/samber/lo"

	"github.com/teranos/i18n-sheets/table"
)

// Hash is a SHA-256 digest.
type Hash = [32]byte

// EntryHash computes the digest of one translation: a key's value in one locale.
func EntryHash(key, locale, value string) Hash {
	h := sha256.New()
	// Separators keep ("a.b", "c") and ("a", "b.c") apart
	h.Write([]byte("k:"))
	h.Write([]byte(key))
	h.Write([]byte("\x00l:"))
	h.Write([]byte(locale))
	h.Write([]byte("\x00v:"))
	h.Write([]byte(value))

	var out Hash
	h.Sum(out[:0])
	return out
}

// Tree is an in-memory Merkle tree of entry hashes grouped by domain.
type Tree struct {
	mu      gosync.Mutex
	domains map[string]*domain
	dirty   bool
	root    Hash
}

type domain struct {
	name    string
	entries map[Hash]struct{}
	dirty   bool
	hash    Hash
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{domains: make(map[string]*domain)}
}

// FromGrouped builds the tree of a decoded table. Domains without entries are
// still part of the tree.
func FromGrouped(g table.Grouped) *Tree {
	t := NewTree()
	for name, byLocale := range g {
		t.AddDomain(name)
		for locale, entries := range byLocale {
			for key, value := range entries {
				t.Insert(name, EntryHash(key, locale, value))
			}
		}
	}
	return t
}

// AddDomain makes sure the domain exists, even if it never gets an entry.
func (t *Tree) AddDomain(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.domain(name)
}

// Insert adds an entry hash under the domain. The root is recomputed lazily.
func (t *Tree) Insert(name string, entry Hash) {
	t.mu.Lock()
	defer t.mu.Unlock()

	d := t.domain(name)
	if _, exists := d.entries[entry]; exists {
		return
	}
	d.entries[entry] = struct{}{}
	d.dirty = true
	t.dirty = true
}

// Root returns the root hash. An empty tree has a zero hash.
func (t *Tree) Root() Hash {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.dirty {
		t.recompute()
	}
	return t.root
}

// DomainHashes returns the hash of every domain.
func (t *Tree) DomainHashes() map[string]Hash {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := make(map[string]Hash, len(t.domains))
	for name, d := range t.domains {
		if d.dirty {
			d.recomputeHash()
		}
		result[name] = d.hash
	}
	return result
}

// Size returns the number of entries in the tree.
func (t *Tree) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, d := range t.domains {
		n += len(d.entries)
	}
	return n
}

// DomainCount returns the number of domains in the tree.
func (t *Tree) DomainCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.domains)
}

// Drift lists the domains in which two trees differ. All lists are sorted.
type Drift struct {
	LocalOnly  []string `json:"local_only"`
	RemoteOnly []string `json:"remote_only"`
	Divergent  []string `json:"divergent"`
}

// InSync reports whether both sides hold the same content.
func (d Drift) InSync() bool {
	return len(d.LocalOnly) == 0 && len(d.RemoteOnly) == 0 && len(d.Divergent) == 0
}

// Diff compares this (local) tree against the domain hashes of a remote tree.
func (t *Tree) Diff(remote map[string]Hash) Drift {
	local := t.DomainHashes()

	var drift Drift
	for name, h := range local {
		remoteHash, exists := remote[name]
		switch {
		case !exists:
			drift.LocalOnly = append(drift.LocalOnly, name)
		case remoteHash != h:
			drift.Divergent = append(drift.Divergent, name)
		}
	}
	drift.RemoteOnly = lo.Filter(lo.Keys(remote), func(name string, _ int) bool {
		_, exists := local[name]
		return !exists
	})

	sort.Strings(drift.LocalOnly)
	sort.Strings(drift.RemoteOnly)
	sort.Strings(drift.Divergent)
	return drift
}

// domain returns the named domain, creating it. Caller must hold t.mu.
func (t *Tree) domain(name string) *domain {
	d, ok := t.domains[name]
	if !ok {
		d = &domain{name: name, entries: make(map[Hash]struct{}), dirty: true}
		t.domains[name] = d
		t.dirty = true
	}
	return d
}

// recompute recalculates the root from domain hashes. Caller must hold t.mu.
func (t *Tree) recompute() {
	t.dirty = false
	if len(t.domains) == 0 {
		t.root = Hash{}
		return
	}

	hashes := make([]Hash, 0, len(t.domains))
	for _, d := range t.domains {
		if d.dirty {
			d.recomputeHash()
		}
		hashes = append(hashes, d.hash)
	}
	sortHashes(hashes)

	h := sha256.New()
	h.Write([]byte("root:"))
	for _, dh := range hashes {
		h.Write(dh[:])
	}
	h.Sum(t.root[:0])
}

// recomputeHash recalculates the domain hash from its entries.
// The name is part of the hash, so equal entry sets in different domains differ.
func (d *domain) recomputeHash() {
	hashes := make([]Hash, 0, len(d.entries))
	for h := range d.entries {
		hashes = append(hashes, h)
	}
	sortHashes(hashes)

	hasher := sha256.New()
	hasher.Write([]byte("dom:"))
	hasher.Write([]byte(d.name))
	hasher.Write([]byte("\x00"))
	for _, h := range hashes {
		hasher.Write(h[:])
	}
	hasher.Sum(d.hash[:0])
	d.dirty = false
}

func sortHashes(hashes []Hash) {
	sort.Slice(hashes, func(i, j int) bool {
		for k := 0; k < len(hashes[i]); k++ {
			if hashes[i][k] != hashes[j][k] {
				return hashes[i][k] < hashes[j][k]
			}
		}
		return false
	})
}

// HexHash returns the hex-encoded string of a Hash.
func HexHash(h Hash) string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex characters of a Hash, for display.
func Short(h Hash) string {
	return HexHash(h)[:12]
}
