// Package hostname canonicalises site domains so the warehouse and the analytics
// API agree on the join key
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 strip scheme, path, query and port
// 3 Unicode NFKC normalization
// 4 Case folding
// 5 Remove format chars (zero-width joiners and friends)
// 6 Width fold fullwidth to ASCII
// 7 Trim whitespace and the trailing root dot
package hostname

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
		)
	},
}

// Normalize returns the canonical form of a domain; "" means no usable domain
func Normalize(s string) string {
	s = strings.TrimSpace(strings.ToValidUTF8(s, ""))
	if s == "" {
		return ""
	}
	s = stripURL(s)

	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		ns = strings.ToLower(s)
	}

	return strings.TrimSuffix(strings.TrimSpace(ns), ".")
}

// FromPage extracts the leading host segment of a page path such as
// "a.com/blog/post" or "/a.com/". Segments without a dot are not hosts
func FromPage(page string) string {
	p := strings.TrimSpace(page)
	if i := strings.Index(p, "://"); i >= 0 {
		p = p[i+3:]
	}
	p = strings.TrimLeft(p, "/")
	if i := strings.IndexAny(p, "/?#"); i >= 0 {
		p = p[:i]
	}
	h := Normalize(p)
	if !strings.Contains(h, ".") {
		return ""
	}
	return h
}

// stripURL reduces "https://user@Host:8080/path?q" to "Host"
func stripURL(s string) string {
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, '@'); i >= 0 {
		s = s[i+1:]
	}
	// drop a port but leave bracketed ipv6 alone
	if i := strings.LastIndexByte(s, ':'); i >= 0 && !strings.Contains(s, "]") {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
