package tools

import (
	"net/url"
	"strings"

	"github.com/richinex/modelgate/internal/dsa"
)

// Allowlist is an ordered set of host suffixes scoped to one agent run.
// The zero value allows nothing.
type Allowlist struct {
	hosts []string
	set   *dsa.SuffixSet
}

// NewAllowlist normalizes entries: trimmed, lower-cased, blanks dropped.
func NewAllowlist(entries []string) Allowlist {
	hosts := make([]string, 0, len(entries))
	for _, e := range entries {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			hosts = append(hosts, e)
		}
	}
	return Allowlist{hosts: hosts, set: dsa.NewSuffixSet(hosts)}
}

// Hosts returns a copy of the normalized entries.
func (a Allowlist) Hosts() []string {
	out := make([]string, len(a.hosts))
	copy(out, a.hosts)
	return out
}

// Allows reports whether rawURL is an http(s) URL whose host equals an entry
// or is a subdomain of one. The port is not considered.
func (a Allowlist) Allows(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	return a.set.Match(strings.ToLower(u.Hostname()))
}

// String lists the entries comma separated.
func (a Allowlist) String() string {
	return strings.Join(a.hosts, ", ")
}
