// Package credential parses browser-exported session credential strings.
//
// A session credential is the set of authentication cookies copied out of an
// already-authenticated browser session, supplied as a single string of
// `name=value` pairs separated by semicolons, with values optionally wrapped
// in double quotes. The parser treats names and values as opaque tokens —
// cookie semantics are the remote service's concern.
package credential

import (
	"fmt"
	"sort"
	"strings"
)

// ParseError describes a malformed session-credential string.
// A malformed entry fails the whole parse; nothing is silently dropped.
type ParseError struct {
	Entry  string // the offending entry, if any
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("invalid session credential: %s", e.Reason)
	}
	return fmt.Sprintf("invalid session credential entry %q: %s", e.Entry, e.Reason)
}

// Credential is an immutable mapping from cookie name to cookie value.
// It is constructed by Parse; Refreshed returns updated copies rather than
// mutating in place, so a failed validation can never leave a credential
// half-updated.
type Credential struct {
	values map[string]string
}

// Parse parses a session-credential string of the form
//
//	k1=v1; k2="v2"; ...
//
// Whitespace around separators is insignificant. A double-quoted value has
// the quotes stripped and may contain semicolons; an unquoted value is taken
// verbatim up to the next separator. Duplicate names: last write wins.
// Empty segments (such as a trailing semicolon) are skipped.
//
// Parse fails with a *ParseError when the string is empty, an entry lacks
// an '=', a quoted value is unterminated, or a quoted value is followed by
// trailing characters before the next separator.
func Parse(s string) (Credential, error) {
	if strings.TrimSpace(s) == "" {
		return Credential{}, &ParseError{Reason: "empty credential string"}
	}

	values := make(map[string]string)
	i, n := 0, len(s)
	for i < n {
		for i < n && isSpace(s[i]) {
			i++
		}
		if i >= n {
			break
		}
		if s[i] == ';' {
			i++
			continue
		}

		// Name runs up to '='. Hitting a separator or the end first means
		// the entry has no '='.
		start := i
		for i < n && s[i] != '=' && s[i] != ';' {
			i++
		}
		if i >= n || s[i] == ';' {
			return Credential{}, &ParseError{
				Entry:  strings.TrimSpace(s[start:i]),
				Reason: "entry has no '='",
			}
		}
		name := strings.TrimSpace(s[start:i])
		i++ // consume '='

		for i < n && isSpace(s[i]) {
			i++
		}

		var value string
		if i < n && s[i] == '"' {
			i++
			vstart := i
			for i < n && s[i] != '"' {
				i++
			}
			if i >= n {
				return Credential{}, &ParseError{Entry: name, Reason: "unterminated quoted value"}
			}
			value = s[vstart:i]
			i++ // consume closing quote
			for i < n && isSpace(s[i]) {
				i++
			}
			if i < n && s[i] != ';' {
				return Credential{}, &ParseError{Entry: name, Reason: "unexpected characters after quoted value"}
			}
			if i < n {
				i++
			}
		} else {
			vstart := i
			for i < n && s[i] != ';' {
				i++
			}
			value = strings.TrimSpace(s[vstart:i])
			if i < n {
				i++
			}
		}

		values[name] = value
	}

	if len(values) == 0 {
		return Credential{}, &ParseError{Reason: "no entries"}
	}
	return Credential{values: values}, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

// Get returns the value for a cookie name and whether it is present.
func (c Credential) Get(name string) (string, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Names returns all cookie names in sorted order.
func (c Credential) Names() []string {
	names := make([]string, 0, len(c.values))
	for name := range c.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of entries.
func (c Credential) Len() int {
	return len(c.values)
}

// Header serializes the credential as a Cookie header value. Values that
// contain a semicolon are re-quoted so that Parse(c.Header()) yields the
// same mapping.
func (c Credential) Header() string {
	parts := make([]string, 0, len(c.values))
	for _, name := range c.Names() {
		v := c.values[name]
		if strings.Contains(v, ";") || v != strings.TrimSpace(v) {
			v = `"` + v + `"`
		}
		parts = append(parts, name+"="+v)
	}
	return strings.Join(parts, "; ")
}

// Clone returns an independent copy of the credential.
func (c Credential) Clone() Credential {
	values := make(map[string]string, len(c.values))
	for name, v := range c.values {
		values[name] = v
	}
	return Credential{values: values}
}

// Refreshed returns a copy of the credential with each entry in updates
// replacing the entry of the same name. Replacement is per-name, not a
// merge of stale values with new ones: a name present in updates always
// ends up with the updated value, and names the service did not re-issue
// keep their current value. The receiver is not modified.
func (c Credential) Refreshed(updates map[string]string) Credential {
	out := c.Clone()
	if out.values == nil {
		out.values = make(map[string]string, len(updates))
	}
	for name, v := range updates {
		out.values[name] = v
	}
	return out
}
