package css

import "strings"

// IsHack reports whether declaration targets particular old browsers through
// a parsing quirk rather than being a regular declaration:
//
//	*zoom: 1;          star hack
//	_height: 1px;      underscore hack
//	width: 10px\9;     value suffix hacks \9, \0 and \0/
//	color: red !ie;    bogus importance
//
// Such declarations are passed through untouched.
func IsHack(d *Declaration) bool {
	if d == nil || d.Custom {
		return false
	}
	if strings.HasPrefix(d.Property, "*") || strings.HasPrefix(d.Property, "_") {
		return true
	}

	v := strings.ToLower(strings.TrimSpace(d.Value))
	for _, suffix := range []string{`\9`, `\0`, `\0/`} {
		if strings.HasSuffix(v, suffix) {
			return true
		}
	}
	return strings.Contains(v, "!ie")
}
