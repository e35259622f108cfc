package cache

import "strings"

// Namespace prefixes every key owned by the cache service
const Namespace = "cache:"

const (
	// PrefixCaptions namespaces generated captions by topic and template
	PrefixCaptions = "captions"

	// PrefixImage namespaces rendered image URLs by template and caption text
	PrefixImage = "image"

	// PrefixTemplates namespaces the trending template catalog
	PrefixTemplates = "templates"
)

// TrendingTemplatesKey is the fixed key of the cached template catalog
var TrendingTemplatesKey = Key(PrefixTemplates, "trending")

// partEscaper keeps the separator out of key parts so distinct part lists never
// collide ("a:b","c" and "a","b:c")
var partEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// Key composes cache:<prefix>:<normalized subkey>. Each part is normalized so that
// semantically identical inputs share a key regardless of case and spacing.
func Key(prefix string, parts ...string) string {
	normalized := make([]string, len(parts))
	for i, part := range parts {
		normalized[i] = partEscaper.Replace(NormalizeKey(part))
	}
	return Namespace + prefix + ":" + strings.Join(normalized, ":")
}

// NormalizeKey lower-cases, trims and collapses internal whitespace
func NormalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
