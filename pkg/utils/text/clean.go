// ABOUTME: Text utilities for upstream titles and template names
// ABOUTME: Decodes the HTML entities upstreams leave behind and collapses whitespace

package text

import (
	"strings"
)

var entities = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", "\"",
	"&#39;", "'",
	"&#x27;", "'",
	"&apos;", "'",
	"&#8217;", "'",
	"&rsquo;", "'",
	"&lsquo;", "'",
	"&ldquo;", "\"",
	"&rdquo;", "\"",
	"&hellip;", "...",
	"&#8230;", "...",
	"&mdash;", "-",
	"&ndash;", "-",
)

// DecodeEntities decodes the entities commonly found in post titles
func DecodeEntities(s string) string {
	return entities.Replace(s)
}

// CleanTitle decodes entities, trims the ends and collapses runs of whitespace
func CleanTitle(s string) string {
	return strings.Join(strings.Fields(DecodeEntities(s)), " ")
}
