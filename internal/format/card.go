package format

import (
	"fmt"
	"strings"

	"resdb-tools/internal/record"
)

// RecordCard renders rec as a short markdown document.
func RecordCard(rec record.Record, p record.Profile) string {
	var b strings.Builder
	name := rec.Name
	if strings.TrimSpace(name) == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(name))
	fmt.Fprintf(&b, "- **Kind:** %s\n", rec.Kind)
	fmt.Fprintf(&b, "- **Path:** `%s`\n", rec.Path)
	fmt.Fprintf(&b, "- **Record:** `%s`\n", rec.URL(p))
	if rec.AssetURI != "" {
		fmt.Fprintf(&b, "- **Asset:** `%s`\n", rec.AssetURI)
	}
	if rec.ThumbnailURI != "" {
		fmt.Fprintf(&b, "- **Thumbnail:** `%s`\n", rec.ThumbnailURI)
	}
	if len(rec.Tags) > 0 {
		fmt.Fprintf(&b, "- **Tags:** %s\n", escapeMarkdown(strings.Join(rec.Tags, ", ")))
	}
	if !rec.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "- **Updated:** %s\n", rec.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "#", `\#`, "[", `\[`, "]", `\]`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
