package format

import (
	"bytes"
	"strings"
	"testing"

	"resdb-tools/internal/record"
)

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"data": 1}, "yaml", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestWriteJSON_Envelope(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"data": "ok"}, "", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != `{"data":"ok"}` {
		t.Fatalf("unexpected output: %s", got)
	}
}

func TestWriteText_RecordsTable(t *testing.T) {
	var buf bytes.Buffer
	recs := []record.Record{
		{OwnerID: "U-a", RecordID: "R-1", Kind: record.KindDirectory, Name: "Games"},
		{OwnerID: "U-a", RecordID: "R-2", Kind: record.KindObject, Name: "Hat"},
	}
	if err := Write(&buf, map[string]any{"data": recs}, "text", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "Games") || !strings.Contains(lines[1], "U-a/R-2") {
		t.Fatalf("unexpected table:\n%s", buf.String())
	}
}

func TestRecordCard(t *testing.T) {
	rec := record.Record{OwnerID: "U-a", RecordID: "R-1", Kind: record.KindObject, Name: "My_Hat", AssetURI: "resdb:///a.brson"}
	md := RecordCard(rec, record.DefaultProfile())
	if !strings.HasPrefix(md, `# My\_Hat`) {
		t.Fatalf("expected escaped heading, got %q", md)
	}
	if !strings.Contains(md, "resrec:///U-a/R-1") || !strings.Contains(md, "resdb:///a.brson") {
		t.Fatalf("missing locators: %s", md)
	}
	if strings.Contains(md, "Thumbnail") {
		t.Fatalf("empty thumbnail should be omitted: %s", md)
	}
}
