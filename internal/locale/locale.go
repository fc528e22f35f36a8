// Package locale maps label keys to display strings.
package locale

import (
	"strings"

	"resdb-tools/internal/record"
)

const (
	inventory    = "ResdbTools.Inventory"
	recordEditor = "ResdbTools.RecordEditor"
)

const (
	InventoryShowRecord   = inventory + ".ShowRecord"
	RecordEditorLoading   = recordEditor + ".Loading"
	RecordEditorName      = recordEditor + ".Name"
	RecordEditorThumbnail = recordEditor + ".Thumbnail"
	RecordEditorAsset     = recordEditor + ".Asset"
	RecordEditorError     = recordEditor + ".Error"

	recordEditorCopyRecord   = recordEditor + ".CopyRecordUrl"
	recordEditorCopyAsset    = recordEditor + ".CopyAssetUrl"
	recordEditorCopyWeb      = recordEditor + ".CopyWebUrl"
	recordEditorCopyWebAsset = recordEditor + ".CopyWebAssetUrl"

	recordEditorTitleDirectory = recordEditor + ".Title.Directory"
	recordEditorTitleLink      = recordEditor + ".Title.Link"
	recordEditorTitleWorld     = recordEditor + ".Title.World"
	recordEditorTitleObject    = recordEditor + ".Title.Object"

	Save   = "General.Save"
	Cancel = "General.Cancel"
)

var english = map[string]string{
	InventoryShowRecord:        "Show record",
	RecordEditorLoading:        "Loading…",
	RecordEditorName:           "Name",
	RecordEditorThumbnail:      "Thumbnail",
	RecordEditorAsset:          "New asset",
	RecordEditorError:          "Error: {message}",
	recordEditorCopyRecord:     "Copy record URL",
	recordEditorCopyAsset:      "Copy asset URL",
	recordEditorCopyWeb:        "Copy web URL",
	recordEditorCopyWebAsset:   "Copy raw asset URL",
	recordEditorTitleDirectory: "Edit folder",
	recordEditorTitleLink:      "Edit link",
	recordEditorTitleWorld:     "Edit world",
	recordEditorTitleObject:    "Edit object",
	Save:                       "Save",
	Cancel:                     "Cancel",
}

// T looks up key and substitutes {name} placeholders from pairs
// (name, value, name, value, ...). Unknown keys are returned as-is.
func T(key string, pairs ...string) string {
	s, ok := english[key]
	if !ok {
		s = key
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		s = strings.ReplaceAll(s, "{"+pairs[i]+"}", pairs[i+1])
	}
	return s
}

func ErrorMessage(message string) string {
	return T(RecordEditorError, "message", message)
}

func CopyURL(a record.CopyAction) string {
	switch a {
	case record.CopyRecord:
		return T(recordEditorCopyRecord)
	case record.CopyAsset:
		return T(recordEditorCopyAsset)
	case record.CopyWeb:
		return T(recordEditorCopyWeb)
	case record.CopyWebAsset:
		return T(recordEditorCopyWebAsset)
	default:
		return a.String()
	}
}

// EditorTitle is the popup title for a record of kind k.
func EditorTitle(k record.Kind) string {
	switch k {
	case record.KindDirectory:
		return T(recordEditorTitleDirectory)
	case record.KindLink:
		return T(recordEditorTitleLink)
	case record.KindWorld:
		return T(recordEditorTitleWorld)
	default:
		return T(recordEditorTitleObject)
	}
}
