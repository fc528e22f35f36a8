package record

import "fmt"

type CopyAction int

const (
	// CopyRecord copies the record locator (resrec://).
	CopyRecord CopyAction = iota
	// CopyAsset copies the asset locator (resdb://).
	CopyAsset
	// CopyWeb copies the https page of a world orb.
	CopyWeb
	// CopyWebAsset copies an https link to the raw asset payload.
	CopyWebAsset
)

func (a CopyAction) String() string {
	switch a {
	case CopyRecord:
		return "record"
	case CopyAsset:
		return "asset"
	case CopyWeb:
		return "web"
	case CopyWebAsset:
		return "web-asset"
	default:
		return fmt.Sprintf("CopyAction(%d)", int(a))
	}
}

func ParseCopyAction(s string) (CopyAction, error) {
	switch s {
	case "record":
		return CopyRecord, nil
	case "asset":
		return CopyAsset, nil
	case "web":
		return CopyWeb, nil
	case "web-asset", "webasset":
		return CopyWebAsset, nil
	default:
		return 0, fmt.Errorf("unknown copy action: %s (expected record|asset|web|web-asset)", s)
	}
}

// AvailableCopyActions lists the "copy URL" actions offered for rec, in display order.
func AvailableCopyActions(rec Record) []CopyAction {
	switch rec.Kind {
	case KindDirectory:
		return []CopyAction{CopyRecord}
	case KindLink:
		return []CopyAction{CopyRecord, CopyAsset}
	case KindObject:
		if rec.HasTag(TagWorldOrb) {
			return []CopyAction{CopyRecord, CopyAsset, CopyWeb}
		}
		return []CopyAction{CopyRecord, CopyAsset, CopyWebAsset}
	default:
		return nil
	}
}
