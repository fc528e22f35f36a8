package record

import (
	"slices"
	"strings"
	"time"
)

type Kind string

const (
	KindDirectory Kind = "directory"
	KindLink      Kind = "link"
	KindObject    Kind = "object"
	KindWorld     Kind = "world"
)

// ParseKind normalizes a kind string. Unknown kinds are kept verbatim so records
// written by newer clients still round-trip.
func ParseKind(s string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(s)))
}

// TagWorldOrb marks an Object record as a world orb.
const TagWorldOrb = "world_orb"

// PathSeparator separates inventory path segments in Record.Path.
const PathSeparator = `\`

// Identity is the owner+id pair that names a record across renames.
type Identity struct {
	OwnerID  string `json:"ownerId"`
	RecordID string `json:"recordId"`
}

func (id Identity) IsZero() bool {
	return strings.TrimSpace(id.OwnerID) == "" || strings.TrimSpace(id.RecordID) == ""
}

func (id Identity) String() string {
	return id.OwnerID + "/" + id.RecordID
}

type Record struct {
	OwnerID      string    `json:"ownerId"`
	RecordID     string    `json:"recordId"`
	Kind         Kind      `json:"recordType"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	AssetURI     string    `json:"assetUri,omitempty"`
	ThumbnailURI string    `json:"thumbnailUri,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (r Record) Identity() Identity {
	return Identity{OwnerID: r.OwnerID, RecordID: r.RecordID}
}

// IsSameRecord reports whether both values describe the same remote entity.
// Mutable attributes (name, kind, URIs) are ignored.
func (r Record) IsSameRecord(other Record) bool {
	return r.OwnerID == other.OwnerID && r.RecordID == other.RecordID
}

func (r Record) HasTag(tag string) bool {
	return slices.Contains(r.Tags, tag)
}

func (r Record) IsDirectory() bool { return r.Kind == KindDirectory }

// ChildPath is the Path that records placed inside this directory carry.
func (r Record) ChildPath() string {
	if r.Path == "" {
		return r.Name
	}
	return r.Path + PathSeparator + r.Name
}

// Clone returns a deep copy so edit sessions never alias a listing's tag slice.
func (r Record) Clone() Record {
	out := r
	out.Tags = slices.Clone(r.Tags)
	return out
}
