package record

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Profile selects the URL schemes used when rendering locators for the platform.
type Profile struct {
	RecordScheme string `json:"recordScheme"`
	AssetScheme  string `json:"assetScheme"`
	WebBaseURL   string `json:"webBaseUrl"`
}

func DefaultProfile() Profile {
	return Profile{
		RecordScheme: "resrec",
		AssetScheme:  "resdb",
		WebBaseURL:   "https://go.resonite.com",
	}
}

func (p Profile) withDefaults() Profile {
	d := DefaultProfile()
	if strings.TrimSpace(p.RecordScheme) == "" {
		p.RecordScheme = d.RecordScheme
	}
	if strings.TrimSpace(p.AssetScheme) == "" {
		p.AssetScheme = d.AssetScheme
	}
	if strings.TrimSpace(p.WebBaseURL) == "" {
		p.WebBaseURL = d.WebBaseURL
	}
	return p
}

// URL returns the record locator, e.g. resrec:///U-alice/R-01H....
func (r Record) URL(p Profile) *url.URL {
	p = p.withDefaults()
	return &url.URL{
		Scheme: p.RecordScheme,
		Path:   "/" + r.OwnerID + "/" + r.RecordID,
	}
}

// WebURL returns the browser-facing page for the record.
func (r Record) WebURL(p Profile) *url.URL {
	p = p.withDefaults()
	u, err := url.Parse(strings.TrimRight(p.WebBaseURL, "/"))
	if err != nil {
		u = &url.URL{Scheme: "https", Host: "go.resonite.com"}
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/record/" + r.OwnerID + "/" + r.RecordID
	return u
}

var ErrInvalidLocator = errors.New("invalid record locator")

// ParseLocator accepts either a record locator URL (scheme:///owner/id) or a
// bare "owner/id" pair.
func ParseLocator(s string) (Identity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Identity{}, ErrInvalidLocator
	}
	path := s
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return Identity{}, fmt.Errorf("%w: %v", ErrInvalidLocator, err)
		}
		// resrec:///owner/id parses with an empty host; resrec://owner/id puts the owner in Host.
		path = u.Host + "/" + strings.TrimPrefix(u.Path, "/")
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 {
		return Identity{}, fmt.Errorf("%w: %q", ErrInvalidLocator, s)
	}
	id := Identity{OwnerID: parts[0], RecordID: parts[1]}
	if id.IsZero() {
		return Identity{}, fmt.Errorf("%w: %q", ErrInvalidLocator, s)
	}
	return id, nil
}

// ParseAbsoluteURI reports whether s parses as an absolute URI.
func ParseAbsoluteURI(s string) (*url.URL, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		return nil, false
	}
	if u.Opaque == "" && u.Host == "" && u.Path == "" {
		return nil, false
	}
	return u, true
}
