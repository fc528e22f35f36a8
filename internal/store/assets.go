package store

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Assets translates asset locators (resdb:///<hash>.<ext>) into raw https URLs.
type Assets struct {
	BaseURL string
}

func (a Assets) RawAssetURL(assetURI string) (string, error) {
	assetURI = strings.TrimSpace(assetURI)
	if assetURI == "" {
		return "", invalid("record has no asset")
	}
	u, err := url.Parse(assetURI)
	if err != nil {
		return "", invalid(fmt.Sprintf("invalid asset locator %q", assetURI))
	}
	switch u.Scheme {
	case "http", "https":
		return u.String(), nil
	case "resdb":
	default:
		return "", invalid(fmt.Sprintf("unsupported asset scheme %q", u.Scheme))
	}

	// resdb:///hash.ext has an empty host; tolerate resdb://hash.ext too.
	name := strings.TrimPrefix(u.Host+u.Path, "/")
	hash := strings.TrimSuffix(name, path.Ext(name))
	if hash == "" || strings.Contains(hash, "/") {
		return "", invalid(fmt.Sprintf("invalid asset locator %q", assetURI))
	}
	base := strings.TrimRight(a.BaseURL, "/")
	if base == "" {
		base = "https://assets.resonite.com"
	}
	return base + "/" + hash, nil
}
