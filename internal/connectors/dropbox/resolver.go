package dropbox

import (
	"net/url"
	"path"
	"strings"
)

// WebURL returns the dropbox.com page that previews the file at locatorPath.
func WebURL(locatorPath string) string {
	clean := strings.Trim(locatorPath, "/")
	if clean == "" {
		return "https://www.dropbox.com/home"
	}

	dir, name := path.Split(clean)
	u := url.URL{
		Scheme: "https",
		Host:   "www.dropbox.com",
		Path:   "/home/" + strings.TrimSuffix(dir, "/"),
	}
	u.RawQuery = url.Values{"preview": {name}}.Encode()
	return strings.Replace(u.String(), "/home/?", "/home?", 1)
}
