package websvc

import (
	"net/url"
	"strings"
)

// ResolveNext picks the post-action redirect location. Precedence follows the
// submitted form first, then the query string, then the referring page, then
// the current path. An explicit override from the host wins over everything.
func ResolveNext(override, formNext, queryNext, referer, path string) string {
	for _, candidate := range []string{override, formNext, queryNext, referer, path} {
		candidate = normalizeLocation(candidate)
		if candidate == "" {
			continue
		}
		if !safeLocation(candidate) {
			continue
		}
		return candidate
	}
	return "/"
}

// normalizeLocation reduces absolute URLs (e.g. the Referer header) to their
// path and query so only same-site locations survive.
func normalizeLocation(loc string) string {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return ""
	}
	if strings.Contains(loc, "://") {
		u, err := url.Parse(loc)
		if err != nil {
			return ""
		}
		loc = u.Path
		if u.RawQuery != "" {
			loc += "?" + u.RawQuery
		}
	}
	return loc
}

// safeLocation only accepts same-site absolute paths so the redirect cannot
// be pointed at another host through a crafted next value.
func safeLocation(loc string) bool {
	if !strings.HasPrefix(loc, "/") {
		return false
	}
	if strings.HasPrefix(loc, "//") || strings.HasPrefix(loc, "/\\") {
		return false
	}
	return true
}
