package objectstore

import (
	"fmt"
	"net/url"
	"strings"
)

// ObjectKey derives the remote object key from a locator URL by taking its
// last two path segments and stripping any file extension. Keys issued by
// Upload are extensionless, so stripping is a no-op for them; it keeps
// locators that carry an extension deletable as well. Locators with fewer
// than two path segments cannot be deleted cleanly.
func ObjectKey(locator string) (string, error) {
	parsed, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("parse locator: %w", err)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) < 2 || segments[len(segments)-1] == "" {
		return "", fmt.Errorf("locator %q has no derivable object key", locator)
	}

	last := segments[len(segments)-1]
	if idx := strings.LastIndex(last, "."); idx > 0 {
		last = last[:idx]
	}
	return segments[len(segments)-2] + "/" + last, nil
}
