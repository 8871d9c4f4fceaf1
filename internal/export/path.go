package export

import (
	"fmt"
	"regexp"
	"time"

	"github.com/dharsanguruparan/designexport/internal/model"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SanitizeName keeps letters, digits, '-' and '_' and replaces every other
// run of characters with a single underscore.
func SanitizeName(name string) string {
	clean := unsafeNameChars.ReplaceAllString(name, "_")
	if clean == "" || clean == "_" {
		return "asset"
	}
	return clean
}

// ObjectPath builds the storage path for an export:
//
//	{projectID}/exports/{unixMillis}-{name}-{scale}x.{format}
func ObjectPath(projectID, name string, scale model.Scale, format model.Format, at time.Time) string {
	return fmt.Sprintf("%s/exports/%d-%s-%dx.%s", projectID, at.UnixMilli(), SanitizeName(name), scale, format)
}
