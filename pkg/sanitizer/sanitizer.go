package sanitizer

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer cleans user-submitted HTML before it is persisted.
type Sanitizer interface {
	Clean(raw string) string
}

type htmlSanitizer struct {
	policy *bluemonday.Policy
}

// New returns a Sanitizer backed by a bluemonday UGC policy, extended to allow
// iframe embeds from YouTube and Vimeo only.
func New() Sanitizer {
	policy := bluemonday.UGCPolicy()

	safeIframeSrc := regexp.MustCompile(`^(https?:)?//(www\.youtube(-nocookie)?\.com/embed/|player\.vimeo\.com/)`)
	policy.AllowAttrs("src").Matching(safeIframeSrc).OnElements("iframe")
	policy.AllowAttrs("width", "height", "frameborder", "allowfullscreen").OnElements("iframe")

	return &htmlSanitizer{policy: policy}
}

func (s *htmlSanitizer) Clean(raw string) string {
	return s.policy.Sanitize(raw)
}
