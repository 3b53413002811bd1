package vanilla

import (
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	fragmentPolicyOnce sync.Once
	fragmentPolicy     *bluemonday.Policy
)

// FragmentPolicy returns the sanitiser applied to rendered fragments. It keeps
// the markup the fragment template produces and drops everything else,
// including links with non http(s)/mailto schemes.
func FragmentPolicy() *bluemonday.Policy {
	fragmentPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements("div", "span", "button", "a")
		policy.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-zA-Z0-9\s_-]+$`)).Globally()
		policy.AllowAttrs("type").Matching(regexp.MustCompile(`^button$`)).OnElements("button")
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowURLSchemes("http", "https", "mailto")
		policy.RequireParseableURLs(true)
		policy.AllowRelativeURLs(true)
		policy.AllowDataAttributes()

		fragmentPolicy = policy
	})
	return fragmentPolicy
}
