package classify

import (
	"context"
	"log"
	"regexp"

	"ecom-support-be/pkg/store"
)

// TagRule binds a matcher to the tag it yields. Rule order is precedence:
// the first matching rule wins and the rest are never evaluated.
type TagRule struct {
	Tag   string
	Match func(query string) bool
}

func matches(re *regexp.Regexp) func(string) bool {
	return re.MatchString
}

// TagRules is the fixed cascade. Cart outranks product ("saved cart items"
// is a cart lookup, not a product search), category compounds outrank their
// bare entity, and posts trail the commerce tags.
var TagRules = []TagRule{
	{store.TagCart, matches(cartPattern)},
	{store.TagProductCategory, func(q string) bool {
		return categoryHelperPattern.MatchString(q) &&
			productPattern.MatchString(q) &&
			!excludingCategoryPattern.MatchString(q)
	}},
	{store.TagProduct, matches(productPattern)},
	{store.TagOrder, matches(orderPattern)},
	{store.TagPostCategory, func(q string) bool {
		return categoryHelperPattern.MatchString(q) && postPattern.MatchString(q)
	}},
	{store.TagPost, matches(postPattern)},
}

// FirstMatchingTag runs the cascade against the raw query. Empty string
// means no tag: retrieval stays broad.
func FirstMatchingTag(query string) string {
	for _, rule := range TagRules {
		if rule.Match(query) {
			return rule.Tag
		}
	}
	return ""
}

// TagStore is the slice of session memory the extractor needs.
type TagStore interface {
	GetLastTag(ctx context.Context, sessionID string) string
	SetTag(ctx context.Context, sessionID string, tag string) error
}

// TagExtractor resolves the active content tag for a turn and persists it.
type TagExtractor struct {
	tags   TagStore
	logger *log.Logger
}

func NewTagExtractor(tags TagStore, logger *log.Logger) *TagExtractor {
	return &TagExtractor{tags: tags, logger: logger}
}

// Resolve returns the active tag for this turn. Follow-up turns reuse the
// remembered tag without re-running the cascade: continuity takes priority
// over re-classification. A freshly resolved tag is written back so the next
// follow-up can find it.
func (e *TagExtractor) Resolve(ctx context.Context, sessionID, rawQuery string, isFollowUp bool) string {
	if isFollowUp {
		if prev := e.tags.GetLastTag(ctx, sessionID); prev != "" {
			return prev
		}
	}

	tag := FirstMatchingTag(rawQuery)
	if tag != "" {
		if err := e.tags.SetTag(ctx, sessionID, tag); err != nil {
			e.logger.Printf("[WARN] Failed to persist tag %q: %v", tag, err)
		}
	}
	return tag
}
