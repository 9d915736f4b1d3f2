package classify

import "regexp"

// Pattern families the rule engines run on. All matching is case-insensitive
// over the raw query text. The spellings are deliberately loose: they come
// from observed shopper phrasing ("perchased", "catagory", "vlogs").
var (
	// Ownership scope
	selfReferencePattern = regexp.MustCompile(`(?i)(\d|my)`)
	transactionalPattern = regexp.MustCompile(`(?i)(orde?(?:rs?|re?d)|p(?:e|u)rcha?ses?d?|buy|bought|carts?|products?|cancelled)`)
	exclusionPattern     = regexp.MustCompile(`(?i)(cancel)`)

	// Greetings
	greetingPattern       = regexp.MustCompile(`(?i)\b(greetings?|good\s?(?:morning|evening|afternoon)|gm|i?\s?need help)\b`)
	strictGreetingPattern = regexp.MustCompile(`(?i)^(hello|hi|hey)$`)

	// Content tags
	cartPattern              = regexp.MustCompile(`(?i)\b(carts?|buckets?|saved? (?:items?|products?))\b`)
	orderPattern             = regexp.MustCompile(`(?i)\b(orde?(?:rs?|re?d)|p(?:e|u)rcha?ses?d?|buy|bought)\b`)
	productPattern           = regexp.MustCompile(`(?i)\b(products?|items?)\b`)
	postPattern              = regexp.MustCompile(`(?i)\b(posts?|(?:b|v)log(?:s?|ings?)|articles?|authors)\b`)
	categoryHelperPattern    = regexp.MustCompile(`(?i)\b(t(?:y|i)pes?|v(?:e|a)r(?:i|ei|ie)t(?:y|i|is|ies?|eis?)|c(?:e|a)t(?:e|i|ie|ei)g(?:a|o)r(?:y|i|e|ee|eis?|ies?)|kinds?)\b`)
	excludingCategoryPattern = regexp.MustCompile(`(?i)\b(details?|specifications?|specs?)\b`)

	// Elliptical continuations for the regex follow-up strategy
	followUpPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(next|others|anymore|continues?|another|else|extend|last|previous|go|go ahead)\b`),
		regexp.MustCompile(`(?i)\b((?:what|how) about|(?:any|any others?|anything|something)\s*(?:alternatives?|else))\b`),
		regexp.MustCompile(`(?i)\b((?:tell|shows?|gives?|lists?|explains?)\s*(?:me|me in|it in|it|in)?\s*(?:deep|more))\b`),
		regexp.MustCompile(`(?i)\b((?:ok|yes)?\s?(?:extend|shows?|gives?|lists?|explains?) it|expand on that|continue with more)\b`),
		regexp.MustCompile(`(?i)\b(and\?|go on|keep going|can you continue|any suggestions|what else|any others?)\b`),
		regexp.MustCompile(`(?i)\b(do you have other|show me different|what else do you offer|similar products?|alternative brands?)\b`),
	}
)
