package classify

import (
	"fmt"
	"strings"
)

// ScopeResult carries the possibly-mutated query plus the attachment
// decision. The input query is never modified.
type ScopeResult struct {
	Query    string
	Attached bool
	UserID   int64
}

// AttachScope appends the canonical ownership clause when the query contains
// a self-reference and a transactional entity and no exclusion word.
// A zero user id never attaches: scope without an identifier is meaningless.
func AttachScope(query string, userID int64) ScopeResult {
	lowered := strings.ToLower(query)

	if userID != 0 &&
		selfReferencePattern.MatchString(lowered) &&
		transactionalPattern.MatchString(lowered) &&
		!exclusionPattern.MatchString(lowered) {
		return ScopeResult{
			Query:    query + fmt.Sprintf(" and where customer/user id = %d", userID),
			Attached: true,
			UserID:   userID,
		}
	}

	return ScopeResult{Query: query, UserID: userID}
}
