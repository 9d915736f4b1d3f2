package retrieve

import (
	"strings"

	"github.com/jdkato/prose/v2"

	"ecom-support-be/pkg/store"
)

// SalientTerms pulls the content-bearing words out of a query: nouns, proper
// nouns, and adjectives. Instructional queries on the document partition also
// keep verbs ("return", "cancel"), since there the action is the topic.
func SalientTerms(query string, partition store.Partition) ([]string, error) {
	doc, err := prose.NewDocument(query, prose.WithExtraction(false), prose.WithSegmentation(false))
	if err != nil {
		return nil, err
	}

	keepVerbs := partition == store.PartitionDocument

	var terms []string
	for _, tok := range doc.Tokens() {
		if !salientTag(tok.Tag, keepVerbs) {
			continue
		}
		word := strings.ToLower(strings.TrimSpace(tok.Text))
		if len(word) < 2 {
			continue
		}
		terms = append(terms, word)
	}
	return terms, nil
}

func salientTag(tag string, keepVerbs bool) bool {
	switch tag {
	case "NN", "NNS", "NNP", "NNPS", "JJ", "JJR", "JJS":
		return true
	}
	if keepVerbs && strings.HasPrefix(tag, "VB") {
		return true
	}
	return false
}
