package feedgen

import "context"

// PageResult is what the pagination walker extracts from one page.
type PageResult struct {
	Links       []string
	NextPageURL string
}

// FeedStructure is the output of feed inference.
//
// Empty strings mean the field is absent. Links preserve document order
// across all walked pages and may contain duplicates.
type FeedStructure struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Author      string   `json:"author,omitempty"`
	Description string   `json:"description,omitempty"`
	Links       []string `json:"links"`
}

// PostStructure holds the inner HTML of a post's title and content elements.
// Title is the plain text of the title element.
type PostStructure struct {
	Title       string `json:"title"`
	TitleHTML   string `json:"titleHtml"`
	ContentHTML string `json:"contentHtml"`
}

// Inferrer derives structural rules from pages using the classification
// oracle and applies them.
//
// Errors carry the pipeline stage they occurred in; see ErrorStage.
type Inferrer interface {
	// InferFeedStructure fetches url, infers its feed rule and walks the
	// pagination chain collecting every post link.
	InferFeedStructure(ctx context.Context, url string) (*FeedStructure, error)

	// InferFeedRule is InferFeedStructure that also returns the validated
	// rule used to produce the structure.
	InferFeedRule(ctx context.Context, url string) (*FeedStructure, *FeedStructureRule, error)

	// InferPostStructure infers a post rule for html and applies it.
	InferPostStructure(ctx context.Context, html string) (*PostStructure, error)

	// InferPostRule asks the oracle for a validated post rule for html.
	InferPostRule(ctx context.Context, html string) (*PostStructureRule, error)

	// ApplyPostRule locates title and content in html using an existing rule.
	// No oracle call is made.
	ApplyPostRule(html string, rule *PostStructureRule) (*PostStructure, error)
}
