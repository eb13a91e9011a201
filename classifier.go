package feedgen

import "context"

// Instruction is a natural-language extraction instruction sent to the
// classification oracle ahead of the page HTML. The HTML is appended
// directly, so every instruction ends with its own separator.
type Instruction string

// FeedInstruction asks the oracle for the structure of a blog index page.
const FeedInstruction Instruction = "Given this HTML of a blog or feed index page, describe the feed and how to find its posts. " +
	"Return a JSON object with exactly these fields: title, author, description, postListLocator, postLinkAttribute, nextPageLocator. " +
	"title and description describe the feed; if the page has none, make up a short, fitting value. " +
	"author is the feed's author, or null if it cannot be determined. " +
	"Give title, author and description as plain strings holding the value itself. " +
	"Only when a value should be read from the text of an element on the page, give an object {\"locator\": \"<CSS selector>\"} instead. " +
	"postListLocator is a CSS selector matching one element per post, where each matched element carries the post's URL in an attribute. " +
	"postLinkAttribute is the name of that attribute (usually href). " +
	"nextPageLocator is a CSS selector matching the link element that leads to the next page of older posts, or null if the page is not paginated. " +
	"Selectors should be as general as possible while being accurate.\n\n"

// PostInstruction asks the oracle for the structure of a single blog post page.
const PostInstruction Instruction = "Given this HTML, give me the CSS selector for the title and content of the blog post. " +
	"The json you return should have two fields - title and content. " +
	"It should be as general as possible while being accurate. " +
	"It should not be linked to any framework or contain a unique ID\n\n"

// Classifier sends HTML plus an extraction instruction to an external
// classification oracle and returns the oracle's raw text answer.
//
// The returned text is untrusted; it must go through ParseRule before any
// field is used as a locator.
type Classifier interface {
	// Classify returns the flattened raw text of the oracle's response.
	// Returns ECONFIG when credentials are missing, ETRANSPORT when the
	// request fails and EDECODE when the response envelope is malformed.
	Classify(ctx context.Context, html string, instruction Instruction) (string, error)
}
