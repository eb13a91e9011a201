package crawl

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/feedgen"
)

// Ensure Inferrer implements feedgen.Inferrer at compile time.
var _ feedgen.Inferrer = (*Inferrer)(nil)

// Inferrer composes fetching, classification, rule parsing, locator
// resolution and pagination into feed and post inference.
//
// Each call runs its steps strictly in order on the calling goroutine.
// Errors are returned unchanged apart from a stage tag.
type Inferrer struct {
	Fetcher    feedgen.Fetcher
	Classifier feedgen.Classifier
	Engine     feedgen.LocatorEngine
	Walker     *Walker

	// Timeout bounds a whole inference call. Zero means no deadline.
	Timeout time.Duration
}

// InferFeedStructure fetches pageURL, asks the oracle for its feed rule,
// walks its pagination chain and assembles the result.
func (i *Inferrer) InferFeedStructure(ctx context.Context, pageURL string) (*feedgen.FeedStructure, error) {
	structure, _, err := i.InferFeedRule(ctx, pageURL)
	return structure, err
}

// InferFeedRule is InferFeedStructure that also returns the validated rule.
func (i *Inferrer) InferFeedRule(ctx context.Context, pageURL string) (*feedgen.FeedStructure, *feedgen.FeedStructureRule, error) {
	if err := validatePageURL(pageURL); err != nil {
		return nil, nil, feedgen.WithStage(feedgen.StageFetch, err)
	}

	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	html, err := i.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, nil, feedgen.WithStage(feedgen.StageFetch, err)
	}

	raw, err := i.Classifier.Classify(ctx, html, feedgen.FeedInstruction)
	if err != nil {
		return nil, nil, feedgen.WithStage(feedgen.StageClassify, err)
	}

	rule, err := feedgen.ParseRule[feedgen.FeedStructureRule](raw)
	if err != nil {
		return nil, nil, feedgen.WithStage(feedgen.StageParse, err)
	}

	for _, locator := range rule.Locators() {
		if err := i.Engine.Compile(locator); err != nil {
			return nil, nil, feedgen.WithStage(feedgen.StageValidate, err)
		}
	}

	links, err := i.Walker.WalkFrom(ctx, pageURL, html, rule)
	if err != nil {
		return nil, nil, feedgen.WithStage(feedgen.StageWalk, err)
	}

	doc, err := i.Engine.Parse(html)
	if err != nil {
		return nil, nil, feedgen.WithStage(feedgen.StageLocate, err)
	}

	return &feedgen.FeedStructure{
		URL:         pageURL,
		Title:       resolveScalar(doc, rule.Title),
		Author:      resolveScalar(doc, rule.Author),
		Description: resolveScalar(doc, rule.Description),
		Links:       links,
	}, rule, nil
}

// resolveScalar returns the literal value of s, or the text of the element
// its locator names. A locator matching nothing leaves the field empty.
func resolveScalar(doc feedgen.Document, s *feedgen.Scalar) string {
	switch {
	case s == nil:
		return ""
	case s.Locator != "":
		text, err := doc.ResolveText(s.Locator)
		if err != nil {
			return ""
		}
		return text
	default:
		return s.Value
	}
}

// InferPostStructure asks the oracle for a post rule for html and applies it.
// Repeating the call on the same HTML with the same oracle answer yields
// the same result.
func (i *Inferrer) InferPostStructure(ctx context.Context, html string) (*feedgen.PostStructure, error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	rule, err := i.InferPostRule(ctx, html)
	if err != nil {
		return nil, err
	}
	return i.ApplyPostRule(html, rule)
}

// InferPostRule asks the oracle for a validated post rule for html.
func (i *Inferrer) InferPostRule(ctx context.Context, html string) (*feedgen.PostStructureRule, error) {
	if strings.TrimSpace(html) == "" {
		return nil, feedgen.WithStage(feedgen.StageClassify, feedgen.Errorf(feedgen.EINVALID, "post HTML required"))
	}

	raw, err := i.Classifier.Classify(ctx, html, feedgen.PostInstruction)
	if err != nil {
		return nil, feedgen.WithStage(feedgen.StageClassify, err)
	}

	rule, err := feedgen.ParseRule[feedgen.PostStructureRule](raw)
	if err != nil {
		return nil, feedgen.WithStage(feedgen.StageParse, err)
	}

	for _, locator := range rule.Locators() {
		if err := i.Engine.Compile(locator); err != nil {
			return nil, feedgen.WithStage(feedgen.StageValidate, err)
		}
	}
	return rule, nil
}

// ApplyPostRule locates the title and content of html using rule.
// Returns ENOTFOUND if either locator matches nothing.
func (i *Inferrer) ApplyPostRule(html string, rule *feedgen.PostStructureRule) (*feedgen.PostStructure, error) {
	if rule == nil {
		return nil, feedgen.WithStage(feedgen.StageLocate, feedgen.Errorf(feedgen.EINVALID, "post rule required"))
	}

	doc, err := i.Engine.Parse(html)
	if err != nil {
		return nil, feedgen.WithStage(feedgen.StageLocate, err)
	}

	titleHTML, err := doc.ResolveSingle(rule.TitleLocator)
	if err != nil {
		return nil, feedgen.WithStage(feedgen.StageLocate, err)
	}
	title, err := doc.ResolveText(rule.TitleLocator)
	if err != nil {
		return nil, feedgen.WithStage(feedgen.StageLocate, err)
	}
	contentHTML, err := doc.ResolveSingle(rule.ContentLocator)
	if err != nil {
		return nil, feedgen.WithStage(feedgen.StageLocate, err)
	}

	return &feedgen.PostStructure{
		Title:       title,
		TitleHTML:   titleHTML,
		ContentHTML: contentHTML,
	}, nil
}

func (i *Inferrer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if i.Timeout > 0 {
		return context.WithTimeout(ctx, i.Timeout)
	}
	return ctx, func() {}
}

func validatePageURL(pageURL string) error {
	if strings.TrimSpace(pageURL) == "" {
		return feedgen.Errorf(feedgen.EINVALID, "URL required")
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return feedgen.Errorf(feedgen.EINVALID, "invalid URL %q: %v", pageURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return feedgen.Errorf(feedgen.EINVALID, "URL %q must be an absolute http(s) URL", pageURL)
	}
	return nil
}
