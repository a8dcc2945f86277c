package engine

import (
	"fmt"

	"github.com/switcharoohelper/roohelper/roomod/issues"
)

const redditBaseURL = "https://www.reddit.com"

// One row of the decision table. Rows are evaluated in slice order, and effects are last-write-wins.
type Rule struct {
	Kind issues.Kind
	// user-facing explanation, embedded in the composed reply
	Explain func(sub Submission, prior PriorGood) string
	// operator-facing one-liner, used for dry runs
	Summary    func(sub Submission, prior PriorGood) string
	NeedsPrior bool
	// if true, the author is not invited to resubmit
	ForbidResubmit bool
	// ActionNone leaves the current action unchanged
	SetAction Action
	Escalate  bool
}

func text(s string) func(Submission, PriorGood) string {
	return func(Submission, PriorGood) string { return s }
}

func permalinkf(format string) func(Submission, PriorGood) string {
	return func(sub Submission, _ PriorGood) string {
		return fmt.Sprintf(format, redditBaseURL+sub.Permalink())
	}
}

// The fixed rule table. The order here determines the order of explanation lines in every composed message.
var DefaultRules = []Rule{
	{
		Kind:    issues.LacksContext,
		Explain: text("the link to your switcharoo does not contain the `?context=x` suffix. Read the sidebar " +
			"for more information."),
		Summary: permalinkf("%s submission link does not have ?context"),
	},
	{
		Kind:    issues.LinkedThread,
		Explain: text("your post's link is to a Reddit thread, not a comment permalink. Make sure to click the " +
			"permalink button on the comment (or on mobile, grab the link to the comment)."),
		Summary: permalinkf("%s linked to a thread, not a comment"),
	},
	{
		Kind:    issues.CommentDeleted,
		Explain: text("your switcharoo comment was deleted. If you deleted your comment, please don't do that. " +
			"If you didn't, then the subreddit moderators probably removed your comment. Unfortunately, due to " +
			"how Reddit works, you won't be able to see that the comment was removed while logged in.\n\n" +
			"If you think it was that subreddit's moderators, please let us know so we can add it to the " +
			"forbidden subs list. Also, sorry. It sucks when this happens."),
		Summary:        permalinkf("%s comment got deleted. Post should be removed."),
		ForbidResubmit: true,
	},
	{
		Kind:    issues.CommentNoLink,
		Explain: text("your submission does not link to a switcharoo. It's very likely you linked the wrong " +
			"comment. Read the sidebar or stickied \"how to\" post for more information."),
		Summary: permalinkf("%s has no link in the comment"),
	},
	{
		Kind:    issues.CommentLinkedWrong,
		Explain: func(_ Submission, prior PriorGood) string {
			return fmt.Sprintf("your switcharoo is not linked to the correct roo. Did you remember to sort the "+
				"subreddit by new? The correct link is \n\n%s\n\nCan you please change it to that? Thanks!",
				prior.SubmissionURL())
		},
		Summary: func(sub Submission, prior PriorGood) string {
			return fmt.Sprintf("%s%s comment is not linked to the next level, %s%s",
				redditBaseURL, sub.Permalink(), redditBaseURL, prior.CommentPermalink())
		},
		NeedsPrior:     true,
		ForbidResubmit: true,
		SetAction:      ActionWarn,
	},
	{
		Kind:    issues.CommentLinkedBadTarget,
		Explain: func(_ Submission, prior PriorGood) string {
			return fmt.Sprintf("your switcharoo links to a broken roo. Can you please change it to this link?"+
				"\n\n%s\n\nThanks!", prior.SubmissionURL())
		},
		Summary: func(sub Submission, prior PriorGood) string {
			return fmt.Sprintf("%s%s comment is linked to bad roo, not %s%s",
				redditBaseURL, sub.Permalink(), redditBaseURL, prior.CommentPermalink())
		},
		NeedsPrior:     true,
		ForbidResubmit: true,
		SetAction:      ActionWarn,
	},
	{
		Kind:    issues.CommentLacksContext,
		Explain: text("the roo you have **linked to in your comment** (not the URL you have submitted) is " +
			"missing a `?context=x` suffix. Most likely, the roo'er previous to you left it out but it's " +
			"possible you missed it in copying their link.\n\nGo to the switcharoo your comment links to and " +
			"count how many comments above it are needed to understand the joke. Then, in the link in your " +
			"comment, append `?context=x` to the end of the link, replacing x with the number of levels you " +
			"counted. Thanks for fixing it!"),
		Summary:        permalinkf("%s comment is correct link but did not have ?context in it"),
		NeedsPrior:     true,
		ForbidResubmit: true,
		SetAction:      ActionWarn,
		Escalate:       true,
	},
	{
		Kind:    issues.MultipleParams,
		Explain: text("your switcharoo had multiple '?' sections at the end of it. You can resubmit if you " +
			"delete everything after and including the '?' in your URL and then append `?context=x` to the " +
			"end of the URL. Don't forget to relink your switcharoo to the newest switcharoo submission!"),
		Summary:        permalinkf("%s had more than one param sections"),
		ForbidResubmit: true,
	},
	{
		Kind:    issues.TrailingSlash,
		Explain: text("your switcharoo had a trailing slash (\"/\") at the end of it. This causes the " +
			"`?context=x` property to not work. You can resubmit if you delete the slash(es) at the end of " +
			"the URL. Don't forget to relink your switcharoo to the newest switcharoo submission!"),
		Summary:        permalinkf("%s had a trailing slash at the end"),
		ForbidResubmit: true,
	},
	{
		Kind:    issues.NotReddit,
		Explain: text("the link leads outside of reddit. Did you mean to submit a meta post? Read the sidebar " +
			"for more information."),
		Summary:        permalinkf("%s is not a reddit link."),
		ForbidResubmit: true,
	},
	{
		Kind:    issues.IsMeta,
		Explain: text("your post appears to be a roo submitted as a text post. All switcharoos should be " +
			"submitted as link posts for clarity and subreddit organization."),
		Summary: permalinkf("%s is a meta post switcharoo"),
	},
	{
		Kind:    issues.IsNSFW,
		Explain: text("your post is linked to a NSFW post. As per r/switcharoo house rules, we don't allow " +
			"submissions from NSFW subreddits. Sorry about that!"),
		Summary:        permalinkf("%s is linked to a NSFW post and will not be considered for a roo"),
		ForbidResubmit: true,
		SetAction:      ActionDelete,
	},
}

// Decide evaluates an issue set against DefaultRules.
//
// "prior" may be nil, unless the set contains a rule with NeedsPrior.
func Decide(set issues.Set, sub Submission, prior PriorGood) (Decision, error) {
	return DecideWith(issues.DefaultRegistry(), DefaultRules, set, sub, prior)
}

// DecideWith evaluates an issue set against an explicit registry and rule table.
//
// Every kind in the set must be registered. Registered kinds with no rule (eg, lifecycle markers) are ignored. An empty set yields an ActionNone decision with no lines.
func DecideWith(reg *issues.Registry, rules []Rule, set issues.Set, sub Submission, prior PriorGood) (Decision, error) {
	if err := reg.Validate(set); err != nil {
		return Decision{}, err
	}
	if set.Len() == 0 {
		return Decision{action: ActionNone}, nil
	}

	// check up front, so that no partial decision is ever produced
	for _, r := range rules {
		if r.NeedsPrior && prior == nil && set.Has(r.Kind) {
			return Decision{}, &MissingContextError{Kind: r.Kind}
		}
	}

	d := Decision{
		lines:    []string{},
		action:   ActionDelete,
		resubmit: true,
	}
	for _, r := range rules {
		if !set.Has(r.Kind) {
			continue
		}
		d.lines = append(d.lines, r.Explain(sub, prior))
		if r.ForbidResubmit {
			d.resubmit = false
		}
		if r.SetAction != ActionNone {
			d.action = r.SetAction
		}
		if r.Escalate {
			d.escalate = true
		}
	}
	return d, nil
}

// Summarize renders operator-facing one-line descriptions of the issue set, in rule table order.
func Summarize(set issues.Set, sub Submission, prior PriorGood) ([]string, error) {
	if err := issues.DefaultRegistry().Validate(set); err != nil {
		return nil, err
	}
	out := []string{}
	for _, r := range DefaultRules {
		if !set.Has(r.Kind) {
			continue
		}
		if r.NeedsPrior && prior == nil {
			return nil, &MissingContextError{Kind: r.Kind}
		}
		out = append(out, r.Summary(sub, prior))
	}
	return out, nil
}
