package engine

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/rivo/uniseg"
)

var DefaultGreetings = []string{"Hi!", "Hey!", "Howdy!", "Hello!"}

const (
	headerTemplate         = "%s\n\n"
	deleteSingleTemplate   = "Unfortunately, your switcharoo has been removed because %s\n\n"
	deleteMultipleTemplate = "Unfortunately, your switcharoo has been removed for the following reasons:\n\n%s\n"
	warnSingleTemplate     = "There is a problem with your switcharoo: %s\n\n"
	warnMultipleTemplate   = "There are a few problems with your switcharoo:\n\n%s\n"
	resubmitTemplate       = "Once you have fixed the %s above, you are welcome to resubmit your switcharoo. " +
		"Don't forget to link it to the newest switcharoo submission!\n\n"
	messageFooter = "---\n\n^(I am a bot and this action was performed automatically. If you have any " +
		"questions, please) [^(contact the moderators of this subreddit.)](https://www.reddit.com/message/compose?to=/r/switcharoo)"
)

// Renders decisions into reply text. The zero value picks uniformly from DefaultGreetings.
type Composer struct {
	Greetings []string
	// returns an integer in [0, n). defaults to math/rand/v2.IntN
	Pick func(n int) int
}

func (c *Composer) greeting() string {
	greetings := c.Greetings
	if len(greetings) == 0 {
		greetings = DefaultGreetings
	}
	pick := c.Pick
	if pick == nil {
		pick = rand.IntN
	}
	return greetings[pick(len(greetings))]
}

// Compose renders the decision with a randomly chosen greeting.
func (c *Composer) Compose(d Decision) string {
	return ComposeWithGreeting(d, c.greeting())
}

// ComposeWithGreeting renders the decision deterministically. Decisions with ActionNone render as an empty string.
func ComposeWithGreeting(d Decision, greeting string) string {
	var single, multi string
	switch d.Action() {
	case ActionDelete:
		single, multi = deleteSingleTemplate, deleteMultipleTemplate
	case ActionWarn:
		single, multi = warnSingleTemplate, warnMultipleTemplate
	default:
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, headerTemplate, greeting)

	lines := d.Lines()
	if len(lines) == 1 {
		fmt.Fprintf(&b, single, lines[0])
	} else {
		var reasons strings.Builder
		for _, l := range lines {
			reasons.WriteString("* ")
			reasons.WriteString(capitalize(l))
			reasons.WriteString("\n")
		}
		fmt.Fprintf(&b, multi, reasons.String())
	}

	if d.Action() == ActionDelete && d.Resubmit() {
		noun := "issues"
		if len(lines) == 1 {
			noun = "issue"
		}
		fmt.Fprintf(&b, resubmitTemplate, noun)
	}

	b.WriteString(messageFooter)
	return b.String()
}

// upper-cases the first grapheme cluster, so combining marks stay attached
func capitalize(s string) string {
	gr := uniseg.NewGraphemes(s)
	if !gr.Next() {
		return s
	}
	first := gr.Str()
	return strings.ToUpper(first) + s[len(first):]
}
