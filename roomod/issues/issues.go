package issues

import (
	"fmt"
	"sort"
)

// Kind identifies a defect detected on a switcharoo submission.
type Kind string

const (
	LacksContext           Kind = "lacks_context"
	LinkedThread           Kind = "linked_thread"
	CommentDeleted         Kind = "comment_deleted"
	CommentNoLink          Kind = "comment_no_link"
	CommentLinkedWrong     Kind = "comment_linked_wrong"
	CommentLinkedBadTarget Kind = "comment_linked_bad_target"
	CommentLacksContext    Kind = "comment_lacks_context"
	MultipleParams         Kind = "multiple_params"
	TrailingSlash          Kind = "trailing_slash"
	NotReddit              Kind = "not_reddit"
	IsMeta                 Kind = "is_meta"
	IsNSFW                 Kind = "is_nsfw"

	// lifecycle markers, never explained to users
	SubmissionDeleted    Kind = "submission_deleted"
	SubmissionProcessing Kind = "submission_processing"
)

// Issue is a registry entry. ID is stable and used as the primary key of the persisted issue table.
type Issue struct {
	ID     int
	Kind   Kind
	Severe bool
}

// ConfigurationError indicates a Kind which isn't in the registry. This is a programming error, not a runtime condition.
type ConfigurationError struct {
	Kind Kind
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown issue kind: %q", string(e.Kind))
}

var defaultIssues = []Issue{
	{ID: 1, Kind: LacksContext, Severe: true},
	{ID: 2, Kind: LinkedThread, Severe: true},
	{ID: 3, Kind: CommentDeleted, Severe: true},
	{ID: 4, Kind: CommentNoLink, Severe: true},
	{ID: 5, Kind: CommentLinkedWrong, Severe: false},
	{ID: 6, Kind: CommentLacksContext, Severe: false},
	{ID: 7, Kind: MultipleParams, Severe: true},
	{ID: 8, Kind: TrailingSlash, Severe: true},
	{ID: 9, Kind: NotReddit, Severe: true},
	{ID: 10, Kind: CommentLinkedBadTarget, Severe: false},
	{ID: 11, Kind: SubmissionDeleted, Severe: true},
	{ID: 12, Kind: IsMeta, Severe: true},
	{ID: 13, Kind: SubmissionProcessing, Severe: true},
	{ID: 14, Kind: IsNSFW, Severe: true},
}

// Static table of known issue kinds. Built once and never mutated, so it is safe for concurrent reads.
type Registry struct {
	byKind map[Kind]Issue
	all    []Issue
}

func NewRegistry(list []Issue) (*Registry, error) {
	r := &Registry{
		byKind: make(map[Kind]Issue, len(list)),
		all:    make([]Issue, 0, len(list)),
	}
	ids := make(map[int]bool, len(list))
	for _, iss := range list {
		if iss.Kind == "" {
			return nil, fmt.Errorf("issue %d has empty kind", iss.ID)
		}
		if _, ok := r.byKind[iss.Kind]; ok {
			return nil, fmt.Errorf("duplicate issue kind: %s", iss.Kind)
		}
		if ids[iss.ID] {
			return nil, fmt.Errorf("duplicate issue id: %d", iss.ID)
		}
		ids[iss.ID] = true
		r.byKind[iss.Kind] = iss
		r.all = append(r.all, iss)
	}
	sort.Slice(r.all, func(i, j int) bool { return r.all[i].ID < r.all[j].ID })
	return r, nil
}

var defaultRegistry = mustRegistry(defaultIssues)

func mustRegistry(list []Issue) *Registry {
	r, err := NewRegistry(list)
	if err != nil {
		panic(err)
	}
	return r
}

// The process-wide registry of issue kinds.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func (r *Registry) Lookup(k Kind) (Issue, error) {
	iss, ok := r.byKind[k]
	if !ok {
		return Issue{}, &ConfigurationError{Kind: k}
	}
	return iss, nil
}

// Severity reports whether the kind makes a submission "bad" (unusable as a link in the chain).
func (r *Registry) Severity(k Kind) (bool, error) {
	iss, err := r.Lookup(k)
	if err != nil {
		return false, err
	}
	return iss.Severe, nil
}

// All returns every registered issue, in ID order.
func (r *Registry) All() []Issue {
	out := make([]Issue, len(r.all))
	copy(out, r.all)
	return out
}

// Bad returns the kinds flagged as severe, in ID order.
func (r *Registry) Bad() []Kind {
	out := []Kind{}
	for _, iss := range r.all {
		if iss.Severe {
			out = append(out, iss.Kind)
		}
	}
	return out
}

func (r *Registry) Parse(s string) (Kind, error) {
	k := Kind(s)
	if _, err := r.Lookup(k); err != nil {
		return "", err
	}
	return k, nil
}

func (r *Registry) ParseList(raw []string) ([]Kind, error) {
	out := make([]Kind, 0, len(raw))
	for _, s := range raw {
		k, err := r.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// Validate returns a ConfigurationError for the first unregistered kind in the set.
func (r *Registry) Validate(s Set) error {
	for _, k := range s.Kinds() {
		if _, err := r.Lookup(k); err != nil {
			return err
		}
	}
	return nil
}

// IsBad is true if any kind in the set is severe. Unknown kinds are an error.
func (r *Registry) IsBad(s Set) (bool, error) {
	bad := false
	for _, k := range s.Kinds() {
		sev, err := r.Severity(k)
		if err != nil {
			return false, err
		}
		if sev {
			bad = true
		}
	}
	return bad, nil
}
