package issues

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistrySeverity(t *testing.T) {
	assert := assert.New(t)
	reg := DefaultRegistry()

	sev, err := reg.Severity(CommentDeleted)
	assert.NoError(err)
	assert.True(sev)

	sev, err = reg.Severity(CommentLinkedWrong)
	assert.NoError(err)
	assert.False(sev)

	_, err = reg.Severity(Kind("bogus"))
	var cerr *ConfigurationError
	assert.True(errors.As(err, &cerr))
	assert.Equal(Kind("bogus"), cerr.Kind)
}

func TestRegistryBad(t *testing.T) {
	assert := assert.New(t)
	reg := DefaultRegistry()

	bad := reg.Bad()
	assert.Contains(bad, IsNSFW)
	assert.Contains(bad, SubmissionDeleted)
	assert.NotContains(bad, CommentLacksContext)
	assert.NotContains(bad, CommentLinkedBadTarget)
	assert.Equal(14, len(reg.All()))
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	assert := assert.New(t)

	_, err := NewRegistry([]Issue{{ID: 1, Kind: IsMeta}, {ID: 2, Kind: IsMeta}})
	assert.Error(err)

	_, err = NewRegistry([]Issue{{ID: 1, Kind: IsMeta}, {ID: 1, Kind: IsNSFW}})
	assert.Error(err)

	reg, err := NewRegistry([]Issue{{ID: 7, Kind: IsNSFW, Severe: true}, {ID: 3, Kind: IsMeta}})
	assert.NoError(err)
	all := reg.All()
	assert.Equal(3, all[0].ID)
	assert.Equal(7, all[1].ID)
}

func TestParseList(t *testing.T) {
	assert := assert.New(t)
	reg := DefaultRegistry()

	kinds, err := reg.ParseList([]string{"is_meta", "trailing_slash"})
	assert.NoError(err)
	assert.Equal([]Kind{IsMeta, TrailingSlash}, kinds)

	_, err = reg.ParseList([]string{"is_meta", "nope"})
	assert.Error(err)
}

func TestSetAndValidate(t *testing.T) {
	assert := assert.New(t)
	reg := DefaultRegistry()

	s := NewSet(IsNSFW, IsMeta, IsNSFW)
	assert.Equal(2, s.Len())
	assert.True(s.Has(IsMeta))
	assert.False(s.Has(TrailingSlash))
	assert.Equal([]string{"is_meta", "is_nsfw"}, s.Strings())

	s2 := s.With(TrailingSlash)
	assert.Equal(3, s2.Len())
	assert.Equal(2, s.Len())

	assert.NoError(reg.Validate(s2))
	assert.Error(reg.Validate(s2.With(Kind("unknown"))))

	bad, err := reg.IsBad(NewSet(CommentLinkedWrong))
	assert.NoError(err)
	assert.False(bad)
	bad, err = reg.IsBad(NewSet(CommentLinkedWrong, TrailingSlash))
	assert.NoError(err)
	assert.True(bad)

	var empty Set
	assert.Equal(0, empty.Len())
	assert.False(empty.Has(IsMeta))
}

func TestSetKindsOrder(t *testing.T) {
	assert := assert.New(t)

	// lacks_context has a lower registry ID than comment_deleted
	s := NewSet(LacksContext, CommentDeleted, IsMeta)
	assert.Equal([]Kind{CommentDeleted, IsMeta, LacksContext}, s.Kinds())
	assert.Equal([]Kind{}, NewSet().Kinds())
}
