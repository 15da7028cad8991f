package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyReactionAppend(t *testing.T) {
	out := ApplyReaction(nil, "u1", "😂")
	assert.Equal(t, []Reaction{{UserID: "u1", Symbol: "😂"}}, out)
}

func TestApplyReactionReplace(t *testing.T) {
	list := []Reaction{{UserID: "u1", Symbol: "😂"}, {UserID: "u2", Symbol: "🔥"}}
	out := ApplyReaction(list, "u1", "🎉")
	assert.Equal(t, []Reaction{{UserID: "u1", Symbol: "🎉"}, {UserID: "u2", Symbol: "🔥"}}, out)
	// input untouched
	assert.Equal(t, "😂", list[0].Symbol)
}

// Applying the same symbol twice from an empty list is add-then-remove.
func TestApplyReactionToggleIdempotence(t *testing.T) {
	once := ApplyReaction(nil, "u1", "😂")
	twice := ApplyReaction(once, "u1", "😂")
	assert.Empty(t, twice)
}

// Re-tapping "like" clears the user's entry no matter what they held.
func TestApplyReactionLikeToggle(t *testing.T) {
	for _, prior := range []string{LikeSymbol, "😂", "🔥"} {
		list := []Reaction{{UserID: "u1", Symbol: prior}}
		out := ApplyReaction(list, "u1", LikeSymbol)
		assert.Empty(t, out, "prior symbol %q", prior)
	}

	once := ApplyReaction(nil, "u1", LikeSymbol)
	assert.Len(t, once, 1)
	assert.Empty(t, ApplyReaction(once, "u1", LikeSymbol))
}

func TestApplyReactionSameSymbolRemoves(t *testing.T) {
	list := []Reaction{
		{UserID: "u1", Symbol: "😂"},
		{UserID: "u2", Symbol: LikeSymbol},
	}
	out := ApplyReaction(list, "u1", "😂")
	assert.Equal(t, []Reaction{{UserID: "u2", Symbol: LikeSymbol}}, out)
	assert.Equal(t, " 1", ReactionSummary(out))
}

func TestReactionDigestCapsAtFour(t *testing.T) {
	var list []Reaction
	for i := 0; i < 6; i++ {
		list = append(list, Reaction{UserID: fmt.Sprintf("u%d", i), Symbol: fmt.Sprintf("s%d", i)})
	}
	list = append(list, Reaction{UserID: "u9", Symbol: LikeSymbol})

	digest := ReactionDigest(list)
	assert.Equal(t, "s0s1s2s3", digest)
	assert.Equal(t, "s0s1s2s3 7", ReactionSummary(list))
}

func TestReactionDigestSkipsDuplicatesAndLikes(t *testing.T) {
	list := []Reaction{
		{UserID: "u1", Symbol: LikeSymbol},
		{UserID: "u2", Symbol: "😂"},
		{UserID: "u3", Symbol: "😂"},
		{UserID: "u4", Symbol: "🔥"},
	}
	assert.Equal(t, "😂🔥", ReactionDigest(list))
	assert.Equal(t, "😂🔥 4", ReactionSummary(list))
}

func TestSelectedReaction(t *testing.T) {
	list := []Reaction{{UserID: "u1", Symbol: "😂"}}
	assert.Equal(t, "😂", SelectedReaction(list, "u1"))
	assert.Equal(t, "", SelectedReaction(list, "u2"))
}
