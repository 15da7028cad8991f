package models

import (
	"fmt"
	"strings"
)

// LikeSymbol is the privileged reaction rendered as the heart icon. It is
// excluded from the emoji digest and re-tapping it always clears the
// user's reaction.
const LikeSymbol = "like"

// digestMaxSymbols caps the digest for display width, not storage.
const digestMaxSymbols = 4

// ApplyReaction upserts or toggles a single user's reaction on an image's
// reaction list and returns the new list.
//
// Rules: if the user already reacted with the same symbol, or the new
// symbol is "like", the entry is removed. A different symbol replaces the
// existing entry (one reaction per user per image). Otherwise the entry
// is appended.
func ApplyReaction(reactions []Reaction, userID, symbol string) []Reaction {
	out := make([]Reaction, len(reactions))
	copy(out, reactions)

	for i, r := range out {
		if r.UserID != userID {
			continue
		}
		if r.Symbol == symbol || symbol == LikeSymbol {
			return append(out[:i], out[i+1:]...)
		}
		out[i].Symbol = symbol
		return out
	}

	return append(out, Reaction{UserID: userID, Symbol: symbol})
}

// ReactionDigest builds the compact display string: up to four distinct
// non-"like" symbols in list order, concatenated.
func ReactionDigest(reactions []Reaction) string {
	var digest []string
	for i := 0; i < len(reactions) && len(digest) < digestMaxSymbols; i++ {
		symbol := reactions[i].Symbol
		if symbol == LikeSymbol {
			continue
		}
		seen := false
		for _, s := range digest {
			if s == symbol {
				seen = true
				break
			}
		}
		if !seen {
			digest = append(digest, symbol)
		}
	}
	return strings.Join(digest, "")
}

// ReactionSummary is the digest plus the total reaction count, as shown
// under each image.
func ReactionSummary(reactions []Reaction) string {
	return fmt.Sprintf("%s %d", ReactionDigest(reactions), len(reactions))
}

// SelectedReaction returns the symbol the user currently holds on the
// image, or empty if none.
func SelectedReaction(reactions []Reaction, userID string) string {
	for _, r := range reactions {
		if r.UserID == userID {
			return r.Symbol
		}
	}
	return ""
}
