package model

import "sort"

// MessageLess is the canonical chronological order of messages
func MessageLess(a, b *Message) bool {
	if !a.PostedAt.Equal(b.PostedAt) {
		return a.PostedAt.Before(b.PostedAt)
	}
	if a.TS != b.TS {
		return a.TS < b.TS
	}
	return a.ID < b.ID
}

// SortMessages orders msgs chronologically in place
func SortMessages(msgs []*Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return MessageLess(msgs[i], msgs[j])
	})
}
