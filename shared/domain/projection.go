package domain

import (
	"sort"
	"time"
)

// Read projections. None of them carries delete_password or reported:
// everything leaving the system in a read response is built here.

type ReplyView struct {
	Id        ReplyId   `json:"_id"`
	Text      Text      `json:"text"`
	CreatedOn time.Time `json:"created_on"`
}

type ThreadSummary struct {
	Id            ThreadId    `json:"_id"`
	Text          Text        `json:"text"`
	CreatedOn     time.Time   `json:"created_on"`
	BumpedOn      time.Time   `json:"bumped_on"`
	ReplyCount    int         `json:"reply_count"`
	LatestReplies []ReplyView `json:"latest_replies"`
}

type ThreadDetail struct {
	Id        ThreadId    `json:"_id"`
	Text      Text        `json:"text"`
	CreatedOn time.Time   `json:"created_on"`
	BumpedOn  time.Time   `json:"bumped_on"`
	Replies   []ReplyView `json:"replies"`
}

type BoardSummary struct {
	Board         BoardName       `json:"board"`
	LatestThreads []ThreadSummary `json:"latest_threads"`
}

func ProjectReply(r Reply) ReplyView {
	return ReplyView{Id: r.Id, Text: r.Text, CreatedOn: r.CreatedOn}
}

func projectReplies(replies []Reply) []ReplyView {
	views := make([]ReplyView, len(replies))
	for i, r := range replies {
		views[i] = ProjectReply(r)
	}
	return views
}

// Summarize keeps the last n replies in arrival order; reply_count stays the full count.
func Summarize(t Thread, n int) ThreadSummary {
	latest := t.Replies
	if n >= 0 && len(latest) > n {
		latest = latest[len(latest)-n:]
	}
	return ThreadSummary{
		Id:            t.Id,
		Text:          t.Text,
		CreatedOn:     t.CreatedOn,
		BumpedOn:      t.BumpedOn,
		ReplyCount:    t.ReplyCount(),
		LatestReplies: projectReplies(latest),
	}
}

func Detail(t Thread) ThreadDetail {
	return ThreadDetail{
		Id:        t.Id,
		Text:      t.Text,
		CreatedOn: t.CreatedOn,
		BumpedOn:  t.BumpedOn,
		Replies:   projectReplies(t.Replies),
	}
}

// SortByBump orders a copy of threads by bumped_on desc. Ties go to the newer
// thread, then to the smaller id, so the order is deterministic.
func SortByBump(threads []Thread) []Thread {
	sorted := make([]Thread, len(threads))
	copy(sorted, threads)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.BumpedOn.Equal(b.BumpedOn) {
			return a.BumpedOn.After(b.BumpedOn)
		}
		if !a.CreatedOn.Equal(b.CreatedOn) {
			return a.CreatedOn.After(b.CreatedOn)
		}
		return a.Id < b.Id
	})
	return sorted
}

// Latest summarizes at most nThreads most recently bumped threads of b,
// each with at most nReplies latest replies.
func Latest(b *Board, nThreads, nReplies int) BoardSummary {
	sorted := SortByBump(b.Threads)
	if len(sorted) > nThreads {
		sorted = sorted[:nThreads]
	}
	summaries := make([]ThreadSummary, len(sorted))
	for i, t := range sorted {
		summaries[i] = Summarize(t, nReplies)
	}
	return BoardSummary{Board: b.Name, LatestThreads: summaries}
}

// SortBoards orders by thread count desc, ties by name.
func SortBoards(boards []BoardMetadata) {
	sort.SliceStable(boards, func(i, j int) bool {
		if boards[i].ThreadCount != boards[j].ThreadCount {
			return boards[i].ThreadCount > boards[j].ThreadCount
		}
		return boards[i].Name < boards[j].Name
	})
}
