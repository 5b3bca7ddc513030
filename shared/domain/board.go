package domain

// Board is a whole document: the board owns its threads, each thread owns its replies.
// Tags describe the storage encoding only, read responses go through the projections.
type Board struct {
	Name    BoardName `json:"board" bson:"board"`
	Threads []Thread  `json:"threads" bson:"threads"`
	Version int64     `json:"version" bson:"version"`
}

type BoardMetadata struct {
	Name        BoardName
	ThreadCount int
}

func (b *Board) Metadata() BoardMetadata {
	return BoardMetadata{Name: b.Name, ThreadCount: len(b.Threads)}
}

// Thread returns the thread with the given id and its position, or (nil, -1).
// The pointer addresses the board's own slice, so mutations through it are kept.
func (b *Board) Thread(id ThreadId) (*Thread, int) {
	for i := range b.Threads {
		if b.Threads[i].Id == id {
			return &b.Threads[i], i
		}
	}
	return nil, -1
}

// RemoveThread drops the thread at position i, keeping the order of the rest.
func (b *Board) RemoveThread(i int) {
	b.Threads = append(b.Threads[:i], b.Threads[i+1:]...)
}

// Clone returns a deep copy, so stores can hand out boards without sharing slices.
func (b *Board) Clone() *Board {
	c := &Board{Name: b.Name, Version: b.Version, Threads: make([]Thread, len(b.Threads))}
	for i, t := range b.Threads {
		t.Replies = append([]Reply{}, t.Replies...)
		c.Threads[i] = t
	}
	return c
}
