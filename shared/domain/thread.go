package domain

import (
	"time"

	"github.com/google/uuid"
)

// to iterate thru layers: handler -> service -> storage
type ThreadCreationData struct {
	Board          BoardName
	Text           Text
	DeletePassword Password
}

type Thread struct {
	Id             ThreadId  `json:"_id" bson:"_id"`
	Text           Text      `json:"text" bson:"text"`
	CreatedOn      time.Time `json:"created_on" bson:"created_on"`
	BumpedOn       time.Time `json:"bumped_on" bson:"bumped_on"`
	Reported       bool      `json:"reported" bson:"reported"`
	DeletePassword Password  `json:"delete_password" bson:"delete_password"`
	Replies        []Reply   `json:"replies" bson:"replies"`
}

func NewThread(text Text, password Password, now time.Time) Thread {
	return Thread{
		Id:             uuid.NewString(),
		Text:           text,
		CreatedOn:      now,
		BumpedOn:       now,
		DeletePassword: password,
		Replies:        []Reply{},
	}
}

// Reply returns the reply with the given id and its position, or (nil, -1).
func (t *Thread) Reply(id ReplyId) (*Reply, int) {
	for i := range t.Replies {
		if t.Replies[i].Id == id {
			return &t.Replies[i], i
		}
	}
	return nil, -1
}

// AppendReply adds r at the end of the thread and bumps the thread to r's creation time.
func (t *Thread) AppendReply(r Reply) {
	t.Replies = append(t.Replies, r)
	t.Bump(r.CreatedOn)
}

// Bump never moves bumped_on backwards.
func (t *Thread) Bump(now time.Time) {
	if now.After(t.BumpedOn) {
		t.BumpedOn = now
	}
}

// ReplyCount counts soft-deleted replies too.
func (t *Thread) ReplyCount() int {
	return len(t.Replies)
}
