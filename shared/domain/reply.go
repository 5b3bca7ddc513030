package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReplyCreationData struct {
	Board          BoardName
	ThreadId       ThreadId
	Text           Text
	DeletePassword Password
}

type Reply struct {
	Id             ReplyId   `json:"_id" bson:"_id"`
	Text           Text      `json:"text" bson:"text"`
	CreatedOn      time.Time `json:"created_on" bson:"created_on"`
	Reported       bool      `json:"reported" bson:"reported"`
	DeletePassword Password  `json:"delete_password" bson:"delete_password"`
}

func NewReply(text Text, password Password, now time.Time) Reply {
	return Reply{
		Id:             uuid.NewString(),
		Text:           text,
		CreatedOn:      now,
		DeletePassword: password,
	}
}

func IsDeleted(r Reply) bool {
	return r.Text == DeletedText
}

// SoftDelete redacts the text in place. Id, timestamp and position stay.
func (r *Reply) SoftDelete() {
	r.Text = DeletedText
}
