package notify

import (
	"context"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// 管理员广播
const TopicAdmins = "admins"

func UserTopic(userID string) string { return "user-" + userID }

// Event 最多送达一次，不落库；Name 同时是 SSE 的 event 名
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Message 订阅端收到的事件，Data 保持 JSON 原文
type Message struct {
	Topic string
	Name  string
	Data  jsoniter.RawMessage
}

type Publisher interface {
	Publish(ctx context.Context, topic string, ev Event) error
}

type PublisherFunc func(ctx context.Context, topic string, ev Event) error

func (f PublisherFunc) Publish(ctx context.Context, topic string, ev Event) error {
	return f(ctx, topic, ev)
}

var Discard Publisher = PublisherFunc(func(context.Context, string, Event) error { return nil })

func encode(ev Event) ([]byte, error) { return json.Marshal(ev) }

func decode(topic string, payload []byte) (Message, error) {
	var raw struct {
		Name string              `json:"event"`
		Data jsoniter.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Message{}, err
	}
	return Message{Topic: topic, Name: raw.Name, Data: raw.Data}, nil
}
