package amqp

import (
	"encoding/json"
	"time"
)

// Message announces that stored data changed. Consumers reload what they need.
type Message struct {
	Event string    `json:"event"`
	At    time.Time `json:"at"`
}

func NewMessage(event string, at time.Time) Message {
	return Message{Event: event, At: at.UTC()}
}

func (m Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MessageFromJSON(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, err
	}
	return m, nil
}
