package enums

import "fmt"

// EventTopic names a change notification raised after a collection is written.
type EventTopic string

const (
	EventTopicProductsUpdated EventTopic = "products-updated"
	EventTopicCartUpdated     EventTopic = "cart-updated"
	EventTopicOrdersUpdated   EventTopic = "orders-updated"
)

var validEventTopics = []EventTopic{
	EventTopicProductsUpdated,
	EventTopicCartUpdated,
	EventTopicOrdersUpdated,
}

// String implements fmt.Stringer.
func (t EventTopic) String() string {
	return string(t)
}

// IsValid reports whether the value is a known EventTopic.
func (t EventTopic) IsValid() bool {
	for _, candidate := range validEventTopics {
		if candidate == t {
			return true
		}
	}
	return false
}

// EventTopics returns every known topic.
func EventTopics() []EventTopic {
	out := make([]EventTopic, len(validEventTopics))
	copy(out, validEventTopics)
	return out
}

// ParseEventTopic converts raw input into an EventTopic.
func ParseEventTopic(value string) (EventTopic, error) {
	for _, candidate := range validEventTopics {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event topic %q", value)
}
