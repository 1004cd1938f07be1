package session

import (
	"fmt"
	"slices"
	"strings"
)

// Topic is the conversation category sent along with each chat message
type Topic string

const (
	TopicGeneral Topic = "General"
	TopicWeather Topic = "Weather"
	TopicScience Topic = "Science"
	TopicTech    Topic = "Tech"
	TopicNews    Topic = "News"
)

var topics = []Topic{TopicGeneral, TopicWeather, TopicScience, TopicTech, TopicNews}

// Topics returns the selectable topics in display order
func Topics() []Topic {
	return slices.Clone(topics)
}

// Valid reports whether t is one of the selectable topics
func (t Topic) Valid() bool {
	return slices.Contains(topics, t)
}

// Next returns the topic after t, wrapping around. Unknown topics go back to General.
func (t Topic) Next() Topic {
	i := slices.Index(topics, t)
	if i < 0 {
		return TopicGeneral
	}
	return topics[(i+1)%len(topics)]
}

// ParseTopic matches s against the selectable topics, ignoring case.
// An empty string selects General.
func ParseTopic(s string) (Topic, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TopicGeneral, nil
	}
	for _, t := range topics {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown topic %q", s)
}
