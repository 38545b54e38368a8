package knowledge

import "strings"

// Base is an ordered, immutable topic catalog. Declaration order is the tie-break for inputs
// that hit keywords of several topics.
type Base struct {
	topics []Topic
	byID   map[string]int
}

// NewBase builds a catalog from topics in the given order after validating them.
func NewBase(topics []Topic) (*Base, error) {
	if err := validate(topics); err != nil {
		return nil, err
	}

	b := &Base{
		topics: make([]Topic, 0, len(topics)),
		byID:   make(map[string]int, len(topics)),
	}
	for i, topic := range topics {
		b.topics = append(b.topics, topic.clone())
		b.byID[topic.ID] = i
	}

	return b, nil
}

// Match returns the first topic, in declaration order, with a keyword contained in the
// lower-cased input.
func (b *Base) Match(input string) (Topic, bool) {
	if b == nil {
		return Topic{}, false
	}

	lowered := strings.ToLower(input)
	for _, topic := range b.topics {
		if topic.Matches(lowered) {
			return topic.clone(), true
		}
	}

	return Topic{}, false
}

// Topic looks a topic up by id.
func (b *Base) Topic(id string) (Topic, bool) {
	if b == nil {
		return Topic{}, false
	}

	idx, ok := b.byID[id]
	if !ok {
		return Topic{}, false
	}
	return b.topics[idx].clone(), true
}

// Topics returns a copy of the catalog in declaration order.
func (b *Base) Topics() []Topic {
	if b == nil {
		return nil
	}

	out := make([]Topic, len(b.topics))
	for i, topic := range b.topics {
		out[i] = topic.clone()
	}
	return out
}

// Len returns the number of topics.
func (b *Base) Len() int {
	if b == nil {
		return 0
	}
	return len(b.topics)
}
