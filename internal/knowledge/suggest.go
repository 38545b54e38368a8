package knowledge

import "strings"

// Suggest returns follow-up questions for the given conversation context.
func Suggest(context string) []string {
	lowered := strings.ToLower(context)

	switch {
	case strings.Contains(lowered, "pipeline"):
		return []string{
			"How do I monitor pipeline failures?",
			"What's the best way to handle late-arriving data?",
			"How do I implement incremental processing?",
		}
	case strings.Contains(lowered, "streaming"), strings.Contains(lowered, "kafka"):
		return []string{
			"How do I handle out-of-order events?",
			"What's the difference between at-least-once and exactly-once delivery?",
			"How do I scale Kafka consumers?",
		}
	case strings.Contains(lowered, "cloud"), strings.Contains(lowered, "aws"), strings.Contains(lowered, "gcp"):
		return []string{
			"What are best practices for cloud cost optimization?",
			"How do I set up disaster recovery?",
			"What's the right warehouse for my use case?",
		}
	default:
		return []string{
			"Tell me about data pipelines",
			"What's the difference between batch and streaming?",
			"How do I choose a cloud platform?",
		}
	}
}
