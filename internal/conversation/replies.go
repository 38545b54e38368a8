package conversation

import (
	"fmt"
	"time"
)

// Reply is what the bot says next.
type Reply struct {
	Text             string
	SuggestedReplies []string
	// Typing is how long a typing indicator should be shown before the reply.
	Typing time.Duration
}

const (
	typingShort  = 600 * time.Millisecond
	typingMedium = 800 * time.Millisecond
	typingLong   = 1000 * time.Millisecond
	typingTopic  = 1200 * time.Millisecond
)

const (
	welcomeText = "👋 Hey there! I'm your Data Engineering Assistant.\n\n" +
		"I can help you with pipelines, ETL/ELT, streaming architectures, cloud platforms, and data tooling. " +
		"First, let me get to know you a bit."

	askNameText = "Great! Let's start with your name. What should I call you?"
	browseText  = "Here are some areas I can help with:"
	expertText  = "Perfect! I'll connect you with our data engineering team. They'll reach out within 24 hours.\n\n" +
		"Before I do, could you share:\n• Your email\n• Company name\n• Brief description of your challenge"
	greetingFallbackText = "I can help you with data engineering questions or connect you with our team. What would you like to do?"
	askRoleText          = "And what's your role there?"
	handoffText          = "That's a great question! Let me connect you with the right resources or one of our data engineers " +
		"who can provide detailed guidance.\n\nIn the meantime, you might find these topics helpful:"
)

var (
	welcomeReplies          = []string{"Get started", "Browse topics", "Talk to expert"}
	browseReplies           = []string{"Data pipelines", "Streaming vs batch", "Cloud platforms", "ETL/ELT", "SQL optimization"}
	greetingFallbackReplies = []string{"Ask a question", "Talk to expert"}
	useCaseReplies          = []string{"Build pipelines", "Real-time processing", "Cloud migration", "Data warehouse", "Team is struggling"}
	redirectReplies         = []string{"Data pipelines", "Streaming solutions", "Cloud platforms", "Architecture review"}
	handoffReplies          = []string{"Pipeline design", "Streaming architectures", "Tool comparison", "Schedule consultation"}
)

// Welcome is the opening message of every session.
func Welcome() Reply {
	return reply(welcomeText, welcomeReplies, 0)
}

func greetByName(name string) string {
	return fmt.Sprintf("Nice to meet you, %s! What company are you with?", name)
}

func askUseCase(role, company string) string {
	return fmt.Sprintf("Perfect! So you're a %s at %s.\n\n"+
		"What brings you here today? What's your main data engineering challenge or use case?", role, company)
}

func pipelineIntro(p Profile) string {
	return fmt.Sprintf("Great question, %s! Building data pipelines at %s - let me help.\n\n", p.Name, p.Company)
}

func streamingIntro(p Profile) string {
	return fmt.Sprintf("Real-time processing for %s - exciting! Here's what you need to know:\n\n", p.Company)
}

func cloudIntro(p Profile) string {
	return fmt.Sprintf("Cloud migration is a big step for %s. Let's explore your options:\n\n", p.Company)
}

func redirect(name string) string {
	return fmt.Sprintf("Thanks for sharing, %s! I can help you with various aspects of data engineering. "+
		"What would you like to explore?", name)
}

func reply(text string, suggestions []string, typing time.Duration) Reply {
	return Reply{Text: text, SuggestedReplies: cloneStrings(suggestions), Typing: typing}
}
