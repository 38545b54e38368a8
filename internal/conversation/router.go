package conversation

import (
	"strings"

	"github.com/Proton-105/dataeng-assistant/internal/knowledge"
)

// Topic ids the use-case step personalizes.
const (
	TopicPipelines = "pipelines"
	TopicStreaming = "streaming"
	TopicCloud     = "cloud"
)

// Outcome is the result of one router step.
type Outcome struct {
	State   State
	Profile Profile
	Reply   Reply
}

// Router decides the next scripted message when no knowledge topic matched.
type Router struct {
	base *knowledge.Base
}

// NewRouter builds a router that borrows topic responses from base for personalized answers.
func NewRouter(base *knowledge.Base) *Router {
	if base == nil {
		base = knowledge.Default()
	}
	return &Router{base: base}
}

// Advance is the pure transition function of the onboarding flow.
func (r *Router) Advance(state State, profile Profile, input string) Outcome {
	lowered := strings.ToLower(input)

	switch state {
	case StateCollectingInfo:
		return r.collectInfo(profile, input)
	case StateDiscussingUseCase:
		return r.discussUseCase(profile, input, lowered)
	case StateAnswering:
		return Outcome{State: StateAnswering, Profile: profile, Reply: reply(handoffText, handoffReplies, typingLong)}
	default:
		return r.greet(profile, lowered)
	}
}

func (r *Router) greet(profile Profile, lowered string) Outcome {
	switch {
	case containsAny(lowered, "get started", "begin", "yes"):
		return Outcome{State: StateCollectingInfo, Profile: profile, Reply: reply(askNameText, nil, typingMedium)}
	case containsAny(lowered, "browse", "topics"):
		return Outcome{State: StateGreeting, Profile: profile, Reply: reply(browseText, browseReplies, typingMedium)}
	case containsAny(lowered, "expert", "talk"):
		// Contact details are requested but not captured; the state stays put.
		return Outcome{State: StateGreeting, Profile: profile, Reply: reply(expertText, nil, typingMedium)}
	default:
		return Outcome{State: StateGreeting, Profile: profile, Reply: reply(greetingFallbackText, greetingFallbackReplies, typingShort)}
	}
}

func (r *Router) collectInfo(profile Profile, input string) Outcome {
	switch {
	case profile.Name == "":
		profile.Name = input
		return Outcome{State: StateCollectingInfo, Profile: profile, Reply: reply(greetByName(input), nil, typingMedium)}
	case profile.Company == "":
		profile.Company = input
		return Outcome{State: StateCollectingInfo, Profile: profile, Reply: reply(askRoleText, nil, typingMedium)}
	case profile.Role == "":
		profile.Role = input
	}

	return Outcome{
		State:   StateDiscussingUseCase,
		Profile: profile,
		Reply:   reply(askUseCase(profile.Role, profile.Company), useCaseReplies, typingLong),
	}
}

func (r *Router) discussUseCase(profile Profile, input, lowered string) Outcome {
	if profile.UseCase == "" {
		profile.UseCase = input
	}

	out := Outcome{State: StateAnswering, Profile: profile}

	switch {
	case containsAny(lowered, "pipeline", "build"):
		out.Reply = r.personalized(TopicPipelines, pipelineIntro(profile), profile)
	case containsAny(lowered, "real-time", "streaming"):
		out.Reply = r.personalized(TopicStreaming, streamingIntro(profile), profile)
	case containsAny(lowered, "cloud", "migration"):
		out.Reply = r.personalized(TopicCloud, cloudIntro(profile), profile)
	default:
		out.Reply = reply(redirect(profile.Name), redirectReplies, typingLong)
	}

	return out
}

func (r *Router) personalized(topicID, intro string, profile Profile) Reply {
	topic, ok := r.base.Topic(topicID)
	if !ok {
		return reply(redirect(profile.Name), redirectReplies, typingLong)
	}
	return reply(intro+topic.Response, topic.SuggestedReplies, typingTopic)
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
