package handlers

import telebot "gopkg.in/telebot.v3"

// HelpText lists the bot commands.
const HelpText = "I'm a data engineering assistant. Just type your question, or use:\n\n" +
	"/start - start a new conversation\n" +
	"/topics - browse what I know about\n" +
	"/profile - see what you've told me\n" +
	"/cancel - clear the conversation\n" +
	"/help - show this message"

// NewHelpHandler replies with the command list.
func NewHelpHandler() Handler {
	return func(c telebot.Context) error {
		return c.Send(HelpText)
	}
}
