package bot

import telebot "gopkg.in/telebot.v3"

// Command constants for Telegram bot commands.
const (
	CommandStart   = "/start"
	CommandCancel  = "/cancel"
	CommandProfile = "/profile"
	CommandTopics  = "/topics"
	CommandHelp    = "/help"
)

// menuCommands are advertised in the Telegram command menu.
var menuCommands = []telebot.Command{
	{Text: "start", Description: "Start a new conversation"},
	{Text: "topics", Description: "Browse data engineering topics"},
	{Text: "profile", Description: "Show what you've shared so far"},
	{Text: "cancel", Description: "Clear the conversation"},
	{Text: "help", Description: "How to use this bot"},
}
