package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Proton-105/dataeng-assistant/internal/chat"
	"github.com/Proton-105/dataeng-assistant/internal/conversation"
	"github.com/Proton-105/dataeng-assistant/internal/session"
)

const (
	cliSessionID = "cli:local"
	cmdQuit      = "/quit"
	cmdReset     = "/reset"
)

func chatCMD() *cobra.Command {
	var pace bool
	var chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := loadKnowledge()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			manager := session.NewManager(session.NewMemoryStorage(session.DefaultTTL), nil, nil)
			svc := chat.NewService(conversation.NewEngine(base), manager, nil, nil)

			var pacer *conversation.Pacer
			if pace {
				pacer = conversation.NewPacer(1)
			}
			return runChat(ctx, svc, pacer, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	chatCmd.Flags().BoolVar(&pace, "pace", false, "pause like a typing human before each reply")

	return chatCmd
}

// runChat reads one message per line until EOF or /quit.
func runChat(ctx context.Context, svc *chat.Service, pacer *conversation.Pacer, in io.Reader, out io.Writer) error {
	_, welcome, err := svc.Start(ctx, cliSessionID, session.ChannelCLI)
	if err != nil {
		return err
	}
	printMessage(out, welcome.Text, welcome.SuggestedReplies)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case cmdQuit:
			return nil
		case cmdReset:
			if _, welcome, err = svc.Start(ctx, cliSessionID, session.ChannelCLI); err != nil {
				return err
			}
			printMessage(out, welcome.Text, welcome.SuggestedReplies)
			continue
		}

		res, err := svc.Send(ctx, cliSessionID, session.ChannelCLI, line)
		if err != nil {
			if errors.Is(err, conversation.ErrEmptyInput) {
				continue
			}
			return err
		}

		reply := res.Turn.Reply
		notify := func() error {
			_, err := fmt.Fprintln(out, "…")
			return err
		}
		if err := pacer.Pace(ctx, reply, notify); err != nil {
			return err
		}
		printMessage(out, reply.Text, reply.SuggestedReplies)
	}
}

func printMessage(w io.Writer, text string, suggestions []string) {
	fmt.Fprintf(w, "\n%s\n", text)
	if len(suggestions) > 0 {
		fmt.Fprintf(w, "  [%s]\n", strings.Join(suggestions, "] ["))
	}
	fmt.Fprintln(w)
}
