package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Proton-105/dataeng-assistant/internal/knowledge"
)

func topicsCMD() *cobra.Command {
	var verbose bool
	var topics = &cobra.Command{
		Use:   "topics",
		Short: "List the knowledge catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := loadKnowledge()
			if err != nil {
				return err
			}
			printTopics(cmd.OutOrStdout(), base, verbose)
			return nil
		},
	}
	topics.Flags().BoolVarP(&verbose, "verbose", "v", false, "print full responses")

	return topics
}

func printTopics(w io.Writer, base *knowledge.Base, verbose bool) {
	for _, t := range base.Topics() {
		fmt.Fprintf(w, "%s\t%s\n", t.ID, strings.Join(t.Keywords, ", "))
		if verbose {
			fmt.Fprintf(w, "%s\n\n", t.Response)
		}
	}
	fmt.Fprintf(w, "%d topics\n", base.Len())
}
