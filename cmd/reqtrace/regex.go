package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/reqtrace/pattern"
)

func regexCmd() *cobra.Command {
	var syntax string

	cmd := &cobra.Command{
		Use:   "regex <pattern> <text>",
		Short: "Show what a pattern extracts from a line of text",
		Long: `Apply a pattern to a line of text and print each capture group, the
identifier the scanner would extract and every identifier found in the line.

Example:
  reqtrace regex '<(REQ_[-a-zA-Z_0-9]*)>' 'ex: <REQ_123> (comment)'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegex(cmd, args[0], args[1], pattern.Syntax(syntax))
		},
	}
	cmd.Flags().StringVar(&syntax, "syntax", string(pattern.SyntaxRE2), "Pattern syntax (re2, pcre)")
	return cmd
}

func runRegex(cmd *cobra.Command, expr, text string, syntax pattern.Syntax) error {
	p, err := pattern.Compile(expr, syntax)
	if err != nil {
		return err
	}
	if p == nil {
		return errors.New("empty pattern")
	}

	out := cmd.OutOrStdout()

	m, err := p.Find(text)
	if err != nil {
		return err
	}
	if m == nil {
		fmt.Fprintln(out, dimStyle.Render("No match."))
		return nil
	}

	for i, g := range m.Groups {
		if !g.Participated() {
			fmt.Fprintf(out, "group %d: %s\n", i, dimStyle.Render("(unmatched)"))
			continue
		}
		fmt.Fprintf(out, "group %d: [%d,%d) %q\n", i, g.Start, g.End, text[g.Start:g.End])
	}

	id, rest, err := pattern.ExtractFirst(p, text, true)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s\n", titleStyle.Render("extracted:"), id)
	fmt.Fprintf(out, "%s %q\n", titleStyle.Render("remaining:"), rest)

	all, err := pattern.ExtractAll(p, text)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s\n", titleStyle.Render("all:"), strings.Join(all, ", "))
	return nil
}
