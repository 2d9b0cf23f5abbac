package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-rushing-metrics/internal/filter"
	"github.com/pable/go-rushing-metrics/internal/model"
	"github.com/pable/go-rushing-metrics/internal/session"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive comparison session",
	Long:  "Pick a season and two teams; the comparison is re-run after every change. Type 'help' for commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

// shellState is the current selection inside one shell session.
type shellState struct {
	sess   *session.Session
	sel    model.Selection
	top    int
	tables bool
}

func runShell(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	var flags selectionFlags
	sel, top, err := flags.resolve(ctx, a.sess)
	if err != nil {
		return err
	}
	// Start on a selection the data can answer when the configured teams
	// are not in the table.
	if teams, err := a.sess.Teams(ctx); err == nil &&
		(!slices.Contains(teams, sel.TeamOne) || !slices.Contains(teams, sel.TeamTwo)) {
		if def, err := a.sess.DefaultSelection(ctx); err == nil {
			sel = def
		}
	}
	st := &shellState{sess: a.sess, sel: sel, top: top}

	cGreeting.Println("rushmetrics shell")
	cMuted.Println("type 'help' or 'exit'")
	st.run(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Printf("%d %s|%s", st.sel.Season, st.sel.TeamOne, st.sel.TeamTwo)
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		name, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch name {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "seasons":
			shellSeasons(ctx, st)
		case "teams":
			shellTeams(ctx, st)
		case "show":
			st.run(ctx)
		case "tables":
			st.tables = !st.tables
			cMuted.Printf("tables %v\n", onOff(st.tables))
			st.run(ctx)
		case "season":
			n, err := strconv.Atoi(arg)
			if err != nil {
				cError.Fprintln(os.Stderr, "usage: season <year>")
				continue
			}
			st.change(ctx, func(s *model.Selection) { s.Season = n })
		case "one":
			if arg == "" {
				cError.Fprintln(os.Stderr, "usage: one <team>")
				continue
			}
			st.change(ctx, func(s *model.Selection) { s.TeamOne = arg })
		case "two":
			if arg == "" {
				cError.Fprintln(os.Stderr, "usage: two <team>")
				continue
			}
			st.change(ctx, func(s *model.Selection) { s.TeamTwo = arg })
		case "swap":
			st.change(ctx, func(s *model.Selection) { s.TeamOne, s.TeamTwo = s.TeamTwo, s.TeamOne })
		case "top":
			n, err := strconv.Atoi(arg)
			if err != nil || n < 0 {
				cError.Fprintln(os.Stderr, "usage: top <n>")
				continue
			}
			st.top = n
			st.run(ctx)
		case "charts":
			if arg == "" {
				cError.Fprintln(os.Stderr, "usage: charts <dir>")
				continue
			}
			c, err := st.sess.Compare(ctx, st.sel, st.top)
			if err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			if err := writeCharts(arg, c); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
			}
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", name)
		}
	}
	return nil
}

// change applies edit to a copy of the selection. The new selection is kept
// only if it is valid, and the comparison is re-run.
func (st *shellState) change(ctx context.Context, edit func(*model.Selection)) {
	next := st.sel
	edit(&next)
	if err := next.Validate(); err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	st.sel = next
	st.run(ctx)
}

func (st *shellState) run(ctx context.Context) {
	c, err := st.sess.Compare(ctx, st.sel, st.top)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	printComparison(os.Stdout, c, st.tables)
	fmt.Println()
}

func shellSeasons(ctx context.Context, st *shellState) {
	seasons, err := st.sess.Seasons(ctx)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	parts := make([]string, len(seasons))
	for i, s := range seasons {
		parts[i] = strconv.Itoa(s)
	}
	fmt.Println(strings.Join(parts, "  "))
}

// shellTeams lists the teams available for the second selector.
func shellTeams(ctx context.Context, st *shellState) {
	teams, err := st.sess.Teams(ctx)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	for _, t := range filter.TeamOptions(teams, st.sel.TeamOne) {
		marker := " "
		if t == st.sel.TeamTwo {
			marker = ">"
		}
		fmt.Printf(" %s %s\n", marker, t)
	}
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"season <year>", "switch season"},
		{"one <team>", "set the first team"},
		{"two <team>", "set the second team"},
		{"swap", "swap the two teams"},
		{"top <n>", "number of bin differences to show"},
		{"tables", "toggle share and cumulative tables"},
		{"charts <dir>", "write PNG charts for the current selection"},
		{"seasons", "list seasons"},
		{"teams", "list teams available as the second team"},
		{"show", "print the current comparison again"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-20s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
