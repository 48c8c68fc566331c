package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/mindmapd/internal/outline"
	"github.com/fyrsmithlabs/mindmapd/internal/store"
)

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	idColor    = color.New(color.FgYellow)
	descColor  = color.New(color.Faint)
	okColor    = color.New(color.FgGreen, color.Bold)
	tierColors = []*color.Color{
		color.New(color.FgWhite, color.Bold),
		color.New(color.FgBlue),
		color.New(color.FgGreen),
		color.New(color.FgMagenta),
	}
)

func newGenerateCmd(client func() *Client) *cobra.Command {
	var title, file, settingsFile string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a mind map from a text file",
		Long: `Generate a mind map from a text file (or stdin with --file -).

Settings may be given as a TOML file:

  max_depth = 4

  [style.central_node]
  color = "#4A90E2"

Examples:
  mindmapctl generate --title "Cell Biology" --file notes.txt
  cat notes.txt | mindmapctl generate --title Notes --file -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			content, err := readContent(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			var settings *outline.Settings
			if settingsFile != "" {
				settings, err = loadSettings(settingsFile)
				if err != nil {
					return err
				}
			}

			rec, err := client().Create(cmd.Context(), title, content, settings)
			if err != nil {
				return err
			}
			printRecord(cmd.OutOrStdout(), rec)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "mind map title (required)")
	cmd.Flags().StringVar(&file, "file", "", "content file, or - for stdin (required)")
	cmd.Flags().StringVar(&settingsFile, "settings", "", "TOML settings file")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newShowCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored mind map as an outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := client().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printRecord(cmd.OutOrStdout(), rec)
			return nil
		},
	}
}

func newSearchCmd(client func() *Client) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "List stored mind maps, fuzzy-matching titles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			results, err := client().Search(cmd.Context(), query, limit)
			if err != nil {
				return err
			}
			printSummaries(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum results")
	return cmd
}

func newHealthCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check mindmapd server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := client().Health(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Server Status: %s\n", okColor.Sprint(h.Status))
			if h.Version != "" {
				fmt.Fprintf(out, "Version:       %s\n", h.Version)
			}
			fmt.Fprintf(out, "Sessions:      %d\n", h.Sessions)
			return nil
		},
	}
}

func readContent(stdin io.Reader, file string) (string, error) {
	var (
		b   []byte
		err error
	)
	if file == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return "", fmt.Errorf("content is empty")
	}
	return string(b), nil
}

// loadSettings decodes a TOML settings file, rejecting unknown keys.
func loadSettings(path string) (*outline.Settings, error) {
	var s outline.Settings
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown settings keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return &s, nil
}

func printRecord(w io.Writer, rec *store.Record) {
	titleColor.Fprintln(w, rec.Title)
	fmt.Fprintf(w, "%s  %s\n\n", idColor.Sprint(rec.ID), rec.CreatedAt.Local().Format("2006-01-02 15:04"))
	if root, ok := rec.Structure.Root(); ok {
		printNode(w, root, 0)
	}
}

func printNode(w io.Writer, n *outline.Node, depth int) {
	c := tierColors[min(depth, len(tierColors)-1)]
	fmt.Fprintf(w, "%s%s %s", strings.Repeat("  ", depth), bullet(depth), c.Sprint(n.Title))
	if n.Description != "" {
		fmt.Fprintf(w, " %s", descColor.Sprint("- "+n.Description))
	}
	fmt.Fprintln(w)
	for i := range n.Children {
		printNode(w, &n.Children[i], depth+1)
	}
}

func bullet(depth int) string {
	if depth == 0 {
		return "●"
	}
	return "-"
}

func printSummaries(w io.Writer, results []store.Summary) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No mind maps found")
		return
	}
	for _, s := range results {
		fmt.Fprintf(w, "%s  %s  %s\n",
			idColor.Sprint(s.ID),
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
			titleColor.Sprint(s.Title))
	}
}
