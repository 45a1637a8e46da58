package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"quill/internal/diag"
	"quill/internal/diagfmt"
	"quill/internal/source"
	"quill/internal/taghelper"
)

var tagHelpersCmd = &cobra.Command{
	Use:   "taghelpers [flags] [manifest.json]...",
	Short: "Inspect tag helper manifests",
	Long: `Load tag helper manifests, by default those named in quill.toml, and
print their union as a table, as JSON or as msgpack`,
	RunE: runTagHelpers,
}

func init() {
	tagHelpersCmd.Flags().String("format", "table", "output format (table|json|msgpack)")
	tagHelpersCmd.Flags().StringP("out", "o", "", "write to file instead of stdout")
}

func runTagHelpers(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	format = strings.ToLower(format)
	switch format {
	case "table", "json", "msgpack":
	default:
		return fmt.Errorf("unsupported format %q (must be table, json or msgpack)", format)
	}

	manifests := args
	if len(manifests) == 0 {
		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		manifests = cfg.ManifestPaths()
		if len(manifests) == 0 {
			return fmt.Errorf("no manifests given and none configured in %s", configName(cfg.Path))
		}
	}
	set, err := readManifests(manifests)
	if err != nil {
		return err
	}

	if outPath == "" && format == "msgpack" && isTerminal(os.Stdout) {
		return fmt.Errorf("refusing to write msgpack to a terminal; use --out")
	}
	var buf bytes.Buffer
	switch format {
	case "json":
		err = taghelper.WriteJSON(&buf, set)
	case "msgpack":
		var data []byte
		if data, err = taghelper.MarshalMsgpack(set); err == nil {
			buf.Write(data)
		}
	default:
		err = writeTagHelperTable(&buf, set)
	}
	if err != nil {
		return err
	}
	if outPath != "" {
		err = os.WriteFile(outPath, buf.Bytes(), 0o644)
	} else {
		_, err = buf.WriteTo(cmd.OutOrStdout())
	}
	if err != nil {
		return err
	}

	bag := diag.NewBag(0)
	bag.AddAll(set.Diagnostics())
	if bag.Len() > 0 {
		if err := diagfmt.Short(cmd.ErrOrStderr(), bag, source.NewFileSet(), diagfmt.PathModeAuto, ""); err != nil {
			return err
		}
	}
	if bag.HasErrors() {
		return errDiagnostics
	}
	return nil
}

func configName(path string) string {
	if path == "" {
		return "the default configuration"
	}
	return path
}

// readManifests unions the JSON manifests at the given OS paths.
func readManifests(paths []string) (*taghelper.Set, error) {
	pool := taghelper.NewPool()
	out := taghelper.NewSet()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("tag helper manifest: %w", err)
		}
		set, err := taghelper.ReadJSON(f, pool)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		out = out.Union(set)
	}
	return out, nil
}

// writeTagHelperTable prints one row per descriptor with its rules.
func writeTagHelperTable(w io.Writer, set *taghelper.Set) error {
	rows := [][]string{{"KIND", "NAME", "TYPE", "RULES", "CHECKSUM"}}
	for _, d := range set.Items() {
		rules := make([]string, 0, len(d.TagMatchingRules()))
		for _, r := range d.TagMatchingRules() {
			rules = append(rules, ruleString(r))
		}
		rows = append(rows, []string{string(d.Kind()), d.Name(), d.TypeName(), strings.Join(rules, " "), d.Checksum().Short()})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]+2))
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%d descriptors, set %s\n", set.Len(), set.Checksum().Short())
	_, err := io.WriteString(w, b.String())
	return err
}

// ruleString renders a rule as parent>tag[attr,...].
func ruleString(r *taghelper.TagMatchingRule) string {
	var b strings.Builder
	if r.ParentTag() != "" {
		b.WriteString(r.ParentTag())
		b.WriteByte('>')
	}
	b.WriteString(r.TagName())
	if attrs := r.Attributes(); len(attrs) > 0 {
		names := make([]string, 0, len(attrs))
		for _, a := range attrs {
			names = append(names, a.Name())
		}
		b.WriteString("[" + strings.Join(names, ",") + "]")
	}
	return b.String()
}
