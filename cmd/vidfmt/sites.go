package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/vidfmt/internal/mappings"
	"github.com/vmunix/vidfmt/internal/prompt"
	"github.com/vmunix/vidfmt/pkg/sites"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Manage site display names",
}

var sitesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List site keys and display names",
	Args:  cobra.NoArgs,
	RunE:  runSitesList,
}

var sitesAddCmd = &cobra.Command{
	Use:   "add <key> <name...>",
	Short: "Add or override a site display name",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSitesAdd,
}

var sitesRemoveCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Remove a custom site display name",
	Args:  cobra.ExactArgs(1),
	RunE:  runSitesRemove,
}

var sitesSuggestCmd = &cobra.Command{
	Use:   "suggest <key>",
	Short: "Show known site keys that look like key",
	Args:  cobra.ExactArgs(1),
	RunE:  runSitesSuggest,
}

var sitesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import site mappings from a JSON or YAML file",
	Long: `Import a flat key-to-name mapping. The format follows the file
extension (.yaml/.yml, anything else is JSON).

When an imported key already has a different name, --policy settles it:
  keep-both            keep the existing name, store the import as key-2
  replace              use the imported name
  merge-existing-new   "Existing Imported"
  merge-new-existing   "Imported Existing"
Without --policy each conflict is asked interactively.`,
	Args: cobra.ExactArgs(1),
	RunE: runSitesImport,
}

var sitesExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export site mappings as JSON or YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSitesExport,
}

func init() {
	rootCmd.AddCommand(sitesCmd)
	sitesCmd.AddCommand(sitesListCmd, sitesAddCmd, sitesRemoveCmd, sitesSuggestCmd, sitesImportCmd, sitesExportCmd)

	sitesListCmd.Flags().Bool("custom", false, "Only list custom names")
	sitesImportCmd.Flags().String("policy", "", "Conflict policy: keep-both, replace, merge-existing-new, merge-new-existing")
	sitesExportCmd.Flags().Bool("all", false, "Include built-in names")
	sitesExportCmd.Flags().String("format", "", "json or yaml (default: from file extension, else json)")
}

// siteRow is one line of 'sites list'.
type siteRow struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Source string `json:"source"` // builtin, custom or override
}

func siteRows(svc *mappings.Service, customOnly bool) []siteRow {
	custom := svc.Dictionary().Custom()
	var rows []siteRow
	for _, e := range svc.Dictionary().Entries() {
		_, isCustom := custom[e.Key]
		source := "builtin"
		switch {
		case isCustom && sites.IsBuiltin(e.Key):
			source = "override"
		case isCustom:
			source = "custom"
		}
		if customOnly && source == "builtin" {
			continue
		}
		rows = append(rows, siteRow{Key: e.Key, Name: e.Name, Source: source})
	}
	return rows
}

func runSitesList(cmd *cobra.Command, args []string) error {
	customOnly, _ := cmd.Flags().GetBool("custom")

	a, err := setup(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	rows := siteRows(a.mappings, customOnly)
	out := cmd.OutOrStdout()
	if jsonOutput {
		if rows == nil {
			rows = []siteRow{}
		}
		return writeJSON(out, rows)
	}
	printSiteRows(out, rows, a.mappings.Status())
	return nil
}

func printSiteRows(w io.Writer, rows []siteRow, status mappings.Status) {
	width := len("KEY")
	for _, r := range rows {
		width = max(width, len(r.Key))
	}
	fmt.Fprintf(w, "%-*s  %-8s  %s\n", width, "KEY", "SOURCE", "NAME")
	for _, r := range rows {
		fmt.Fprintf(w, "%-*s  %-8s  %s\n", width, r.Key, r.Source, r.Name)
	}
	fmt.Fprintf(w, "\n%d sites (storage: %s)\n", len(rows), status)
}

func runSitesAdd(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	key, name := args[0], strings.Join(args[1:], " ")
	res, err := a.mappings.Supply(cmd.Context(), map[string]string{key: name})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", sites.NormalizeKey(key), strings.TrimSpace(name), savedWhere(res))
	return nil
}

func runSitesRemove(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	res, err := a.mappings.Remove(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	key := sites.NormalizeKey(args[0])
	if name, ok := a.mappings.Dictionary().Resolve(key); ok {
		fmt.Fprintf(cmd.OutOrStdout(), "%s restored to built-in %q (%s)\n", key, name, savedWhere(res))
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s removed (%s)\n", key, savedWhere(res))
	return nil
}

func runSitesSuggest(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	dict := a.mappings.Dictionary()
	hits := dict.Suggest(args[0], 5)
	out := cmd.OutOrStdout()
	if jsonOutput {
		rows := make([]sites.Entry, 0, len(hits))
		for _, k := range hits {
			name, _ := dict.Resolve(k)
			rows = append(rows, sites.Entry{Key: k, Name: name})
		}
		return writeJSON(out, rows)
	}
	if len(hits) == 0 {
		fmt.Fprintln(out, "No similar site keys.")
		return nil
	}
	for _, k := range hits {
		name, _ := dict.Resolve(k)
		fmt.Fprintf(out, "%s  %s\n", k, name)
	}
	return nil
}

func runSitesImport(cmd *cobra.Command, args []string) error {
	policyName, _ := cmd.Flags().GetString("policy")

	var resolve sites.ConflictResolver
	if policyName != "" {
		policy, err := sites.ParsePolicy(policyName)
		if err != nil {
			return err
		}
		resolve = sites.Always(policy)
	} else {
		resolve = prompt.NewLine(cmd.InOrStdin(), cmd.ErrOrStderr()).Conflict
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	imported, err := sites.Decode(data, sites.FormatForPath(path))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	a, err := setup(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	before := a.mappings.Dictionary().Len()
	res, err := a.mappings.Import(cmd.Context(), imported, resolve)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries, %d sites known (%s)\n",
		len(imported), a.mappings.Dictionary().Len(), savedWhere(res))
	a.logger.Debug("import done", "before", before, "after", a.mappings.Dictionary().Len())
	return nil
}

func runSitesExport(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	formatName, _ := cmd.Flags().GetString("format")

	var path string
	if len(args) > 0 {
		path = args[0]
	}
	format, err := exportFormat(formatName, path)
	if err != nil {
		return err
	}

	a, err := setup(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	data, err := sites.Encode(a.mappings.Export(!all), format)
	if err != nil {
		return err
	}
	if path == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}

// exportFormat resolves --format, falling back to the file extension.
func exportFormat(name, path string) (sites.Format, error) {
	switch strings.ToLower(name) {
	case "":
		return sites.FormatForPath(path), nil
	case "json":
		return sites.FormatJSON, nil
	case "yaml", "yml":
		return sites.FormatYAML, nil
	default:
		return 0, fmt.Errorf("unknown format %q (want json or yaml)", name)
	}
}

func savedWhere(res mappings.SaveResult) string {
	switch {
	case res.Remote:
		return "saved locally and remotely"
	case res.Local:
		return "saved locally"
	default:
		return "not saved"
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
