package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/vidfmt/pkg/filename"
)

// testConfig writes a config whose database lives in a temp dir and returns its path.
func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("[database]\npath = %q\n", filepath.Join(dir, "vidfmt.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// resetFlags restores every flag to its default so runs do not leak into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the CLI with stdin and returns stdout and stderr.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestFormatCmd_Args(t *testing.T) {
	cfg := testConfig(t)

	out, _, err := run(t, "", "--config", cfg, "format",
		"anilos.01.02.20.jane.doe.1080p",
		"[EvilAngel] (Jane Doe) 03-15-22 XXX (1080p HEVC).mp4")
	require.NoError(t, err)
	assert.Equal(t, "[Anilos] - 01.02.20 - Jane Doe 1080p.mp4\n[EvilAngel] - 22.03.15 - Jane Doe 1080p.mp4\n", out)
}

func TestFormatCmd_Stdin(t *testing.T) {
	cfg := testConfig(t)

	out, _, err := run(t, "anilos.01.02.20.jane.doe, badname.mp4\n", "--config", cfg, "format", "--no-prompt")
	require.NoError(t, err)
	assert.Equal(t, "[Anilos] - 01.02.20 - Jane Doe 1080p.mp4\n[Error] Invalid filename format: badname.mp4\n", out)
}

func TestFormatCmd_NoValidInput(t *testing.T) {
	cfg := testConfig(t)

	out, _, err := run(t, " ,\n", "--config", cfg, "format", "--no-prompt")
	require.NoError(t, err)
	assert.Equal(t, filename.NoValidInput+"\n", out)
}

func TestFormatCmd_File(t *testing.T) {
	cfg := testConfig(t)
	list := filepath.Join(t.TempDir(), "names.txt")
	content := "# downloads\nsexart.22.03.14.jane.2160p\n\n  anilos.01.02.20.jane.doe  \n"
	require.NoError(t, os.WriteFile(list, []byte(content), 0644))

	out, _, err := run(t, "", "--config", cfg, "format", "--file", list, "--workers", "4")
	require.NoError(t, err)
	assert.Equal(t, "[SexArt] - 22.03.14 - Jane [2160p][4K].mp4\n[Anilos] - 01.02.20 - Jane Doe 1080p.mp4\n", out)
}

func TestFormatCmd_JSON(t *testing.T) {
	cfg := testConfig(t)

	out, _, err := run(t, "", "--config", cfg, "--json", "format", "--allow-unmapped", "newsite.20.01.01.jane.doe")
	require.NoError(t, err)

	var got formatOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "[Newsite] - 20.01.01 - Jane Doe 1080p.mp4", got.Output)
	assert.Equal(t, filename.ShapeTraditionalDot, got.Lines[0].Shape)
	assert.Equal(t, []string{"newsite"}, got.Unmapped)
}

func TestFormatCmd_NoPromptEscalates(t *testing.T) {
	cfg := testConfig(t)

	out, _, err := run(t, "", "--config", cfg, "format", "--no-prompt", "newsite.20.01.01.jane.doe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newsite")
	assert.Contains(t, err.Error(), "--allow-unmapped")
	assert.Empty(t, out)
}

func TestFormatCmd_PromptsAndRemembers(t *testing.T) {
	cfg := testConfig(t)

	out, stderr, err := run(t, "Brand New\n", "--config", cfg, "format", "brandnew.20.01.01.jane.doe")
	require.NoError(t, err)
	assert.Contains(t, stderr, `Display name for "brandnew"`)
	assert.Equal(t, "[Brand New] - 20.01.01 - Jane Doe 1080p.mp4\n", out)

	// Saved: a second run needs no answer.
	out, _, err = run(t, "", "--config", cfg, "format", "--no-prompt", "brandnew.21.02.02.kate")
	require.NoError(t, err)
	assert.Equal(t, "[Brand New] - 21.02.02 - Kate 1080p.mp4\n", out)
}

func TestFormatCmd_PromptAborted(t *testing.T) {
	cfg := testConfig(t)

	_, _, err := run(t, "", "--config", cfg, "format", "brandnew.20.01.01.jane.doe")
	assert.ErrorContains(t, err, "prompt aborted")
}

func TestSitesCmd_AddListRemove(t *testing.T) {
	cfg := testConfig(t)

	out, _, err := run(t, "", "--config", cfg, "sites", "add", "NewSite", "New", "Site")
	require.NoError(t, err)
	assert.Equal(t, "newsite -> New Site (saved locally)\n", out)

	_, _, err = run(t, "", "--config", cfg, "sites", "add", "anilos", "Anilos Renamed")
	require.NoError(t, err)

	out, _, err = run(t, "", "--config", cfg, "--json", "sites", "list", "--custom")
	require.NoError(t, err)
	var rows []siteRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Equal(t, []siteRow{
		{Key: "anilos", Name: "Anilos Renamed", Source: "override"},
		{Key: "newsite", Name: "New Site", Source: "custom"},
	}, rows)

	out, _, err = run(t, "", "--config", cfg, "sites", "remove", "anilos")
	require.NoError(t, err)
	assert.Equal(t, "anilos restored to built-in \"Anilos\" (saved locally)\n", out)

	out, _, err = run(t, "", "--config", cfg, "sites", "remove", "newsite")
	require.NoError(t, err)
	assert.Equal(t, "newsite removed (saved locally)\n", out)

	_, _, err = run(t, "", "--config", cfg, "sites", "remove", "sexart")
	assert.ErrorContains(t, err, "built-in")
}

func TestSitesCmd_ListText(t *testing.T) {
	cfg := testConfig(t)

	out, _, err := run(t, "", "--config", cfg, "sites", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "EvilAngel")
	assert.Contains(t, out, "(storage: local)")
}

func TestSitesCmd_Suggest(t *testing.T) {
	cfg := testConfig(t)

	out, _, err := run(t, "", "--config", cfg, "sites", "suggest", "julesjordan")
	require.NoError(t, err)
	assert.Contains(t, out, "julesjorder  JulesJordan")
}

func TestSitesCmd_ImportExport(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "sites.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("anilos: Anilos Imported\nnewsite: NewSite\n"), 0644))

	_, _, err := run(t, "", "--config", cfg, "sites", "import", "--policy", "keep-both", yamlPath)
	require.NoError(t, err)

	out, _, err := run(t, "", "--config", cfg, "sites", "export")
	require.NoError(t, err)
	var exported map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &exported))
	assert.Equal(t, map[string]string{"anilos-2": "Anilos Imported", "newsite": "NewSite"}, exported)

	jsonPath := filepath.Join(dir, "all.json")
	_, _, err = run(t, "", "--config", cfg, "sites", "export", "--all", jsonPath)
	require.NoError(t, err)
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"evilangel": "EvilAngel"`)
}

func TestSitesCmd_ImportPrompted(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "sites.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"anilos": "Studio"}`), 0644))

	_, stderr, err := run(t, "e\n", "--config", cfg, "sites", "import", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, `Conflict for "anilos"`)

	out, _, err := run(t, "", "--config", cfg, "format", "--no-prompt", "anilos.01.02.20.jane")
	require.NoError(t, err)
	assert.Equal(t, "[Anilos Studio] - 01.02.20 - Jane 1080p.mp4\n", out)
}

func TestSitesCmd_ImportMalformed(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "sites.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"anilos": {"nested": true}}`), 0644))

	_, _, err := run(t, "", "--config", cfg, "sites", "import", "--policy", "replace", path)
	assert.ErrorContains(t, err, "malformed")
}

func TestSitesCmd_BadPolicy(t *testing.T) {
	cfg := testConfig(t)

	_, _, err := run(t, "", "--config", cfg, "sites", "import", "--policy", "overwrite", "x.json")
	assert.ErrorContains(t, err, "unknown conflict policy")
}

func TestExportFormat(t *testing.T) {
	tests := []struct {
		name, flag, path string
		want             string
		wantErr          bool
	}{
		{"default", "", "", "json", false},
		{"from extension", "", "out.yml", "yaml", false},
		{"flag wins", "json", "out.yaml", "json", false},
		{"yaml flag", "YAML", "", "yaml", false},
		{"unknown", "toml", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := exportFormat(tt.flag, tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestConfigCmd_InitAndTest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidfmt", "config.toml")

	out, _, err := run(t, "", "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, _, err = run(t, "", "config", "init", path)
	assert.ErrorContains(t, err, "already exists")

	out, _, err = run(t, "", "config", "test", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid!")
	assert.Contains(t, out, "Remote:     disabled")
}

func TestConfigCmd_TestInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 99999\n"), 0644))

	out, _, err := run(t, "", "config", "test", path)
	assert.ErrorContains(t, err, "configuration invalid")
	assert.Contains(t, out, "server.port")
	assert.Contains(t, out, "Invalid settings (")
}

func TestConfigCmd_Show(t *testing.T) {
	cfg := testConfig(t)

	out, _, err := run(t, "", "--config", cfg, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[server]")
	assert.Contains(t, out, "port = 8585")
	assert.Contains(t, out, "vidfmt.db")
}

func TestVersionCmd(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "vidfmt dev\n", out)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "WARN", parseLogLevel("WARNING").String())
	assert.Equal(t, "ERROR", parseLogLevel("error").String())
	assert.Equal(t, "INFO", parseLogLevel("").String())
}
