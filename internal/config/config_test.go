package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/todoscan/internal/config"
	"github.com/calvinalkan/todoscan/internal/fs"
	"github.com/calvinalkan/todoscan/internal/priority"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func load(t *testing.T, input config.LoadInput) (config.Config, error) {
	t.Helper()

	if input.Env == nil {
		input.Env = map[string]string{}
	}

	return config.Load(input)
}

func Test_Load_Returns_Defaults_When_No_Files_Exist(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := load(t, config.LoadInput{WorkDirOverride: dir})
	require.NoError(t, err)

	want := config.Default()
	want.EffectiveCwd = dir

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	reg, err := cfg.Registry()
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"HIGH", "MEDIUM", "LOW"}, reg.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func Test_Load_Project_File_Overrides_Only_Keys_It_Sets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.FileName), `{
		// lists replace, never append
		"markers": ["TODO", "FIXME"],
		"workers": 3,
	}`)

	cfg, err := load(t, config.LoadInput{WorkDirOverride: dir})
	require.NoError(t, err)

	assert.Equal(t, []string{"TODO", "FIXME"}, cfg.Markers)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, config.Default().Extensions, cfg.Extensions)
	assert.Equal(t, filepath.Join(dir, config.FileName), cfg.Sources.Project)
	assert.Empty(t, cfg.Sources.Global)
}

func Test_Load_Explicit_Empty_Issue_Pattern_Disables_Inference(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.FileName), `{"issue_pattern": ""}`)

	cfg, err := load(t, config.LoadInput{WorkDirOverride: dir})
	require.NoError(t, err)

	assert.Empty(t, cfg.ParserConfig().IssuePattern)
}

func Test_Load_Precedence_Global_Then_Project_Then_CLI(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	xdg := t.TempDir()
	globalFile := filepath.Join(xdg, "todoscan", "config.json")

	writeFile(t, globalFile, `{
		"workers": 2,
		"issue_url_template": "https://jira.example.com/browse/{id}",
		"priorities": [{"name": "p1", "color": "#FF0000"}, {"name": "p2"}]
	}`)
	writeFile(t, filepath.Join(dir, config.FileName), `{"workers": 5}`)

	workers := 9

	for _, tt := range []struct {
		name        string
		override    *int
		wantWorkers int
	}{
		{name: "project beats global", wantWorkers: 5},
		{name: "cli beats project", override: &workers, wantWorkers: 9},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.Load(config.LoadInput{
				WorkDirOverride: dir,
				Workers:         tt.override,
				Env:             map[string]string{"XDG_CONFIG_HOME": xdg},
			})
			require.NoError(t, err)

			if got, want := cfg.Workers, tt.wantWorkers; got != want {
				t.Errorf("workers=%d, want=%d", got, want)
			}

			assert.Equal(t, "https://jira.example.com/browse/{id}", cfg.IssueURLTemplate)
			assert.Equal(t, globalFile, cfg.Sources.Global)

			reg, err := cfg.Registry()
			require.NoError(t, err)

			level, ok := reg.Lookup("P1")
			require.True(t, ok)
			assert.Equal(t, "#FF0000", level.Color)
		})
	}
}

func Test_Load_Global_Falls_Back_To_Home(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".config", "todoscan", "config.json"), `{"exclude_dirs": []}`)

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: dir, Env: map[string]string{"HOME": home}})
	require.NoError(t, err)

	assert.Empty(t, cfg.ExcludeDirs)
	assert.NotEmpty(t, cfg.Sources.Global)
}

func Test_Load_Explicit_Config_Replaces_Project_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.FileName), `{"workers": 5}`)
	writeFile(t, filepath.Join(dir, "alt.json"), `{"markers": ["HACK"]}`)

	cfg, err := load(t, config.LoadInput{WorkDirOverride: dir, ConfigPath: "alt.json"})
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, []string{"HACK"}, cfg.Markers)
	assert.Equal(t, filepath.Join(dir, "alt.json"), cfg.Sources.Project)
}

func Test_Load_Reports_Read_Error_When_Config_File_Unreadable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)
	writeFile(t, path, `{"workers": 2}`)

	chaos := fs.NewChaos(fs.NewReal(), 1, fs.ChaosConfig{})
	chaos.Break(path, syscall.EACCES)

	_, err := load(t, config.LoadInput{WorkDirOverride: dir, FS: chaos})
	if !errors.Is(err, config.ErrConfigFileRead) {
		t.Fatalf("err=%v, want=%v", err, config.ErrConfigFileRead)
	}

	assert.ErrorIs(t, err, syscall.EACCES)

	chaos.Repair(path)

	cfg, err := load(t, config.LoadInput{WorkDirOverride: dir, FS: chaos})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
}

func Test_Load_Reports_Read_Error_When_Explicit_Config_Cannot_Be_Stat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "alt.json")
	writeFile(t, path, `{}`)

	chaos := fs.NewChaos(fs.NewReal(), 1, fs.ChaosConfig{})
	chaos.Break(path, syscall.EIO)

	_, err := load(t, config.LoadInput{WorkDirOverride: dir, ConfigPath: "alt.json", FS: chaos})
	if !errors.Is(err, config.ErrConfigFileRead) {
		t.Errorf("err=%v, want=%v", err, config.ErrConfigFileRead)
	}
}

func Test_Load_Errors(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name     string
		project  string
		explicit string
		wantErr  error
	}{
		{name: "explicit config missing", explicit: "missing.json", wantErr: config.ErrConfigFileNotFound},
		{name: "invalid jsonc", project: `{invalid`, wantErr: config.ErrConfigInvalid},
		{name: "unknown key", project: `{"ticket_dir": "x"}`, wantErr: config.ErrConfigInvalid},
		{name: "wrong type", project: `{"workers": "many"}`, wantErr: config.ErrConfigInvalid},
		{name: "empty priorities", project: `{"priorities": []}`, wantErr: config.ErrNoPriorities},
		{name: "duplicate priority", project: `{"priorities": [{"name": "a"}, {"name": "A"}]}`, wantErr: priority.ErrDuplicateLevel},
		{name: "blank priority", project: `{"priorities": [{"name": " "}]}`, wantErr: priority.ErrEmptyLevelName},
		{name: "negative workers", project: `{"workers": -1}`, wantErr: config.ErrNegativeWorkers},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			if tt.project != "" {
				writeFile(t, filepath.Join(dir, config.FileName), tt.project)
			}

			_, err := load(t, config.LoadInput{WorkDirOverride: dir, ConfigPath: tt.explicit})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err=%v, want=%v", err, tt.wantErr)
			}
		})
	}
}

func Test_IssuePatternError_Reports_Invalid_Regex(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, cfg.IssuePatternError())

	cfg.IssuePattern = "[unclosed"
	require.Error(t, cfg.IssuePatternError())

	cfg.IssuePattern = ""
	require.NoError(t, cfg.IssuePatternError())
}

func Test_Format_Renders_Snake_Case_Keys(t *testing.T) {
	t.Parallel()

	out, err := config.Format(config.Default())
	require.NoError(t, err)

	for _, key := range []string{`"priorities"`, `"issue_pattern"`, `"comment_prefixes"`, `"exclude_dirs"`, `"workers"`} {
		assert.Contains(t, out, key)
	}

	assert.NotContains(t, out, "EffectiveCwd")
}
