package i18nsync

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranos/i18n-sheets/config"
	"github.com/teranos/i18n-sheets/errors"
	"github.com/teranos/i18n-sheets/keypath"
	"github.com/teranos/i18n-sheets/table"
)

func syncConfig(domains ...string) config.Sync {
	return config.Sync{
		SourceDir: "i18n",
		Locales:   []string{"ko", "en"},
		Domains:   domains,
	}
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
}

func readTree(t *testing.T, fs afero.Fs, path string) keypath.Tree {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	tree, err := keypath.Decode(data)
	require.NoError(t, err)
	return tree
}

func newTestSyncer(cfg config.Sync, store table.TableStore, fs afero.Fs, opts ...Option) *Syncer {
	opts = append([]Option{WithFs(fs), WithLogger(zap.NewNop().Sugar())}, opts...)
	return New(cfg, store, opts...)
}

func accountFiles(t *testing.T, fs afero.Fs) {
	writeFile(t, fs, "i18n/ko/account.json", `{"title": "계정", "menu": {"logout": "로그아웃"}}`)
	writeFile(t, fs, "i18n/en/account.json", `{"title": "Account"}`)
}

func TestUpload(t *testing.T) {
	fs := afero.NewMemMapFs()
	accountFiles(t, fs)
	store := table.NewMemoryStore(nil)

	res, err := newTestSyncer(syncConfig("account"), store, fs).Upload(context.Background())
	require.NoError(t, err)

	got, err := store.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, table.Table{
		{"Domain", "Key", "ko", "en"},
		{"account", "menu.logout", "로그아웃", ""},
		{"account", "title", "계정", "Account"},
	}, got)

	assert.Equal(t, 1, store.Replaces())
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, 1, res.Domains)
	assert.Equal(t, 2, res.Locales)
	assert.Equal(t, 2, res.Files)
	assert.False(t, res.DryRun)
}

func TestUpload_DomainsInConfiguredOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, locale := range []string{"ko", "en"} {
		writeFile(t, fs, "i18n/"+locale+"/zeta.json", `{"z": "`+locale+`"}`)
		writeFile(t, fs, "i18n/"+locale+"/alpha.json", `{"a": "`+locale+`"}`)
	}
	store := table.NewMemoryStore(nil)

	_, err := newTestSyncer(syncConfig("zeta", "alpha"), store, fs).Upload(context.Background())
	require.NoError(t, err)

	got, _ := store.Fetch(context.Background())
	require.Len(t, got, 3)
	assert.Equal(t, "zeta", got[1][0])
	assert.Equal(t, "alpha", got[2][0])
}

func TestUpload_MissingFileSendsNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "i18n/ko/account.json", `{"title": "계정"}`)
	store := table.NewMemoryStore(table.Table{{"Domain", "Key", "ko", "en"}, {"old", "k", "v", "v"}})

	_, err := newTestSyncer(syncConfig("account"), store, fs).Upload(context.Background())
	require.Error(t, err)

	assert.True(t, errors.Is(err, errors.ErrFileRead))
	assert.Equal(t, errors.StageRead, errors.StageOf(err))
	assert.Contains(t, err.Error(), filepath.Join("i18n", "en", "account.json"))
	assert.Zero(t, store.Replaces())

	got, _ := store.Fetch(context.Background())
	assert.Len(t, got, 2, "previous table untouched")
}

func TestUpload_InvalidFile(t *testing.T) {
	tests := map[string]string{
		"malformed JSON": `{"title": `,
		"array root":     `["a", "b"]`,
		"invalid UTF-8":  "{\"title\": \"\xff\"}",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			accountFiles(t, fs)
			writeFile(t, fs, "i18n/en/account.json", content)
			store := table.NewMemoryStore(nil)

			_, err := newTestSyncer(syncConfig("account"), store, fs).Upload(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrFileRead))
			assert.Zero(t, store.Replaces())
		})
	}
}

func TestUpload_DryRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	accountFiles(t, fs)
	store := table.NewMemoryStore(nil)

	res, err := newTestSyncer(syncConfig("account"), store, fs, WithDryRun(true)).Upload(context.Background())
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Equal(t, 2, res.Rows)
	assert.Zero(t, store.Replaces())
}

func TestUpload_StoreFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	accountFiles(t, fs)
	store := table.NewMemoryStore(nil)
	store.ReplaceErr = errors.New("quota exceeded")

	_, err := newTestSyncer(syncConfig("account"), store, fs).Upload(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTransport))
	assert.Equal(t, errors.StageUpload, errors.StageOf(err))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestUpload_NoDomains(t *testing.T) {
	store := table.NewMemoryStore(nil)

	res, err := newTestSyncer(syncConfig(), store, afero.NewMemMapFs()).Upload(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Rows)

	got, _ := store.Fetch(context.Background())
	assert.Equal(t, table.Table{{"Domain", "Key", "ko", "en"}}, got)
}

func TestUpload_Cancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	accountFiles(t, fs)
	store := table.NewMemoryStore(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSyncer(syncConfig("account"), store, fs).Upload(ctx)
	require.Error(t, err)
	assert.Zero(t, store.Replaces())
}

func TestDownload(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := table.NewMemoryStore(table.Table{
		{"Domain", "Key", "ko", "en"},
		{"account", "title", "계정", "Account"},
		{"account", "menu.logout", "로그아웃"},
		{"common", "ok", "확인", ""},
	})

	res, err := newTestSyncer(syncConfig("account"), store, fs).Download(context.Background())
	require.NoError(t, err)

	assert.Equal(t, keypath.Tree{"title": "계정", "menu": keypath.Tree{"logout": "로그아웃"}},
		readTree(t, fs, "i18n/ko/account.json"))
	assert.Equal(t, keypath.Tree{"title": "Account"}, readTree(t, fs, "i18n/en/account.json"))

	// domains outside the configuration are written too; an empty locale gets {}
	assert.Equal(t, keypath.Tree{"ok": "확인"}, readTree(t, fs, "i18n/ko/common.json"))
	data, err := afero.ReadFile(fs, "i18n/en/common.json")
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))

	assert.Equal(t, 4, res.Files)
	assert.Equal(t, 2, res.Domains)
	assert.Equal(t, 3, res.Rows)
}

func TestDownload_FileFormat(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := table.NewMemoryStore(table.Table{
		{"Domain", "Key", "en"},
		{"common", "b", "<b>"},
		{"common", "a.x", "1"},
	})
	cfg := config.Sync{SourceDir: "i18n", Locales: []string{"en"}}

	_, err := newTestSyncer(cfg, store, fs).Download(context.Background())
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "i18n/en/common.json")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": {\n    \"x\": \"1\"\n  },\n  \"b\": \"<b>\"\n}\n", string(data))
}

func TestDownload_LocaleWithoutColumnGetsEmptyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := table.NewMemoryStore(table.Table{
		{"Domain", "Key", "ko"},
		{"account", "title", "계정"},
	})

	res, err := newTestSyncer(syncConfig("account"), store, fs).Download(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Files)

	assert.Equal(t, keypath.Tree{"title": "계정"}, readTree(t, fs, "i18n/ko/account.json"))
	assert.Equal(t, keypath.Tree{}, readTree(t, fs, "i18n/en/account.json"))

	// the downloaded file set reads back without a missing file
	_, err = newTestSyncer(syncConfig("account"), table.NewMemoryStore(nil), fs).Upload(context.Background())
	assert.NoError(t, err)
}

func TestDownload_RejectsPathLikeDomain(t *testing.T) {
	root := t.TempDir()
	cfg := syncConfig()
	cfg.SourceDir = filepath.Join(root, "i18n")

	for _, domain := range []string{"../../escaped", "ko/nested", "..", " "} {
		t.Run(domain, func(t *testing.T) {
			store := table.NewMemoryStore(table.Table{
				{"Domain", "Key", "ko"},
				{"account", "title", "계정"},
				{domain, "k", "x"},
			})

			_, err := newTestSyncer(cfg, store, afero.NewOsFs()).Download(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrWrite))
			assert.Equal(t, errors.StageDownload, errors.StageOf(err))
			assert.NotEmpty(t, errors.GetAllHints(err))

			entries, err := os.ReadDir(root)
			require.NoError(t, err)
			assert.Empty(t, entries, "nothing is written when a domain name is invalid")
		})
	}
}

// cancelAfterFetch returns its table and then cancels the download context.
type cancelAfterFetch struct {
	table  table.Table
	cancel context.CancelFunc
}

func (s *cancelAfterFetch) Fetch(ctx context.Context) (table.Table, error) {
	s.cancel()
	return s.table, nil
}

func (s *cancelAfterFetch) Replace(ctx context.Context, t table.Table) error {
	return nil
}

func TestDownload_CancelledAfterFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &cancelAfterFetch{cancel: cancel, table: table.Table{
		{"Domain", "Key", "ko", "en"},
		{"account", "title", "계정", "Account"},
	}}
	fs := afero.NewMemMapFs()

	_, err := newTestSyncer(syncConfig("account"), store, fs).Download(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, errors.StageDownload, errors.StageOf(err))

	exists, _ := afero.Exists(fs, "i18n/ko/account.json")
	assert.False(t, exists)
}

func TestDownload_Collision(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := table.NewMemoryStore(table.Table{
		{"Domain", "Key", "ko", "en"},
		{"account", "menu", "메뉴", "Menu"},
		{"account", "menu.logout", "로그아웃", "Log out"},
	})

	_, err := newTestSyncer(syncConfig("account"), store, fs).Download(context.Background())
	require.Error(t, err)

	assert.True(t, errors.Is(err, errors.ErrWrite))
	assert.True(t, errors.Is(err, keypath.ErrKeyCollision))
	assert.Equal(t, errors.StageWrite, errors.StageOf(err))

	exists, _ := afero.Exists(fs, "i18n/ko/account.json")
	assert.False(t, exists, "no file is written for a colliding map")
}

func TestDownload_FetchFailure(t *testing.T) {
	store := table.NewMemoryStore(nil)
	store.FetchErr = errors.New("connection reset")

	_, err := newTestSyncer(syncConfig("account"), store, afero.NewMemMapFs()).Download(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTransport))
	assert.Equal(t, errors.StageDownload, errors.StageOf(err))
}

func TestDownload_EmptyTable(t *testing.T) {
	fs := afero.NewMemMapFs()

	res, err := newTestSyncer(syncConfig("account"), table.NewMemoryStore(nil), fs).Download(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Files)

	exists, _ := afero.DirExists(fs, "i18n")
	assert.False(t, exists)
}

func TestDownload_DryRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := table.NewMemoryStore(table.Table{
		{"Domain", "Key", "ko", "en"},
		{"account", "title", "계정", "Account"},
	})

	res, err := newTestSyncer(syncConfig("account"), store, fs, WithDryRun(true)).Download(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Files)

	exists, _ := afero.Exists(fs, "i18n/ko/account.json")
	assert.False(t, exists)
}

func TestRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "i18n/ko/account.json", `{"title": "계정", "menu": {"logout": "로그아웃", "help.faq": "자주 묻는 질문"}}`)
	writeFile(t, fs, "i18n/en/account.json", `{"title": "Account", "menu": {"logout": "Log out"}}`)
	store := table.NewMemoryStore(nil)
	cfg := syncConfig("account")

	_, err := newTestSyncer(cfg, store, fs).Upload(context.Background())
	require.NoError(t, err)
	first, _ := store.Fetch(context.Background())

	fresh := afero.NewMemMapFs()
	_, err = newTestSyncer(cfg, store, fresh).Download(context.Background())
	require.NoError(t, err)

	for _, locale := range cfg.Locales {
		path := "i18n/" + locale + "/account.json"
		assert.Equal(t, readTree(t, fs, path), readTree(t, fresh, path), locale)
	}

	// a second upload from the downloaded files sends the same table
	_, err = newTestSyncer(cfg, store, fresh).Upload(context.Background())
	require.NoError(t, err)
	second, _ := store.Fetch(context.Background())
	assert.Equal(t, first, second)
}

func TestStatus_InSyncAfterDownload(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := table.NewMemoryStore(table.Table{
		{"Domain", "Key", "ko", "en"},
		{"common", "ok", "확인", "OK"},
		{"account", "title", "계정"},
	})
	s := newTestSyncer(syncConfig("account", "common"), store, fs)

	_, err := s.Download(context.Background())
	require.NoError(t, err)

	report, err := s.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, report.InSync())
	assert.Equal(t, report.LocalRoot, report.RemoteRoot)
	assert.Equal(t, 2, report.LocalRows)
	assert.Equal(t, 2, report.RemoteRows)
}

func TestStatus_Drift(t *testing.T) {
	fs := afero.NewMemMapFs()
	accountFiles(t, fs)
	writeFile(t, fs, "i18n/ko/common.json", `{"ok": "확인"}`)
	writeFile(t, fs, "i18n/en/common.json", `{"ok": "OK"}`)
	store := table.NewMemoryStore(table.Table{
		{"Domain", "Key", "ko", "en"},
		{"account", "title", "계정", "My account"},
		{"errors", "e404", "없음", "Not found"},
	})

	report, err := newTestSyncer(syncConfig("account", "common"), store, fs).Status(context.Background())
	require.NoError(t, err)

	assert.False(t, report.InSync())
	assert.Equal(t, []string{"account"}, report.Divergent)
	assert.Equal(t, []string{"common"}, report.LocalOnly)
	assert.Equal(t, []string{"errors"}, report.RemoteOnly)
	assert.NotEqual(t, report.LocalRoot, report.RemoteRoot)
}

func TestStatus_FetchFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	accountFiles(t, fs)
	store := table.NewMemoryStore(nil)
	store.FetchErr = errors.New("timeout")

	_, err := newTestSyncer(syncConfig("account"), store, fs).Status(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTransport))
	assert.Equal(t, errors.StageStatus, errors.StageOf(err))
}

func TestResultSummary(t *testing.T) {
	r := &Result{Domains: 2, Locales: 3, Rows: 10, Files: 6}
	summary := r.Summary()
	assert.Equal(t, 10, summary["rows"])
	assert.Equal(t, int64(0), summary["duration_ms"])
}
