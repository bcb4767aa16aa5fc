package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/StinkyLord/spdx-update/internal/aliases"
	"github.com/StinkyLord/spdx-update/internal/builder"
	"github.com/StinkyLord/spdx-update/internal/document"
	"github.com/StinkyLord/spdx-update/internal/fetch"
	"github.com/StinkyLord/spdx-update/internal/model"
	"github.com/StinkyLord/spdx-update/internal/registrytest"
)

// fakeSource is a hand-written Source double. Each method is a function field
// and every call is recorded.
type fakeSource struct {
	licenses   func(ref string) (document.Object, error)
	exceptions func(ref string) (document.Object, error)
	calls      []string
}

func (f *fakeSource) Licenses(_ context.Context, ref string) (document.Object, error) {
	f.calls = append(f.calls, "licenses@"+ref)
	return f.licenses(ref)
}

func (f *fakeSource) Exceptions(_ context.Context, ref string) (document.Object, error) {
	f.calls = append(f.calls, "exceptions@"+ref)
	return f.exceptions(ref)
}

func decodeFn(payload string) func(string) (document.Object, error) {
	return func(string) (document.Object, error) {
		return document.Decode(strings.NewReader(payload), "test.json")
	}
}

func newFake() *fakeSource {
	return &fakeSource{
		licenses:   decodeFn(`{"licenseListVersion": "3.24", "licenses": [{"licenseId": "MIT", "name": "MIT License", "isOsiApproved": true}]}`),
		exceptions: decodeFn(`{"exceptions": [{"licenseExceptionId": "LLVM-exception"}]}`),
	}
}

func TestRun(t *testing.T) {
	src := newFake()
	table := model.AliasTable{Version: 1, Entries: []model.AliasEntry{{Invalid: "mit", Canonical: "MIT"}}}

	a, err := New(src, table, zaptest.NewLogger(t)).Run(context.Background(), "v3.24")
	require.NoError(t, err)

	assert.Equal(t, []string{"licenses@v3.24", "exceptions@v3.24"}, src.calls)
	assert.Equal(t, "v3.24", a.Ref)
	assert.Equal(t, "3.24", a.Licenses.Version)
	assert.Len(t, a.Licenses.Records, 2) // MIT + NOASSERTION
	assert.Equal(t, table, a.Aliases)
	assert.Equal(t, []model.ExceptionRecord{{ID: "LLVM-exception"}}, a.Exceptions.Records)
}

func TestRun_AbortsOnFailure(t *testing.T) {
	boom := errors.New("connection reset")

	tests := []struct {
		name      string
		mutate    func(*fakeSource)
		wantCalls []string
		wantIs    error
		wantMsg   string
	}{
		{
			name:      "license fetch fails",
			mutate:    func(f *fakeSource) { f.licenses = func(string) (document.Object, error) { return document.Object{}, boom } },
			wantCalls: []string{"licenses@main"},
			wantIs:    boom,
			wantMsg:   "license list: connection reset",
		},
		{
			name:      "license document malformed",
			mutate:    func(f *fakeSource) { f.licenses = decodeFn(`{"licenseListVersion": "3.24", "licenses": [{"name": "x"}]}`) },
			wantCalls: []string{"licenses@main"},
			wantIs:    document.ErrMalformed,
			wantMsg:   `"licenseId" is missing`,
		},
		{
			name:      "exception fetch fails after license table was built",
			mutate:    func(f *fakeSource) { f.exceptions = func(string) (document.Object, error) { return document.Object{}, boom } },
			wantCalls: []string{"licenses@main", "exceptions@main"},
			wantIs:    boom,
			wantMsg:   "exception list: connection reset",
		},
		{
			name:      "exception duplicate",
			mutate:    func(f *fakeSource) { f.exceptions = decodeFn(`{"exceptions": [{"licenseExceptionId": "A"}, {"licenseExceptionId": "A"}]}`) },
			wantCalls: []string{"licenses@main", "exceptions@main"},
			wantIs:    builder.ErrDuplicateID,
			wantMsg:   `duplicate identifier "A"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFake()
			tt.mutate(src)

			a, err := New(src, model.AliasTable{}, nil).Run(context.Background(), "main")
			require.Error(t, err)
			assert.Nil(t, a, "no partial artifact")
			assert.ErrorIs(t, err, tt.wantIs)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, tt.wantCalls, src.calls)
		})
	}
}

func TestRun_WarnsOnUnknownAliasTargets(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	table := model.AliasTable{Version: 1, Entries: []model.AliasEntry{
		{Invalid: "mit", Canonical: "MIT"},
		{Invalid: "llvm", Canonical: "MIT WITH LLVM-exception"},
		{Invalid: "apache", Canonical: "Apache-2.0"},
		{Invalid: "mit-or-zlib", Canonical: "(MIT OR Zlib)"},
	}}

	a, err := New(newFake(), table, zap.New(core)).Run(context.Background(), "main")
	require.NoError(t, err, "unknown alias targets must not fail the run")
	require.NotNil(t, a)

	warnings := logs.FilterMessage("alias points at an unknown identifier").All()
	require.Len(t, warnings, 2)
	assert.Equal(t, "Apache-2.0", warnings[0].ContextMap()["identifier"])
	assert.Equal(t, "Zlib", warnings[1].ContextMap()["identifier"])
	assert.Equal(t, "mit-or-zlib", warnings[1].ContextMap()["alias"])
}

// TestRun_Mirror runs the pipeline against the fake mirror with the embedded
// alias table.
func TestRun_Mirror(t *testing.T) {
	srv := registrytest.NewServer(t)
	client := fetch.New(srv.URL, 5*time.Second, nil)
	t.Cleanup(client.Close)

	table, err := aliases.Default()
	require.NoError(t, err)

	a, err := New(client, table, zaptest.NewLogger(t)).Run(context.Background(), registrytest.Tag)
	require.NoError(t, err)

	assert.Equal(t, "3.24", a.Licenses.Version)

	rec, ok := a.Licenses.Lookup("GFDL-1.3-invariants")
	require.True(t, ok)
	assert.Equal(t, model.Deprecated|model.FSFLibre|model.Copyleft|model.GNU, rec.Flags)
	assert.Equal(t, "GNU Free Documentation License v1.3", rec.DisplayName)

	_, ok = a.Licenses.Lookup("GFDL-1.3-or-later-invariants")
	assert.False(t, ok)

	rec, ok = a.Licenses.Lookup(builder.NoAssertion)
	require.True(t, ok)
	assert.Zero(t, rec.Flags)

	exc, ok := a.Exceptions.Lookup("Nokia-Qt-exception-1.1")
	require.True(t, ok)
	assert.Equal(t, model.Deprecated, exc.Flags)

	assert.Equal(t, []string{
		"/v3.24/json/licenses.json",
		"/v3.24/json/exceptions.json",
	}, srv.Requests())
}
