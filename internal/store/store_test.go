package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aticu/pre/internal/contract"
	"github.com/aticu/pre/internal/diag"
	"github.com/aticu/pre/internal/rewrite"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func rewriteFixture(t *testing.T, src string) *rewrite.Result {
	t.Helper()
	eng, err := rewrite.New(rewrite.Config{})
	require.NoError(t, err)
	res, err := eng.RewriteFile("fixture.go", []byte(src))
	require.NoError(t, err)
	return res
}

const fixtureSrc = `package p

//pre: valid_ptr(src, r)
//pre: "the buffer is initialized"
func Read(src *byte) {}

//pre: proper_align(p)
//pre: no_doc
func Align(p *uint64) {}
`

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.DB().Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestRecordAndReadContracts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	res := rewriteFixture(t, fixtureSrc)
	require.True(t, res.Rewritten)
	require.NoError(t, s.RecordPass(ctx, "fixture.go", res))

	contracts, err := s.ContractsForFile(ctx, "fixture.go")
	require.NoError(t, err)
	require.Len(t, contracts, 2)

	read := contracts[0]
	assert.Equal(t, "Read", read.Function)
	assert.Equal(t, "", read.Receiver)
	assert.False(t, read.NoDoc)
	require.Len(t, read.Clauses, 2)
	// Canonical order: valid_ptr before custom.
	assert.Equal(t, contract.KindValidPtr, read.Clauses[0].Kind)
	assert.Equal(t, "src", read.Clauses[0].Ident)
	assert.Equal(t, contract.KindCustom, read.Clauses[1].Kind)

	align := contracts[1]
	assert.Equal(t, "Align", align.Function)
	assert.True(t, align.NoDoc)
	require.Len(t, align.Clauses, 1)
	assert.Equal(t, contract.KindProperAlign, align.Clauses[0].Kind)

	id, rewritten, err := s.PassFor(ctx, "fixture.go")
	require.NoError(t, err)
	assert.Equal(t, res.PassID.String(), id)
	assert.True(t, rewritten)
}

func TestReindexReplacesPreviousPass(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordPass(ctx, "fixture.go", rewriteFixture(t, fixtureSrc)))

	// Second pass over a shrunken file: only one contract remains.
	res := rewriteFixture(t, `package p

//pre: proper_align(p)
func Align(p *uint64) {}
`)
	require.NoError(t, s.RecordPass(ctx, "fixture.go", res))

	contracts, err := s.ContractsForFile(ctx, "fixture.go")
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	assert.Equal(t, "Align", contracts[0].Function)

	id, _, err := s.PassFor(ctx, "fixture.go")
	require.NoError(t, err)
	assert.Equal(t, res.PassID.String(), id)
}

func TestFindContractsAcrossFiles(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	res := rewriteFixture(t, fixtureSrc)
	require.NoError(t, s.RecordPass(ctx, "a/fixture.go", res))

	res2 := rewriteFixture(t, `package q

//pre: valid_ptr(dst, w)
func Read(dst *byte) {}
`)
	require.NoError(t, s.RecordPass(ctx, "b/other.go", res2))

	found, err := s.FindContracts(ctx, "Read")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "a/fixture.go", found[0].File)
	assert.Equal(t, "b/other.go", found[1].File)

	none, err := s.FindContracts(ctx, "Missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecordDiagnostics(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Variadic declaration: hard error, fallback output.
	res := rewriteFixture(t, `package p

//pre: "is bar"
func foo(xs ...int) {}
`)
	require.False(t, res.Rewritten)
	require.NotEmpty(t, res.Diagnostics)
	require.NoError(t, s.RecordPass(ctx, "fixture.go", res))

	diags, err := s.Diagnostics(ctx, "fixture.go")
	require.NoError(t, err)
	require.Len(t, diags, len(res.Diagnostics))
	assert.Equal(t, diag.Error, diags[0].Severity)
	assert.Equal(t, res.Diagnostics[0].Message, diags[0].Message)
	assert.Equal(t, res.Diagnostics[0].Pos.Line, diags[0].Pos.Line)

	_, rewritten, err := s.PassFor(ctx, "fixture.go")
	require.NoError(t, err)
	assert.False(t, rewritten)
}

func TestPassForUnknownFile(t *testing.T) {
	s := openTestStore(t)
	_, _, err := s.PassFor(context.Background(), "unknown.go")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
