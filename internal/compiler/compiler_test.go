package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"purplec/internal/diag"
)

func TestRunCompilesSimpleProgramToLLVMText(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.pur")
	out := filepath.Join(dir, "main.ll")
	require.NoError(t, os.WriteFile(src, []byte(
		"int add(int a, int b) { return a + b; }\n"), 0o600))

	log := logrus.New()
	log.SetOutput(os.Stderr)

	c := New(Options{SourcePath: src, OutPath: out}, log)
	require.NoError(t, c.Run())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(data)
	require.Contains(t, text, "define dso_local i32 @add")
	require.Contains(t, text, "target triple")
	require.NotContains(t, text, ";<purple_globals_placeholder>")
}

func TestRunCompilesPointerStoreScenario(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "ptr.pur")
	out := filepath.Join(dir, "ptr.ll")
	require.NoError(t, os.WriteFile(src, []byte(
		"int *p; int x; int main(void){ p = &x; *p = 7; print x; return 0;}\n"), 0o600))

	log := logrus.New()
	log.SetOutput(os.Stderr)

	c := New(Options{SourcePath: src, OutPath: out}, log)
	require.NoError(t, c.Run())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(data)
	require.Contains(t, text, "store i32 7, i32*")
	// Every basic block must have exactly one terminator.
	require.NotRegexp(t, `ret [^\n]+\n\s*br label`, text)
}

func TestRunReportsSyntaxErrorsWithExitableKind(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.pur")
	out := filepath.Join(dir, "bad.ll")
	require.NoError(t, os.WriteFile(src, []byte("int f( { }\n"), 0o600))

	log := logrus.New()
	log.SetOutput(os.Stderr)

	c := New(Options{SourcePath: src, OutPath: out}, log)
	err := c.Run()
	require.Error(t, err)
	require.Equal(t, diag.SyntaxError, diag.KindOf(err))
}
