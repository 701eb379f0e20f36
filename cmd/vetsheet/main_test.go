package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/documents"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/records"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/router"
)

const sheet = "Mario Rossi RSSMRA80A01H501U a@b.it\n" +
	"CG Labrador M 01/02/2015 Fido\n" +
	"05/03/24 Visita di controllo\n"

// run ejecuta la CLI en un directorio temporal sin .env ni config.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSheet(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(sheet), 0o644))
	return p
}

func TestParseCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeSheet(t, dir, "rossi.txt")

	out, err := run(t, "parse", path)
	require.NoError(t, err)

	var res documents.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "rossi.txt", res.Name)
	require.Len(t, res.Document.Pets, 1)
	assert.Equal(t, "Fido", res.Document.Pets[0].Name)
}

func TestImportAndExportCommands(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	sheets := filepath.Join(dir, "sheets")
	require.NoError(t, os.Mkdir(sheets, 0o755))
	writeSheet(t, sheets, "a.txt")

	t.Setenv("VETSHEET_STORAGE_DRIVER", "sqlite")
	t.Setenv("VETSHEET_STORAGE_DSN", "file:"+filepath.Join(dir, "vet.db"))

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 1")

	out, err = run(t, "import", "--dir", sheets)
	require.NoError(t, err)
	assert.Contains(t, out, "OK    a.txt")
	assert.Contains(t, out, "succeeded=1")

	xlsx := filepath.Join(dir, "out.xlsx")
	out, err = run(t, "export", "--out", xlsx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "wrote "))
	info, err := os.Stat(xlsx)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestMigrateCommand_MemoryDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := run(t, "migrate")
	assert.Error(t, err)
}

func TestPushCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeSheet(t, dir, "rossi.txt")

	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	out, err := run(t, "push", path, "--api", ts.URL)
	require.NoError(t, err)

	var saved records.SaveResult
	require.NoError(t, json.Unmarshal([]byte(out), &saved))
	assert.Equal(t, 1, saved.OwnersCreated)
	assert.Equal(t, 1, saved.VisitsCreated)
}

func TestInvalidConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VETSHEET_STORAGE_DRIVER", "oracle")
	_, err := run(t, "parse", "x.txt")
	assert.ErrorContains(t, err, "invalid config")
}
