package driver

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kudryavchik/semantic/pkg/concrete"
	"github.com/kudryavchik/semantic/pkg/runtime"
)

func writeBundle(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadManifest(t *testing.T) {
	dir := writeBundle(t, map[string]string{
		"bundle.yaml": "name: demo\ndocuments:\n  - lib.yaml\n  - main.yaml\nentry: main.yaml\n",
	})
	manifest, err := LoadManifest(filepath.Join(dir, ManifestName))
	require.NoError(t, err)
	assert.Equal(t, "demo", manifest.Name)
	assert.Equal(t, []string{"lib.yaml", "main.yaml"}, manifest.Documents)
	assert.Equal(t, "main.yaml", manifest.Entry)
}

func TestLoadManifestDefaultsEntryToLastDocument(t *testing.T) {
	dir := writeBundle(t, map[string]string{
		"bundle.yaml": "name: demo\ndocuments:\n  - a.yaml\n  - b.yaml\n",
	})
	manifest, err := LoadManifest(filepath.Join(dir, ManifestName))
	require.NoError(t, err)
	assert.Equal(t, "b.yaml", manifest.Entry)
}

func TestLoadManifestRejectsUnlistedEntry(t *testing.T) {
	dir := writeBundle(t, map[string]string{
		"bundle.yaml": "name: demo\ndocuments:\n  - a.yaml\nentry: ghost.yaml\n",
	})
	_, err := LoadManifest(filepath.Join(dir, ManifestName))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a listed document")
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	dir := writeBundle(t, map[string]string{
		"bundle.yaml": "name: demo\ndocuments: [a.yaml]\nsurprise: true\n",
	})
	_, err := LoadManifest(filepath.Join(dir, ManifestName))
	require.Error(t, err)
}

func TestLoadDirDecodesDocumentsInOrder(t *testing.T) {
	dir := writeBundle(t, map[string]string{
		"bundle.yaml": "name: demo\ndocuments:\n  - lib.yaml\n  - main.yaml\nentry: main.yaml\n",
		"lib.yaml":    "name: lib\nterms:\n  - {type: bind, name: base, value: {type: int, value: 40}}\n",
		"main.yaml":   "name: main\nterms:\n  - {type: binary, op: \"+\", left: {type: ident, name: base}, right: {type: int, value: 2}}\n",
	})
	bundle, err := NewLoader(quietLogger()).LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "demo", bundle.Name)
	require.Len(t, bundle.Documents, 2)
	assert.Equal(t, "lib", bundle.Documents[0].Name)
	require.NotNil(t, bundle.Entry)
	assert.Equal(t, "main", bundle.Entry.Name)
}

func TestSessionRunsDocumentsAgainstOneMachine(t *testing.T) {
	dir := writeBundle(t, map[string]string{
		"bundle.yaml": "name: demo\ndocuments:\n  - lib.yaml\n  - main.yaml\nentry: main.yaml\n",
		"lib.yaml":    "name: lib\nterms:\n  - {type: bind, name: base, value: {type: int, value: 40}}\n",
		"main.yaml":   "name: main\nterms:\n  - {type: binary, op: \"+\", left: {type: ident, name: base}, right: {type: int, value: 2}}\n",
	})
	bundle, err := NewLoader(quietLogger()).LoadDir(dir)
	require.NoError(t, err)

	var out bytes.Buffer
	session := &Session{Domain: concrete.New(), Stdout: &out, Log: quietLogger()}
	result, err := session.Run(bundle)
	require.NoError(t, err)

	got, ok := result.(concrete.IntegerValue)
	require.True(t, ok, "result is %T", result)
	assert.EqualValues(t, 42, got.Val.Int64())
}

func TestSessionErrorCarriesDocumentOrigin(t *testing.T) {
	dir := writeBundle(t, map[string]string{
		"bundle.yaml": "name: demo\ndocuments: [main.yaml]\n",
		"main.yaml":   "name: main\nterms:\n  - {type: ident, name: unbound}\n",
	})
	bundle, err := NewLoader(quietLogger()).LoadDir(dir)
	require.NoError(t, err)

	session := &Session{Domain: concrete.New(), Log: quietLogger()}
	_, err = session.Run(bundle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main:")
	var envErr runtime.EnvironmentError
	require.ErrorAs(t, err, &envErr)
	assert.Equal(t, "unbound", envErr.Name)
}

func TestAnalysisSessionContinuesPastFailures(t *testing.T) {
	dir := writeBundle(t, map[string]string{
		"bundle.yaml": "name: demo\ndocuments: [main.yaml]\n",
		"main.yaml": "name: main\nterms:\n" +
			"  - {type: binary, op: \"+\", left: {type: string, value: oops}, right: {type: int, value: 1}}\n",
	})
	bundle, err := NewLoader(quietLogger()).LoadDir(dir)
	require.NoError(t, err)

	session := NewAnalysisSession(io.Discard, quietLogger())
	result, err := session.Run(bundle)
	require.NoError(t, err)
	assert.Equal(t, runtime.KindTop, result.Kind())
}

func TestDomainByName(t *testing.T) {
	d, err := DomainByName("concrete")
	require.NoError(t, err)
	assert.Equal(t, "concrete", d.Name())

	d, err = DomainByName("type")
	require.NoError(t, err)
	assert.Equal(t, "type", d.Name())

	_, err = DomainByName("taint")
	require.Error(t, err)
}
