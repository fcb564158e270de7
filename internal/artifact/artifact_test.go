package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dockfixerrors "github.com/dockfix/dockfix/internal/errors"
)

const sampleDockerfile = `FROM node:20-alpine
WORKDIR /app
COPY package.json .
RUN npm install
CMD ["node", "index.js"]
`

// TestNew_StartsAtVersionZero verifies a fresh artifact has version 0.
func TestNew_StartsAtVersionZero(t *testing.T) {
	t.Parallel()

	art := New(sampleDockerfile)

	assert.Equal(t, 0, art.Version())
	assert.Equal(t, sampleDockerfile, art.Dockerfile())
}

// TestNew_NormalizesCRLF verifies Windows line endings are normalized.
func TestNew_NormalizesCRLF(t *testing.T) {
	t.Parallel()

	art := New("FROM alpine\r\nRUN true\r\n")

	assert.Equal(t, []string{"FROM alpine", "RUN true"}, art.Lines())
}

// TestLoad_MissingFile verifies a missing path maps to ErrArtifactNotFound.
func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "Dockerfile"))

	require.Error(t, err)
	require.ErrorIs(t, err, dockfixerrors.ErrArtifactNotFound)
}

// TestLoad_EmptyFile verifies an empty file maps to ErrArtifactEmpty.
func TestLoad_EmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "Dockerfile")
	require.NoError(t, os.WriteFile(path, []byte("  \n\n"), 0o600))

	_, err := Load(path)

	require.Error(t, err)
	require.ErrorIs(t, err, dockfixerrors.ErrArtifactEmpty)
}

// TestLoad_RoundTrip verifies content survives Load and Save.
func TestLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "Dockerfile")
	require.NoError(t, os.WriteFile(src, []byte(sampleDockerfile), 0o600))

	art, err := Load(src)
	require.NoError(t, err)

	dst := filepath.Join(dir, "Dockerfile.repaired")
	require.NoError(t, art.Save(dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, sampleDockerfile, string(data))
}

// TestWithLines_DoesNotMutateOriginal verifies copy-on-write semantics.
func TestWithLines_DoesNotMutateOriginal(t *testing.T) {
	t.Parallel()

	original := New(sampleDockerfile)
	next := original.WithLines([]string{"FROM alpine"})

	assert.Equal(t, 0, original.Version())
	assert.Equal(t, 1, next.Version())
	assert.Equal(t, sampleDockerfile, original.Dockerfile())
	assert.Equal(t, "FROM alpine\n", next.Dockerfile())
}

// TestTouch_BumpsVersionWithoutContentChange verifies Touch semantics.
func TestTouch_BumpsVersionWithoutContentChange(t *testing.T) {
	t.Parallel()

	art := New(sampleDockerfile)
	touched := art.Touch()

	assert.Equal(t, art.Version()+1, touched.Version())
	assert.Equal(t, art.Dockerfile(), touched.Dockerfile())
	assert.Equal(t, art.Digest(), touched.Digest())
}

// TestWithSidecar_IsIsolatedPerVersion verifies sidecar copies are deep.
func TestWithSidecar_IsIsolatedPerVersion(t *testing.T) {
	t.Parallel()

	base := New(sampleDockerfile)
	withEnv := base.WithSidecar(".env", "PORT=3000\n")

	_, ok := base.Sidecar(".env")
	assert.False(t, ok)

	content, ok := withEnv.Sidecar(".env")
	require.True(t, ok)
	assert.Equal(t, "PORT=3000\n", content)
	assert.Equal(t, []string{".env"}, withEnv.SidecarNames())
}

// TestContainsLine_TrimsWhitespace verifies trimmed equality matching.
func TestContainsLine_TrimsWhitespace(t *testing.T) {
	t.Parallel()

	art := New("FROM alpine\n   RUN apt-get update   \n")

	assert.True(t, art.ContainsLine("RUN apt-get update"))
	assert.False(t, art.ContainsLine("RUN apt-get upgrade"))
}

// TestInsertAfterStage_InsertsAfterFirstFrom verifies anchor insertion.
func TestInsertAfterStage_InsertsAfterFirstFrom(t *testing.T) {
	t.Parallel()

	art := New("FROM node:20\nFROM alpine\nRUN true\n")

	next, err := art.InsertAfterStage("ENV FOO=bar")
	require.NoError(t, err)

	assert.Equal(t, []string{"FROM node:20", "ENV FOO=bar", "FROM alpine", "RUN true"}, next.Lines())
	assert.Equal(t, 1, next.Version())
}

// TestInsertAfterStage_NoFromInstruction verifies the anchor error.
func TestInsertAfterStage_NoFromInstruction(t *testing.T) {
	t.Parallel()

	art := New("RUN true\n")

	_, err := art.InsertAfterStage("ENV FOO=bar")

	require.Error(t, err)
	require.ErrorIs(t, err, dockfixerrors.ErrAnchorNotFound)
}

// TestNormalized_CollapsesBlanksAndWhitespace verifies the equivalence form.
func TestNormalized_CollapsesBlanksAndWhitespace(t *testing.T) {
	t.Parallel()

	a := New("FROM alpine\n\n  RUN true  \n")
	b := New("FROM alpine\nRUN true\n")

	assert.Equal(t, b.Normalized(), a.Normalized())
}

// TestDigest_CoversSidecars verifies sidecars change the digest.
func TestDigest_CoversSidecars(t *testing.T) {
	t.Parallel()

	base := New(sampleDockerfile)
	withSidecar := base.WithSidecar(".dockerignore", "node_modules\n")

	assert.NotEqual(t, base.Digest(), withSidecar.Digest())
}

// TestMaterialize_WritesDockerfileAndSidecars verifies on-disk layout.
func TestMaterialize_WritesDockerfileAndSidecars(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	art := New(sampleDockerfile).WithSidecar("conf/app.env", "PORT=3000\n")

	require.NoError(t, art.Materialize(dir))

	data, err := os.ReadFile(filepath.Join(dir, DockerfileName))
	require.NoError(t, err)
	assert.Equal(t, sampleDockerfile, string(data))

	sidecar, err := os.ReadFile(filepath.Join(dir, "conf", "app.env"))
	require.NoError(t, err)
	assert.Equal(t, "PORT=3000\n", string(sidecar))
}
