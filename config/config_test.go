package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	"github.com/viant/globalns/config"
)

func TestDefault_MatchesDocumentedDefaults(t *testing.T) {
	c := config.Default()
	assert.Equal(t, 3, c.Thresholds.MinClusterSize)
	assert.Equal(t, 20, c.Thresholds.TopK)
	assert.Equal(t, 40, c.Thresholds.MaxTopLevelFolders)
	assert.Equal(t, 250, c.Thresholds.MaxFolderSize)
	assert.Contains(t, c.Rules.StopTokens, "Manager")
	assert.Contains(t, c.Rules.MetadataDenylist, "MonoBehaviour")
	assert.Contains(t, c.Acronyms, "UI")
}

func TestHash_DeterministicAndSensitiveToChange(t *testing.T) {
	a := config.Default()
	b := config.Default()
	assert.Equal(t, config.Hash(a), config.Hash(b))

	b.Thresholds.MinClusterSize = 9
	assert.NotEqual(t, config.Hash(a), config.Hash(b))
}

func TestMerge_ArraysReplaceExceptAcronymsUnion(t *testing.T) {
	base := config.Default()
	override := &config.Config{
		Rules: config.Rules{
			StopTokens: []string{"Only"},
		},
		Acronyms: []string{"UI", "ZZZ"},
	}

	merged := config.Merge(base, override)
	assert.Equal(t, []string{"Only"}, merged.Rules.StopTokens, "non-acronym arrays replace wholesale")
	assert.Contains(t, merged.Acronyms, "ZZZ")
	assert.Contains(t, merged.Acronyms, "XML", "union keeps base entries not named in override")
	assert.Contains(t, merged.Acronyms, "UI", "duplicate entries collapse")
}

func TestMerge_ZeroValueThresholdsInheritBase(t *testing.T) {
	base := config.Default()
	override := &config.Config{Thresholds: config.Thresholds{MaxFolderSize: 500}}

	merged := config.Merge(base, override)
	assert.Equal(t, 500, merged.Thresholds.MaxFolderSize)
	assert.Equal(t, base.Thresholds.MinClusterSize, merged.Thresholds.MinClusterSize)
	assert.Equal(t, base.Thresholds.TopK, merged.Thresholds.TopK)
}

func TestMerge_DoesNotMutateBase(t *testing.T) {
	base := config.Default()
	originalStopTokens := append([]string(nil), base.Rules.StopTokens...)

	_ = config.Merge(base, &config.Config{Rules: config.Rules{StopTokens: []string{"Changed"}}})
	assert.Equal(t, originalStopTokens, base.Rules.StopTokens)
}

func TestValidate_RejectsWrongTopLevelType(t *testing.T) {
	err := config.Validate([]byte("thresholds: not-an-object"))
	assert.Error(t, err)
}

func TestValidate_AcceptsWellFormedDocument(t *testing.T) {
	doc := []byte(`
thresholds:
  min_cluster_size: 4
rules:
  stop_tokens: ["Manager"]
acronyms: ["UI"]
`)
	assert.NoError(t, config.Validate(doc))
}

func TestValidate_AcceptsEmptyDocument(t *testing.T) {
	assert.NoError(t, config.Validate(nil))
}

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	loc := filepath.Join(t.TempDir(), "does-not-exist.yaml")

	c, err := config.Load(ctx, fs, loc)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), c)
}

func TestLoad_EmptyLocationReturnsDefault(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()

	c, err := config.Load(ctx, fs, "")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), c)
}

func TestLoad_ValidDocumentMergesOntoDefault(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	loc := filepath.Join(t.TempDir(), "globalns.yaml")

	doc := "thresholds:\n  min_cluster_size: 7\nacronyms: [\"ZZZ\"]\n"
	require.NoError(t, os.WriteFile(loc, []byte(doc), 0644))

	c, err := config.Load(ctx, fs, loc)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Thresholds.MinClusterSize)
	assert.Equal(t, config.Default().Thresholds.TopK, c.Thresholds.TopK)
	assert.Contains(t, c.Acronyms, "ZZZ")
	assert.Contains(t, c.Acronyms, "UI")
}

func TestLoad_MalformedDocumentAbortsBeforeMerge(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	loc := filepath.Join(t.TempDir(), "globalns.yaml")

	require.NoError(t, os.WriteFile(loc, []byte("thresholds: not-an-object\n"), 0644))

	_, err := config.Load(ctx, fs, loc)
	assert.Error(t, err)
}

func TestLocateCorpusRoot_FindsMarkerInAncestor(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "globalns.yaml"), []byte("{}"), 0644))

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0755))

	got := config.LocateCorpusRoot(nested)
	gotAbs, _ := filepath.Abs(got)
	rootAbs, _ := filepath.Abs(root)
	assert.Equal(t, rootAbs, gotAbs)
}

func TestLocateCorpusRoot_FallsBackToStartDirWhenNoMarker(t *testing.T) {
	// /tmp itself (and every ancestor up to "/") is very unlikely to carry a
	// globalns.yaml or .git marker, so the walk should bottom out and return
	// the start directory unchanged.
	start := t.TempDir()
	got := config.LocateCorpusRoot(start)
	gotAbs, _ := filepath.Abs(got)
	startAbs, _ := filepath.Abs(start)
	assert.Equal(t, startAbs, gotAbs)
}
