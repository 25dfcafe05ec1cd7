package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightwave/profiler/internal/catalog"
)

const sampleProfiler = `{
	"questions": [
		{"question": "Q1", "domain": "Attention", "practice": "env-low-distraction"},
		{"question": "Q2", "domain": "Attention", "practice": ["env-low-distraction", "teach-chunking"]},
		{"question": "Q3", "domain": "Sensory"}
	],
	"answerOptions": ["Never", "Sometimes", "Often"],
	"practice_source": ["primary-practices.json"]
}`

const samplePractice = `[
	{
		"name": "Environment",
		"children": [
			{
				"id": "env-low-distraction",
				"name": "Low distraction seating",
				"children": [{"text": "Seat near the front"}, {"text": "Reduce wall displays"}]
			}
		]
	}
]`

func writeCatalog(t *testing.T) *catalog.Store {
	t.Helper()

	profilers := t.TempDir()
	practices := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(profilers, "ks1.json"), []byte(sampleProfiler), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(profilers, "broken.json"), []byte("{nope"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(practices, "primary-practices.json"), []byte(samplePractice), 0o644))

	return catalog.NewStore(profilers, practices)
}

func TestLoadProfiler_ParsesQuestionsAndPractices(t *testing.T) {
	t.Parallel()

	store := writeCatalog(t)

	def, err := store.LoadProfiler("ks1.json")
	require.NoError(t, err)

	require.Len(t, def.Questions, 3)
	assert.Equal(t, catalog.PracticeRefs{"env-low-distraction"}, def.Questions[0].Practice)
	assert.Equal(t, catalog.PracticeRefs{"env-low-distraction", "teach-chunking"}, def.Questions[1].Practice)
	assert.Empty(t, def.Questions[2].Practice)

	assert.Equal(t, []string{"Attention", "Sensory"}, def.Domains())
	assert.Equal(t, "primary-practices", def.PracticeSourceName())
}

func TestLoadProfiler_MissingOrCorrupt(t *testing.T) {
	t.Parallel()

	store := writeCatalog(t)

	_, err := store.LoadProfiler("absent.json")
	assert.ErrorIs(t, err, catalog.ErrCatalogUnavailable)

	_, err = store.LoadProfiler("broken.json")
	assert.ErrorIs(t, err, catalog.ErrCatalogUnavailable)
}

func TestLoadProfiler_RejectsTraversal(t *testing.T) {
	t.Parallel()

	store := writeCatalog(t)

	_, err := store.LoadProfiler("../../etc/passwd")
	assert.ErrorIs(t, err, catalog.ErrBadFilename)
}

func TestFindQuestion(t *testing.T) {
	t.Parallel()

	store := writeCatalog(t)
	def, err := store.LoadProfiler("ks1.json")
	require.NoError(t, err)

	q := def.FindQuestion("Q2")
	require.NotNil(t, q)
	assert.Equal(t, "Attention", q.Domain)

	assert.Nil(t, def.FindQuestion("Q2 "), "match must be verbatim")
	assert.Nil(t, def.FindQuestion("unknown"))
}

func TestLoadPractice_ExtensionOptional(t *testing.T) {
	t.Parallel()

	store := writeCatalog(t)

	tree, err := store.LoadPractice("primary-practices")
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "Environment", tree[0].Name)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "env-low-distraction", tree[0].Children[0].ID)
	assert.Len(t, tree[0].Children[0].Children, 2)

	again, err := store.LoadPractice("primary-practices.json")
	require.NoError(t, err)
	assert.Equal(t, tree, again)
}

func TestProfilerFilenames(t *testing.T) {
	t.Parallel()

	store := writeCatalog(t)

	names, err := store.ProfilerFilenames()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ks1.json", "broken.json"}, names)
}
