package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := LoadIndex()
	require.NoError(t, err)
	return idx
}

func TestLoadIndexCounts(t *testing.T) {
	idx := loadTestIndex(t)
	counts := idx.Counts()

	assert.Greater(t, counts["functions"], 10)
	assert.Greater(t, counts["hooks"], 10)
	assert.Greater(t, counts["classes"], 5)
	assert.Greater(t, counts["topics"], 3)
	assert.Greater(t, counts["contrib"], 5)
	assert.Greater(t, counts["examples"], 3)
}

func TestSearchFunctionsExactFirst(t *testing.T) {
	idx := loadTestIndex(t)

	results := idx.SearchFunctions("t", 0)
	require.NotEmpty(t, results)
	assert.Equal(t, "t", results[0].Name, "exact match sorts first")
}

func TestSearchFunctionsByDescription(t *testing.T) {
	idx := loadTestIndex(t)

	results := idx.SearchFunctions("messenger", 0)
	require.NotEmpty(t, results)

	var names []string
	for _, f := range results {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "drupal_set_message")
}

func TestSearchFunctionsLimit(t *testing.T) {
	idx := loadTestIndex(t)

	results := idx.SearchFunctions("drupal", 2)
	assert.Len(t, results, 2)
}

func TestSearchFunctionsEmptyQuery(t *testing.T) {
	idx := loadTestIndex(t)
	assert.Empty(t, idx.SearchFunctions("", 0))
	assert.Empty(t, idx.SearchFunctions("   ", 0))
}

func TestSearchHooksWithoutPrefix(t *testing.T) {
	idx := loadTestIndex(t)

	results := idx.SearchHooks("form_alter", 0)
	require.NotEmpty(t, results)
	assert.Equal(t, "hook_form_alter", results[0].Name)
}

func TestSearchHooksByGroup(t *testing.T) {
	idx := loadTestIndex(t)

	results := idx.SearchHooks("entity", 0)
	require.NotEmpty(t, results)
	for _, h := range results {
		assert.Contains(t, h.Name+h.Group+h.Description, "entity")
	}
}

func TestSearchClasses(t *testing.T) {
	idx := loadTestIndex(t)

	results := idx.SearchClasses("cache", 0)
	require.NotEmpty(t, results)

	var names []string
	for _, c := range results {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "CacheBackendInterface")
}

func TestSearchTopics(t *testing.T) {
	idx := loadTestIndex(t)

	results := idx.SearchTopics("jsonapi", 0)
	require.Len(t, results, 1)
	assert.Equal(t, "jsonapi", results[0].Slug)
}

func TestSearchContribModulesEmptyQueryListsRecommended(t *testing.T) {
	idx := loadTestIndex(t)

	results := idx.SearchContribModules("", 0)
	require.NotEmpty(t, results)
	for _, m := range results {
		assert.True(t, m.Recommended)
	}
}

func TestFunctionDetails(t *testing.T) {
	idx := loadTestIndex(t)

	f, ok := idx.FunctionDetails("node_load")
	require.True(t, ok)
	assert.Equal(t, "node", f.Module)
	assert.NotEmpty(t, f.Deprecated)

	_, ok = idx.FunctionDetails("nonexistent_function")
	assert.False(t, ok)
}

func TestHookDetailsPrefixOptional(t *testing.T) {
	idx := loadTestIndex(t)

	withPrefix, ok := idx.HookDetails("hook_cron")
	require.True(t, ok)

	withoutPrefix, ok := idx.HookDetails("cron")
	require.True(t, ok)

	assert.Equal(t, withPrefix, withoutPrefix)
}

func TestClassDetailsNamespaceQualified(t *testing.T) {
	idx := loadTestIndex(t)

	bare, ok := idx.ClassDetails("Node")
	require.True(t, ok)

	qualified, ok := idx.ClassDetails(`Drupal\node\Entity\Node`)
	require.True(t, ok)

	assert.Equal(t, bare, qualified)
}

func TestFindCodeExamplesByRelated(t *testing.T) {
	idx := loadTestIndex(t)

	results := idx.FindCodeExamples("node_load", 0)
	require.NotEmpty(t, results)
	assert.Contains(t, results[0].Code, "Node::load")
}
