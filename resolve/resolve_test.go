package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/globalns/resolve"
)

// Scenario 4: folder-vs-file collision. StoryEvent is placed first at
// Global/Story/StoryEvent.md (making Global/Story a folder); an override
// then forces uid2 to Global/Story.md, which collides with the folder and
// gets "_Page" appended to its stem, leaving StoryEvent's path untouched.
func TestRegistry_FolderEatsFile(t *testing.T) {
	reg := resolve.NewRegistry()

	storyPath, err := reg.Resolve("story-event", "Story", "StoryEvent")
	require.NoError(t, err)
	assert.Equal(t, "Global/Story/StoryEvent.md", storyPath)

	uid2Path, err := reg.ResolvePath("uid2", "Global/Story.md")
	require.NoError(t, err)
	assert.Equal(t, "Global/Story_Page.md", uid2Path)

	again, ok := reg.Lookup("story-event")
	require.True(t, ok)
	assert.Equal(t, "Global/Story/StoryEvent.md", again)
}

func TestRegistry_FileEatsFolder(t *testing.T) {
	reg := resolve.NewRegistry()

	p1, err := reg.ResolvePath("file1", "Global/Story.md")
	require.NoError(t, err)
	assert.Equal(t, "Global/Story.md", p1)

	p2, err := reg.Resolve("story-event", "Story", "StoryEvent")
	require.NoError(t, err)
	assert.Equal(t, "Global/Story/StoryEvent.md", p2)

	renamed, ok := reg.Lookup("file1")
	require.True(t, ok)
	assert.Equal(t, "Global/Story_Page.md", renamed)
}

func TestRegistry_FileVsFile_HashSuffix(t *testing.T) {
	reg := resolve.NewRegistry()

	first, err := reg.Resolve("uidA", "Misc", "Widget")
	require.NoError(t, err)
	assert.Equal(t, "Global/Misc/Widget.md", first)

	second, err := reg.Resolve("uidB", "Misc", "Widget")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Contains(t, second, "Global/Misc/Widget_")
}

func TestRegistry_CaseInsensitiveCollision(t *testing.T) {
	reg := resolve.NewRegistry()

	_, err := reg.Resolve("uidA", "Misc", "Widget")
	require.NoError(t, err)

	second, err := reg.Resolve("uidB", "Misc", "WIDGET")
	require.NoError(t, err)
	assert.NotEqual(t, "Global/Misc/WIDGET.md", second)
}
