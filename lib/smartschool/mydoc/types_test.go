package mydoc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const folderUuid = "9a4bd55e-8e35-4f0e-9f54-bb5ff00f1d3c"

func TestFolderIdJson(t *testing.T) {
	custom, err := ParseCustomFolderId(folderUuid)
	require.NoError(t, err)

	cases := []struct {
		id   FolderId
		wire string
	}{
		{id: Root, wire: `""`},
		{id: Favorites, wire: `"favourites"`},
		{id: Trashed, wire: `"trashed"`},
		{id: Custom(custom), wire: `"` + folderUuid + `"`},
	}

	for _, c := range cases {
		out, err := json.Marshal(c.id)
		require.NoError(t, err)
		require.Equal(t, c.wire, string(out))

		var parsed FolderId
		require.NoError(t, json.Unmarshal([]byte(c.wire), &parsed))
		require.Equal(t, c.id, parsed)
	}

	var zero FolderId
	require.True(t, zero.IsRoot())

	_, ok := Favorites.Custom()
	require.False(t, ok)
	got, ok := Custom(custom).Custom()
	require.True(t, ok)
	require.Equal(t, custom, got)
}

func TestFolderIdInvalid(t *testing.T) {
	var id FolderId
	require.Error(t, json.Unmarshal([]byte(`"documents"`), &id))
}

func TestFileDecodesIds(t *testing.T) {
	var file File
	err := json.Unmarshal([]byte(`{
		"id": "0f6b1a9e-0a43-4c55-a1e7-8b2b4b7a9d10",
		"name": "verslag.docx",
		"parentId": "`+folderUuid+`",
		"state": "active",
		"isFavourite": true,
		"dateChanged": "2024-03-01T10:00:00+01:00"
	}`), &file)
	require.NoError(t, err)

	require.Equal(t, "0f6b1a9e-0a43-4c55-a1e7-8b2b4b7a9d10", file.Id.String())
	parent, ok := file.ParentId.Custom()
	require.True(t, ok)
	require.Equal(t, folderUuid, parent.String())
	require.Equal(t, Active, file.State)
	require.True(t, file.IsFavorite)
}

func TestTemplate(t *testing.T) {
	require.Equal(t, ".xlsx", Excel.Extension())
	require.Equal(t, "", CustomTemplate("tpl-1").Extension())
	require.Equal(t, "template(tpl-1)", CustomTemplate("tpl-1").String())
	require.Equal(t, "word", Word.String())
}

func TestParseFolderColor(t *testing.T) {
	color, err := ParseFolderColor("purple")
	require.NoError(t, err)
	require.Equal(t, Purple, color)

	_, err = ParseFolderColor("magenta")
	require.Error(t, err)
}

func TestValidateName(t *testing.T) {
	require.NoError(t, ValidateName("Wiskunde 2024"))
	for _, name := range []string{"", "a/b", "a:b", "why?", ".git", "end.", `x\y`, "a|b"} {
		require.ErrorIs(t, ValidateName(name), ErrIllegalName, name)
	}
}
