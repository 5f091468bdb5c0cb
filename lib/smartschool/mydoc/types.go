package mydoc

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type FileId struct{ uuid.UUID }

type RevisionId struct{ uuid.UUID }

type CustomFolderId struct{ uuid.UUID }

func ParseFileId(s string) (FileId, error) {
	id, err := uuid.Parse(s)
	return FileId{id}, err
}

func ParseRevisionId(s string) (RevisionId, error) {
	id, err := uuid.Parse(s)
	return RevisionId{id}, err
}

func ParseCustomFolderId(s string) (CustomFolderId, error) {
	id, err := uuid.Parse(s)
	return CustomFolderId{id}, err
}

type folderKind int

const (
	rootFolder folderKind = iota
	favoritesFolder
	trashedFolder
	customFolder
)

// FolderId identifies a folder a file or folder can live in, it is either
// one of the virtual folders (Root, Favorites, Trashed) or a custom folder.
// The zero value is Root.
type FolderId struct {
	kind   folderKind
	custom CustomFolderId
}

var (
	Root      = FolderId{kind: rootFolder}
	Favorites = FolderId{kind: favoritesFolder}
	Trashed   = FolderId{kind: trashedFolder}
)

func Custom(id CustomFolderId) FolderId {
	return FolderId{kind: customFolder, custom: id}
}

// Custom returns the id of a custom folder, ok is false for virtual
// folders.
func (f FolderId) Custom() (CustomFolderId, bool) {
	return f.custom, f.kind == customFolder
}

func (f FolderId) IsRoot() bool {
	return f.kind == rootFolder
}

func (f FolderId) String() string {
	switch f.kind {
	case favoritesFolder:
		return "favourites"
	case trashedFolder:
		return "trashed"
	case customFolder:
		return f.custom.String()
	default:
		return ""
	}
}

// ParseFolderId parses the wire form of a folder id: "" for the root,
// "favourites", "trashed" or the uuid of a custom folder.
func ParseFolderId(s string) (FolderId, error) {
	switch s {
	case "":
		return Root, nil
	case "favourites":
		return Favorites, nil
	case "trashed":
		return Trashed, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return FolderId{}, fmt.Errorf("invalid folder id %q: expected \"\", \"favourites\", \"trashed\" or a uuid", s)
	}
	return Custom(CustomFolderId{id}), nil
}

func (f FolderId) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *FolderId) UnmarshalText(text []byte) error {
	parsed, err := ParseFolderId(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

type FolderColor string

const (
	Aqua   FolderColor = "aqua"
	Black  FolderColor = "black"
	Blue   FolderColor = "blue"
	Brown  FolderColor = "brown"
	Green  FolderColor = "green"
	Orange FolderColor = "orange"
	Pink   FolderColor = "pink"
	Purple FolderColor = "purple"
	Red    FolderColor = "red"
	White  FolderColor = "white"
	Yellow FolderColor = "yellow"

	DefaultFolderColor = Yellow
)

var folderColors = []FolderColor{Aqua, Black, Blue, Brown, Green, Orange, Pink, Purple, Red, White, Yellow}

func ParseFolderColor(s string) (FolderColor, error) {
	for _, c := range folderColors {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown folder color %q", s)
}

type State string

const (
	Active  State = "active"
	Deleted State = "deleted"
	// StateTrashed is the state of a file or folder in the trash.
	StateTrashed State = "trashed"
)

// Template is the kind of document a file is created from.
type Template struct {
	kind      string
	reference string
}

var (
	Word       = Template{kind: "word"}
	Excel      = Template{kind: "excel"}
	Powerpoint = Template{kind: "powerpoint"}
)

// CustomTemplate refers to a template uploaded to the platform.
func CustomTemplate(reference string) Template {
	return Template{kind: "template", reference: reference}
}

func (t Template) String() string {
	if t.reference != "" {
		return fmt.Sprintf("%s(%s)", t.kind, t.reference)
	}
	return t.kind
}

// Extension returns the extension the platform gives files created from
// the template, custom templates have none known ahead of time.
func (t Template) Extension() string {
	switch t.kind {
	case "word":
		return ".docx"
	case "excel":
		return ".xlsx"
	case "powerpoint":
		return ".pptx"
	default:
		return ""
	}
}

type File struct {
	Id                FileId     `json:"id"`
	Name              string     `json:"name"`
	ParentId          FolderId   `json:"parentId"`
	State             State      `json:"state"`
	IsFavorite        bool       `json:"isFavourite"`
	CurrentRevisionId RevisionId `json:"currentRevisionId"`
	CurrentRevision   Revision   `json:"currentRevision"`
	DateChanged       time.Time  `json:"dateChanged"`
	DateCreated       time.Time  `json:"dateCreated"`
	DateRecentAction  time.Time  `json:"dateRecentAction"`
	DateStateChanged  time.Time  `json:"dateStateChanged"`
}

type Folder struct {
	Id               CustomFolderId `json:"id"`
	Name             string         `json:"name"`
	ParentId         FolderId       `json:"parentId"`
	Color            FolderColor    `json:"color"`
	State            State          `json:"state"`
	IsFavorite       bool           `json:"isFavourite"`
	HasSubfolders    bool           `json:"hasSubFolders"`
	DateChanged      time.Time      `json:"dateChanged"`
	DateCreated      time.Time      `json:"dateCreated"`
	DateStateChanged time.Time      `json:"dateStateChanged"`
}

// Revision is a version of a file's contents.
type Revision struct {
	Id       RevisionId `json:"id"`
	FileId   FileId     `json:"fileId"`
	FileName string     `json:"label"`
	FileSize uint64     `json:"fileSize"`
	MimeType string     `json:"mimeType"`
	Date     time.Time  `json:"dateCreated"`
}

type HistoryUser struct {
	Id          string `json:"userIdentifier"`
	Name        string `json:"name"`
	PictureHash string `json:"userPictureHash"`
}

type HistoryEntry struct {
	Date            time.Time   `json:"date"`
	Text            string      `json:"text"`
	IsDownloadEvent bool        `json:"isDownloadEvent"`
	IsSpecialEvent  bool        `json:"isSpecialEvent"`
	User            HistoryUser `json:"user"`
}
