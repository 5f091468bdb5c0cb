// Package mydoc implements the "my documents" module of the platform, a
// virtual file system every user has.
package mydoc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"smsc-client/lib/smartschool"
	"smsc-client/lib/smartschool/upload"
)

const apiRoot = "/mydoc/api/v1"

// ErrIllegalName is returned for names the platform refuses.
var ErrIllegalName = errors.New("illegal name")

// ValidateName checks a file or folder name against the rules of the
// platform, it may not contain any of `/:*?"\<>|` and may not start or end
// with a `.`.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name", ErrIllegalName)
	}
	if strings.ContainsAny(name, `/:*?"\<>|`) {
		return fmt.Errorf("%w: %q contains one of /:*?\"\\<>|", ErrIllegalName, name)
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return fmt.Errorf("%w: %q starts or ends with a dot", ErrIllegalName, name)
	}
	return nil
}

type Client struct {
	session *smartschool.Session
}

func NewClient(session *smartschool.Session) Client {
	return Client{session: session}
}

func filePath(id FileId, action ...string) string {
	return strings.Join(append([]string{apiRoot, "files", id.String()}, action...), "/")
}

func folderPath(id CustomFolderId, action ...string) string {
	return strings.Join(append([]string{apiRoot, "folders", id.String()}, action...), "/")
}

type parentPayload struct {
	ParentId FolderId `json:"parentId"`
}

type renamePayload struct {
	NewName string `json:"newName"`
}

// RecentFiles lists the recently modified files of the user.
func (c Client) RecentFiles(ctx context.Context) ([]File, error) {
	return smartschool.Call[[]File](ctx, c.session, http.MethodGet, apiRoot+"/files/recent", nil)
}

type folderContents struct {
	Files   []File   `json:"files"`
	Folders []Folder `json:"folders"`
}

// FolderContents lists the files and folders directly inside a folder.
func (c Client) FolderContents(ctx context.Context, id FolderId) ([]File, []Folder, error) {
	path := apiRoot + "/directory-listing"
	if !id.IsRoot() {
		path += "/" + id.String()
	}
	res, err := smartschool.Call[folderContents](ctx, c.session, http.MethodGet, path, nil)
	if err != nil {
		return nil, nil, err
	}
	return res.Files, res.Folders, nil
}

// FolderParents returns the ancestors of a folder.
func (c Client) FolderParents(ctx context.Context, id CustomFolderId) ([]CustomFolderId, error) {
	return smartschool.Call[[]CustomFolderId](ctx, c.session, http.MethodGet, folderPath(id, "parents"), nil)
}

// FileHistory returns the events of a file sorted by date, newest first. The
// platform returns an empty history for files that don't exist.
func (c Client) FileHistory(ctx context.Context, id FileId) ([]HistoryEntry, error) {
	return smartschool.Call[[]HistoryEntry](ctx, c.session, http.MethodGet, filePath(id, "history"), nil)
}

func (c Client) FolderHistory(ctx context.Context, id CustomFolderId) ([]HistoryEntry, error) {
	return smartschool.Call[[]HistoryEntry](ctx, c.session, http.MethodGet, folderPath(id, "history"), nil)
}

func (c Client) FileRevisions(ctx context.Context, id FileId) ([]Revision, error) {
	return smartschool.Call[[]Revision](ctx, c.session, http.MethodGet, filePath(id, "revisions"), nil)
}

// DownloadFile returns the contents of the current revision of a file, the
// caller must close it.
func (c Client) DownloadFile(ctx context.Context, id FileId) (io.ReadCloser, error) {
	return smartschool.Stream(ctx, c.session, filePath(id, "download"))
}

func (c Client) DownloadRevision(ctx context.Context, file FileId, revision RevisionId) (io.ReadCloser, error) {
	return smartschool.Stream(ctx, c.session, filePath(file, "revisions", revision.String(), "download"))
}

// CreateFolder creates a folder in parent, an empty color is the default
// color. The platform may append a parenthesized number to the name when
// parent already holds a folder with that name.
func (c Client) CreateFolder(ctx context.Context, parent FolderId, name string, color FolderColor) (Folder, error) {
	err := ValidateName(name)
	if err != nil {
		return Folder{}, err
	}
	if color == "" {
		color = DefaultFolderColor
	}
	payload := struct {
		Name     string      `json:"name"`
		ParentId FolderId    `json:"parentId"`
		Color    FolderColor `json:"color"`
	}{Name: name, ParentId: parent, Color: color}
	return smartschool.Call[Folder](ctx, c.session, http.MethodPost, apiRoot+"/folders/", payload)
}

// CreateFileFromTemplate creates a document from a template. The platform
// appends the extension of the template to the name unless it is already
// there, so "foo.xlsx" from Excel is named "foo.xlsx".
func (c Client) CreateFileFromTemplate(ctx context.Context, parent FolderId, name string, template Template) (File, error) {
	err := ValidateName(name)
	if err != nil {
		return File{}, err
	}
	payload := struct {
		FileName          string   `json:"fileName"`
		TargetFolderId    FolderId `json:"targetFolderId"`
		TemplateType      string   `json:"templateType"`
		TemplateReference string   `json:"templateReference,omitempty"`
	}{
		FileName:          name,
		TargetFolderId:    parent,
		TemplateType:      template.kind,
		TemplateReference: template.reference,
	}
	return smartschool.Call[File](ctx, c.session, http.MethodPost, apiRoot+"/files/createfromtemplate", payload)
}

func (c Client) ChangeFolderColor(ctx context.Context, id CustomFolderId, color FolderColor) (Folder, error) {
	payload := struct {
		NewColor FolderColor `json:"newColor"`
	}{NewColor: color}
	return smartschool.Call[Folder](ctx, c.session, http.MethodPost, folderPath(id, "change-color"), payload)
}

func (c Client) CopyFile(ctx context.Context, source FileId, destination FolderId) (File, error) {
	return smartschool.Call[File](ctx, c.session, http.MethodPost, filePath(source, "copy"), parentPayload{destination})
}

func (c Client) CopyFolder(ctx context.Context, source CustomFolderId, destination FolderId) (Folder, error) {
	return smartschool.Call[Folder](ctx, c.session, http.MethodPost, folderPath(source, "copy"), parentPayload{destination})
}

func (c Client) MoveFile(ctx context.Context, source FileId, destination FolderId) (File, error) {
	return smartschool.Call[File](ctx, c.session, http.MethodPost, filePath(source, "move"), parentPayload{destination})
}

func (c Client) MoveFolder(ctx context.Context, source CustomFolderId, destination FolderId) (Folder, error) {
	return smartschool.Call[Folder](ctx, c.session, http.MethodPost, folderPath(source, "move"), parentPayload{destination})
}

// RenameFile renames a file, the platform refuses illegal names (see
// ValidateName) and the current name.
func (c Client) RenameFile(ctx context.Context, id FileId, name string) (File, error) {
	err := ValidateName(name)
	if err != nil {
		return File{}, err
	}
	return smartschool.Call[File](ctx, c.session, http.MethodPost, filePath(id, "rename"), renamePayload{name})
}

func (c Client) RenameFolder(ctx context.Context, id CustomFolderId, name string) (Folder, error) {
	err := ValidateName(name)
	if err != nil {
		return Folder{}, err
	}
	return smartschool.Call[Folder](ctx, c.session, http.MethodPost, folderPath(id, "rename"), renamePayload{name})
}

// RestoreFile moves a trashed file back into destination.
func (c Client) RestoreFile(ctx context.Context, id FileId, destination FolderId) (File, error) {
	return smartschool.Call[File](ctx, c.session, http.MethodPost, filePath(id, "restore"), parentPayload{destination})
}

func (c Client) RestoreFolder(ctx context.Context, id CustomFolderId, destination FolderId) (Folder, error) {
	return smartschool.Call[Folder](ctx, c.session, http.MethodPost, folderPath(id, "restore"), parentPayload{destination})
}

// RestoreRevision makes an older revision the current revision of a file.
func (c Client) RestoreRevision(ctx context.Context, file FileId, revision RevisionId) (Revision, error) {
	return smartschool.Call[Revision](ctx, c.session, http.MethodPost, filePath(file, "revisions", revision.String(), "restore"), nil)
}

func (c Client) MarkFileFavorite(ctx context.Context, id FileId) (File, error) {
	return smartschool.Call[File](ctx, c.session, http.MethodPost, filePath(id, "mark-as-favourite"), nil)
}

func (c Client) UnmarkFileFavorite(ctx context.Context, id FileId) (File, error) {
	return smartschool.Call[File](ctx, c.session, http.MethodPost, filePath(id, "unmark-as-favourite"), nil)
}

func (c Client) MarkFolderFavorite(ctx context.Context, id CustomFolderId) (Folder, error) {
	return smartschool.Call[Folder](ctx, c.session, http.MethodPost, folderPath(id, "mark-as-favourite"), nil)
}

func (c Client) UnmarkFolderFavorite(ctx context.Context, id CustomFolderId) (Folder, error) {
	return smartschool.Call[Folder](ctx, c.session, http.MethodPost, folderPath(id, "unmark-as-favourite"), nil)
}

// TrashFile moves a file to the trash, use DeleteFile to remove it for good.
func (c Client) TrashFile(ctx context.Context, id FileId) error {
	return smartschool.Exec(ctx, c.session, http.MethodPost, filePath(id, "trash"), nil)
}

func (c Client) TrashFolder(ctx context.Context, id CustomFolderId) error {
	return smartschool.Exec(ctx, c.session, http.MethodPost, folderPath(id, "trash"), nil)
}

// DeleteFile permanently deletes a file.
func (c Client) DeleteFile(ctx context.Context, id FileId) error {
	return smartschool.Exec(ctx, c.session, http.MethodDelete, filePath(id), nil)
}

func (c Client) DeleteFolder(ctx context.Context, id CustomFolderId) error {
	return smartschool.Exec(ctx, c.session, http.MethodDelete, folderPath(id), nil)
}

type uploadResult struct {
	// the platform keys the files by id
	Files map[string]File `json:"files"`
}

// Upload moves every file uploaded to dir into parent and returns them
// sorted by name.
func (c Client) Upload(ctx context.Context, parent FolderId, dir upload.Directory) ([]File, error) {
	payload := struct {
		ParentId  FolderId         `json:"parentId"`
		UploadDir upload.Directory `json:"uploadDir"`
	}{ParentId: parent, UploadDir: dir}

	res, err := smartschool.Call[uploadResult](ctx, c.session, http.MethodPost, apiRoot+"/files/upload", payload)
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(res.Files))
	for _, f := range res.Files {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].Name != files[j].Name {
			return files[i].Name < files[j].Name
		}
		return files[i].Id.String() < files[j].Id.String()
	})
	return files, nil
}
