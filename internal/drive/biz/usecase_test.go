package biz

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileUseCase_Upload(t *testing.T) {
	e := newEnv()
	e.addFolder("mine", "alice", nil, false)
	e.addFolder("theirs", "bob", nil, false)
	e.addFolder("trashed", "alice", nil, true)
	ctx := context.Background()

	req := storeReq("alice", strPtr("mine"))
	req.MimeType = ""
	f, err := e.file.Upload(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", f.MimeType)

	for _, folderID := range []string{"theirs", "trashed", "missing"} {
		_, err = e.file.Upload(ctx, storeReq("alice", strPtr(folderID)))
		assert.ErrorIs(t, err, ErrInvalidParent, folderID)
	}

	_, err = e.file.Upload(ctx, StoreRequest{OwnerID: "alice", OriginalName: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFileUseCase_TrashRestore(t *testing.T) {
	e := newEnv()
	e.addFile("f1", "alice", nil, false)
	ctx := context.Background()

	_, err := e.file.Trash(ctx, "bob", "f1")
	assert.ErrorIs(t, err, ErrAccessDenied)

	f, err := e.file.Trash(ctx, "alice", "f1")
	require.NoError(t, err)
	assert.True(t, f.IsDeleted)

	list, err := e.file.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, list)

	f, err = e.file.Restore(ctx, "alice", "f1")
	require.NoError(t, err)
	assert.False(t, f.IsDeleted)

	// 恢复未删除的文件不改变状态
	f, err = e.file.Restore(ctx, "alice", "f1")
	require.NoError(t, err)
	assert.False(t, f.IsDeleted)
	assert.Equal(t, "f1", f.ID)

	_, err = e.file.Trash(ctx, "alice", "missing")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestFileUseCase_DownloadAndRename(t *testing.T) {
	e := newEnv()
	e.addFile("f1", "alice", nil, false)
	e.addGrant("g1", "f1", ItemTypeFile, "alice", "bob", RoleViewer)
	ctx := context.Background()

	url, err := e.file.DownloadURL(ctx, "bob", "f1")
	require.NoError(t, err)
	assert.Equal(t, "https://objects.example.com/alice/f1?ttl=5m0s", url)

	_, err = e.file.DownloadURL(ctx, "carol", "f1")
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = e.file.Rename(ctx, "bob", "f1", "new.txt")
	assert.ErrorIs(t, err, ErrInsufficientRole)

	f, err := e.file.Rename(ctx, "alice", "f1", " new.txt ")
	require.NoError(t, err)
	assert.Equal(t, "new.txt", f.Name)

	_, err = e.file.Rename(ctx, "alice", "f1", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := e.file.Get(ctx, "bob", "f1")
	require.NoError(t, err)
	assert.Equal(t, "new.txt", got.Name)
}

func TestFileUseCase_UnknownBackend(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_ = e.files.Create(ctx, &File{ID: "odd", OwnerID: "alice", StorageBackend: "tape"})

	_, err := e.file.DownloadURL(ctx, "alice", "odd")
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestFolderUseCase(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	root, err := e.folder.Create(ctx, "alice", "Docs", nil)
	require.NoError(t, err)
	child, err := e.folder.Create(ctx, "alice", "2024", &root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, *child.ParentID)

	_, err = e.folder.Create(ctx, "bob", "Steal", &root.ID)
	assert.ErrorIs(t, err, ErrInvalidParent)
	_, err = e.folder.Create(ctx, "alice", "  ", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	e.addFile("in-root", "alice", &root.ID, false)
	e.addFile("top", "alice", nil, false)

	folders, files, err := e.folder.Root(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, root.ID, folders[0].ID)
	require.Len(t, files, 1)
	assert.Equal(t, "top", files[0].ID)

	contents, err := e.folder.Contents(ctx, "alice", root.ID)
	require.NoError(t, err)
	require.Len(t, contents.Subfolders, 1)
	require.Len(t, contents.Files, 1)

	_, err = e.folder.Contents(ctx, "bob", root.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	e.addGrant("g1", root.ID, ItemTypeFolder, "alice", "bob", RoleEditor)
	renamed, err := e.folder.Rename(ctx, "bob", root.ID, "Documents")
	require.NoError(t, err)
	assert.Equal(t, "Documents", renamed.Name)

	trashed, err := e.folder.Trash(ctx, "alice", child.ID)
	require.NoError(t, err)
	assert.True(t, trashed.IsDeleted)

	all, err := e.folder.List(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	restored, err := e.folder.Restore(ctx, "alice", child.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
}

func TestShareUseCase(t *testing.T) {
	e := newEnv()
	e.addFile("f1", "alice", nil, false)
	ctx := context.Background()

	grant, created, err := e.share.Share(ctx, "alice", ShareRequest{ItemType: ItemTypeFile, ItemID: "f1", Email: "Bob@Example.com"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "bob", grant.SharedWith)
	assert.Equal(t, RoleViewer, grant.Role)

	// 同一接收者重复共享只更新角色
	updated, created, err := e.share.Share(ctx, "alice", ShareRequest{ItemType: ItemTypeFile, ItemID: "f1", SharedWith: "bob", Role: RoleEditor})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, grant.ID, updated.ID)
	assert.Equal(t, RoleEditor, updated.Role)
	assert.Len(t, e.shares.rows, 1)

	_, _, err = e.share.Share(ctx, "alice", ShareRequest{ItemType: ItemTypeFile, ItemID: "f1", Email: "nobody@example.com"})
	assert.ErrorIs(t, err, ErrRecipientNotFound)

	_, _, err = e.share.Share(ctx, "alice", ShareRequest{ItemType: ItemTypeFile, ItemID: "f1"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = e.share.Share(ctx, "alice", ShareRequest{ItemType: ItemTypeFile, ItemID: "f1", SharedWith: "bob", Role: "admin"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, _, err = e.share.Share(ctx, "alice", ShareRequest{ItemType: ItemTypeFile, ItemID: "f1", SharedWith: "alice"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// 只有所有者可以共享
	_, _, err = e.share.Share(ctx, "bob", ShareRequest{ItemType: ItemTypeFile, ItemID: "f1", SharedWith: "carol"})
	assert.ErrorIs(t, err, ErrAccessDenied)
	// 非所有者无论邮箱是否注册都只得到 AccessDenied
	_, _, err = e.share.Share(ctx, "bob", ShareRequest{ItemType: ItemTypeFile, ItemID: "f1", Email: "nobody@example.com"})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.NotErrorIs(t, err, ErrRecipientNotFound)

	withMe, err := e.share.SharedWithMe(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, withMe, 1)
	assert.Equal(t, "f1.txt", withMe[0].ItemName)

	byMe, err := e.share.SharedByMe(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, byMe, 1)

	mine, err := e.share.List(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = e.share.Revoke(ctx, "bob", grant.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = e.share.Revoke(ctx, "alice", grant.ID)
	require.NoError(t, err)
	_, err = e.share.Revoke(ctx, "alice", grant.ID)
	assert.ErrorIs(t, err, ErrShareNotFound)
}

type recordingNotifier struct {
	notices []ShareNotice
}

func (r *recordingNotifier) ShareCreated(_ context.Context, n ShareNotice) {
	r.notices = append(r.notices, n)
}

func TestShareUseCase_NotifiesNewGrantsOnly(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.addFile("f1", "alice", nil, false)
	n := &recordingNotifier{}
	e.share.SetNotifier(n)

	_, _, err := e.share.Share(ctx, "alice", ShareRequest{ItemType: ItemTypeFile, ItemID: "f1", SharedWith: "bob"})
	require.NoError(t, err)
	_, _, err = e.share.Share(ctx, "alice", ShareRequest{ItemType: ItemTypeFile, ItemID: "f1", SharedWith: "bob", Role: RoleEditor})
	require.NoError(t, err)

	require.Len(t, n.notices, 1)
	assert.Equal(t, ShareNotice{
		RecipientEmail: "bob@example.com",
		OwnerName:      "alice@example.com",
		ItemType:       ItemTypeFile,
		ItemName:       "f1.txt",
		Role:           RoleViewer,
	}, n.notices[0])
}

func TestShareUseCase_HidesTrashedItems(t *testing.T) {
	e := newEnv()
	e.addFile("f1", "alice", nil, true)
	e.addGrant("g1", "f1", ItemTypeFile, "alice", "bob", RoleViewer)
	e.addGrant("g2", "gone", ItemTypeFile, "alice", "bob", RoleViewer)

	views, err := e.share.SharedWithMe(context.Background(), "bob")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestTrashUseCase_PurgeFile(t *testing.T) {
	e := newEnv()
	e.addFile("f1", "alice", nil, false)
	e.addGrant("g1", "f1", ItemTypeFile, "alice", "bob", RoleViewer)
	_ = e.links.Create(context.Background(), &LinkShare{ID: "l1", ResourceID: "f1", ResourceType: ItemTypeFile, Token: "t", OwnerID: "alice"})
	ctx := context.Background()

	err := e.trash.Purge(ctx, "alice", ItemTypeFile, "f1")
	assert.ErrorIs(t, err, ErrNotInTrash)

	_, err = e.file.Trash(ctx, "alice", "f1")
	require.NoError(t, err)

	err = e.trash.Purge(ctx, "bob", ItemTypeFile, "f1")
	assert.ErrorIs(t, err, ErrAccessDenied)

	require.NoError(t, e.trash.Purge(ctx, "alice", ItemTypeFile, "f1"))
	_, err = e.files.GetByID(ctx, "f1")
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.False(t, e.objects.has("alice/f1"))
	assert.Empty(t, e.shares.rows)
	assert.Empty(t, e.links.rows)

	err = e.trash.Purge(ctx, "alice", ItemType("album"), "f1")
	assert.ErrorIs(t, err, ErrInvalidItemType)
}

func TestTrashUseCase_PurgeBlobFailureTolerated(t *testing.T) {
	e := newEnv()
	e.addFile("f1", "alice", nil, true)
	e.objects.removeErr = errors.New("bucket unavailable")

	require.NoError(t, e.trash.Purge(context.Background(), "alice", ItemTypeFile, "f1"))
	_, err := e.files.GetByID(context.Background(), "f1")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestTrashUseCase_PurgeFolderReparents(t *testing.T) {
	e := newEnv()
	e.addFolder("d1", "alice", nil, true)
	e.addFolder("d2", "alice", strPtr("d1"), false)
	e.addFile("f1", "alice", strPtr("d1"), false)
	ctx := context.Background()

	require.NoError(t, e.trash.Purge(ctx, "alice", ItemTypeFolder, "d1"))

	d2, err := e.folders.GetByID(ctx, "d2")
	require.NoError(t, err)
	assert.Nil(t, d2.ParentID)
	f1, err := e.files.GetByID(ctx, "f1")
	require.NoError(t, err)
	assert.Nil(t, f1.FolderID)
}

func TestTrashUseCase_ListRestoreEmpty(t *testing.T) {
	e := newEnv()
	e.addFile("f1", "alice", nil, true)
	e.addFile("f2", "alice", nil, true)
	e.addFile("f3", "alice", nil, false)
	e.addFolder("d1", "alice", nil, true)
	e.addFile("other", "bob", nil, true)
	ctx := context.Background()

	trash, err := e.trash.List(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, trash.Files, 2)
	assert.Len(t, trash.Folders, 1)

	restored, err := e.trash.Restore(ctx, "alice", ItemTypeFile, "f2")
	require.NoError(t, err)
	assert.False(t, restored.(*File).IsDeleted)

	e.objects.removeErr = nil
	result, err := e.trash.Empty(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Files)
	assert.Equal(t, 1, result.Folders)
	assert.Zero(t, result.BlobFailures)

	trash, err = e.trash.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, trash.Files)
	assert.Empty(t, trash.Folders)

	_, err = e.files.GetByID(ctx, "f3")
	assert.NoError(t, err)
	_, err = e.files.GetByID(ctx, "other")
	assert.NoError(t, err)
}

func TestTrashUseCase_EmptyCountsBlobFailures(t *testing.T) {
	e := newEnv()
	e.addFile("f1", "alice", nil, true)
	e.addFile("f2", "alice", nil, true)
	e.objects.removeErr = errors.New("bucket unavailable")

	result, err := e.trash.Empty(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Files)
	assert.Equal(t, 2, result.BlobFailures)
}

func TestSearchUseCase(t *testing.T) {
	e := newEnv()
	e.addFile("Report", "alice", nil, false)
	e.addFile("report-old", "alice", nil, true)
	e.addFile("report-bob", "bob", nil, false)
	e.addFolder("Reports", "alice", nil, false)
	ctx := context.Background()

	res, err := e.search.Search(ctx, "alice", "REPORT")
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "Report", res.Files[0].ID)
	require.Len(t, res.Folders, 1)

	_, err = e.search.Search(ctx, "alice", "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// 上传、共享、越权重命名、过期链接的完整流程
func TestDriveScenario(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	f, err := e.file.Upload(ctx, StoreRequest{
		OwnerID:      "alice",
		OriginalName: "report.pdf",
		MimeType:     "application/pdf",
		SizeBytes:    3,
		Content:      bytes.NewReader([]byte("pdf")),
	})
	require.NoError(t, err)
	assert.False(t, f.IsDeleted)

	_, _, err = e.share.Share(ctx, "alice", ShareRequest{ItemType: ItemTypeFile, ItemID: f.ID, SharedWith: "bob", Role: RoleViewer})
	require.NoError(t, err)

	url, err := e.file.DownloadURL(ctx, "bob", f.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	_, err = e.file.Rename(ctx, "bob", f.ID, "mine.pdf")
	assert.ErrorIs(t, err, ErrInsufficientRole)

	past := time.Now().Add(-time.Second)
	link, err := e.link.Create(ctx, "alice", CreateLinkRequest{ResourceType: ItemTypeFile, ResourceID: f.ID, ExpiresAt: &past})
	require.NoError(t, err)
	_, _, err = e.link.Resolve(ctx, link.Token)
	assert.ErrorIs(t, err, ErrLinkExpired)
}
