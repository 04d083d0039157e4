package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessResolver_OwnerAlwaysGranted(t *testing.T) {
	e := newEnv()
	e.addFile("f1", "alice", nil, false)
	e.addFile("f2", "alice", nil, true)
	e.addFolder("d1", "alice", nil, true)
	e.addGrant("g1", "f1", ItemTypeFile, "bob", "alice", RoleViewer)

	for _, tc := range []struct {
		itemType ItemType
		id       string
	}{
		{ItemTypeFile, "f1"},
		{ItemTypeFile, "f2"},
		{ItemTypeFolder, "d1"},
	} {
		for _, required := range []Role{RoleViewer, RoleEditor} {
			acc, err := e.access.Resolve(context.Background(), "alice", tc.itemType, tc.id, required)
			require.NoError(t, err)
			assert.Equal(t, RoleOwner, acc.Role)
		}
	}
}

func TestAccessResolver_NoGrantDenied(t *testing.T) {
	e := newEnv()
	e.addFile("f1", "alice", nil, false)
	e.addGrant("g1", "f1", ItemTypeFolder, "alice", "bob", RoleEditor)

	_, err := e.access.Resolve(context.Background(), "bob", ItemTypeFile, "f1", RoleViewer)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestAccessResolver_Roles(t *testing.T) {
	e := newEnv()
	e.addFile("f1", "alice", nil, false)
	e.addGrant("g1", "f1", ItemTypeFile, "alice", "bob", RoleViewer)
	e.addGrant("g2", "f1", ItemTypeFile, "alice", "carol", RoleEditor)
	ctx := context.Background()

	acc, err := e.access.Resolve(ctx, "bob", ItemTypeFile, "f1", RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, RoleViewer, acc.Role)

	_, err = e.access.Resolve(ctx, "bob", ItemTypeFile, "f1", RoleEditor)
	assert.ErrorIs(t, err, ErrInsufficientRole)

	acc, err = e.access.Resolve(ctx, "carol", ItemTypeFile, "f1", RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, RoleEditor, acc.Role)
}

func TestAccessResolver_GrantOwnerMatchesRequester(t *testing.T) {
	e := newEnv()
	e.addFile("f1", "alice", nil, false)
	// 授权行的 owner_id 指向请求者时允许 editor 操作
	e.addGrant("g1", "f1", ItemTypeFile, "bob", "carol", RoleViewer)

	acc, err := e.access.Resolve(context.Background(), "bob", ItemTypeFile, "f1", RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, RoleEditor, acc.Role)
}

func TestAccessResolver_StrongestGrantWins(t *testing.T) {
	e := newEnv()
	e.addFolder("d1", "alice", nil, false)
	e.addGrant("g1", "d1", ItemTypeFolder, "alice", "bob", RoleViewer)
	e.addGrant("g2", "d1", ItemTypeFolder, "alice", "bob", RoleEditor)

	acc, err := e.access.Resolve(context.Background(), "bob", ItemTypeFolder, "d1", RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, RoleEditor, acc.Role)
}

func TestAccessResolver_NotFoundAndTrashed(t *testing.T) {
	e := newEnv()
	e.addFile("f1", "alice", nil, true)
	e.addGrant("g1", "f1", ItemTypeFile, "alice", "bob", RoleEditor)
	ctx := context.Background()

	_, err := e.access.Resolve(ctx, "bob", ItemTypeFile, "missing", RoleViewer)
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = e.access.Resolve(ctx, "bob", ItemTypeFile, "f1", RoleViewer)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = e.access.Resolve(ctx, "bob", ItemType("album"), "f1", RoleViewer)
	assert.ErrorIs(t, err, ErrInvalidItemType)
}

func TestAccessResolver_StoreErrorNotDenial(t *testing.T) {
	e := newEnv()
	e.addFile("f1", "alice", nil, false)
	storeErr := errors.New("connection reset")
	e.shares.findErr = storeErr

	_, err := e.access.Resolve(context.Background(), "bob", ItemTypeFile, "f1", RoleViewer)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrAccessDenied)
}

func TestAccessResolver_RequireOwner(t *testing.T) {
	e := newEnv()
	e.addFile("f1", "alice", nil, false)
	e.addGrant("g1", "f1", ItemTypeFile, "alice", "bob", RoleEditor)

	assert.NoError(t, e.access.RequireOwner(context.Background(), "alice", ItemTypeFile, "f1"))
	assert.ErrorIs(t, e.access.RequireOwner(context.Background(), "bob", ItemTypeFile, "f1"), ErrAccessDenied)
}
