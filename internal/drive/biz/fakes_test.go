package biz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lk2023060901/drive-backend/internal/pkg/logger"
	userbiz "github.com/lk2023060901/drive-backend/internal/user/biz"
)

type memFiles struct {
	mu        sync.Mutex
	rows      map[string]*File
	createErr error
}

func newMemFiles() *memFiles { return &memFiles{rows: map[string]*File{}} }

func (m *memFiles) Create(_ context.Context, f *File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *f
	m.rows[f.ID] = &cp
	return nil
}

func (m *memFiles) GetByID(_ context.Context, id string) (*File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.rows[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memFiles) filter(keep func(*File) bool) []*File {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*File{}
	for _, f := range m.rows {
		if keep(f) {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memFiles) ListByOwner(_ context.Context, ownerID string, deleted bool) ([]*File, error) {
	return m.filter(func(f *File) bool { return f.OwnerID == ownerID && f.IsDeleted == deleted }), nil
}

func (m *memFiles) ListRoot(_ context.Context, ownerID string) ([]*File, error) {
	return m.filter(func(f *File) bool { return f.OwnerID == ownerID && f.FolderID == nil && !f.IsDeleted }), nil
}

func (m *memFiles) ListByFolder(_ context.Context, folderID string) ([]*File, error) {
	return m.filter(func(f *File) bool { return f.FolderID != nil && *f.FolderID == folderID && !f.IsDeleted }), nil
}

func (m *memFiles) SearchByName(_ context.Context, ownerID, q string) ([]*File, error) {
	q = strings.ToLower(q)
	return m.filter(func(f *File) bool {
		return f.OwnerID == ownerID && !f.IsDeleted && strings.Contains(strings.ToLower(f.Name), q)
	}), nil
}

func (m *memFiles) update(id string, fn func(*File)) (*File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.rows[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	fn(f)
	cp := *f
	return &cp, nil
}

func (m *memFiles) SetDeleted(_ context.Context, id string, deleted bool) (*File, error) {
	return m.update(id, func(f *File) { f.IsDeleted = deleted })
}

func (m *memFiles) Rename(_ context.Context, id, name string) (*File, error) {
	return m.update(id, func(f *File) { f.Name = name })
}

func (m *memFiles) DetachFromFolder(_ context.Context, folderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.rows {
		if f.FolderID != nil && *f.FolderID == folderID {
			f.FolderID = nil
		}
	}
	return nil
}

func (m *memFiles) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

type memFolders struct {
	mu   sync.Mutex
	rows map[string]*Folder
}

func newMemFolders() *memFolders { return &memFolders{rows: map[string]*Folder{}} }

func (m *memFolders) Create(_ context.Context, f *Folder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	m.rows[f.ID] = &cp
	return nil
}

func (m *memFolders) GetByID(_ context.Context, id string) (*Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.rows[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memFolders) filter(keep func(*Folder) bool) []*Folder {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*Folder{}
	for _, f := range m.rows {
		if keep(f) {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memFolders) ListByOwner(_ context.Context, ownerID string, deleted bool) ([]*Folder, error) {
	return m.filter(func(f *Folder) bool { return f.OwnerID == ownerID && f.IsDeleted == deleted }), nil
}

func (m *memFolders) ListRoot(_ context.Context, ownerID string) ([]*Folder, error) {
	return m.filter(func(f *Folder) bool { return f.OwnerID == ownerID && f.ParentID == nil && !f.IsDeleted }), nil
}

func (m *memFolders) ListChildren(_ context.Context, parentID string) ([]*Folder, error) {
	return m.filter(func(f *Folder) bool { return f.ParentID != nil && *f.ParentID == parentID && !f.IsDeleted }), nil
}

func (m *memFolders) SearchByName(_ context.Context, ownerID, q string) ([]*Folder, error) {
	q = strings.ToLower(q)
	return m.filter(func(f *Folder) bool {
		return f.OwnerID == ownerID && !f.IsDeleted && strings.Contains(strings.ToLower(f.Name), q)
	}), nil
}

func (m *memFolders) update(id string, fn func(*Folder)) (*Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.rows[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	fn(f)
	cp := *f
	return &cp, nil
}

func (m *memFolders) SetDeleted(_ context.Context, id string, deleted bool) (*Folder, error) {
	return m.update(id, func(f *Folder) { f.IsDeleted = deleted })
}

func (m *memFolders) Rename(_ context.Context, id, name string) (*Folder, error) {
	return m.update(id, func(f *Folder) { f.Name = name })
}

func (m *memFolders) DetachChildren(_ context.Context, parentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.rows {
		if f.ParentID != nil && *f.ParentID == parentID {
			f.ParentID = nil
		}
	}
	return nil
}

func (m *memFolders) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

type memShares struct {
	mu      sync.Mutex
	rows    map[string]*SharedItem
	findErr error
}

func newMemShares() *memShares { return &memShares{rows: map[string]*SharedItem{}} }

func (m *memShares) Create(_ context.Context, s *SharedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.rows[s.ID] = &cp
	return nil
}

func (m *memShares) GetByID(_ context.Context, id string) (*SharedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, ErrShareNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memShares) filter(keep func(*SharedItem) bool) []*SharedItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*SharedItem{}
	for _, s := range m.rows {
		if keep(s) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memShares) GetByRecipient(_ context.Context, itemType ItemType, itemID, sharedWith string) (*SharedItem, error) {
	out := m.filter(func(s *SharedItem) bool {
		return s.ItemType == itemType && s.ItemID == itemID && s.SharedWith == sharedWith
	})
	if len(out) == 0 {
		return nil, ErrShareNotFound
	}
	return out[0], nil
}

func (m *memShares) UpdateRole(_ context.Context, id string, role Role) (*SharedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, ErrShareNotFound
	}
	s.Role = role
	cp := *s
	return &cp, nil
}

func (m *memShares) FindGrants(_ context.Context, itemType ItemType, itemID, userID string) ([]*SharedItem, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.filter(func(s *SharedItem) bool {
		return s.ItemType == itemType && s.ItemID == itemID && (s.OwnerID == userID || s.SharedWith == userID)
	}), nil
}

func (m *memShares) ListForUser(_ context.Context, userID string) ([]*SharedItem, error) {
	return m.filter(func(s *SharedItem) bool { return s.OwnerID == userID || s.SharedWith == userID }), nil
}

func (m *memShares) ListSharedWith(_ context.Context, userID string) ([]*SharedItem, error) {
	return m.filter(func(s *SharedItem) bool { return s.SharedWith == userID }), nil
}

func (m *memShares) ListSharedBy(_ context.Context, userID string) ([]*SharedItem, error) {
	return m.filter(func(s *SharedItem) bool { return s.OwnerID == userID }), nil
}

func (m *memShares) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memShares) DeleteByItem(_ context.Context, itemType ItemType, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.rows {
		if s.ItemType == itemType && s.ItemID == itemID {
			delete(m.rows, id)
		}
	}
	return nil
}

type memLinks struct {
	mu   sync.Mutex
	rows map[string]*LinkShare
}

func newMemLinks() *memLinks { return &memLinks{rows: map[string]*LinkShare{}} }

func (m *memLinks) Create(_ context.Context, l *LinkShare) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.rows[l.ID] = &cp
	return nil
}

func (m *memLinks) GetByID(_ context.Context, id string) (*LinkShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.rows[id]
	if !ok {
		return nil, ErrLinkNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memLinks) GetByToken(_ context.Context, token string) (*LinkShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.rows {
		if l.Token == token {
			cp := *l
			return &cp, nil
		}
	}
	return nil, ErrLinkNotFound
}

func (m *memLinks) ListByOwner(_ context.Context, ownerID string) ([]*LinkShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*LinkShare{}
	for _, l := range m.rows {
		if l.OwnerID == ownerID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memLinks) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memLinks) DeleteByResource(_ context.Context, resourceType ItemType, resourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, l := range m.rows {
		if l.ResourceType == resourceType && l.ResourceID == resourceID {
			delete(m.rows, id)
		}
	}
	return nil
}

// fakeObjects 内存对象存储
type fakeObjects struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	putErr    error
	removeErr error
}

func newFakeObjects() *fakeObjects { return &fakeObjects{blobs: map[string][]byte{}} }

func (o *fakeObjects) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if o.putErr != nil {
		// 模拟上传途中失败：读走部分数据
		buf := make([]byte, 2)
		_, _ = r.Read(buf)
		return o.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.blobs[key] = b
	return nil
}

func (o *fakeObjects) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "https://objects.example.com/" + key + "?ttl=" + ttl.String(), nil
}

func (o *fakeObjects) Remove(_ context.Context, key string) error {
	if o.removeErr != nil {
		return o.removeErr
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.blobs, key)
	return nil
}

func (o *fakeObjects) has(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.blobs[key]
	return ok
}

type fakeLocal struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr error
}

func newFakeLocal() *fakeLocal { return &fakeLocal{files: map[string][]byte{}} }

func (l *fakeLocal) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	if l.saveErr != nil {
		return "", l.saveErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.files[filename]; ok {
		return "", fmt.Errorf("create local file: %w", os.ErrExist)
	}
	l.files[filename] = b
	return "/var/uploads/" + filename, nil
}

func (l *fakeLocal) Remove(_ context.Context, filename string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.files, filename)
	return nil
}

type fakeSigner struct{}

func (fakeSigner) SignURL(key string, ttl time.Duration) (string, error) {
	return "/uploads/" + key + "?token=signed-" + ttl.String(), nil
}

func (fakeSigner) Verify(token string) (string, error) {
	if !strings.HasPrefix(token, "key:") {
		return "", errors.New("bad token")
	}
	return strings.TrimPrefix(token, "key:"), nil
}

// inlineTx 直接执行 fn
type inlineTx struct{}

func (inlineTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

// seqRunner 顺序执行任务
type seqRunner struct{}

func (seqRunner) Run(ctx context.Context, tasks []func(ctx context.Context) error) []error {
	errs := make([]error, len(tasks))
	for i, t := range tasks {
		errs[i] = t(ctx)
	}
	return errs
}

type memUsers struct {
	users []*userbiz.User
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*userbiz.User, error) {
	for _, u := range m.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return nil, userbiz.ErrUserNotFound
}

func (m *memUsers) GetUser(_ context.Context, id string) (*userbiz.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, userbiz.ErrUserNotFound
}

// env 组装全部用例的测试环境
type env struct {
	files   *memFiles
	folders *memFolders
	shares  *memShares
	links   *memLinks
	objects *fakeObjects
	local   *fakeLocal

	access  *AccessResolver
	gateway *PersistenceGateway
	file    *FileUseCase
	folder  *FolderUseCase
	share   *ShareUseCase
	link    *LinkUseCase
	trash   *TrashUseCase
	search  *SearchUseCase
}

func newEnv() *env {
	e := &env{
		files:   newMemFiles(),
		folders: newMemFolders(),
		shares:  newMemShares(),
		links:   newMemLinks(),
		objects: newFakeObjects(),
		local:   newFakeLocal(),
	}
	log := logger.NewNop()
	users := &memUsers{users: []*userbiz.User{
		{ID: "alice", Email: "alice@example.com"},
		{ID: "bob", Email: "bob@example.com"},
		{ID: "carol", Email: "carol@example.com"},
	}}

	e.access = NewAccessResolver(e.files, e.folders, e.shares)
	e.gateway = NewPersistenceGateway(e.files, e.objects, e.local, fakeSigner{}, log)
	e.file = NewFileUseCase(e.files, e.folders, e.access, e.gateway, 0)
	e.folder = NewFolderUseCase(e.folders, e.files, e.access)
	e.share = NewShareUseCase(e.shares, e.files, e.folders, e.access, users)
	resolver := NewLinkResolver(e.links, e.files, e.folders, e.gateway, time.Hour)
	e.link = NewLinkUseCase(e.links, e.access, resolver)
	e.trash = NewTrashUseCase(e.files, e.folders, e.shares, e.links, e.access, e.gateway, inlineTx{}, seqRunner{}, log)
	e.search = NewSearchUseCase(e.files, e.folders)
	return e
}

func strPtr(s string) *string { return &s }

func (e *env) addFile(id, owner string, folderID *string, deleted bool) *File {
	f := &File{
		ID:             id,
		Name:           id + ".txt",
		OwnerID:        owner,
		FolderID:       folderID,
		IsDeleted:      deleted,
		StorageBackend: BackendPrimary,
		StorageKey:     owner + "/" + id,
		StoragePath:    owner + "/" + id,
	}
	_ = e.files.Create(context.Background(), f)
	e.objects.blobs[f.StorageKey] = []byte("data")
	return f
}

func (e *env) addFolder(id, owner string, parentID *string, deleted bool) *Folder {
	f := &Folder{ID: id, Name: id, OwnerID: owner, ParentID: parentID, IsDeleted: deleted}
	_ = e.folders.Create(context.Background(), f)
	return f
}

func (e *env) addGrant(id, itemID string, itemType ItemType, owner, with string, role Role) {
	_ = e.shares.Create(context.Background(), &SharedItem{
		ID: id, ItemID: itemID, ItemType: itemType, OwnerID: owner, SharedWith: with, Role: role,
	})
}
