package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lk2023060901/drive-backend/internal/drive/biz"
	userbiz "github.com/lk2023060901/drive-backend/internal/user/biz"
)

// table 内存表，按 ID 排序输出副本
type table[T any] struct {
	mu       sync.Mutex
	rows     map[string]*T
	notFound error
}

func newTable[T any](notFound error) *table[T] {
	return &table[T]{rows: map[string]*T{}, notFound: notFound}
}

func (t *table[T]) put(id string, v *T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := *v
	t.rows[id] = &cp
}

func (t *table[T]) get(id string) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.rows[id]
	if !ok {
		return nil, t.notFound
	}
	cp := *v
	return &cp, nil
}

func (t *table[T]) filter(keep func(*T) bool) []*T {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := []*T{}
	for _, id := range ids {
		if v := t.rows[id]; keep(v) {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out
}

func (t *table[T]) update(id string, fn func(*T)) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.rows[id]
	if !ok {
		return nil, t.notFound
	}
	fn(v)
	cp := *v
	return &cp, nil
}

func (t *table[T]) each(fn func(*T)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, v := range t.rows {
		fn(v)
	}
}

func (t *table[T]) remove(keep func(*T) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, v := range t.rows {
		if !keep(v) {
			delete(t.rows, id)
		}
	}
}

func nameMatch(name, q string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(q))
}

type fileRepo struct{ *table[biz.File] }

func (r fileRepo) Create(_ context.Context, f *biz.File) error { r.put(f.ID, f); return nil }
func (r fileRepo) GetByID(_ context.Context, id string) (*biz.File, error) {
	return r.get(id)
}
func (r fileRepo) ListByOwner(_ context.Context, owner string, deleted bool) ([]*biz.File, error) {
	return r.filter(func(f *biz.File) bool { return f.OwnerID == owner && f.IsDeleted == deleted }), nil
}
func (r fileRepo) ListRoot(_ context.Context, owner string) ([]*biz.File, error) {
	return r.filter(func(f *biz.File) bool { return f.OwnerID == owner && f.FolderID == nil && !f.IsDeleted }), nil
}
func (r fileRepo) ListByFolder(_ context.Context, folderID string) ([]*biz.File, error) {
	return r.filter(func(f *biz.File) bool { return f.FolderID != nil && *f.FolderID == folderID && !f.IsDeleted }), nil
}
func (r fileRepo) SearchByName(_ context.Context, owner, q string) ([]*biz.File, error) {
	return r.filter(func(f *biz.File) bool { return f.OwnerID == owner && !f.IsDeleted && nameMatch(f.Name, q) }), nil
}
func (r fileRepo) SetDeleted(_ context.Context, id string, deleted bool) (*biz.File, error) {
	return r.update(id, func(f *biz.File) { f.IsDeleted = deleted })
}
func (r fileRepo) Rename(_ context.Context, id, name string) (*biz.File, error) {
	return r.update(id, func(f *biz.File) { f.Name = name })
}
func (r fileRepo) DetachFromFolder(_ context.Context, folderID string) error {
	r.each(func(f *biz.File) {
		if f.FolderID != nil && *f.FolderID == folderID {
			f.FolderID = nil
		}
	})
	return nil
}
func (r fileRepo) Delete(_ context.Context, id string) error {
	r.remove(func(f *biz.File) bool { return f.ID != id })
	return nil
}

type folderRepo struct{ *table[biz.Folder] }

func (r folderRepo) Create(_ context.Context, f *biz.Folder) error { r.put(f.ID, f); return nil }
func (r folderRepo) GetByID(_ context.Context, id string) (*biz.Folder, error) {
	return r.get(id)
}
func (r folderRepo) ListByOwner(_ context.Context, owner string, deleted bool) ([]*biz.Folder, error) {
	return r.filter(func(f *biz.Folder) bool { return f.OwnerID == owner && f.IsDeleted == deleted }), nil
}
func (r folderRepo) ListRoot(_ context.Context, owner string) ([]*biz.Folder, error) {
	return r.filter(func(f *biz.Folder) bool { return f.OwnerID == owner && f.ParentID == nil && !f.IsDeleted }), nil
}
func (r folderRepo) ListChildren(_ context.Context, parentID string) ([]*biz.Folder, error) {
	return r.filter(func(f *biz.Folder) bool { return f.ParentID != nil && *f.ParentID == parentID && !f.IsDeleted }), nil
}
func (r folderRepo) SearchByName(_ context.Context, owner, q string) ([]*biz.Folder, error) {
	return r.filter(func(f *biz.Folder) bool { return f.OwnerID == owner && !f.IsDeleted && nameMatch(f.Name, q) }), nil
}
func (r folderRepo) SetDeleted(_ context.Context, id string, deleted bool) (*biz.Folder, error) {
	return r.update(id, func(f *biz.Folder) { f.IsDeleted = deleted })
}
func (r folderRepo) Rename(_ context.Context, id, name string) (*biz.Folder, error) {
	return r.update(id, func(f *biz.Folder) { f.Name = name })
}
func (r folderRepo) DetachChildren(_ context.Context, parentID string) error {
	r.each(func(f *biz.Folder) {
		if f.ParentID != nil && *f.ParentID == parentID {
			f.ParentID = nil
		}
	})
	return nil
}
func (r folderRepo) Delete(_ context.Context, id string) error {
	r.remove(func(f *biz.Folder) bool { return f.ID != id })
	return nil
}

type shareRepo struct{ *table[biz.SharedItem] }

func (r shareRepo) Create(_ context.Context, s *biz.SharedItem) error { r.put(s.ID, s); return nil }
func (r shareRepo) GetByID(_ context.Context, id string) (*biz.SharedItem, error) {
	return r.get(id)
}
func (r shareRepo) GetByRecipient(_ context.Context, t biz.ItemType, itemID, with string) (*biz.SharedItem, error) {
	out := r.filter(func(s *biz.SharedItem) bool { return s.ItemType == t && s.ItemID == itemID && s.SharedWith == with })
	if len(out) == 0 {
		return nil, biz.ErrShareNotFound
	}
	return out[0], nil
}
func (r shareRepo) UpdateRole(_ context.Context, id string, role biz.Role) (*biz.SharedItem, error) {
	return r.update(id, func(s *biz.SharedItem) { s.Role = role })
}
func (r shareRepo) FindGrants(_ context.Context, t biz.ItemType, itemID, userID string) ([]*biz.SharedItem, error) {
	return r.filter(func(s *biz.SharedItem) bool {
		return s.ItemType == t && s.ItemID == itemID && (s.OwnerID == userID || s.SharedWith == userID)
	}), nil
}
func (r shareRepo) ListForUser(_ context.Context, userID string) ([]*biz.SharedItem, error) {
	return r.filter(func(s *biz.SharedItem) bool { return s.OwnerID == userID || s.SharedWith == userID }), nil
}
func (r shareRepo) ListSharedWith(_ context.Context, userID string) ([]*biz.SharedItem, error) {
	return r.filter(func(s *biz.SharedItem) bool { return s.SharedWith == userID }), nil
}
func (r shareRepo) ListSharedBy(_ context.Context, userID string) ([]*biz.SharedItem, error) {
	return r.filter(func(s *biz.SharedItem) bool { return s.OwnerID == userID }), nil
}
func (r shareRepo) Delete(_ context.Context, id string) error {
	r.remove(func(s *biz.SharedItem) bool { return s.ID != id })
	return nil
}
func (r shareRepo) DeleteByItem(_ context.Context, t biz.ItemType, itemID string) error {
	r.remove(func(s *biz.SharedItem) bool { return !(s.ItemType == t && s.ItemID == itemID) })
	return nil
}

type linkRepo struct{ *table[biz.LinkShare] }

func (r linkRepo) Create(_ context.Context, l *biz.LinkShare) error { r.put(l.ID, l); return nil }
func (r linkRepo) GetByID(_ context.Context, id string) (*biz.LinkShare, error) {
	return r.get(id)
}
func (r linkRepo) GetByToken(_ context.Context, token string) (*biz.LinkShare, error) {
	out := r.filter(func(l *biz.LinkShare) bool { return l.Token == token })
	if len(out) == 0 {
		return nil, biz.ErrLinkNotFound
	}
	return out[0], nil
}
func (r linkRepo) ListByOwner(_ context.Context, owner string) ([]*biz.LinkShare, error) {
	return r.filter(func(l *biz.LinkShare) bool { return l.OwnerID == owner }), nil
}
func (r linkRepo) Delete(_ context.Context, id string) error {
	r.remove(func(l *biz.LinkShare) bool { return l.ID != id })
	return nil
}
func (r linkRepo) DeleteByResource(_ context.Context, t biz.ItemType, id string) error {
	r.remove(func(l *biz.LinkShare) bool { return !(l.ResourceType == t && l.ResourceID == id) })
	return nil
}

// objectStore 内存对象存储，failPut 时模拟主存储不可用
type objectStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	failPut bool
}

func (o *objectStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if o.failPut {
		return errors.New("object store unavailable")
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

func (o *objectStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "https://objects.example.com/" + key + "?ttl=" + ttl.String(), nil
}

func (o *objectStore) Remove(_ context.Context, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.blobs, key)
	return nil
}

type inlineTx struct{}

func (inlineTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type seqRunner struct{}

func (seqRunner) Run(ctx context.Context, tasks []func(ctx context.Context) error) []error {
	errs := make([]error, len(tasks))
	for i, task := range tasks {
		errs[i] = task(ctx)
	}
	return errs
}

type users []*userbiz.User

func (u users) FindByEmail(_ context.Context, email string) (*userbiz.User, error) {
	for _, x := range u {
		if x.Email == userbiz.NormalizeEmail(email) {
			return x, nil
		}
	}
	return nil, userbiz.ErrUserNotFound
}

func (u users) GetUser(_ context.Context, id string) (*userbiz.User, error) {
	for _, x := range u {
		if x.ID == id {
			return x, nil
		}
	}
	return nil, userbiz.ErrUserNotFound
}
