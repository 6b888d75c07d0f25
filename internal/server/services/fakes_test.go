package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/common"
	"github.com/dmitrijs2005/rentkeeper/internal/dbx"
	"github.com/dmitrijs2005/rentkeeper/internal/server/models"
	"github.com/dmitrijs2005/rentkeeper/internal/server/repositories/files"
	"github.com/dmitrijs2005/rentkeeper/internal/server/repositories/owners"
	"github.com/dmitrijs2005/rentkeeper/internal/server/repositories/uploads"
	"github.com/dmitrijs2005/rentkeeper/internal/server/storage"
)

// memRepos is an in-memory RepositoryManager. Repositories ignore the
// DBTX they are bound to, so transactions only exercise begin/commit.
type memRepos struct {
	mu      sync.Mutex
	owners  map[string]string
	uploads map[string]*models.PendingUpload
	files   map[int64]*models.File
	nextID  int64
	clock   func() time.Time

	createFileErr error
	listErr       error
}

func newMemRepos(clock func() time.Time) *memRepos {
	return &memRepos{
		owners:  map[string]string{},
		uploads: map[string]*models.PendingUpload{},
		files:   map[int64]*models.File{},
		clock:   clock,
	}
}

func (m *memRepos) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepos) Owners(dbx.DBTX) owners.Repository            { return (*memOwners)(m) }
func (m *memRepos) Uploads(dbx.DBTX) uploads.Repository          { return (*memUploads)(m) }
func (m *memRepos) Files(dbx.DBTX) files.Repository              { return (*memFiles)(m) }

func ownerKey(entityType string, entityID int64) string {
	return fmt.Sprintf("%s/%d", entityType, entityID)
}

type memOwners memRepos

func (o *memOwners) Claim(_ context.Context, entityType string, entityID int64, accountID string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	k := ownerKey(entityType, entityID)
	if owner, ok := o.owners[k]; ok {
		return owner, nil
	}
	o.owners[k] = accountID
	return accountID, nil
}

func (o *memOwners) Owner(_ context.Context, entityType string, entityID int64) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	owner, ok := o.owners[ownerKey(entityType, entityID)]
	if !ok {
		return "", common.ErrorNotFound
	}
	return owner, nil
}

type memUploads memRepos

func (u *memUploads) Create(_ context.Context, p *models.PendingUpload) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	p.CreatedAt = u.clock()
	cp := *p
	u.uploads[p.UploadToken] = &cp
	return nil
}

func (u *memUploads) GetByToken(_ context.Context, token string) (*models.PendingUpload, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	p, ok := u.uploads[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (u *memUploads) Transition(_ context.Context, token string, from, to models.UploadStatus) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	p, ok := u.uploads[token]
	if !ok || p.Status != from {
		return common.ErrorConflict
	}
	p.Status = to
	return nil
}

func (u *memUploads) ListExpired(_ context.Context, now time.Time, limit int) ([]*models.PendingUpload, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.listErr != nil {
		return nil, u.listErr
	}
	var out []*models.PendingUpload
	for _, p := range u.uploads {
		if p.Status == models.UploadPending && !p.ExpiresAt.After(now) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memFiles memRepos

func (f *memFiles) Create(_ context.Context, file *models.File) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createFileErr != nil {
		return f.createFileErr
	}
	f.nextID++
	file.ID = f.nextID
	file.UploadedAt = f.clock()
	cp := *file
	f.files[file.ID] = &cp
	return nil
}

func (f *memFiles) GetByID(_ context.Context, id int64) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *file
	return &cp, nil
}

func (f *memFiles) ListByEntity(_ context.Context, entityType string, entityID int64, category string) ([]*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.File{}
	for _, file := range f.files {
		if file.EntityType == entityType && file.EntityID == entityID && (category == "" || file.FileCategory == category) {
			cp := *file
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *memFiles) Latest(ctx context.Context, entityType string, entityID int64, category string) (*models.File, error) {
	list, _ := f.ListByEntity(ctx, entityType, entityID, category)
	if len(list) == 0 {
		return nil, common.ErrorNotFound
	}
	return list[0], nil
}

func (f *memFiles) Supersede(_ context.Context, file *models.File) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for id, other := range f.files {
		if id != file.ID && other.EntityType == file.EntityType && other.EntityID == file.EntityID &&
			other.FileCategory == file.FileCategory && other.DocumentType == file.DocumentType {
			keys = append(keys, other.StorageKey)
			delete(f.files, id)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *memFiles) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.files, id)
	return nil
}

type fakeStore struct {
	mu         sync.Mutex
	objects    map[string]storage.ObjectInfo
	presignErr error
	statErr    error
	deleteErr  error
	deleted    []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]storage.ObjectInfo{}}
}

func (s *fakeStore) PresignPut(_ context.Context, key, contentType string, ttl time.Duration) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	return fmt.Sprintf("https://blob.example.com/%s?expires=%d", key, int(ttl.Seconds())), nil
}

func (s *fakeStore) Stat(_ context.Context, key string) (storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statErr != nil {
		return storage.ObjectInfo{}, s.statErr
	}
	info, ok := s.objects[key]
	if !ok {
		return storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return info, nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func (s *fakeStore) put(key string, size int64, etag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = storage.ObjectInfo{Size: size, ETag: etag}
}
