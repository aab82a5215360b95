package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tristar/fitness-hub/internal/apperr"
	"tristar/fitness-hub/internal/domain"
)

type fakeObjectStorage struct {
	objects    map[string][]byte
	putErr     error
	presignErr error
	deleted    []string
}

func (s *fakeObjectStorage) PutObject(_ context.Context, key, _ string, body []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = body
	return nil
}

func (s *fakeObjectStorage) PresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	return "https://backups.example.com/" + key + "?X-Amz-Signature=abc", nil
}

func (s *fakeObjectStorage) DeleteObject(_ context.Context, key string) error {
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func TestSyncCollection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addMember(t, "Asha", "asha@example.com", "9876543210")
	sync := NewSyncService(f.repos)

	rows, err := sync.Collection(ctx, domain.CollectionMembers)
	require.NoError(t, err)
	members, ok := rows.([]domain.Member)
	require.True(t, ok)
	assert.Len(t, members, 1)

	rows, err = sync.Collection(ctx, domain.CollectionInvoices)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = sync.Collection(ctx, "protein")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestSyncDataset(t *testing.T) {
	f := newFixture(t)
	m := f.addMember(t, "Asha", "asha@example.com", "9876543210")
	_, _, err := f.members.CheckIn(context.Background(), m.ID)
	require.NoError(t, err)

	d, err := NewSyncService(f.repos).Dataset(context.Background())
	require.NoError(t, err)
	assert.Len(t, d.Members, 1)
	assert.Len(t, d.CheckIns, 1)
	assert.NotNil(t, d.Invoices)
	assert.Len(t, d.Activities, 2)
}

func TestBackup(t *testing.T) {
	f := newFixture(t)
	f.addMember(t, "Asha", "asha@example.com", "9876543210")
	store := &fakeObjectStorage{}
	backups := NewBackupService(NewSyncService(f.repos), f.repos, store, f.env)

	res, err := backups.Backup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "backups/tristar-20240115T100000Z.json", res.Key)
	assert.Contains(t, res.DownloadURL, res.Key)
	require.Contains(t, store.objects, res.Key)
	assert.Equal(t, len(store.objects[res.Key]), res.Size)

	var doc Backup
	require.NoError(t, json.Unmarshal(store.objects[res.Key], &doc))
	assert.Equal(t, 1, doc.Version)
	assert.Len(t, doc.Members, 1)
	assert.Equal(t, "Asha", doc.Members[0].Name)
}

func TestBackupFailures(t *testing.T) {
	f := newFixture(t)
	sync := NewSyncService(f.repos)

	_, err := NewBackupService(sync, f.repos, nil, f.env).Backup(context.Background())
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))

	failing := &fakeObjectStorage{putErr: errors.New("bucket missing")}
	_, err = NewBackupService(sync, f.repos, failing, f.env).Backup(context.Background())
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestBackupRemovedWhenPresignFails(t *testing.T) {
	f := newFixture(t)
	f.addMember(t, "Asha", "asha@example.com", "9876543210")
	store := &fakeObjectStorage{presignErr: errors.New("signer unavailable")}

	_, err := NewBackupService(NewSyncService(f.repos), f.repos, store, f.env).Backup(context.Background())
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
	assert.Equal(t, []string{"backups/tristar-20240115T100000Z.json"}, store.deleted)
	assert.Empty(t, store.objects)
}
