package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tristar/fitness-hub/internal/apperr"
	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
	"tristar/fitness-hub/internal/storage"
)

// SyncService serves whole collections to the sync client and to backups.
type SyncService interface {
	// Collection returns every row of the named collection.
	Collection(ctx context.Context, name string) (any, error)
	Dataset(ctx context.Context) (*domain.Dataset, error)
}

type syncService struct {
	repos repository.Repositories
}

func NewSyncService(repos repository.Repositories) SyncService {
	return &syncService{repos: repos}
}

func (s *syncService) Collection(ctx context.Context, name string) (any, error) {
	var (
		rows any
		err  error
	)
	switch name {
	case domain.CollectionMembers:
		rows, err = s.repos.Members.All(ctx)
	case domain.CollectionTrainers:
		rows, err = s.repos.Trainers.All(ctx)
	case domain.CollectionVisitors:
		rows, err = s.repos.Visitors.All(ctx)
	case domain.CollectionInvoices:
		rows, err = s.repos.Invoices.All(ctx)
	case domain.CollectionFollowUps:
		rows, err = s.repos.FollowUps.All(ctx)
	case domain.CollectionActivities:
		rows, err = s.repos.Activities.All(ctx)
	case domain.CollectionCheckIns:
		rows, err = s.repos.CheckIns.All(ctx)
	case domain.CollectionSessions:
		rows, err = s.repos.Sessions.All(ctx)
	default:
		return nil, apperr.NotFound("collection " + name)
	}
	if err != nil {
		return nil, fromRepo(err, name)
	}
	return rows, nil
}

func (s *syncService) Dataset(ctx context.Context) (*domain.Dataset, error) {
	var d domain.Dataset
	var err error
	if d.Members, err = s.repos.Members.All(ctx); err != nil {
		return nil, fromRepo(err, "member")
	}
	if d.Trainers, err = s.repos.Trainers.All(ctx); err != nil {
		return nil, fromRepo(err, "trainer")
	}
	if d.Visitors, err = s.repos.Visitors.All(ctx); err != nil {
		return nil, fromRepo(err, "visitor")
	}
	if d.Invoices, err = s.repos.Invoices.All(ctx); err != nil {
		return nil, fromRepo(err, "invoice")
	}
	if d.FollowUps, err = s.repos.FollowUps.All(ctx); err != nil {
		return nil, fromRepo(err, "follow-up")
	}
	if d.Activities, err = s.repos.Activities.All(ctx); err != nil {
		return nil, fromRepo(err, "activity")
	}
	if d.CheckIns, err = s.repos.CheckIns.All(ctx); err != nil {
		return nil, fromRepo(err, "check-in")
	}
	d.Normalize()
	return &d, nil
}

// Backup is the stored snapshot document.
type Backup struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	domain.Dataset
	Sessions []domain.Session `json:"sessions"`
}

type BackupResult struct {
	Key         string    `json:"key"`
	DownloadURL string    `json:"downloadUrl"`
	Size        int       `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

type BackupService interface {
	Backup(ctx context.Context) (*BackupResult, error)
}

type backupService struct {
	sync    SyncService
	repos   repository.Repositories
	storage storage.ObjectStorage
	env     Env
}

// NewBackupService writes snapshots to objects. A nil store makes every
// backup fail as unavailable.
func NewBackupService(sync SyncService, repos repository.Repositories, store storage.ObjectStorage, env Env) BackupService {
	return &backupService{sync: sync, repos: repos, storage: store, env: env.withDefaults()}
}

func (s *backupService) Backup(ctx context.Context) (*BackupResult, error) {
	if s.storage == nil {
		return nil, apperr.Unavailable("backup storage is not configured", nil)
	}
	dataset, err := s.sync.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := s.repos.Sessions.All(ctx)
	if err != nil {
		return nil, fromRepo(err, "session")
	}

	now := s.env.Now()
	body, err := json.Marshal(Backup{Version: 1, CreatedAt: now, Dataset: *dataset, Sessions: sessions})
	if err != nil {
		return nil, apperr.Internal("encode backup", err)
	}
	key := fmt.Sprintf("backups/tristar-%s.json", now.Format("20060102T150405Z"))
	if err := s.storage.PutObject(ctx, key, "application/json", body); err != nil {
		return nil, apperr.Unavailable("upload backup", err)
	}
	url, err := s.storage.PresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
	if err != nil {
		// A backup nobody can download is removed again.
		if delErr := s.storage.DeleteObject(ctx, key); delErr != nil {
			s.env.Logger.Warn("failed to remove unreachable backup", zap.String("key", key), zap.Error(delErr))
		}
		return nil, apperr.Unavailable("presign backup", err)
	}

	s.env.Logger.Info("backup written", zap.String("key", key), zap.Int("bytes", len(body)))
	return &BackupResult{Key: key, DownloadURL: url, Size: len(body), CreatedAt: now}, nil
}
