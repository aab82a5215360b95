package replica

import (
	"context"
	"encoding/json"
	"slices"

	"go.uber.org/zap"

	"tristar/fitness-hub/internal/apperr"
	"tristar/fitness-hub/internal/domain"
)

// Remote is the part of the Record Store the replica pulls from.
type Remote interface {
	Available(ctx context.Context) bool
	FetchDataset(ctx context.Context) (domain.Dataset, error)
}

// Source says where the replica's data came from at startup.
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
	SourceSeeded Source = "seeded"
)

// Counts is the number of records per collection.
type Counts struct {
	Members    int `json:"members"`
	Trainers   int `json:"trainers"`
	Visitors   int `json:"visitors"`
	Invoices   int `json:"invoices"`
	FollowUps  int `json:"followUps"`
	Activities int `json:"activities"`
	CheckIns   int `json:"checkIns"`
}

func countsOf(ds domain.Dataset) Counts {
	return Counts{
		Members:    len(ds.Members),
		Trainers:   len(ds.Trainers),
		Visitors:   len(ds.Visitors),
		Invoices:   len(ds.Invoices),
		FollowUps:  len(ds.FollowUps),
		Activities: len(ds.Activities),
		CheckIns:   len(ds.CheckIns),
	}
}

type BootstrapResult struct {
	Source Source `json:"source"`
	Counts Counts `json:"counts"`
}

// Counts reports the current size of every collection.
func (r *Replica) Counts() Counts {
	var c Counts
	r.read(func(s *State) { c = countsOf(s.Dataset) })
	return c
}

// Bootstrap runs the startup protocol once:
//  1. a replica with any core data is used as-is and the remote is not contacted;
//  2. otherwise, when the remote is reachable and holds data, its dataset
//     replaces the local one wholesale;
//  3. otherwise the replica is persisted as an empty shell.
//
// An unreachable or failing remote is logged, never returned.
func (r *Replica) Bootstrap(ctx context.Context, remote Remote) (BootstrapResult, error) {
	var local bool
	r.read(func(s *State) { local = !s.CoreEmpty() })
	if local {
		return BootstrapResult{Source: SourceLocal, Counts: r.Counts()}, nil
	}

	if remote != nil && remote.Available(ctx) {
		ds, err := remote.FetchDataset(ctx)
		switch {
		case err != nil:
			r.logger.Warn("Remote pull failed, continuing offline", zap.Error(err))
		case !ds.Empty():
			if err := r.replaceDataset(ctx, ds); err != nil {
				return BootstrapResult{}, err
			}
			r.logger.Info("Replica imported from record store")
			return BootstrapResult{Source: SourceRemote, Counts: countsOf(ds)}, nil
		default:
			r.logger.Info("Record store holds no data")
		}
	} else {
		r.logger.Info("Record store unavailable, working offline")
	}

	if err := r.mutate(ctx, func(s *State) error {
		s.Normalize()
		return nil
	}); err != nil {
		return BootstrapResult{}, err
	}
	return BootstrapResult{Source: SourceSeeded, Counts: r.Counts()}, nil
}

// SyncNow replaces the local collections with the remote dataset, whatever
// the replica currently holds. It fails with an unavailable error when the
// remote cannot be reached.
func (r *Replica) SyncNow(ctx context.Context, remote Remote) (Counts, error) {
	if !IsRemoteAvailable(ctx, remote) {
		return Counts{}, apperr.Unavailable("record store is not reachable", nil)
	}
	ds, err := remote.FetchDataset(ctx)
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return Counts{}, err
		}
		return Counts{}, apperr.Unavailable("pull from record store", err)
	}
	if err := r.replaceDataset(ctx, ds); err != nil {
		return Counts{}, err
	}
	return countsOf(ds), nil
}

// IsRemoteAvailable is the capability check consulted before any pull.
func IsRemoteAvailable(ctx context.Context, remote Remote) bool {
	return remote != nil && remote.Available(ctx)
}

// replaceDataset swaps in ds. The Record Store lists activities newest first,
// while the replica appends, so the log collections are put in time order.
func (r *Replica) replaceDataset(ctx context.Context, ds domain.Dataset) error {
	ds.Normalize()
	slices.SortStableFunc(ds.Activities, func(a, b domain.Activity) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	slices.SortStableFunc(ds.CheckIns, func(a, b domain.CheckIn) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return r.mutate(ctx, func(s *State) error {
		s.Dataset = ds
		return nil
	})
}

// Export serializes every collection as one JSON document.
func (r *Replica) Export() ([]byte, error) {
	var ds domain.Dataset
	r.read(func(s *State) { ds = s.clone().Dataset })
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return nil, apperr.Internal("encode export", err)
	}
	return data, nil
}

// Import replaces every collection from an Export document. Missing
// collections become empty; settings are kept.
func (r *Replica) Import(ctx context.Context, data []byte) error {
	var ds domain.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid import payload", err)
	}
	return r.replaceDataset(ctx, ds)
}
