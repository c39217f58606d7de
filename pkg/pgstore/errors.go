package pgstore

import "errors"

var (
	ErrNilQuerier = errors.New("pgstore: nil querier")
	ErrLoad       = errors.New("pgstore: failed to load sessions")
	ErrUpsert     = errors.New("pgstore: failed to upsert session")
	ErrDelete     = errors.New("pgstore: failed to delete session")
)
