package redisstore

import "errors"

var (
	ErrNilClient  = errors.New("redisstore: nil client")
	ErrInvalidTTL = errors.New("redisstore: ttl must be positive")
	ErrScan       = errors.New("redisstore: scan failed")
	ErrMGet       = errors.New("redisstore: mget failed")
	ErrSet        = errors.New("redisstore: set failed")
	ErrDelete     = errors.New("redisstore: delete failed")
)
