package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/util"
)

// Redis stores the collection as a single string value.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis connects to addr and checks the connection.
func NewRedis(ctx context.Context, addr, password string, db int, key string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &Redis{client: client, key: key}, nil
}

func (r *Redis) Name() string { return BackendRedis }

func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) ReadAll(ctx context.Context) (catalog.Snapshot, error) {
	data, rev, err := r.get(ctx, r.client)
	if err != nil {
		return catalog.Snapshot{}, err
	}
	books, err := decode(data)
	if err != nil {
		return catalog.Snapshot{}, err
	}
	return catalog.Snapshot{Books: books, Revision: rev}, nil
}

func (r *Redis) WriteAll(ctx context.Context, books []catalog.Book, expect string) (string, error) {
	data, err := encode(books)
	if err != nil {
		return "", err
	}

	if expect == "" {
		if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
			return "", persistErr("writing collection", err)
		}
		return util.SHA256Bytes(data), nil
	}

	// The transaction aborts if the key changes between WATCH and EXEC.
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		_, current, err := r.get(ctx, tx)
		if err != nil {
			return err
		}
		if current != expect {
			return conflictErr(expect, current)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key, data, 0)
			return nil
		})
		return err
	}, r.key)

	switch {
	case err == nil:
		return util.SHA256Bytes(data), nil
	case errors.Is(err, redis.TxFailedErr):
		return "", fmt.Errorf("%w: key %s changed during write", catalog.ErrConflict, r.key)
	case errors.Is(err, catalog.ErrConflict), errors.Is(err, catalog.ErrPersistence):
		return "", err
	default:
		return "", persistErr("writing collection", err)
	}
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *Redis) get(ctx context.Context, c getter) ([]byte, string, error) {
	data, err := c.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, emptyRevision, nil
	}
	if err != nil {
		return nil, "", persistErr("reading collection", err)
	}
	return data, util.SHA256Bytes(data), nil
}
