package offset

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"

	"github.com/quarkmq/consumer/internal/config"
	"github.com/quarkmq/consumer/internal/log"
	"github.com/quarkmq/consumer/internal/message"
)

// RedisStore persists offsets in a Redis hash keyed by consumer group.
// Updates land in a local table first; a single writer goroutine pushes
// immediate persists so the consume path never waits on the network.
type RedisStore struct {
	rdb          *redis.Client
	key          string
	mu           sync.RWMutex
	table        map[message.QueueIdentity]int64
	persistCh    chan message.QueueIdentity
	stopCh       chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
	writeTimeout time.Duration
	log          *log.Logger
}

// NewRedisStore connects to Redis and returns a store for one consumer
// group.
func NewRedisStore(cfg *config.RedisConfig, group string, logger *log.Logger) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		// Explicitly disable maintenance notifications
		// This prevents the client from sending extra commands to Redis
		// which can add unnecessary load.
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	s := &RedisStore{
		rdb:          rdb,
		key:          cfg.KeyPrefix + group,
		table:        make(map[message.QueueIdentity]int64),
		persistCh:    make(chan message.QueueIdentity, 1024),
		stopCh:       make(chan struct{}),
		writeTimeout: cfg.WriteTimeout,
		log:          logger,
	}

	s.wg.Add(1)
	go s.persistLoop()
	return s, nil
}

// Update records the offset locally; with persistImmediately it also
// queues an asynchronous write. Offsets never move backwards, and a full
// persist queue degrades to local-only (the periodic PersistAll catches
// up).
func (s *RedisStore) Update(queue message.QueueIdentity, offset int64, persistImmediately bool) {
	s.mu.Lock()
	if cur, ok := s.table[queue]; ok && offset <= cur {
		s.mu.Unlock()
		return
	}
	s.table[queue] = offset
	s.mu.Unlock()

	if !persistImmediately {
		return
	}
	select {
	case s.persistCh <- queue:
	default:
		s.log.Debug("offset persist queue full, deferring %s to next flush", queue)
	}
}

// Read returns the local offset, falling back to Redis for queues this
// instance has not seen yet.
func (s *RedisStore) Read(queue message.QueueIdentity) int64 {
	s.mu.RLock()
	off, ok := s.table[queue]
	s.mu.RUnlock()
	if ok {
		return off
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	val, err := s.rdb.HGet(ctx, s.key, queue.String()).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("failed to read offset for %s: %v", queue, err)
		}
		return OffsetUnknown
	}

	off, err = strconv.ParseInt(val, 10, 64)
	if err != nil {
		s.log.Warn("malformed offset %q stored for %s", val, queue)
		return OffsetUnknown
	}

	s.mu.Lock()
	if _, ok := s.table[queue]; !ok {
		s.table[queue] = off
	}
	s.mu.Unlock()
	return off
}

// PersistAll writes every locally recorded offset in one HSET.
func (s *RedisStore) PersistAll(ctx context.Context) error {
	s.mu.RLock()
	if len(s.table) == 0 {
		s.mu.RUnlock()
		return nil
	}
	fields := make([]interface{}, 0, len(s.table)*2)
	for q, off := range s.table {
		fields = append(fields, q.String(), strconv.FormatInt(off, 10))
	}
	s.mu.RUnlock()

	if err := s.rdb.HSet(ctx, s.key, fields...).Err(); err != nil {
		return fmt.Errorf("failed to persist offsets: %w", err)
	}
	return nil
}

// Remove forgets the queue's offset locally and in Redis.
func (s *RedisStore) Remove(queue message.QueueIdentity) {
	s.mu.Lock()
	delete(s.table, queue)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()
	if err := s.rdb.HDel(ctx, s.key, queue.String()).Err(); err != nil {
		s.log.Warn("failed to remove offset for %s: %v", queue, err)
	}
}

func (s *RedisStore) persistLoop() {
	defer s.wg.Done()
	for {
		select {
		case queue := <-s.persistCh:
			s.persistOne(queue)
		case <-s.stopCh:
			return
		}
	}
}

func (s *RedisStore) persistOne(queue message.QueueIdentity) {
	s.mu.RLock()
	off, ok := s.table[queue]
	s.mu.RUnlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	if err := s.rdb.HSet(ctx, s.key, queue.String(), strconv.FormatInt(off, 10)).Err(); err != nil {
		s.log.Warn("failed to persist offset %d for %s: %v", off, queue, err)
	}
}

// Close flushes outstanding offsets and releases the connection.
func (s *RedisStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()
	if err := s.PersistAll(ctx); err != nil {
		s.log.Error("final offset flush failed: %v", err)
	}
	return s.rdb.Close()
}
