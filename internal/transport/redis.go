package transport

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTransport keeps the pending queue in a sorted set and the advisory
// processing set in a plain set. The sorted-set score encodes priority
// (negated, so higher priority sorts first) plus a monotonically increasing
// sequence number, so ZPOPMIN is a single atomic remove-and-return that
// preserves FIFO order within a priority band.
type RedisTransport struct {
	client *redis.Client
	prefix string
}

func NewRedisTransport(ctx context.Context, cfg *Config) (*RedisTransport, error) {
	if cfg == nil {
		loadedCfg, err := LoadConfigFromEnv(ctx)
		if err != nil {
			return nil, err
		}
		cfg = loadedCfg
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	log.Printf("[queue] Connected to redis at %s (db %d)", cfg.Addr, cfg.DB)

	return &RedisTransport{client: client, prefix: cfg.KeyPrefix}, nil
}

var _ Transport = (*RedisTransport)(nil)

func (t *RedisTransport) pendingKey() string    { return t.prefix + ":pending" }
func (t *RedisTransport) processingKey() string { return t.prefix + ":processing" }
func (t *RedisTransport) seqKey() string        { return t.prefix + ":seq" }

// priorityBand spaces priority levels far enough apart that the insertion
// sequence never crosses into the next band.
const priorityBand = 1e12

// Enqueue adds jobID to the pending sorted set. The score is
// -priority*band + seq: a higher priority yields a lower score and pops
// first, and within one priority earlier insertions pop first.
func (t *RedisTransport) Enqueue(ctx context.Context, jobID uint, priority int) error {
	seq, err := t.client.Incr(ctx, t.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("enqueue job %d: %w", jobID, err)
	}

	score := float64(-priority)*priorityBand + float64(seq)
	member := strconv.FormatUint(uint64(jobID), 10)

	if err := t.client.ZAdd(ctx, t.pendingKey(), redis.Z{Score: score, Member: member}).Err(); err != nil {
		return fmt.Errorf("enqueue job %d: %w", jobID, err)
	}
	return nil
}

// Dequeue pops the lowest-scored member of the pending set. ZPOPMIN is
// atomic on the server, so concurrent dispatcher invocations can never
// receive the same id from the same entry.
func (t *RedisTransport) Dequeue(ctx context.Context) (uint, error) {
	popped, err := t.client.ZPopMin(ctx, t.pendingKey(), 1).Result()
	if err != nil {
		return 0, fmt.Errorf("dequeue: %w", err)
	}
	if len(popped) == 0 {
		return 0, ErrEmpty
	}

	member, ok := popped[0].Member.(string)
	if !ok {
		return 0, fmt.Errorf("dequeue: unexpected member type %T", popped[0].Member)
	}

	id, err := strconv.ParseUint(member, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("dequeue: bad job id %q: %w", member, err)
	}
	return uint(id), nil
}

func (t *RedisTransport) MarkProcessing(ctx context.Context, jobID uint) error {
	member := strconv.FormatUint(uint64(jobID), 10)
	if err := t.client.SAdd(ctx, t.processingKey(), member).Err(); err != nil {
		return fmt.Errorf("mark processing job %d: %w", jobID, err)
	}
	return nil
}

func (t *RedisTransport) RemoveProcessing(ctx context.Context, jobID uint) error {
	member := strconv.FormatUint(uint64(jobID), 10)
	if err := t.client.SRem(ctx, t.processingKey(), member).Err(); err != nil {
		return fmt.Errorf("remove processing job %d: %w", jobID, err)
	}
	return nil
}

func (t *RedisTransport) QueueSize(ctx context.Context) (int64, error) {
	n, err := t.client.ZCard(ctx, t.pendingKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("queue size: %w", err)
	}
	return n, nil
}

func (t *RedisTransport) ProcessingCount(ctx context.Context) (int64, error) {
	n, err := t.client.SCard(ctx, t.processingKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("processing count: %w", err)
	}
	return n, nil
}

func (t *RedisTransport) Close() error {
	return t.client.Close()
}
