package hub

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore keeps each device in a hash at <prefix>:device:<id>, and the
// set of ids at <prefix>:devices
type redisStore struct {
	client           *redis.Client
	prefix           string
	defaultThreshold float64
}

var setThresholdScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[1], "threshold", ARGV[1])
return 1
`)

// NewRedisStore connects to Redis and checks the connection
func NewRedisStore(ctx context.Context, cfg RedisConfig, defaultThreshold float64) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return &redisStore{
		client:           client,
		prefix:           cfg.Prefix,
		defaultThreshold: defaultThreshold,
	}, nil
}

func (r *redisStore) key(id string) string {
	return r.prefix + ":device:" + id
}

func (r *redisStore) setKey() string {
	return r.prefix + ":devices"
}

func (r *redisStore) Update(ctx context.Context, id string, distance float64, at time.Time) (Device, error) {
	key := r.key(id)
	var get *redis.MapStringStringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, key, "threshold", r.defaultThreshold)
		pipe.HSet(ctx, key, "distance", distance, "time", at.UTC().Format(time.RFC3339Nano))
		pipe.SAdd(ctx, r.setKey(), id)
		get = pipe.HGetAll(ctx, key)
		return nil
	})
	if err != nil {
		return Device{}, fmt.Errorf("redis update %s: %w", id, err)
	}
	return parseDevice(get.Val())
}

func (r *redisStore) SetThreshold(ctx context.Context, id string, threshold float64) (Device, bool, error) {
	key := r.key(id)
	n, err := setThresholdScript.Run(ctx, r.client, []string{key}, threshold).Int()
	if err != nil {
		return Device{}, false, fmt.Errorf("redis set threshold %s: %w", id, err)
	}
	if n == 0 {
		return Device{}, false, nil
	}
	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return Device{}, false, fmt.Errorf("redis get %s: %w", id, err)
	}
	dev, err := parseDevice(fields)
	return dev, err == nil, err
}

func (r *redisStore) Devices(ctx context.Context) (map[string]Device, error) {
	ids, err := r.client.SMembers(ctx, r.setKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis devices: %w", err)
	}
	cmds := make(map[string]*redis.MapStringStringCmd, len(ids))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			cmds[id] = pipe.HGetAll(ctx, r.key(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis devices: %w", err)
	}
	devices := make(map[string]Device, len(ids))
	for id, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			// expired or deleted behind our back
			continue
		}
		dev, err := parseDevice(fields)
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", id, err)
		}
		devices[id] = dev
	}
	return devices, nil
}

func parseDevice(fields map[string]string) (Device, error) {
	var dev Device
	var err error
	if dev.Distance, err = strconv.ParseFloat(fields["distance"], 64); err != nil {
		return dev, fmt.Errorf("distance: %w", err)
	}
	if dev.Threshold, err = strconv.ParseFloat(fields["threshold"], 64); err != nil {
		return dev, fmt.Errorf("threshold: %w", err)
	}
	if dev.Time, err = time.Parse(time.RFC3339Nano, fields["time"]); err != nil {
		return dev, fmt.Errorf("time: %w", err)
	}
	return dev, nil
}
