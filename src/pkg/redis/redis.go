package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewClient connects to a single node or a cluster and pings it.
func NewClient(ctx context.Context, cfg *CfgRedis) (redis.UniversalClient, error) {
	var tlsConf *tls.Config
	if cfg.EnableTLS {
		tlsConf = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	var client redis.UniversalClient
	if !cfg.UseCluster {
		single := cfg.single()
		client = redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%v", single.Host, single.Port),
			Password:     single.Password,
			DB:           single.DB,
			TLSConfig:    tlsConf,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MaxRetries:   2,
		})
	} else {
		cluster := cfg.cluster()
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        cluster.Hosts,
			Username:     cluster.Username,
			Password:     cluster.Password,
			TLSConfig:    tlsConf,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
