package config

import (
	"context"
	"time"

	redisModule "payment-service/src/pkg/redis"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

func NewRedisConfig(viper *viper.Viper) *redisModule.CfgRedis {
	return &redisModule.CfgRedis{
		UseCluster:           viper.GetBool("redis.use_cluster"),
		EnableTLS:            viper.GetBool("redis.tls"),
		RedisHost:            viper.GetString("redis.host"),
		RedisPort:            viper.GetString("redis.port"),
		RedisPassword:        viper.GetString("redis.password"),
		RedisDB:              viper.GetInt("redis.db"),
		RedisClusterNode:     viper.GetString("redis.cluster.node"),
		RedisClusterPassword: viper.GetString("redis.cluster.password"),
	}
}

func NewRedis(viper *viper.Viper) redis.UniversalClient {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redisModule.NewClient(ctx, NewRedisConfig(viper))
	if err != nil {
		panic(err)
	}
	return client
}
