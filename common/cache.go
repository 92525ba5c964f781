// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru"
	"github.com/spf13/viper"
)

var (
	ErrCacheMiss = errors.New("key not found in cache")
)

// Cache is a two level byte cache: an in-process LRU in front of an optional shared redis
// instance. Values are lz4 compressed before they are stored.
type Cache struct {
	local *lru.Cache
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCache creates a cache holding up to localSize entries in memory. When redisURL is not
// empty entries are also written to redis and expire after ttl.
func NewCache(localSize int, redisURL string, ttl time.Duration) (*Cache, error) {
	local, err := lru.New(localSize)
	if err != nil {
		return nil, err
	}

	c := &Cache{
		local: local,
		ttl:   ttl,
	}

	if redisURL != "" {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, err
		}
		c.rdb = redis.NewClient(opt)
	}

	return c, nil
}

// NewCacheFromConfig builds a cache from the cache.* configuration keys
func NewCacheFromConfig() (*Cache, error) {
	redisURL := ""
	if viper.GetBool("cache.redis") {
		redisURL = viper.GetString("cache.redis_url")
	}
	return NewCache(viper.GetInt("cache.local_size"), redisURL, time.Duration(viper.GetInt("cache.ttl"))*time.Second)
}

func (c *Cache) Set(ctx context.Context, key string, bytes []byte) error {
	b2, err := Compress(bytes)
	if err != nil {
		return err
	}
	c.local.Add(key, b2)

	if c.rdb != nil {
		return c.rdb.Set(ctx, key, b2, c.ttl).Err()
	}
	return nil
}

// Get returns the uncompressed value stored at key or ErrCacheMiss
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := c.local.Get(key); ok {
		return Decompress(v.([]byte))
	}

	if c.rdb == nil {
		return nil, ErrCacheMiss
	}

	val, err := c.rdb.GetEx(ctx, key, c.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	// promote to the local cache
	c.local.Add(key, val)
	return Decompress(val)
}

// Len returns the number of entries held in memory
func (c *Cache) Len() int {
	return c.local.Len()
}
