package limiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvalid(t *testing.T) {
	assert.Nil(t, New(0, 10, time.Minute))
	assert.Nil(t, New(10, 0, time.Minute))
	assert.Nil(t, New(-1, -1, time.Minute))
}

func TestNilAndEmptyKeyAllow(t *testing.T) {
	var nilLimiter *MapLimiter
	assert.True(t, nilLimiter.Allow("1.2.3.4", time.Now()))
	assert.Equal(t, 0, nilLimiter.Size())

	ml := New(1, 1, time.Minute)
	require.NotNil(t, ml)
	now := time.Now()
	assert.True(t, ml.Allow("", now))
	assert.True(t, ml.Allow("  ", now))
	assert.Equal(t, 0, ml.Size())
}

func TestBurstThenBlock(t *testing.T) {
	ml := New(1, 3, time.Minute)
	now := time.Now()
	for i := 0; i < 3; i++ {
		assert.True(t, ml.Allow("1.2.3.4", now))
	}
	//突发额度用完, 同一时刻再来就被拒
	assert.False(t, ml.Allow("1.2.3.4", now))
	//1秒后补回1个令牌
	assert.True(t, ml.Allow("1.2.3.4", now.Add(time.Second)))
	assert.False(t, ml.Allow("1.2.3.4", now.Add(time.Second)))
}

func TestKeysAreIndependent(t *testing.T) {
	ml := New(1, 1, time.Minute)
	now := time.Now()
	assert.True(t, ml.Allow("1.2.3.4", now))
	assert.False(t, ml.Allow("1.2.3.4", now))
	assert.True(t, ml.Allow("5.6.7.8", now))
	assert.Equal(t, 2, ml.Size())
}

func TestIdleEviction(t *testing.T) {
	ml := New(1000, 1000, time.Minute)
	now := time.Now()
	ml.Allow("old", now)
	//清理按次数触发, 凑够一轮再看空闲key有没有被清掉
	later := now.Add(time.Hour)
	for i := 0; i < 512; i++ {
		ml.Allow("fresh", later)
	}
	assert.Equal(t, 1, ml.Size())
	assert.True(t, ml.Allow("old", later.Add(time.Second)))
}
