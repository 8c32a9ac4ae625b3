package applicant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/yanizio/intake/internal/intake"
)

// appendScript adds one application when neither key is taken.
//
//	KEYS[1] email set, KEYS[2] mobile set, KEYS[3] list
//	ARGV[1] email,     ARGV[2] mobile,     ARGV[3] JSON
var appendScript = redis.NewScript(`
if redis.call("SISMEMBER", KEYS[1], ARGV[1]) == 1 or
   redis.call("SISMEMBER", KEYS[2], ARGV[2]) == 1 then
  return 0
end
redis.call("SADD", KEYS[1], ARGV[1])
redis.call("SADD", KEYS[2], ARGV[2])
redis.call("RPUSH", KEYS[3], ARGV[3])
return 1
`)

// Redis is a Registry backed by two sets and an append-only list under a
// common key prefix.
type Redis struct {
	rdb    redis.UniversalClient
	emails string
	mobile string
	list   string
}

// NewRedis uses prefix for every key, e.g. “intake:” gives
// intake:emails, intake:mobiles, intake:applications.
func NewRedis(rdb redis.UniversalClient, prefix string) *Redis {
	return &Redis{
		rdb:    rdb,
		emails: prefix + "emails",
		mobile: prefix + "mobiles",
		list:   prefix + "applications",
	}
}

func (s *Redis) ContainsEmail(ctx context.Context, email string) (bool, error) {
	return s.rdb.SIsMember(ctx, s.emails, email).Result()
}

func (s *Redis) ContainsMobile(ctx context.Context, mobile string) (bool, error) {
	return s.rdb.SIsMember(ctx, s.mobile, mobile).Result()
}

// Append stores a atomically.  A taken key yields intake.ErrDuplicate.
func (s *Redis) Append(ctx context.Context, a *intake.Accepted) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode application: %w", err)
	}
	n, err := appendScript.Run(ctx, s.rdb,
		[]string{s.emails, s.mobile, s.list},
		a.Email(), a.Mobile(), payload).Int()
	if err != nil {
		return fmt.Errorf("redis append: %w", err)
	}
	if n == 0 {
		return intake.ErrDuplicate
	}
	return nil
}

// Len returns the number of stored applications.
func (s *Redis) Len(ctx context.Context) (int64, error) {
	return s.rdb.LLen(ctx, s.list).Result()
}
