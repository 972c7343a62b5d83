package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	settingsDocID    = "learning"
	maxDailyCacheKey = "settings:max_daily_tasks"
	multiplierKeyFmt = "settings:level_multipliers:%d"
	defaultCacheTTL  = 5 * time.Minute
)

type learningSettings struct {
	ID            string                      `bson:"_id"`
	MaxDailyTasks int                         `bson:"max_daily_tasks"`
	Multipliers   map[string]levelMultipliers `bson:"level_multipliers"`
}

type levelMultipliers struct {
	Token float64 `bson:"token" json:"token"`
	XP    float64 `bson:"xp" json:"xp"`
}

type profileDoc struct {
	ID    string `bson:"_id"`
	Level int    `bson:"level"`
}

// Client reads system settings and level configuration through an explicit
// redis cache with invalidation on write. A nil redis client disables
// caching and every read goes to Mongo.
type Client struct {
	rdb      *redis.Client
	settings *mongo.Collection
	profiles *mongo.Collection
	ttl      time.Duration
}

func NewClient(rdb *redis.Client, db *mongo.Database) *Client {
	return &Client{
		rdb:      rdb,
		settings: db.Collection("system_settings"),
		profiles: db.Collection("profiles"),
		ttl:      defaultCacheTTL,
	}
}

// MaxDailyTasks returns the admin-configured completion cap. Zero means
// unlimited.
func (c *Client) MaxDailyTasks(ctx context.Context) (int, error) {
	if c.rdb != nil {
		if cached, err := c.rdb.Get(ctx, maxDailyCacheKey).Result(); err == nil {
			if n, err := strconv.Atoi(cached); err == nil {
				return n, nil
			}
		}
	}

	var doc learningSettings
	err := c.settings.FindOne(ctx, bson.M{"_id": settingsDocID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	if c.rdb != nil {
		c.rdb.Set(ctx, maxDailyCacheKey, strconv.Itoa(doc.MaxDailyTasks), c.ttl)
	}
	return doc.MaxDailyTasks, nil
}

// SetMaxDailyTasks writes the cap through to Mongo and drops the cached
// value so the next read observes it.
func (c *Client) SetMaxDailyTasks(ctx context.Context, max int) error {
	_, err := c.settings.UpdateOne(ctx,
		bson.M{"_id": settingsDocID},
		bson.M{"$set": bson.M{"max_daily_tasks": max}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}
	if c.rdb != nil {
		c.rdb.Del(ctx, maxDailyCacheKey)
	}
	return nil
}

// LevelMultipliers resolves the learner's level from the profile collection
// and looks up the reward multipliers for it. Any failure falls back to
// neutral multipliers; reward sizing must never block a completion.
func (c *Client) LevelMultipliers(ctx context.Context, userID string) (token, xp float64, err error) {
	level := 1
	var profile profileDoc
	if perr := c.profiles.FindOne(ctx, bson.M{"_id": userID}).Decode(&profile); perr == nil && profile.Level > 0 {
		level = profile.Level
	}

	if c.rdb != nil {
		key := fmt.Sprintf(multiplierKeyFmt, level)
		if cached, cerr := c.rdb.Get(ctx, key).Result(); cerr == nil {
			var m levelMultipliers
			if json.Unmarshal([]byte(cached), &m) == nil && m.Token > 0 {
				return m.Token, m.XP, nil
			}
		}
	}

	var doc learningSettings
	err = c.settings.FindOne(ctx, bson.M{"_id": settingsDocID}).Decode(&doc)
	if err != nil {
		return 1, 1, err
	}
	m, ok := doc.Multipliers[strconv.Itoa(level)]
	if !ok || m.Token <= 0 {
		m = levelMultipliers{Token: 1, XP: 1}
	}
	if m.XP <= 0 {
		m.XP = 1
	}

	if c.rdb != nil {
		if body, merr := json.Marshal(m); merr == nil {
			c.rdb.Set(ctx, fmt.Sprintf(multiplierKeyFmt, level), body, c.ttl)
		}
	}
	return m.Token, m.XP, nil
}
