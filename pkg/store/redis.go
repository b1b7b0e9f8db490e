package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/goalnet/pkg/errors"
	"github.com/matzehuels/goalnet/pkg/network"
)

const (
	defaultRedisURL    = "redis://localhost:6379/0"
	defaultRedisPrefix = "goalnet:"
)

// Redis is a Store on a redis server. Each goal is a hash; each user owns
// a set of goal ids and a list of JSON-encoded edges.
type Redis struct {
	client *redis.Client
	prefix string
}

// savePositionScript updates a goal hash only if it exists.
var savePositionScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[1], "position_x", ARGV[1], "position_y", ARGV[2])
return 1
`)

// NewRedis connects to the server at url and verifies it with a ping.
func NewRedis(ctx context.Context, url, prefix string) (*Redis, error) {
	if url == "" {
		url = defaultRedisURL
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidOption, err, "redis: parse url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "redis: ping %s", opts.Addr)
	}
	return NewRedisClient(client, prefix), nil
}

// NewRedisClient wraps an existing client. The store owns the client
// and closes it on Close.
func NewRedisClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) goalKey(id int64) string       { return fmt.Sprintf("%sgoal:%d", r.prefix, id) }
func (r *Redis) userGoalsKey(uid int64) string { return fmt.Sprintf("%suser:%d:goals", r.prefix, uid) }
func (r *Redis) userEdgesKey(uid int64) string { return fmt.Sprintf("%suser:%d:edges", r.prefix, uid) }

func (r *Redis) Network(ctx context.Context, userID int64) (*network.Graph, error) {
	members, err := r.client.SMembers(ctx, r.userGoalsKey(userID)).Result()
	if err != nil {
		return nil, redisErr(err, "list goals")
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodePersistence, err, "redis: bad goal id %q", m)
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, r.goalKey(id))
	}
	edgesCmd := pipe.LRange(ctx, r.userEdgesKey(userID), 0, -1)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, redisErr(err, "load network")
	}

	g := &network.Graph{}
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		n, err := decodeGoal(ids[i], fields)
		if err != nil {
			return nil, err
		}
		g.Nodes = append(g.Nodes, n)
	}
	for _, raw := range edgesCmd.Val() {
		var e network.Edge
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, errors.Wrap(errors.ErrCodePersistence, err, "redis: decode edge")
		}
		e.RelationshipType = network.ParseRelationshipType(string(e.RelationshipType))
		g.Edges = append(g.Edges, e)
	}
	return visible(g), nil
}

func (r *Redis) PutNetwork(ctx context.Context, userID int64, g *network.Graph) error {
	if err := checkNetwork(g); err != nil {
		return err
	}

	owners := r.client.Pipeline()
	ownerCmds := make([]*redis.StringCmd, len(g.Nodes))
	for i, n := range g.Nodes {
		ownerCmds[i] = owners.HGet(ctx, r.goalKey(n.ID), "user_id")
	}
	if len(ownerCmds) > 0 {
		if _, err := owners.Exec(ctx); err != nil && err != redis.Nil {
			return redisErr(err, "check goal owners")
		}
	}
	for i, cmd := range ownerCmds {
		owner, err := cmd.Int64()
		if err == nil && owner != userID {
			return errors.New(errors.ErrCodeInvalidInput, "goal %d belongs to another user", g.Nodes[i].ID)
		}
	}

	old, err := r.client.SMembers(ctx, r.userGoalsKey(userID)).Result()
	if err != nil {
		return redisErr(err, "list goals")
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range old {
			pipe.Del(ctx, r.prefix+"goal:"+id)
		}
		pipe.Del(ctx, r.userGoalsKey(userID), r.userEdgesKey(userID))

		ids := make([]any, 0, len(g.Nodes))
		for _, n := range owned(g, userID) {
			pipe.HSet(ctx, r.goalKey(n.ID), encodeGoal(n))
			ids = append(ids, n.ID)
		}
		if len(ids) > 0 {
			pipe.SAdd(ctx, r.userGoalsKey(userID), ids...)
		}

		edges := make([]any, 0, len(g.Edges))
		for _, e := range g.Edges {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("encode edge %s: %w", e.ID(), err)
			}
			edges = append(edges, string(data))
		}
		if len(edges) > 0 {
			pipe.RPush(ctx, r.userEdgesKey(userID), edges...)
		}
		return nil
	})
	if err != nil {
		return redisErr(err, "replace network")
	}
	return nil
}

func (r *Redis) SavePosition(ctx context.Context, id int64, x, y float64) error {
	if err := errors.ValidateCoordinate(x, y); err != nil {
		return err
	}
	updated, err := savePositionScript.Run(ctx, r.client, []string{r.goalKey(id)},
		strconv.FormatFloat(x, 'g', -1, 64), strconv.FormatFloat(y, 'g', -1, 64)).Int()
	if err != nil {
		return redisErr(err, fmt.Sprintf("save position of goal %d", id))
	}
	if updated == 0 {
		return notFound(id)
	}
	return nil
}

func (r *Redis) Close() error { return r.client.Close() }

func encodeGoal(n network.Node) map[string]any {
	fields := map[string]any{
		"user_id":   n.UserID,
		"name":      n.Name,
		"label":     n.Label,
		"goal_type": string(n.GoalType),
	}
	if n.Pinned() {
		x, y := n.Position()
		fields["position_x"] = strconv.FormatFloat(x, 'g', -1, 64)
		fields["position_y"] = strconv.FormatFloat(y, 'g', -1, 64)
	}
	return fields
}

func decodeGoal(id int64, fields map[string]string) (network.Node, error) {
	n := network.Node{
		ID:       id,
		Name:     fields["name"],
		Label:    fields["label"],
		GoalType: network.GoalType(fields["goal_type"]),
	}
	if v, ok := fields["user_id"]; ok {
		uid, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return n, errors.Wrap(errors.ErrCodePersistence, err, "redis: goal %d user_id", id)
		}
		n.UserID = uid
	}
	xs, okX := fields["position_x"]
	ys, okY := fields["position_y"]
	if okX && okY {
		x, errX := strconv.ParseFloat(xs, 64)
		y, errY := strconv.ParseFloat(ys, 64)
		if errX != nil || errY != nil {
			return n, errors.New(errors.ErrCodePersistence, "redis: goal %d has a malformed position", id)
		}
		n = n.WithPosition(x, y)
	}
	return n, nil
}

// redisErr wraps a client error. Everything except a script or command
// error reported by the server is treated as a transient network failure.
func redisErr(err error, op string) error {
	if _, ok := err.(redis.Error); ok {
		return errors.Wrap(errors.ErrCodePersistence, err, "redis: %s", op)
	}
	return retryable(errors.Wrap(errors.ErrCodeNetwork, err, "redis: %s", op))
}

var _ Store = (*Redis)(nil)
