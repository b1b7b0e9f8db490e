package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/goalnet/pkg/errors"
	"github.com/matzehuels/goalnet/pkg/network"
)

const (
	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDatabase = "goalnet"
)

type goalDoc struct {
	ID        int64    `bson:"_id"`
	UserID    int64    `bson:"user_id"`
	Name      string   `bson:"name"`
	Label     string   `bson:"label,omitempty"`
	GoalType  string   `bson:"goal_type,omitempty"`
	PositionX *float64 `bson:"position_x,omitempty"`
	PositionY *float64 `bson:"position_y,omitempty"`
}

type relationshipDoc struct {
	UserID           int64  `bson:"user_id"`
	Seq              int    `bson:"seq"`
	From             int64  `bson:"from"`
	To               int64  `bson:"to"`
	RelationshipType string `bson:"relationship_type"`
}

// Mongo is a Store on a MongoDB deployment with a goals and a
// relationships collection.
type Mongo struct {
	client        *mongo.Client
	goals         *mongo.Collection
	relationships *mongo.Collection
}

// NewMongo connects to uri, verifies the connection and ensures indexes.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	if uri == "" {
		uri = defaultMongoURI
	}
	if database == "" {
		database = defaultMongoDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "mongo: connect")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "mongo: ping")
	}

	db := client.Database(database)
	m := &Mongo{
		client:        client,
		goals:         db.Collection("goals"),
		relationships: db.Collection("relationships"),
	}
	if err := m.ensureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	if _, err := m.goals.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	}); err != nil {
		return mongoErr(err, "create goals index")
	}
	if _, err := m.relationships.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "seq", Value: 1}},
	}); err != nil {
		return mongoErr(err, "create relationships index")
	}
	return nil
}

func (m *Mongo) Network(ctx context.Context, userID int64) (*network.Graph, error) {
	cur, err := m.goals.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, mongoErr(err, "find goals")
	}
	var goals []goalDoc
	if err := cur.All(ctx, &goals); err != nil {
		return nil, mongoErr(err, "decode goals")
	}

	cur, err = m.relationships.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, mongoErr(err, "find relationships")
	}
	var rels []relationshipDoc
	if err := cur.All(ctx, &rels); err != nil {
		return nil, mongoErr(err, "decode relationships")
	}

	g := &network.Graph{}
	for _, d := range goals {
		g.Nodes = append(g.Nodes, network.Node{
			ID:        d.ID,
			UserID:    d.UserID,
			Name:      d.Name,
			Label:     d.Label,
			GoalType:  network.GoalType(d.GoalType),
			PositionX: d.PositionX,
			PositionY: d.PositionY,
		})
	}
	for _, d := range rels {
		g.Edges = append(g.Edges, network.Edge{
			From:             d.From,
			To:               d.To,
			RelationshipType: network.ParseRelationshipType(d.RelationshipType),
		})
	}
	return visible(g), nil
}

func (m *Mongo) PutNetwork(ctx context.Context, userID int64, g *network.Graph) error {
	if err := checkNetwork(g); err != nil {
		return err
	}

	ids := make([]int64, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	if len(ids) > 0 {
		foreign, err := m.goals.CountDocuments(ctx, bson.M{
			"_id":     bson.M{"$in": ids},
			"user_id": bson.M{"$ne": userID},
		})
		if err != nil {
			return mongoErr(err, "check goal owners")
		}
		if foreign > 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%d goal(s) belong to another user", foreign)
		}
	}

	if _, err := m.relationships.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return mongoErr(err, "delete relationships")
	}
	if _, err := m.goals.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return mongoErr(err, "delete goals")
	}

	if len(g.Nodes) > 0 {
		docs := make([]any, 0, len(g.Nodes))
		for _, n := range owned(g, userID) {
			d := goalDoc{ID: n.ID, UserID: userID, Name: n.Name, Label: n.Label, GoalType: string(n.GoalType)}
			if n.Pinned() {
				d.PositionX, d.PositionY = n.PositionX, n.PositionY
			}
			docs = append(docs, d)
		}
		if _, err := m.goals.InsertMany(ctx, docs); err != nil {
			return mongoErr(err, "insert goals")
		}
	}
	if len(g.Edges) > 0 {
		docs := make([]any, 0, len(g.Edges))
		for i, e := range g.Edges {
			docs = append(docs, relationshipDoc{
				UserID:           userID,
				Seq:              i,
				From:             e.From,
				To:               e.To,
				RelationshipType: string(e.RelationshipType),
			})
		}
		if _, err := m.relationships.InsertMany(ctx, docs); err != nil {
			return mongoErr(err, "insert relationships")
		}
	}
	return nil
}

func (m *Mongo) SavePosition(ctx context.Context, id int64, x, y float64) error {
	if err := errors.ValidateCoordinate(x, y); err != nil {
		return err
	}
	res, err := m.goals.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"position_x": x, "position_y": y}})
	if err != nil {
		return mongoErr(err, "update position")
	}
	if res.MatchedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (m *Mongo) Close() error {
	return m.client.Disconnect(context.Background())
}

// mongoErr wraps a driver error. Network errors and timeouts are retryable.
func mongoErr(err error, op string) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return retryable(errors.Wrap(errors.ErrCodeNetwork, err, "mongo: %s", op))
	}
	return errors.Wrap(errors.ErrCodePersistence, err, "mongo: %s", op)
}

var _ Store = (*Mongo)(nil)
