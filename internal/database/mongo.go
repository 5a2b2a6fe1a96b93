package database

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ErrNoTransactions is returned by Connect when transactions were requested
// but the server is a standalone mongod.
var ErrNoTransactions = errors.New("mongodb deployment does not support transactions (needs a replica set or sharded cluster)")

type Mongo struct {
	Client       *mongo.Client
	DB           *mongo.Database
	transactions bool
}

// helloReply holds the fields of the hello command that reveal the topology.
type helloReply struct {
	SetName string `bson:"setName"`
	Msg     string `bson:"msg"`
}

func (h helloReply) supportsTransactions() bool {
	return h.SetName != "" || h.Msg == "isdbgrid"
}

// Connect dials MongoDB and pings it. With transactions on, the deployment
// must be a replica set or mongos. Turning them off makes multi-document
// writes non-atomic and is only meant for local development.
func Connect(ctx context.Context, uri, dbName string, transactions bool) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	if transactions {
		var hello helloReply
		if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		if !hello.supportsTransactions() {
			_ = client.Disconnect(context.Background())
			return nil, ErrNoTransactions
		}
	} else {
		log.Println("⚠️  MongoDB transactions disabled: cascading deletes and multi-document writes are NOT atomic")
	}

	log.Println("✅ Connected to MongoDB")
	return &Mongo{
		Client:       client,
		DB:           client.Database(dbName),
		transactions: transactions,
	}, nil
}

func (m *Mongo) Collection(name string) *mongo.Collection {
	return m.DB.Collection(name)
}

func (m *Mongo) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !m.transactions {
		return fn(ctx)
	}
	sess, err := m.Client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}

func (m *Mongo) Disconnect(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
