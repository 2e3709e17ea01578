package record

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/symlump/pkg/cache"
	"github.com/matzehuels/symlump/pkg/errors"
	"github.com/matzehuels/symlump/pkg/metric"
	"github.com/matzehuels/symlump/pkg/polya"
)

// DefaultMongoCollection is the collection records are written to.
const DefaultMongoCollection = "records"

// MongoStore upserts one document per network, keyed by graph name.
type MongoStore struct {
	client  *mongo.Client
	coll    *mongo.Collection
	backoff cache.Backoff
}

// NewMongoStore connects to uri and uses database.collection. An empty
// collection means DefaultMongoCollection.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if collection == "" {
		collection = DefaultMongoCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongodb")
	}
	return &MongoStore{
		client:  client,
		coll:    client.Database(database).Collection(collection),
		backoff: cache.Backoff{Attempts: 3, Delay: 200 * time.Millisecond},
	}, nil
}

// mongoDoc is the stored form of a Record. Counts that can exceed 64 bits are
// strings; a nil Delta is the infinity sentinel.
type mongoDoc struct {
	ID          string    `bson:"_id"`
	NNodes      int       `bson:"n_nodes"`
	MEdges      int       `bson:"m_edges"`
	AutGrpOrder string    `bson:"aut_grp_order"`
	Rho         string    `bson:"rho"`
	AvgSupport  *float64  `bson:"avg_support"`
	TotSupport  *float64  `bson:"tot_support"`
	Orbits      [][]int   `bson:"orbits"`
	Delta       *int64    `bson:"delta"`
	Classes     int       `bson:"n_classes"`
	Generators  int       `bson:"n_generators"`
	Alphabet    int       `bson:"alphabet"`
	Oracle      string    `bson:"oracle,omitempty"`
	Verified    bool      `bson:"verified"`
	ComputedAt  time.Time `bson:"computed_at"`
	RunID       string    `bson:"run_id,omitempty"`
}

func toDoc(r *Record) mongoDoc {
	d := mongoDoc{
		ID:          r.GraphName,
		NNodes:      r.NNodes,
		MEdges:      r.MEdges,
		AutGrpOrder: r.AutGrpOrder,
		Rho:         r.Rho.String(),
		AvgSupport:  r.AvgSupport,
		TotSupport:  r.TotSupport,
		Orbits:      r.Orbits,
		Classes:     r.Classes,
		Generators:  r.Generators,
		Alphabet:    r.Alphabet,
		Oracle:      r.Oracle,
		Verified:    r.Verified,
		ComputedAt:  r.ComputedAt.UTC(),
		RunID:       r.RunID,
	}
	if d.Orbits == nil {
		d.Orbits = [][]int{}
	}
	if !r.Delta.IsInf() {
		v := r.Delta.Int64()
		d.Delta = &v
	}
	return d
}

func fromDoc(d mongoDoc) (*Record, error) {
	rho, err := polya.ParseRho(d.Rho)
	if err != nil {
		return nil, err
	}
	delta := metric.Inf()
	if d.Delta != nil {
		delta = metric.Finite(*d.Delta)
	}
	return &Record{
		GraphName:   d.ID,
		NNodes:      d.NNodes,
		MEdges:      d.MEdges,
		AutGrpOrder: d.AutGrpOrder,
		Rho:         rho,
		AvgSupport:  d.AvgSupport,
		TotSupport:  d.TotSupport,
		Orbits:      d.Orbits,
		Delta:       delta,
		Classes:     d.Classes,
		Generators:  d.Generators,
		Alphabet:    d.Alphabet,
		Oracle:      d.Oracle,
		Verified:    d.Verified,
		ComputedAt:  d.ComputedAt,
		RunID:       d.RunID,
	}, nil
}

// Put upserts the record, retrying transient network failures.
func (s *MongoStore) Put(ctx context.Context, r *Record) error {
	if err := errors.ValidateGraphName(r.GraphName); err != nil {
		return err
	}
	doc := toDoc(r)
	err := s.backoff.Retry(ctx, func() error {
		_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
		if err != nil && (mongo.IsNetworkError(err) || mongo.IsTimeout(err)) {
			return cache.Retryable(err)
		}
		return err
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "upsert record %s", r.GraphName)
	}
	return nil
}

// Get loads the record for name.
func (s *MongoStore) Get(ctx context.Context, name string) (*Record, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "find record %s", name)
	}
	return fromDoc(doc)
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
