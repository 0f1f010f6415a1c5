// Package qdrant provides the fact similarity index using Qdrant.
package qdrant

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
	"github.com/ersonp/feather/internal/infrastructure/config"
)

// Payload keys.
const (
	keySubject    = "subject"
	keySubjectKey = "subject_key"
	keyFact       = "fact"
	keyPosition   = "position"
)

// pointNamespace seeds deterministic point IDs so re-indexing a subject
// overwrites its points.
var pointNamespace = uuid.MustParse("6f2c1e0a-8a4e-4b7e-9a55-2f0b7c3d9e11")

// Repository implements ports.FactIndex and ports.CollectionManager.
type Repository struct {
	client     pb.CollectionsClient
	points     pb.PointsClient
	collection string
	conn       *grpc.ClientConn
}

var (
	_ ports.FactIndex         = (*Repository)(nil)
	_ ports.CollectionManager = (*Repository)(nil)
)

// NewRepository creates a new Qdrant repository. An API key switches the
// connection to TLS, as Qdrant Cloud requires.
func NewRepository(cfg config.QdrantConfig) (*Repository, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant collection is required: %w", entities.ErrConfiguration)
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if cfg.APIKey != "" {
		opts = []grpc.DialOption{
			grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})),
			grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)),
		}
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return &Repository{
		client:     pb.NewCollectionsClient(conn),
		points:     pb.NewPointsClient(conn),
		collection: cfg.Collection,
		conn:       conn,
	}, nil
}

func apiKeyInterceptor(key string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", key)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// EnsureCollection creates the collection if it doesn't exist.
func (r *Repository) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err == nil {
		return nil
	}

	_, err = r.client.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	return nil
}

// DeleteCollection removes the collection and all its data.
func (r *Repository) DeleteCollection(ctx context.Context) error {
	_, err := r.client.Delete(ctx, &pb.DeleteCollection{CollectionName: r.collection})
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// Index stores the facts of a subject, replacing previous ones.
func (r *Repository) Index(ctx context.Context, subject string, facts []string, vectors [][]float32) error {
	if len(facts) != len(vectors) {
		return fmt.Errorf("indexing %s: %d facts but %d vectors", subject, len(facts), len(vectors))
	}
	if err := r.DeleteSubject(ctx, subject); err != nil {
		return err
	}
	if len(facts) == 0 {
		return nil
	}

	key := entities.NormalizeName(subject)
	points := make([]*pb.PointStruct, 0, len(facts))
	for i, fact := range facts {
		points = append(points, &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{
					Uuid: pointID(key, i),
				},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{
						Data: vectors[i],
					},
				},
			},
			Payload: map[string]*pb.Value{
				keySubject:    {Kind: &pb.Value_StringValue{StringValue: subject}},
				keySubjectKey: {Kind: &pb.Value_StringValue{StringValue: key}},
				keyFact:       {Kind: &pb.Value_StringValue{StringValue: fact}},
				keyPosition:   {Kind: &pb.Value_IntegerValue{IntegerValue: int64(i)}},
			},
		})
	}

	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Wait:           pb.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	return nil
}

// Similar returns the closest stored facts to the vector.
func (r *Repository) Similar(ctx context.Context, vector []float32, limit int) ([]ports.FactMatch, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         vector,
		Limit:          uint64(limit),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	matches := make([]ports.FactMatch, 0, len(resp.Result))
	for _, point := range resp.Result {
		matches = append(matches, ports.FactMatch{
			Subject: getStringValue(point.Payload, keySubject),
			Fact:    getStringValue(point.Payload, keyFact),
			Score:   point.Score,
		})
	}
	return matches, nil
}

// DeleteSubject removes all facts of a subject.
func (r *Repository) DeleteSubject(ctx context.Context, subject string) error {
	_, err := r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collection,
		Wait:           pb.PtrOf(true),
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: &pb.Filter{
					Must: []*pb.Condition{
						{
							ConditionOneOf: &pb.Condition_Field{
								Field: &pb.FieldCondition{
									Key: keySubjectKey,
									Match: &pb.Match{
										MatchValue: &pb.Match_Keyword{
											Keyword: entities.NormalizeName(subject),
										},
									},
								},
							},
						},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting points for %s: %w", subject, err)
	}

	return nil
}

// Count returns the total number of indexed facts.
func (r *Repository) Count(ctx context.Context) (uint64, error) {
	resp, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err != nil {
		return 0, fmt.Errorf("getting collection info: %w", err)
	}

	if resp.Result.PointsCount == nil {
		return 0, nil
	}

	return *resp.Result.PointsCount, nil
}

// pointID derives a stable point ID from the subject key and fact position.
func pointID(key string, position int) string {
	return uuid.NewSHA1(pointNamespace, fmt.Appendf(nil, "%s#%d", key, position)).String()
}

// getStringValue extracts a string payload value.
func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
