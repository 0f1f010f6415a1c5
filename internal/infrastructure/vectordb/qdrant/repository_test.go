package qdrant

import (
	"context"
	"errors"
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/infrastructure/config"
)

// fakePoints records point operations. Unused methods panic through the
// embedded nil interface.
type fakePoints struct {
	pb.PointsClient

	upserts   []*pb.UpsertPoints
	deletes   []*pb.DeletePoints
	searches  []*pb.SearchPoints
	results   []*pb.ScoredPoint
	deleteErr error
}

func (f *fakePoints) Upsert(ctx context.Context, in *pb.UpsertPoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	f.upserts = append(f.upserts, in)
	return &pb.PointsOperationResponse{}, nil
}

func (f *fakePoints) Delete(ctx context.Context, in *pb.DeletePoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	f.deletes = append(f.deletes, in)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &pb.PointsOperationResponse{}, nil
}

func (f *fakePoints) Search(ctx context.Context, in *pb.SearchPoints, opts ...grpc.CallOption) (*pb.SearchResponse, error) {
	f.searches = append(f.searches, in)
	return &pb.SearchResponse{Result: f.results}, nil
}

type fakeCollections struct {
	pb.CollectionsClient

	exists  bool
	created []*pb.CreateCollection
	deleted []string
}

func (f *fakeCollections) Get(ctx context.Context, in *pb.GetCollectionInfoRequest, opts ...grpc.CallOption) (*pb.GetCollectionInfoResponse, error) {
	if !f.exists {
		return nil, errors.New("collection not found")
	}
	return &pb.GetCollectionInfoResponse{Result: &pb.CollectionInfo{PointsCount: pb.PtrOf(uint64(3))}}, nil
}

func (f *fakeCollections) Create(ctx context.Context, in *pb.CreateCollection, opts ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	f.created = append(f.created, in)
	f.exists = true
	return &pb.CollectionOperationResponse{Result: true}, nil
}

func (f *fakeCollections) Delete(ctx context.Context, in *pb.DeleteCollection, opts ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	f.deleted = append(f.deleted, in.CollectionName)
	return &pb.CollectionOperationResponse{Result: true}, nil
}

func newTestRepo() (*Repository, *fakeCollections, *fakePoints) {
	collections := &fakeCollections{}
	points := &fakePoints{}
	return &Repository{client: collections, points: points, collection: "feather_birds"}, collections, points
}

func TestNewRepository(t *testing.T) {
	repo, err := NewRepository(config.QdrantConfig{Host: "localhost", Port: 6334, Collection: "feather_birds"})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	_, err = NewRepository(config.QdrantConfig{Host: "localhost", Port: 6334})
	assert.ErrorIs(t, err, entities.ErrConfiguration)
}

func TestRepository_EnsureCollection(t *testing.T) {
	repo, collections, _ := newTestRepo()

	require.NoError(t, repo.EnsureCollection(context.Background(), 1536))
	require.NoError(t, repo.EnsureCollection(context.Background(), 1536))

	require.Len(t, collections.created, 1, "second call finds the collection")
	params := collections.created[0].VectorsConfig.GetParams()
	assert.Equal(t, uint64(1536), params.Size)
	assert.Equal(t, pb.Distance_Cosine, params.Distance)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	require.NoError(t, repo.DeleteCollection(context.Background()))
	assert.Equal(t, []string{"feather_birds"}, collections.deleted)
}

func TestRepository_Index(t *testing.T) {
	repo, _, points := newTestRepo()
	facts := []string{
		"The Eurasian wren sings a song that is astonishingly loud for its size.",
		"Males build several domed nests and the female chooses one to line.",
	}

	err := repo.Index(context.Background(), "eurasian wren", facts, [][]float32{{0.1, 0.2}, {0.3, 0.4}})

	require.NoError(t, err)
	require.Len(t, points.deletes, 1, "previous facts are cleared first")
	cond := points.deletes[0].Points.GetFilter().Must[0].GetField()
	assert.Equal(t, keySubjectKey, cond.Key)
	assert.Equal(t, "Eurasian Wren", cond.Match.GetKeyword())

	require.Len(t, points.upserts, 1)
	upserted := points.upserts[0].Points
	require.Len(t, upserted, 2)
	assert.Equal(t, facts[1], upserted[1].Payload[keyFact].GetStringValue())
	assert.Equal(t, "Eurasian Wren", upserted[0].Payload[keySubjectKey].GetStringValue())
	assert.Equal(t, []float32{0.3, 0.4}, upserted[1].Vectors.GetVector().Data)
	assert.Equal(t, pointID("Eurasian Wren", 0), upserted[0].Id.GetUuid())
	assert.NotEqual(t, upserted[0].Id.GetUuid(), upserted[1].Id.GetUuid())
}

func TestRepository_Index_Errors(t *testing.T) {
	repo, _, points := newTestRepo()

	err := repo.Index(context.Background(), "Goldcrest", []string{"one fact"}, nil)
	assert.ErrorContains(t, err, "1 facts but 0 vectors")

	points.deleteErr = errors.New("unavailable")
	err = repo.Index(context.Background(), "Goldcrest", []string{"one fact"}, [][]float32{{1}})
	assert.ErrorContains(t, err, "unavailable")
	assert.Empty(t, points.upserts)
}

func TestRepository_Similar(t *testing.T) {
	repo, _, points := newTestRepo()
	points.results = []*pb.ScoredPoint{
		{
			Score: 0.97,
			Payload: map[string]*pb.Value{
				keySubject: {Kind: &pb.Value_StringValue{StringValue: "Great Tit"}},
				keyFact:    {Kind: &pb.Value_StringValue{StringValue: "The great tit is the largest tit species found across Europe."}},
			},
		},
	}

	matches, err := repo.Similar(context.Background(), []float32{0.1, 0.2}, 3)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Great Tit", matches[0].Subject)
	assert.InDelta(t, 0.97, matches[0].Score, 0.0001)
	assert.Equal(t, uint64(3), points.searches[0].Limit)
}

func TestPointID_Stable(t *testing.T) {
	assert.Equal(t, pointID("Mallard", 1), pointID("Mallard", 1))
	assert.NotEqual(t, pointID("Mallard", 1), pointID("Mallard", 2))
}
