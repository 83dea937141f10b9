// internal/grpc/server.go
package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"movie-catalog/internal/domain"
	"movie-catalog/internal/store"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// MovieGetter is the slice of MovieService the gRPC API reads through.
type MovieGetter interface {
	Get(ctx context.Context, id, viewerID int64) (*domain.Movie, error)
}

// Server implements MovieInterServer on top of the movie service.
type Server struct {
	movies MovieGetter
	logger *slog.Logger
}

func NewServer(movies MovieGetter, logger *slog.Logger) *Server {
	return &Server{movies: movies, logger: logger}
}

// NewGRPCServer builds a grpc.Server with the movie service, the standard
// health service and reflection registered.
func NewGRPCServer(srv *Server, logger *slog.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(loggingInterceptor(logger)))
	s := grpc.NewServer(opts...)
	RegisterMovieInterServer(s, srv)

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, healthSrv)
	reflection.Register(s)
	return s
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.InfoContext(ctx, "gRPC call completed",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("duration", time.Since(start)))
		return resp, err
	}
}

func movieInfo(m *domain.Movie) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":             m.ID,
		"title":          m.Title,
		"year":           m.Year,
		"genre":          domain.StringValue(m.Genre),
		"imdb_id":        domain.StringValue(m.ImdbID),
		"favorite_count": m.FavoriteCount,
	})
}

func (s *Server) GetMovieInfo(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	id := req.GetValue()
	if id <= 0 {
		s.logger.WarnContext(ctx, "gRPC GetMovieInfo called with invalid movie id", slog.Int64("movie_id", id))
		return nil, status.Errorf(codes.InvalidArgument, "movie id must be positive")
	}

	movie, err := s.movies.Get(ctx, id, 0)
	if errors.Is(err, store.ErrMovieNotFound) {
		return nil, status.Errorf(codes.NotFound, "movie not found with ID %d", id)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load movie for GetMovieInfo", slog.Int64("movie_id", id), slog.String("error", err.Error()))
		return nil, status.Errorf(codes.Internal, "failed to retrieve movie details")
	}

	info, err := movieInfo(movie)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode movie details")
	}
	return info, nil
}

func (s *Server) CheckMovieExists(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error) {
	id := req.GetValue()
	if id <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "movie id must be positive")
	}

	_, err := s.movies.Get(ctx, id, 0)
	if errors.Is(err, store.ErrMovieNotFound) {
		return wrapperspb.Bool(false), nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to check movie existence", slog.Int64("movie_id", id), slog.String("error", err.Error()))
		return nil, status.Errorf(codes.Internal, "failed to check movie existence")
	}
	return wrapperspb.Bool(true), nil
}
