package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const callTimeout = 3 * time.Second

// MovieInfo is the decoded GetMovieInfo payload.
type MovieInfo struct {
	ID            int64
	Title         string
	Year          int
	Genre         string
	ImdbID        string
	FavoriteCount int64
}

// MovieClient calls a remote MovieInterService.
type MovieClient struct {
	stub   *movieInterClient
	conn   *grpc.ClientConn
	logger *slog.Logger
}

// Dial opens a plaintext connection to addr. Extra options (e.g. a bufconn
// dialer in tests) are appended after the defaults.
func Dial(addr string, logger *slog.Logger, opts ...grpc.DialOption) (*MovieClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create movie service client for %s: %w", addr, err)
	}
	return &MovieClient{stub: &movieInterClient{cc: conn}, conn: conn, logger: logger}, nil
}

func (c *MovieClient) CheckMovieExists(ctx context.Context, movieID int64) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	res, err := c.stub.CheckMovieExists(callCtx, wrapperspb.Int64(movieID))
	if err != nil {
		c.logCallError(ctx, "CheckMovieExists", movieID, err)
		return false, fmt.Errorf("grpc CheckMovieExists failed for movie %d: %w", movieID, err)
	}
	return res.GetValue(), nil
}

func (c *MovieClient) GetMovieInfo(ctx context.Context, movieID int64) (*MovieInfo, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	res, err := c.stub.GetMovieInfo(callCtx, wrapperspb.Int64(movieID))
	if err != nil {
		c.logCallError(ctx, "GetMovieInfo", movieID, err)
		return nil, fmt.Errorf("grpc GetMovieInfo failed for movie %d: %w", movieID, err)
	}
	f := res.GetFields()
	return &MovieInfo{
		ID:            int64(f["id"].GetNumberValue()),
		Title:         f["title"].GetStringValue(),
		Year:          int(f["year"].GetNumberValue()),
		Genre:         f["genre"].GetStringValue(),
		ImdbID:        f["imdb_id"].GetStringValue(),
		FavoriteCount: int64(f["favorite_count"].GetNumberValue()),
	}, nil
}

func (c *MovieClient) logCallError(ctx context.Context, method string, movieID int64, err error) {
	st, _ := status.FromError(err)
	c.logger.ErrorContext(ctx, "MovieInterService call failed",
		slog.String("method", method),
		slog.Int64("movie_id", movieID),
		slog.String("code", st.Code().String()),
		slog.String("message", st.Message()))
}

func (c *MovieClient) Close() error {
	return c.conn.Close()
}
