// Package grpcserver implements the listings.v1.Listings gRPC service.
//
// It delegates all business logic to board.Board and handles only the gRPC
// transport concerns: error mapping and conversion between domain types and
// google.protobuf.Struct messages.
package grpcserver

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"jobmate/listings-service/internal/board"
	"jobmate/listings-service/internal/catalog"
	"jobmate/listings-service/internal/filter"
	"jobmate/listings-service/internal/listing"
	"jobmate/listings-service/internal/validation"
)

// Server implements ListingsServer.
type Server struct {
	board *board.Board
}

// NewServer constructs a Server backed by b.
func NewServer(b *board.Board) *Server {
	return &Server{board: b}
}

// ─── Request shapes ──────────────────────────────────────────────────────────

type listJobsRequest struct {
	Query            string   `json:"q"`
	Tags             []string `json:"tags"`
	UseProfileSkills bool     `json:"useProfileSkills"`
}

type idRequest struct {
	ID int `json:"id"`
}

type profileRequest struct {
	Name     string `json:"name"`
	Position string `json:"position"`
}

type skillRequest struct {
	Skill string `json:"skill"`
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// ListJobs filters the catalog by the request's search text and tags.
func (s *Server) ListJobs(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listJobsRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	st := filter.State{SearchText: req.Query, UseProfileSkills: req.UseProfileSkills}
	for _, tag := range req.Tags {
		st.AddTag(tag)
	}
	return toStruct(s.board.Query(st))
}

// GetJob returns one job.
func (s *Server) GetJob(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req idRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	job, err := s.board.Job(req.ID)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(job)
}

// CreateJob adds a job and returns it with its assigned id.
func (s *Server) CreateJob(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var f listing.JobFields
	if err := fromStruct(in, &f); err != nil {
		return nil, err
	}
	job, err := s.board.CreateJob(ctx, f)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(job)
}

// UpdateJob replaces the fields of the job named by id.
func (s *Server) UpdateJob(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req idRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	var f listing.JobFields
	if err := fromStruct(in, &f); err != nil {
		return nil, err
	}
	job, err := s.board.UpdateJob(ctx, req.ID, f)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(job)
}

// DeleteJob removes a job.
func (s *Server) DeleteJob(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req idRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	if err := s.board.DeleteJob(ctx, req.ID); err != nil {
		return nil, toGRPCError(err)
	}
	return &structpb.Struct{}, nil
}

// ToggleFavorite flips the favorite mark of a job.
func (s *Server) ToggleFavorite(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req idRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	fav, err := s.board.ToggleFavorite(ctx, req.ID)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(map[string]any{"id": req.ID, "favorite": fav})
}

// ListFavorites returns the favorite jobs under "jobs".
func (s *Server) ListFavorites(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(map[string]any{"jobs": s.board.FavoriteJobs()})
}

// GetProfile returns the profile.
func (s *Server) GetProfile(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(s.board.Profile())
}

// SaveProfile sets name and position.
func (s *Server) SaveProfile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req profileRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	if err := s.board.SaveProfile(ctx, req.Name, req.Position); err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(s.board.Profile())
}

// AddSkill adds a profile skill.
func (s *Server) AddSkill(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req skillRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	added, err := s.board.AddSkill(ctx, req.Skill)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(map[string]any{"added": added, "profile": s.board.Profile()})
}

// RemoveSkill drops a profile skill.
func (s *Server) RemoveSkill(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req skillRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	if err := s.board.RemoveSkill(ctx, req.Skill); err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(s.board.Profile())
}

// GetView returns the board snapshot.
func (s *Server) GetView(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(s.board.View())
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	var ve *validation.Error
	if errors.As(err, &ve) {
		return status.Error(codes.InvalidArgument, ve.Error())
	}
	if errors.Is(err, listing.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	var te *catalog.TransportError
	if errors.As(err, &te) {
		return status.Error(codes.Unavailable, "catalog unavailable")
	}
	return status.Error(codes.Internal, "internal server error")
}
