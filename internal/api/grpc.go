package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"riskreport/internal/domain"
	"riskreport/internal/input"
	"riskreport/internal/risk"
	"riskreport/internal/store"
)

const (
	// ServiceName is the fully-qualified gRPC service name.
	ServiceName = "riskreport.v1.RiskService"

	computeReportMethod = "/" + ServiceName + "/ComputeReport"
)

// RiskServer is the server API for the RiskService. Requests and responses
// are JSON-shaped structpb.Struct messages: the request mirrors
// domain.ReportRequest and the response mirrors domain.Report.
type RiskServer interface {
	ComputeReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RiskServiceDesc describes the RiskService for grpc.Server.RegisterService.
var RiskServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RiskServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ComputeReport", Handler: computeReportHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "riskreport/v1/risk.proto",
}

func computeReportHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServer).ComputeReport(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: computeReportMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RiskServer).ComputeReport(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ---------------------------------------------------------------------------
// Server
// ---------------------------------------------------------------------------

// RiskService implements RiskServer on top of a risk.Engine.
type RiskService struct {
	engine  *risk.Engine
	reports store.ReportStore // nil disables persistence
	log     *slog.Logger
}

var _ RiskServer = (*RiskService)(nil)

// NewRiskService creates a RiskService. reports may be nil.
func NewRiskService(engine *risk.Engine, reports store.ReportStore, log *slog.Logger) *RiskService {
	if log == nil {
		log = slog.Default()
	}
	return &RiskService{engine: engine, reports: reports, log: log.With("component", "grpc")}
}

// RegisterGRPC registers the service on the given gRPC server instance.
func (s *RiskService) RegisterGRPC(gs *grpc.Server) {
	gs.RegisterService(&RiskServiceDesc, s)
}

// ComputeReport validates the request, computes the report and optionally
// saves it.
func (s *RiskService) ComputeReport(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req domain.ReportRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decoding request: %v", err)
	}
	if err := input.ValidateWeights(req.Weights, req.AssetCount()); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	engine := s.engine
	if req.RiskFreeRate != nil || req.PeriodsPerYear != nil {
		annual, k := engine.AnnualRiskFree(), engine.PeriodsPerYear()
		if req.RiskFreeRate != nil {
			annual = *req.RiskFreeRate
		}
		if req.PeriodsPerYear != nil {
			k = *req.PeriodsPerYear
		}
		engine = engine.WithRates(annual, k)
	}

	rep, err := engine.Run(req.Table(), req.Weights)
	if err != nil {
		return nil, toStatus(err)
	}

	if req.Save {
		if s.reports == nil {
			return nil, status.Error(codes.FailedPrecondition, "report storage not configured")
		}
		id, err := s.reports.SaveReport(ctx, rep)
		if err != nil {
			s.log.Error("saving report", "error", err)
			return nil, status.Error(codes.Internal, "failed to save report")
		}
		rep.ID = id
	}

	out, err := toStruct(rep)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding report: %v", err)
	}
	return out, nil
}

// toStatus maps domain errors to gRPC status errors.
func toStatus(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, risk.ErrDimensionMismatch),
		errors.Is(err, risk.ErrEmptySeries),
		errors.Is(err, risk.ErrInvalidPeriods),
		errors.Is(err, risk.ErrInvalidRate):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// Client calls a remote RiskService.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Dial creates an insecure client connection to addr.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	return conn, nil
}

// ComputeReport calls RiskService.ComputeReport.
func (c *Client) ComputeReport(ctx context.Context, req *domain.ReportRequest) (*domain.Report, error) {
	in, err := toStruct(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, computeReportMethod, in, out); err != nil {
		return nil, err
	}

	var rep domain.Report
	if err := fromStruct(out, &rep); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return &rep, nil
}

// ---------------------------------------------------------------------------
// Struct conversion
// ---------------------------------------------------------------------------

func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := new(structpb.Struct)
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, err
	}
	return s, nil
}

func fromStruct(s *structpb.Struct, v any) error {
	b, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
