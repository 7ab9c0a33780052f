package rpc

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// SeatingServiceName is the fully-qualified name of the service.
const SeatingServiceName = "seating.v1.SeatingService"

// Procedure paths, usable with http.ServeMux and in interceptors.
const (
	SeatingServiceArrangeProcedure       = "/seating.v1.SeatingService/Arrange"
	SeatingServiceValidateProcedure      = "/seating.v1.SeatingService/Validate"
	SeatingServiceAssignGuestProcedure   = "/seating.v1.SeatingService/AssignGuest"
	SeatingServiceUnassignGuestProcedure = "/seating.v1.SeatingService/UnassignGuest"
	SeatingServiceSetTableLockProcedure  = "/seating.v1.SeatingService/SetTableLock"
	SeatingServiceGetChartProcedure      = "/seating.v1.SeatingService/GetChart"
)

// SeatingServiceHandler is implemented by the server side of the service.
type SeatingServiceHandler interface {
	Arrange(context.Context, *connect.Request[ArrangeRequest]) (*connect.Response[ArrangeResponse], error)
	Validate(context.Context, *connect.Request[ValidateRequest]) (*connect.Response[ValidateResponse], error)
	AssignGuest(context.Context, *connect.Request[AssignGuestRequest]) (*connect.Response[AssignGuestResponse], error)
	UnassignGuest(context.Context, *connect.Request[UnassignGuestRequest]) (*connect.Response[UnassignGuestResponse], error)
	SetTableLock(context.Context, *connect.Request[SetTableLockRequest]) (*connect.Response[SetTableLockResponse], error)
	GetChart(context.Context, *connect.Request[GetChartRequest]) (*connect.Response[GetChartResponse], error)
}

// NewSeatingServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewSeatingServiceHandler(svc SeatingServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)

	routes := map[string]http.Handler{
		SeatingServiceArrangeProcedure:       connect.NewUnaryHandler(SeatingServiceArrangeProcedure, svc.Arrange, opts...),
		SeatingServiceValidateProcedure:      connect.NewUnaryHandler(SeatingServiceValidateProcedure, svc.Validate, opts...),
		SeatingServiceAssignGuestProcedure:   connect.NewUnaryHandler(SeatingServiceAssignGuestProcedure, svc.AssignGuest, opts...),
		SeatingServiceUnassignGuestProcedure: connect.NewUnaryHandler(SeatingServiceUnassignGuestProcedure, svc.UnassignGuest, opts...),
		SeatingServiceSetTableLockProcedure:  connect.NewUnaryHandler(SeatingServiceSetTableLockProcedure, svc.SetTableLock, opts...),
		SeatingServiceGetChartProcedure:      connect.NewUnaryHandler(SeatingServiceGetChartProcedure, svc.GetChart, opts...),
	}

	return "/" + SeatingServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// SeatingServiceClient is a client for the service.
type SeatingServiceClient interface {
	Arrange(context.Context, *connect.Request[ArrangeRequest]) (*connect.Response[ArrangeResponse], error)
	Validate(context.Context, *connect.Request[ValidateRequest]) (*connect.Response[ValidateResponse], error)
	AssignGuest(context.Context, *connect.Request[AssignGuestRequest]) (*connect.Response[AssignGuestResponse], error)
	UnassignGuest(context.Context, *connect.Request[UnassignGuestRequest]) (*connect.Response[UnassignGuestResponse], error)
	SetTableLock(context.Context, *connect.Request[SetTableLockRequest]) (*connect.Response[SetTableLockResponse], error)
	GetChart(context.Context, *connect.Request[GetChartRequest]) (*connect.Response[GetChartResponse], error)
}

// NewSeatingServiceClient constructs a client for the service at baseURL
// (for example, http://localhost:8080).
func NewSeatingServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SeatingServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &seatingServiceClient{
		arrange:       connect.NewClient[ArrangeRequest, ArrangeResponse](httpClient, baseURL+SeatingServiceArrangeProcedure, opts...),
		validate:      connect.NewClient[ValidateRequest, ValidateResponse](httpClient, baseURL+SeatingServiceValidateProcedure, opts...),
		assignGuest:   connect.NewClient[AssignGuestRequest, AssignGuestResponse](httpClient, baseURL+SeatingServiceAssignGuestProcedure, opts...),
		unassignGuest: connect.NewClient[UnassignGuestRequest, UnassignGuestResponse](httpClient, baseURL+SeatingServiceUnassignGuestProcedure, opts...),
		setTableLock:  connect.NewClient[SetTableLockRequest, SetTableLockResponse](httpClient, baseURL+SeatingServiceSetTableLockProcedure, opts...),
		getChart:      connect.NewClient[GetChartRequest, GetChartResponse](httpClient, baseURL+SeatingServiceGetChartProcedure, opts...),
	}
}

type seatingServiceClient struct {
	arrange       *connect.Client[ArrangeRequest, ArrangeResponse]
	validate      *connect.Client[ValidateRequest, ValidateResponse]
	assignGuest   *connect.Client[AssignGuestRequest, AssignGuestResponse]
	unassignGuest *connect.Client[UnassignGuestRequest, UnassignGuestResponse]
	setTableLock  *connect.Client[SetTableLockRequest, SetTableLockResponse]
	getChart      *connect.Client[GetChartRequest, GetChartResponse]
}

func (c *seatingServiceClient) Arrange(ctx context.Context, req *connect.Request[ArrangeRequest]) (*connect.Response[ArrangeResponse], error) {
	return c.arrange.CallUnary(ctx, req)
}

func (c *seatingServiceClient) Validate(ctx context.Context, req *connect.Request[ValidateRequest]) (*connect.Response[ValidateResponse], error) {
	return c.validate.CallUnary(ctx, req)
}

func (c *seatingServiceClient) AssignGuest(ctx context.Context, req *connect.Request[AssignGuestRequest]) (*connect.Response[AssignGuestResponse], error) {
	return c.assignGuest.CallUnary(ctx, req)
}

func (c *seatingServiceClient) UnassignGuest(ctx context.Context, req *connect.Request[UnassignGuestRequest]) (*connect.Response[UnassignGuestResponse], error) {
	return c.unassignGuest.CallUnary(ctx, req)
}

func (c *seatingServiceClient) SetTableLock(ctx context.Context, req *connect.Request[SetTableLockRequest]) (*connect.Response[SetTableLockResponse], error) {
	return c.setTableLock.CallUnary(ctx, req)
}

func (c *seatingServiceClient) GetChart(ctx context.Context, req *connect.Request[GetChartRequest]) (*connect.Response[GetChartResponse], error) {
	return c.getChart.CallUnary(ctx, req)
}
