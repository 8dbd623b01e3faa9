package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "salonbook.v1.AppointmentsService"

// AppointmentsServiceServer is the server API for the salon appointment service.
type AppointmentsServiceServer interface {
	CreateAppointment(context.Context, *CreateAppointmentRequest) (*AppointmentResponse, error)
	SetStatus(context.Context, *SetStatusRequest) (*AppointmentResponse, error)
	RescheduleAppointment(context.Context, *RescheduleAppointmentRequest) (*AppointmentResponse, error)
	DeleteAppointment(context.Context, *AppointmentIdRequest) (*DeleteAppointmentResponse, error)
	GetAppointment(context.Context, *AppointmentIdRequest) (*AppointmentResponse, error)
	ListAppointments(context.Context, *ListAppointmentsRequest) (*ListAppointmentsResponse, error)
	SubmitRating(context.Context, *SubmitRatingRequest) (*AppointmentResponse, error)
	RespondToRating(context.Context, *RespondToRatingRequest) (*AppointmentResponse, error)
	ReportCounts(context.Context, *ReportCountsRequest) (*ReportCountsResponse, error)
	ReportRevenue(context.Context, *ReportRevenueRequest) (*ReportRevenueResponse, error)
	AverageRatings(context.Context, *AverageRatingsRequest) (*AverageRatingsResponse, error)
	ListCatalog(context.Context, *ListCatalogRequest) (*ListCatalogResponse, error)
}

func RegisterAppointmentsServiceServer(s grpc.ServiceRegistrar, srv AppointmentsServiceServer) {
	s.RegisterService(&AppointmentsService_ServiceDesc, srv)
}

// unaryHandler adapts one typed server method to grpc.MethodDesc.
func unaryHandler[Req any, Resp any](method string, call func(AppointmentsServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AppointmentsServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + method,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AppointmentsServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var AppointmentsService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AppointmentsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("CreateAppointment", AppointmentsServiceServer.CreateAppointment),
		unaryHandler("SetStatus", AppointmentsServiceServer.SetStatus),
		unaryHandler("RescheduleAppointment", AppointmentsServiceServer.RescheduleAppointment),
		unaryHandler("DeleteAppointment", AppointmentsServiceServer.DeleteAppointment),
		unaryHandler("GetAppointment", AppointmentsServiceServer.GetAppointment),
		unaryHandler("ListAppointments", AppointmentsServiceServer.ListAppointments),
		unaryHandler("SubmitRating", AppointmentsServiceServer.SubmitRating),
		unaryHandler("RespondToRating", AppointmentsServiceServer.RespondToRating),
		unaryHandler("ReportCounts", AppointmentsServiceServer.ReportCounts),
		unaryHandler("ReportRevenue", AppointmentsServiceServer.ReportRevenue),
		unaryHandler("AverageRatings", AppointmentsServiceServer.AverageRatings),
		unaryHandler("ListCatalog", AppointmentsServiceServer.ListCatalog),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "salonbook/v1/appointments.proto",
}

// AppointmentsServiceClient is the client API for the salon appointment
// service. Calls use the JSON codec.
type AppointmentsServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAppointmentsServiceClient(cc grpc.ClientConnInterface) *AppointmentsServiceClient {
	return &AppointmentsServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AppointmentsServiceClient) CreateAppointment(ctx context.Context, in *CreateAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "CreateAppointment", in, opts)
}

func (c *AppointmentsServiceClient) SetStatus(ctx context.Context, in *SetStatusRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "SetStatus", in, opts)
}

func (c *AppointmentsServiceClient) RescheduleAppointment(ctx context.Context, in *RescheduleAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "RescheduleAppointment", in, opts)
}

func (c *AppointmentsServiceClient) DeleteAppointment(ctx context.Context, in *AppointmentIdRequest, opts ...grpc.CallOption) (*DeleteAppointmentResponse, error) {
	return invoke[DeleteAppointmentResponse](ctx, c.cc, "DeleteAppointment", in, opts)
}

func (c *AppointmentsServiceClient) GetAppointment(ctx context.Context, in *AppointmentIdRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "GetAppointment", in, opts)
}

func (c *AppointmentsServiceClient) ListAppointments(ctx context.Context, in *ListAppointmentsRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error) {
	return invoke[ListAppointmentsResponse](ctx, c.cc, "ListAppointments", in, opts)
}

func (c *AppointmentsServiceClient) SubmitRating(ctx context.Context, in *SubmitRatingRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "SubmitRating", in, opts)
}

func (c *AppointmentsServiceClient) RespondToRating(ctx context.Context, in *RespondToRatingRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "RespondToRating", in, opts)
}

func (c *AppointmentsServiceClient) ReportCounts(ctx context.Context, in *ReportCountsRequest, opts ...grpc.CallOption) (*ReportCountsResponse, error) {
	return invoke[ReportCountsResponse](ctx, c.cc, "ReportCounts", in, opts)
}

func (c *AppointmentsServiceClient) ReportRevenue(ctx context.Context, in *ReportRevenueRequest, opts ...grpc.CallOption) (*ReportRevenueResponse, error) {
	return invoke[ReportRevenueResponse](ctx, c.cc, "ReportRevenue", in, opts)
}

func (c *AppointmentsServiceClient) AverageRatings(ctx context.Context, in *AverageRatingsRequest, opts ...grpc.CallOption) (*AverageRatingsResponse, error) {
	return invoke[AverageRatingsResponse](ctx, c.cc, "AverageRatings", in, opts)
}

func (c *AppointmentsServiceClient) ListCatalog(ctx context.Context, in *ListCatalogRequest, opts ...grpc.CallOption) (*ListCatalogResponse, error) {
	return invoke[ListCatalogResponse](ctx, c.cc, "ListCatalog", in, opts)
}
