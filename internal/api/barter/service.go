package barter

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "barter.BarterService"

// FullMethod returns the gRPC method path of name.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// BarterServiceServer is the server API for barter.BarterService.
type BarterServiceServer interface {
	GetFeed(context.Context, *GetFeedRequest) (*GetFeedResponse, error)
	ListOfferingItems(context.Context, *ListOfferingItemsRequest) (*ListOfferingItemsResponse, error)
	Swipe(context.Context, *SwipeRequest) (*SwipeResponse, error)
	AddToWishlist(context.Context, *AddToWishlistRequest) (*AddToWishlistResponse, error)
	ListWishlist(context.Context, *ListWishlistRequest) (*ListWishlistResponse, error)
	ProposeTrade(context.Context, *ProposeTradeRequest) (*ProposeTradeResponse, error)
	SuggestTopUp(context.Context, *SuggestTopUpRequest) (*SuggestTopUpResponse, error)
	ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
	MarkRead(context.Context, *MarkReadRequest) (*MarkReadResponse, error)
	ListConversations(context.Context, *ListConversationsRequest) (*ListConversationsResponse, error)
	TrackView(context.Context, *TrackViewRequest) (*Empty, error)
	TrackSearch(context.Context, *TrackSearchRequest) (*Empty, error)
}

// UnimplementedBarterServiceServer answers Unimplemented for every method.
// Embed it to stay forward compatible.
type UnimplementedBarterServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedBarterServiceServer) GetFeed(context.Context, *GetFeedRequest) (*GetFeedResponse, error) {
	return nil, unimplemented("GetFeed")
}
func (UnimplementedBarterServiceServer) ListOfferingItems(context.Context, *ListOfferingItemsRequest) (*ListOfferingItemsResponse, error) {
	return nil, unimplemented("ListOfferingItems")
}
func (UnimplementedBarterServiceServer) Swipe(context.Context, *SwipeRequest) (*SwipeResponse, error) {
	return nil, unimplemented("Swipe")
}
func (UnimplementedBarterServiceServer) AddToWishlist(context.Context, *AddToWishlistRequest) (*AddToWishlistResponse, error) {
	return nil, unimplemented("AddToWishlist")
}
func (UnimplementedBarterServiceServer) ListWishlist(context.Context, *ListWishlistRequest) (*ListWishlistResponse, error) {
	return nil, unimplemented("ListWishlist")
}
func (UnimplementedBarterServiceServer) ProposeTrade(context.Context, *ProposeTradeRequest) (*ProposeTradeResponse, error) {
	return nil, unimplemented("ProposeTrade")
}
func (UnimplementedBarterServiceServer) SuggestTopUp(context.Context, *SuggestTopUpRequest) (*SuggestTopUpResponse, error) {
	return nil, unimplemented("SuggestTopUp")
}
func (UnimplementedBarterServiceServer) ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error) {
	return nil, unimplemented("ListMessages")
}
func (UnimplementedBarterServiceServer) SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error) {
	return nil, unimplemented("SendMessage")
}
func (UnimplementedBarterServiceServer) MarkRead(context.Context, *MarkReadRequest) (*MarkReadResponse, error) {
	return nil, unimplemented("MarkRead")
}
func (UnimplementedBarterServiceServer) ListConversations(context.Context, *ListConversationsRequest) (*ListConversationsResponse, error) {
	return nil, unimplemented("ListConversations")
}
func (UnimplementedBarterServiceServer) TrackView(context.Context, *TrackViewRequest) (*Empty, error) {
	return nil, unimplemented("TrackView")
}
func (UnimplementedBarterServiceServer) TrackSearch(context.Context, *TrackSearchRequest) (*Empty, error) {
	return nil, unimplemented("TrackSearch")
}

// unary builds the method descriptor of one request/response call.
func unary[Req, Resp any](name string, call func(BarterServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BarterServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(BarterServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc is the grpc.ServiceDesc for barter.BarterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BarterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetFeed", BarterServiceServer.GetFeed),
		unary("ListOfferingItems", BarterServiceServer.ListOfferingItems),
		unary("Swipe", BarterServiceServer.Swipe),
		unary("AddToWishlist", BarterServiceServer.AddToWishlist),
		unary("ListWishlist", BarterServiceServer.ListWishlist),
		unary("ProposeTrade", BarterServiceServer.ProposeTrade),
		unary("SuggestTopUp", BarterServiceServer.SuggestTopUp),
		unary("ListMessages", BarterServiceServer.ListMessages),
		unary("SendMessage", BarterServiceServer.SendMessage),
		unary("MarkRead", BarterServiceServer.MarkRead),
		unary("ListConversations", BarterServiceServer.ListConversations),
		unary("TrackView", BarterServiceServer.TrackView),
		unary("TrackSearch", BarterServiceServer.TrackSearch),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "barter/barter.proto",
}

// RegisterBarterServiceServer attaches srv to s.
func RegisterBarterServiceServer(s grpc.ServiceRegistrar, srv BarterServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// BarterServiceClient is the client API for barter.BarterService.
type BarterServiceClient interface {
	GetFeed(ctx context.Context, in *GetFeedRequest, opts ...grpc.CallOption) (*GetFeedResponse, error)
	ListOfferingItems(ctx context.Context, in *ListOfferingItemsRequest, opts ...grpc.CallOption) (*ListOfferingItemsResponse, error)
	Swipe(ctx context.Context, in *SwipeRequest, opts ...grpc.CallOption) (*SwipeResponse, error)
	AddToWishlist(ctx context.Context, in *AddToWishlistRequest, opts ...grpc.CallOption) (*AddToWishlistResponse, error)
	ListWishlist(ctx context.Context, in *ListWishlistRequest, opts ...grpc.CallOption) (*ListWishlistResponse, error)
	ProposeTrade(ctx context.Context, in *ProposeTradeRequest, opts ...grpc.CallOption) (*ProposeTradeResponse, error)
	SuggestTopUp(ctx context.Context, in *SuggestTopUpRequest, opts ...grpc.CallOption) (*SuggestTopUpResponse, error)
	ListMessages(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error)
	SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error)
	MarkRead(ctx context.Context, in *MarkReadRequest, opts ...grpc.CallOption) (*MarkReadResponse, error)
	ListConversations(ctx context.Context, in *ListConversationsRequest, opts ...grpc.CallOption) (*ListConversationsResponse, error)
	TrackView(ctx context.Context, in *TrackViewRequest, opts ...grpc.CallOption) (*Empty, error)
	TrackSearch(ctx context.Context, in *TrackSearchRequest, opts ...grpc.CallOption) (*Empty, error)
}

type barterServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBarterServiceClient(cc grpc.ClientConnInterface) BarterServiceClient {
	return &barterServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, name string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *barterServiceClient) GetFeed(ctx context.Context, in *GetFeedRequest, opts ...grpc.CallOption) (*GetFeedResponse, error) {
	return invoke[GetFeedResponse](ctx, c.cc, "GetFeed", in, opts)
}

func (c *barterServiceClient) ListOfferingItems(ctx context.Context, in *ListOfferingItemsRequest, opts ...grpc.CallOption) (*ListOfferingItemsResponse, error) {
	return invoke[ListOfferingItemsResponse](ctx, c.cc, "ListOfferingItems", in, opts)
}

func (c *barterServiceClient) Swipe(ctx context.Context, in *SwipeRequest, opts ...grpc.CallOption) (*SwipeResponse, error) {
	return invoke[SwipeResponse](ctx, c.cc, "Swipe", in, opts)
}

func (c *barterServiceClient) AddToWishlist(ctx context.Context, in *AddToWishlistRequest, opts ...grpc.CallOption) (*AddToWishlistResponse, error) {
	return invoke[AddToWishlistResponse](ctx, c.cc, "AddToWishlist", in, opts)
}

func (c *barterServiceClient) ListWishlist(ctx context.Context, in *ListWishlistRequest, opts ...grpc.CallOption) (*ListWishlistResponse, error) {
	return invoke[ListWishlistResponse](ctx, c.cc, "ListWishlist", in, opts)
}

func (c *barterServiceClient) ProposeTrade(ctx context.Context, in *ProposeTradeRequest, opts ...grpc.CallOption) (*ProposeTradeResponse, error) {
	return invoke[ProposeTradeResponse](ctx, c.cc, "ProposeTrade", in, opts)
}

func (c *barterServiceClient) SuggestTopUp(ctx context.Context, in *SuggestTopUpRequest, opts ...grpc.CallOption) (*SuggestTopUpResponse, error) {
	return invoke[SuggestTopUpResponse](ctx, c.cc, "SuggestTopUp", in, opts)
}

func (c *barterServiceClient) ListMessages(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error) {
	return invoke[ListMessagesResponse](ctx, c.cc, "ListMessages", in, opts)
}

func (c *barterServiceClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error) {
	return invoke[SendMessageResponse](ctx, c.cc, "SendMessage", in, opts)
}

func (c *barterServiceClient) MarkRead(ctx context.Context, in *MarkReadRequest, opts ...grpc.CallOption) (*MarkReadResponse, error) {
	return invoke[MarkReadResponse](ctx, c.cc, "MarkRead", in, opts)
}

func (c *barterServiceClient) ListConversations(ctx context.Context, in *ListConversationsRequest, opts ...grpc.CallOption) (*ListConversationsResponse, error) {
	return invoke[ListConversationsResponse](ctx, c.cc, "ListConversations", in, opts)
}

func (c *barterServiceClient) TrackView(ctx context.Context, in *TrackViewRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "TrackView", in, opts)
}

func (c *barterServiceClient) TrackSearch(ctx context.Context, in *TrackSearchRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "TrackSearch", in, opts)
}
