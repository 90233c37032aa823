package services

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	appcustomization "github.com/turtacn/PrintShop-Customizer/internal/application/customization"
	domain "github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/pricing"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/render"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// CustomizerServiceName is the fully-qualified gRPC service name.
const CustomizerServiceName = "printshop.customizer.v1.Customizer"

// Designs is the read side of the design service exposed over gRPC.
type Designs interface {
	ListProducts(ctx context.Context) []appcustomization.ProductSummary
	Locations(ctx context.Context, productType domain.ProductType) ([]domain.PlacementLocation, error)
	GetDesign(ctx context.Context, id domain.DesignID) (*appcustomization.DesignView, error)
	RenderFrame(ctx context.Context, id domain.DesignID) (*render.Frame, error)
	Quote(ctx context.Context, id domain.DesignID, quantity int) (*pricing.LineItem, error)
	ExportSnapshot(ctx context.Context, id domain.DesignID) (*appcustomization.ExportedSnapshot, error)
}

// CustomizerServer is the handler type of the Customizer service.  Messages
// are google.protobuf.Struct documents carrying the same JSON as the HTTP
// API.
type CustomizerServer interface {
	ListProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Locations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetDesign(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RenderFrame(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Quote(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ExportSnapshot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// CustomizerServiceDesc describes the Customizer service for
// grpc.Server.RegisterService.
var CustomizerServiceDesc = grpc.ServiceDesc{
	ServiceName: CustomizerServiceName,
	HandlerType: (*CustomizerServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("ListProducts", CustomizerServer.ListProducts),
		unaryMethod("Locations", CustomizerServer.Locations),
		unaryMethod("GetDesign", CustomizerServer.GetDesign),
		unaryMethod("RenderFrame", CustomizerServer.RenderFrame),
		unaryMethod("Quote", CustomizerServer.Quote),
		unaryMethod("ExportSnapshot", CustomizerServer.ExportSnapshot),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "printshop/customizer/v1/customizer.proto",
}

type unaryFunc func(CustomizerServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, fn unaryFunc) grpc.MethodDesc {
	fullMethod := "/" + CustomizerServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv.(CustomizerServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return fn(srv.(CustomizerServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// CustomizerService implements CustomizerServer over the design service.
type CustomizerService struct {
	designs Designs
	logger  logging.Logger
}

func NewCustomizerService(designs Designs, logger logging.Logger) *CustomizerService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CustomizerService{designs: designs, logger: logger.Named("customizer-grpc")}
}

func (s *CustomizerService) ListProducts(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(map[string]interface{}{"products": s.designs.ListProducts(ctx)})
}

func (s *CustomizerService) Locations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	pt, err := requiredString(req, "productType")
	if err != nil {
		return nil, err
	}
	locs, err := s.designs.Locations(ctx, domain.ProductType(pt))
	if err != nil {
		return nil, err
	}
	return toStruct(map[string]interface{}{"productType": pt, "locations": locs})
}

func (s *CustomizerService) GetDesign(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, "designId")
	if err != nil {
		return nil, err
	}
	v, err := s.designs.GetDesign(ctx, domain.DesignID(id))
	if err != nil {
		return nil, err
	}
	return toStruct(v)
}

func (s *CustomizerService) RenderFrame(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, "designId")
	if err != nil {
		return nil, err
	}
	frame, err := s.designs.RenderFrame(ctx, domain.DesignID(id))
	if err != nil {
		return nil, err
	}
	return toStruct(frame)
}

// Quote reads "designId" and an optional "quantity" (default 1).
func (s *CustomizerService) Quote(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, "designId")
	if err != nil {
		return nil, err
	}
	qty := 1
	if v, ok := req.GetFields()["quantity"]; ok {
		n := v.GetNumberValue()
		if n != float64(int(n)) {
			return nil, errors.InvalidParam("quantity must be an integer")
		}
		qty = int(n)
	}
	item, err := s.designs.Quote(ctx, domain.DesignID(id), qty)
	if err != nil {
		return nil, err
	}
	return toStruct(item)
}

func (s *CustomizerService) ExportSnapshot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, "designId")
	if err != nil {
		return nil, err
	}
	snap, err := s.designs.ExportSnapshot(ctx, domain.DesignID(id))
	if err != nil {
		return nil, err
	}
	return toStruct(snap)
}

func requiredString(req *structpb.Struct, key string) (string, error) {
	v := req.GetFields()[key].GetStringValue()
	if v == "" {
		return "", errors.InvalidParam(key + " is required")
	}
	return v, nil
}

// toStruct converts v through its JSON encoding.
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode response")
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode response")
	}
	return out, nil
}

//Personal.AI order the ending
