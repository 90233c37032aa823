package pricing

import (
	"context"
	"time"

	"github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/pkg/types/common"
)

// QuoteRequest is a submitted quotation or sample order.  It carries the
// snapshot the price was computed from so the request can be reproduced
// after the design moves on.
type QuoteRequest struct {
	ID        string                 `json:"id"`
	DesignID  customization.DesignID `json:"designId"`
	Kind      RequestKind            `json:"kind"`
	Item      LineItem               `json:"item"`
	Snapshot  customization.Snapshot `json:"snapshot"`
	CreatedAt time.Time              `json:"createdAt"`
}

// RequestRepository records submitted quote requests.
type RequestRepository interface {
	Save(ctx context.Context, r QuoteRequest) error
	ListByDesign(ctx context.Context, id customization.DesignID) ([]QuoteRequest, error)
}

const EventQuoteRequested = "quote.requested"

// QuoteRequestedEvent announces a submitted request to the order desk.
type QuoteRequestedEvent struct {
	common.BaseEvent
	Request QuoteRequest `json:"request"`
}

func NewQuoteRequestedEvent(r QuoteRequest) *QuoteRequestedEvent {
	return &QuoteRequestedEvent{
		BaseEvent: common.NewBaseEvent(EventQuoteRequested, string(r.DesignID)),
		Request:   r,
	}
}

//Personal.AI order the ending
