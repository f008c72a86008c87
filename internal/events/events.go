package events

import "context"

// Event types published on the campaign stream.
const (
	EventDonationCreated = "donation_created"
	EventCampaignFunded  = "campaign_funded"
	EventCampaignClosed  = "campaign_closed"
)

// StreamCampaign is the redis channel carrying campaign lifecycle events.
const StreamCampaign = "events:campaign"

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
