package events

// Topics emitted by the pricing service.
const (
	// TopicQuoteCreated fires after a quote breakdown is persisted.
	TopicQuoteCreated = "quote.created"
	// TopicRateUpserted fires when an admin writes an exchange rate.
	TopicRateUpserted = "rate.upserted"
	// TopicOfferChanged fires when an offer is created or updated.
	TopicOfferChanged = "offer.changed"
)
