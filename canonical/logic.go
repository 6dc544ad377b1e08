package canonical

func GetEventWithType(eventType string, events []Event) *Event {
	for i := range events {
		if events[i].Type == eventType {
			return &events[i]
		}
	}

	return nil
}

func GetEventsWithType(eventType string, events []Event) []Event {
	var matches []Event
	for _, evt := range events {
		if evt.Type == eventType {
			matches = append(matches, evt)
		}
	}

	return matches
}

// GetValueForAttribute returns the first value stored under key.
func GetValueForAttribute(key string, evt *Event) string {
	if evt == nil {
		return ""
	}

	for _, attr := range evt.Attributes {
		if attr.Key == key {
			return attr.Value
		}
	}

	return ""
}

// NewTokenTransferEvent builds the uniform event the classifier reads token movements from.
// Symbol, decimals and contract are omitted when empty.
func NewTokenTransferEvent(from, to, value, symbol, decimals, contract string) Event {
	evt := Event{
		Type: EventTokenTransfer,
		Attributes: []Attribute{
			{Key: AttrFrom, Value: from},
			{Key: AttrTo, Value: to},
			{Key: AttrValue, Value: value},
		},
	}
	if symbol != "" {
		evt.Attributes = append(evt.Attributes, Attribute{Key: AttrSymbol, Value: symbol})
	}
	if decimals != "" {
		evt.Attributes = append(evt.Attributes, Attribute{Key: AttrDecimals, Value: decimals})
	}
	if contract != "" {
		evt.Attributes = append(evt.Attributes, Attribute{Key: AttrContract, Value: contract})
	}
	return evt
}

func NewInvocationEvent(role, address string) Event {
	return Event{
		Type: EventInvocation,
		Attributes: []Attribute{
			{Key: AttrInvocationType, Value: role},
			{Key: AttrAddress, Value: address},
		},
	}
}
