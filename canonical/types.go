package canonical

import "time"

// Message kinds. Mappers translate provider-specific type tags into one of these.
const (
	KindTransfer     = "transfer"
	KindIBCTransfer  = "ibc_transfer"
	KindDelegate     = "delegate"
	KindUndelegate   = "undelegate"
	KindRedelegate   = "redelegate"
	KindClaimRewards = "claim_rewards"
	KindVote         = "vote"
	KindPoolJoin     = "pool_join"
	KindPoolExit     = "pool_exit"
	KindSwap         = "swap"
	KindContractCall = "contract_call"
	KindUnknown      = "unknown"
)

// Event types synthesized by the mappers.
const (
	// EventTokenTransfer carries one decoded asset movement.
	EventTokenTransfer = "token_transfer"
	// EventInvocation names the role the queried wallet played, as reported by the provider.
	EventInvocation = "invocation"
)

// Attribute keys of the synthesized events.
const (
	AttrFrom           = "from"
	AttrTo             = "to"
	AttrValue          = "value"
	AttrSymbol         = "symbol"
	AttrDecimals       = "decimals"
	AttrContract       = "contract"
	AttrInvocationType = "invocation_type"
	AttrAddress        = "address"
)

// Values of AttrInvocationType.
const (
	InvocationSender    = "sender"
	InvocationRecipient = "recipient"
)

// Coin is an amount in integer minor units. Scaling to display decimals happens at classification time.
type Coin struct {
	Amount string
	Denom  string
}

type Message struct {
	Kind     string
	Type     string
	From     string
	To       string
	Sender   string
	Receiver string
	Amount   *Coin
}

type Attribute struct {
	Key   string
	Value string
}

type Event struct {
	Type       string
	Attributes []Attribute
}

// Transaction is the chain-agnostic view of one on-chain transaction as seen from one provider.
// Values are never modified once a mapper has produced them.
type Transaction struct {
	Hash     string
	Chain    string
	Provider string
	Height   uint64
	// Timestamp is zero when the provider did not supply a usable one.
	Timestamp time.Time
	// TimestampEstimated is set when Timestamp is the fetch-time sentinel.
	TimestampEstimated bool
	StatusCode         int
	Messages           []Message
	Events             []Event
	Fee                *Coin
	Memo               string
}

func (tx Transaction) Succeeded() bool {
	return tx.StatusCode == 0
}

// MessageParty returns the originating and receiving address of a message, whichever naming the provider used.
func (m Message) MessageParty() (string, string) {
	from := m.From
	if from == "" {
		from = m.Sender
	}
	to := m.To
	if to == "" {
		to = m.Receiver
	}
	return from, to
}
