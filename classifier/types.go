package classifier

import "time"

// Type is the wallet-relative economic meaning of a transaction.
type Type string

const (
	TypeSend           Type = "send"
	TypeReceive        Type = "receive"
	TypeSwap           Type = "swap"
	TypeIBCTransfer    Type = "ibc_transfer"
	TypeBridgeTransfer Type = "bridge_transfer"
	TypeDelegate       Type = "delegate"
	TypeUndelegate     Type = "undelegate"
	TypeClaimRewards   Type = "claim_rewards"
	TypePoolDeposit    Type = "pool_deposit"
	TypePoolWithdraw   Type = "pool_withdraw"
	TypeGovernanceVote Type = "governance_vote"
	TypeUnknown        Type = "unknown"
)

// Types is the closed set of values Classify can return.
func Types() []Type {
	return []Type{
		TypeSend, TypeReceive, TypeSwap, TypeIBCTransfer, TypeBridgeTransfer, TypeDelegate, TypeUndelegate,
		TypeClaimRewards, TypePoolDeposit, TypePoolWithdraw, TypeGovernanceVote, TypeUnknown,
	}
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// ParsedTransaction is a classified transaction with amounts already scaled to display units.
type ParsedTransaction struct {
	Hash      string
	Timestamp time.Time
	Type      Type
	From      string
	To        string
	// Amount/Currency is the primary leg. For swaps it is the sent side.
	Amount   string
	Currency string
	// Amount2/Currency2 is the secondary leg. For swaps it is the received side.
	Amount2     string
	Currency2   string
	Fee         string
	FeeCurrency string
	Notes       string
	Status      Status
}
