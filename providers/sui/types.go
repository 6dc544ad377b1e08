package sui

import (
	"encoding/json"
)

type JSONRPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      int             `json:"id"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// TransactionQueryResponse is the result of suix_queryTransactionBlocks.
type TransactionQueryResponse struct {
	Data        []TransactionBlock `json:"data"`
	NextCursor  *string            `json:"nextCursor"`
	HasNextPage bool               `json:"hasNextPage"`
}

type TransactionBlock struct {
	Digest         string              `json:"digest"`
	Transaction    *Transaction        `json:"transaction,omitempty"`
	Effects        *TransactionEffects `json:"effects,omitempty"`
	BalanceChanges []BalanceChange     `json:"balanceChanges,omitempty"`
	TimestampMs    string              `json:"timestampMs,omitempty"`
	Checkpoint     string              `json:"checkpoint,omitempty"`
}

type Transaction struct {
	Data TransactionData `json:"data"`
}

type TransactionData struct {
	Transaction TransactionKind `json:"transaction"`
	Sender      string          `json:"sender"`
	GasData     GasData         `json:"gasData"`
}

type TransactionKind struct {
	Kind string `json:"kind"`
	// Transactions are the programmable transaction commands, each an object keyed by command name.
	Transactions []map[string]json.RawMessage `json:"transactions,omitempty"`
}

type GasData struct {
	Owner  string `json:"owner"`
	Price  string `json:"price"`
	Budget string `json:"budget"`
}

type TransactionEffects struct {
	Status  ExecutionStatus `json:"status"`
	GasUsed GasUsed         `json:"gasUsed"`
}

type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type GasUsed struct {
	ComputationCost string `json:"computationCost"`
	StorageCost     string `json:"storageCost"`
	StorageRebate   string `json:"storageRebate"`
}

type MoveCall struct {
	Package  string `json:"package"`
	Module   string `json:"module"`
	Function string `json:"function"`
}

type BalanceChange struct {
	// Owner is {"AddressOwner": "0x.."}, {"ObjectOwner": "0x.."}, {"Shared": {...}} or "Immutable".
	Owner    json.RawMessage `json:"owner"`
	CoinType string          `json:"coinType"`
	Amount   string          `json:"amount"`
}

// OwnerAddress returns the address or object owner, empty for shared and immutable owners.
func (b BalanceChange) OwnerAddress() string {
	var owner struct {
		AddressOwner string `json:"AddressOwner"`
		ObjectOwner  string `json:"ObjectOwner"`
	}
	if err := json.Unmarshal(b.Owner, &owner); err != nil {
		return ""
	}
	if owner.AddressOwner != "" {
		return owner.AddressOwner
	}
	return owner.ObjectOwner
}

// CoinMetadata is the result of suix_getCoinMetadata.
type CoinMetadata struct {
	Decimals int    `json:"decimals"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
}
