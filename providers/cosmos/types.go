package cosmos

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// GetTxsEventResponse is the LCD response of /cosmos/tx/v1beta1/txs.
type GetTxsEventResponse struct {
	Txs         []IndexerTx  `json:"txs"`
	TxResponses []TxResponse `json:"tx_responses"`
	Pagination  Pagination   `json:"pagination"`
	// Total is set by SDK 0.47+ in addition to pagination.total.
	Total string `json:"total"`
}

func (r GetTxsEventResponse) DeclaredTotal() int {
	for _, raw := range []string{r.Pagination.Total, r.Total} {
		if total, err := strconv.Atoi(raw); err == nil && total > 0 {
			return total
		}
	}
	return 0
}

type IndexerTx struct {
	Body     TxBody     `json:"body"`
	AuthInfo TxAuthInfo `json:"auth_info"`
}

type TxBody struct {
	Messages []json.RawMessage `json:"messages"`
	Memo     string            `json:"memo"`
}

type TxAuthInfo struct {
	TxFee TxFee `json:"fee"`
}

type TxFee struct {
	TxFeeAmount []Coin `json:"amount"`
	GasLimit    string `json:"gas_limit"`
}

type TxResponse struct {
	TxHash    string            `json:"txhash"`
	Height    string            `json:"height"`
	TimeStamp string            `json:"timestamp"`
	Code      int64             `json:"code"`
	RawLog    string            `json:"raw_log"`
	Logs      []TxLogMessage    `json:"logs"`
	Events    []LogMessageEvent `json:"events"`
}

// TxLogMessage holds the events emitted by the message at MessageIndex (pre SDK 0.50 responses).
type TxLogMessage struct {
	MessageIndex int               `json:"msg_index"`
	Events       []LogMessageEvent `json:"events"`
}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type LogMessageEvent struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

type Pagination struct {
	NextKey string `json:"next_key"`
	Total   string `json:"total"`
}

// MergedTx pairs the txs and tx_responses arrays of the LCD response. It is the Record payload.
type MergedTx struct {
	Tx         IndexerTx
	TxResponse TxResponse
}

type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

type Output struct {
	Address string `json:"address"`
	Coins   []Coin `json:"coins"`
}

type Packet struct {
	SourcePort         string `json:"source_port"`
	SourceChannel      string `json:"source_channel"`
	DestinationPort    string `json:"destination_port"`
	DestinationChannel string `json:"destination_channel"`
	// Data is the base64 encoded JSON packet body.
	Data string `json:"data"`
}

// RawMessage decodes the union of fields used by the message types we map.
type RawMessage struct {
	Type                string      `json:"@type"`
	FromAddress         string      `json:"from_address"`
	ToAddress           string      `json:"to_address"`
	Amount              CoinOrCoins `json:"amount"`
	DelegatorAddress    string      `json:"delegator_address"`
	ValidatorAddress    string      `json:"validator_address"`
	ValidatorDstAddress string      `json:"validator_dst_address"`
	Sender              string      `json:"sender"`
	Receiver            string      `json:"receiver"`
	Token               *Coin       `json:"token"`
	Voter               string      `json:"voter"`
	Depositor           string      `json:"depositor"`
	Proposer            string      `json:"proposer"`
	Signer              string      `json:"signer"`
	Grantee             string      `json:"grantee"`
	Contract            string      `json:"contract"`
	Funds               []Coin      `json:"funds"`
	Inputs              []Output    `json:"inputs"`
	Outputs             []Output    `json:"outputs"`
	Packet              *Packet     `json:"packet"`
	TokenIn             *Coin       `json:"token_in"`
	TokenOut            *Coin       `json:"token_out"`
	TokenInMaxs         []Coin      `json:"token_in_maxs"`
	TokenOutMins        []Coin      `json:"token_out_mins"`
}

// CoinOrCoins accepts both the single coin (staking) and coin list (bank, gov) encodings of "amount".
type CoinOrCoins []Coin

func (c *CoinOrCoins) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '[' {
		var coins []Coin
		if err := json.Unmarshal(data, &coins); err != nil {
			return err
		}
		*c = coins
		return nil
	}
	var coin Coin
	if err := json.Unmarshal(data, &coin); err != nil {
		return err
	}
	*c = CoinOrCoins{coin}
	return nil
}
