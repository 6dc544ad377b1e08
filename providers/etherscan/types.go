package etherscan

import "encoding/json"

// Response is the envelope of every Etherscan account API call. Result is a list on success and an
// explanatory string when Status is "0".
type Response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// NativeTx is one row of action=txlist.
type NativeTx struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	Gas             string `json:"gas"`
	GasPrice        string `json:"gasPrice"`
	GasUsed         string `json:"gasUsed"`
	IsError         string `json:"isError"`
	TxReceiptStatus string `json:"txreceipt_status"`
	Input           string `json:"input"`
	ContractAddress string `json:"contractAddress"`
	MethodID        string `json:"methodId"`
	FunctionName    string `json:"functionName"`
}

// TokenTx is one ERC-20 Transfer log, a row of action=tokentx.
type TokenTx struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	ContractAddress string `json:"contractAddress"`
	TokenName       string `json:"tokenName"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenDecimal    string `json:"tokenDecimal"`
	GasPrice        string `json:"gasPrice"`
	GasUsed         string `json:"gasUsed"`
}

// Bundle joins everything both branches returned for one transaction hash. It is the Record payload
// handed to the mapper, so a transaction keeps its native value, fee and every token transfer
// whichever branch's record survives deduplication.
type Bundle struct {
	Hash   string
	Native *NativeTx
	Tokens []TokenTx
}
