package etherscan

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/canonical"
	"github.com/epicexcelsior/awaken-long-tail-chains/denoms"
	"github.com/epicexcelsior/awaken-long-tail-chains/providers"

	"github.com/shopspring/decimal"
)

const nativeDenom = "wei"

func (a *Adapter) ToCanonical(record providers.Record) (*canonical.Transaction, error) {
	var bundle *Bundle
	switch payload := record.Payload.(type) {
	case *Bundle:
		bundle = payload
	case *NativeTx:
		bundle = &Bundle{Hash: payload.Hash, Native: payload}
	case TokenTx:
		bundle = &Bundle{Hash: payload.Hash, Tokens: []TokenTx{payload}}
	default:
		return nil, &providers.MalformedRecordError{Provider: ProviderName, Reason: fmt.Sprintf("unexpected payload %T", record.Payload)}
	}

	if bundle == nil || strings.TrimSpace(bundle.Hash) == "" {
		return nil, &providers.MalformedRecordError{Provider: ProviderName, Reason: "record without hash"}
	}

	tx := &canonical.Transaction{
		Hash:     bundle.Hash,
		Chain:    a.chain.Name,
		Provider: ProviderName,
	}

	blockNumber, timeStamp, gasUsed, gasPrice := bundle.header()
	if height, err := strconv.ParseUint(blockNumber, 10, 64); err == nil {
		tx.Height = height
	}
	if seconds, err := strconv.ParseInt(timeStamp, 10, 64); err == nil && seconds > 0 {
		tx.Timestamp = time.Unix(seconds, 0).UTC()
	}
	tx.Fee = gasFee(gasUsed, gasPrice)

	if native := bundle.Native; native != nil {
		if native.IsError == "1" || native.TxReceiptStatus == "0" {
			tx.StatusCode = 1
		}

		message := canonical.Message{
			Kind: canonical.KindTransfer,
			Type: "transfer",
			From: native.From,
			To:   native.To,
		}
		if native.Input != "" && native.Input != "0x" {
			message.Kind = canonical.KindContractCall
			message.Type = contractCallType(native)
		}
		if native.To == "" && native.ContractAddress != "" {
			message.To = native.ContractAddress
		}
		if !denoms.IsZero(native.Value) {
			message.Amount = &canonical.Coin{Amount: native.Value, Denom: nativeDenom}
		}
		tx.Messages = append(tx.Messages, message)
	} else if len(bundle.Tokens) > 0 {
		// Token-only hashes have no txlist row; the first transfer stands in as the message.
		first := bundle.Tokens[0]
		tx.Messages = append(tx.Messages, canonical.Message{
			Kind: canonical.KindTransfer,
			Type: "transfer",
			From: first.From,
			To:   first.To,
		})
	}

	for _, token := range bundle.Tokens {
		tx.Events = append(tx.Events, canonical.NewTokenTransferEvent(
			token.From, token.To, token.Value, token.TokenSymbol, token.TokenDecimal, token.ContractAddress,
		))
	}

	return tx, nil
}

// header prefers the txlist row, which every tokentx row of the same hash agrees with.
func (b *Bundle) header() (blockNumber, timeStamp, gasUsed, gasPrice string) {
	if b.Native != nil {
		return b.Native.BlockNumber, b.Native.TimeStamp, b.Native.GasUsed, b.Native.GasPrice
	}
	if len(b.Tokens) > 0 {
		t := b.Tokens[0]
		return t.BlockNumber, t.TimeStamp, t.GasUsed, t.GasPrice
	}
	return "", "", "", ""
}

func contractCallType(native *NativeTx) string {
	if name := strings.TrimSpace(native.FunctionName); name != "" {
		if idx := strings.Index(name, "("); idx > 0 {
			return name[:idx]
		}
		return name
	}
	if native.MethodID != "" {
		return native.MethodID
	}
	return "contract_call"
}

// gasFee is gasUsed * gasPrice in wei, nil when either is missing.
func gasFee(gasUsed, gasPrice string) *canonical.Coin {
	used, err := decimal.NewFromString(gasUsed)
	if err != nil {
		return nil
	}
	price, err := decimal.NewFromString(gasPrice)
	if err != nil {
		return nil
	}
	fee := used.Mul(price)
	if fee.IsZero() {
		return nil
	}
	return &canonical.Coin{Amount: fee.String(), Denom: nativeDenom}
}
