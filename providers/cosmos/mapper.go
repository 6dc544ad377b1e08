package cosmos

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/canonical"
	"github.com/epicexcelsior/awaken-long-tail-chains/config"
	"github.com/epicexcelsior/awaken-long-tail-chains/providers"
	"github.com/epicexcelsior/awaken-long-tail-chains/util"

	sdk "github.com/cosmos/cosmos-sdk/types"
	transfertypes "github.com/cosmos/ibc-go/v7/modules/apps/transfer/types"
)

// Event types and attributes read from the chain's own events.
const (
	eventWithdrawRewards    = "withdraw_rewards"
	eventWithdrawCommission = "withdraw_commission"
	eventTokenSwapped       = "token_swapped"
	eventPoolJoined         = "pool_joined"
	eventPoolExited         = "pool_exited"

	attrAmount    = "amount"
	attrSender    = "sender"
	attrPoolID    = "pool_id"
	attrTokensIn  = "tokens_in"
	attrTokensOut = "tokens_out"
	attrMsgIndex  = "msg_index"
)

// ToCanonical translates one LCD tx/tx_response pair.
func (a *Adapter) ToCanonical(record providers.Record) (*canonical.Transaction, error) {
	merged, ok := record.Payload.(MergedTx)
	if !ok {
		return nil, &providers.MalformedRecordError{Provider: ProviderName, Reason: fmt.Sprintf("unexpected payload %T", record.Payload)}
	}

	resp := merged.TxResponse
	hash := strings.TrimSpace(resp.TxHash)
	if hash == "" {
		return nil, &providers.MalformedRecordError{Provider: ProviderName, Reason: "tx_response without txhash"}
	}

	tx := &canonical.Transaction{
		Hash:       hash,
		Chain:      a.chain.Name,
		Provider:   ProviderName,
		StatusCode: int(resp.Code),
		Memo:       merged.Tx.Body.Memo,
		Fee:        a.pickCoin(merged.Tx.AuthInfo.TxFee.TxFeeAmount),
	}

	if height, err := strconv.ParseUint(resp.Height, 10, 64); err == nil {
		tx.Height = height
	}

	if ts, err := time.Parse(time.RFC3339, resp.TimeStamp); err == nil {
		tx.Timestamp = ts.UTC()
	} else if resp.TimeStamp != "" {
		config.Log.Debugf("Unparseable timestamp %q on tx %s", resp.TimeStamp, hash)
	}

	tx.Events = convertEvents(allEvents(resp))

	for i, raw := range merged.Tx.Body.Messages {
		var msg RawMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			config.Log.Debugf("Could not decode message %d of tx %s: %v", i, hash, err)
			tx.Messages = append(tx.Messages, canonical.Message{Kind: canonical.KindUnknown})
			continue
		}

		message, synthesized := a.mapMessage(msg, messageEvents(resp, i), record.Address)
		tx.Messages = append(tx.Messages, message)
		tx.Events = append(tx.Events, synthesized...)
	}

	if record.Branch == BranchRecipient {
		tx.Events = append(tx.Events, canonical.NewInvocationEvent(canonical.InvocationRecipient, record.Address))
	}

	return tx, nil
}

func (a *Adapter) mapMessage(msg RawMessage, events []LogMessageEvent, wallet string) (canonical.Message, []canonical.Event) {
	message := canonical.Message{Kind: kindForType(msg.Type), Type: msg.Type}
	var synthesized []canonical.Event

	switch msg.Type {
	case MsgSend:
		message.From, message.To = msg.FromAddress, msg.ToAddress
		message.Amount = a.pickCoin(msg.Amount)
	case MsgMultiSend:
		input, _ := pickByAddress(msg.Inputs, wallet)
		message.From = input.Address
		if output, ok := pickByAddress(msg.Outputs, wallet); ok {
			message.To = output.Address
			message.Amount = a.pickCoin(output.Coins)
			if util.SameAddress(input.Address, wallet) && !util.SameAddress(output.Address, wallet) {
				message.Amount = a.pickCoin(input.Coins)
			}
		}
	case MsgTransfer:
		message.Sender, message.Receiver = msg.Sender, msg.Receiver
		if msg.Token != nil {
			message.Amount = &canonical.Coin{Amount: msg.Token.Amount, Denom: msg.Token.Denom}
		}
	case MsgRecvPacket:
		message.Sender = msg.Signer
		if msg.Packet != nil {
			if data, ok := decodePacketData(msg.Packet); ok {
				message.From, message.To = data.Sender, data.Receiver
				message.Amount = &canonical.Coin{Amount: data.Amount, Denom: receivedDenom(msg.Packet, data.Denom)}
			}
		}
	case MsgDelegate, MsgUndelegate:
		message.Sender, message.Receiver = msg.DelegatorAddress, msg.ValidatorAddress
		message.Amount = a.pickCoin(msg.Amount)
	case MsgBeginRedelegate:
		message.Sender, message.Receiver = msg.DelegatorAddress, msg.ValidatorDstAddress
		message.Amount = a.pickCoin(msg.Amount)
	case MsgWithdrawDelegatorReward:
		message.From, message.To = msg.ValidatorAddress, msg.DelegatorAddress
		message.Amount = a.pickCoin(coinsFromEvents(eventWithdrawRewards, events))
	case MsgWithdrawValidatorCommission:
		message.To = msg.ValidatorAddress
		message.Amount = a.pickCoin(coinsFromEvents(eventWithdrawCommission, events))
	case MsgFundCommunityPool, MsgDeposit, MsgDepositV1:
		message.From = msg.Depositor
		message.Amount = a.pickCoin(msg.Amount)
	case MsgVote, MsgVoteV1, MsgVoteWeighted, MsgVoteWeightedV1:
		message.Sender = msg.Voter
	case MsgExecuteContract:
		message.Sender, message.Receiver = msg.Sender, msg.Contract
		message.Amount = a.pickCoin(msg.Funds)
	case MsgSwapExactAmountIn, MsgSwapExactAmountOut, MsgPoolManagerSwapExactAmountIn,
		MsgPoolManagerSwapExactAmountOut, MsgSplitRouteSwapExactAmountIn:
		message.Sender = msg.Sender
		if msg.TokenIn != nil {
			message.Amount = &canonical.Coin{Amount: msg.TokenIn.Amount, Denom: msg.TokenIn.Denom}
		}
		synthesized = swapTransfers(events)
	case MsgJoinPool, MsgJoinSwapExternAmountIn, MsgJoinSwapShareAmountOut:
		message.Sender = msg.Sender
		synthesized = poolTransfers(eventPoolJoined, attrTokensIn, events, true)
	case MsgExitPool, MsgExitSwapShareAmountIn, MsgExitSwapExternAmountOut:
		message.Sender = msg.Sender
		synthesized = poolTransfers(eventPoolExited, attrTokensOut, events, false)
	default:
		message.Sender = util.FirstNonEmpty(msg.Sender, msg.Signer, msg.FromAddress, msg.DelegatorAddress,
			msg.Voter, msg.Depositor, msg.Proposer, msg.Grantee)
	}

	return message, synthesized
}

// pickCoin prefers the chain's native denomination when several coins are present.
func (a *Adapter) pickCoin(coins []Coin) *canonical.Coin {
	if len(coins) == 0 {
		return nil
	}
	chosen := coins[0]
	for _, coin := range coins {
		if coin.Denom == a.chain.Native.Denom {
			chosen = coin
			break
		}
	}
	return &canonical.Coin{Amount: chosen.Amount, Denom: chosen.Denom}
}

// pickByAddress prefers the wallet's own entry of a multi-send input or output list, else the first.
func pickByAddress(entries []Output, wallet string) (Output, bool) {
	for _, entry := range entries {
		if util.SameAddress(entry.Address, wallet) {
			return entry, true
		}
	}
	if len(entries) > 0 {
		return entries[0], true
	}
	return Output{}, false
}

func decodePacketData(packet *Packet) (transfertypes.FungibleTokenPacketData, bool) {
	var data transfertypes.FungibleTokenPacketData
	raw, err := base64.StdEncoding.DecodeString(packet.Data)
	if err != nil {
		return data, false
	}
	if err := json.Unmarshal(raw, &data); err != nil || data.Denom == "" {
		return data, false
	}
	return data, true
}

// receivedDenom is the denomination the packet's tokens land in on this chain: the unwound original
// when this chain was the source, otherwise the ibc/ voucher for the destination port and channel.
func receivedDenom(packet *Packet, denom string) string {
	if transfertypes.ReceiverChainIsSource(packet.SourcePort, packet.SourceChannel, denom) {
		unprefixed := denom[len(transfertypes.GetDenomPrefix(packet.SourcePort, packet.SourceChannel)):]
		trace := transfertypes.ParseDenomTrace(unprefixed)
		if trace.Path == "" {
			return unprefixed
		}
		return trace.IBCDenom()
	}

	prefixed := transfertypes.GetDenomPrefix(packet.DestinationPort, packet.DestinationChannel) + denom
	return transfertypes.ParseDenomTrace(prefixed).IBCDenom()
}

func parseCoins(raw string) []Coin {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parsed, err := sdk.ParseCoinsNormalized(raw)
	if err != nil {
		config.Log.Debugf("Could not parse coins %q: %v", raw, err)
		return nil
	}
	coins := make([]Coin, 0, len(parsed))
	for _, coin := range parsed {
		coins = append(coins, Coin{Denom: coin.Denom, Amount: coin.Amount.String()})
	}
	return coins
}

func coinsFromEvents(eventType string, events []LogMessageEvent) []Coin {
	var coins []Coin
	for _, evt := range events {
		if evt.Type != eventType {
			continue
		}
		for _, attr := range evt.Attributes {
			if attr.Key == attrAmount {
				coins = append(coins, parseCoins(attr.Value)...)
			}
		}
	}
	return coins
}

// swapTransfers turns a (possibly multi-hop) swap into the wallet's two legs: what went into the first
// pool and what came out of the last one.
func swapTransfers(events []LogMessageEvent) []canonical.Event {
	var swaps []LogMessageEvent
	for _, evt := range events {
		if evt.Type == eventTokenSwapped {
			swaps = append(swaps, evt)
		}
	}
	if len(swaps) == 0 {
		return nil
	}

	first, last := swaps[0], swaps[len(swaps)-1]
	sender := attributeValue(first, attrSender)

	var transfers []canonical.Event
	for _, coin := range parseCoins(attributeValue(first, attrTokensIn)) {
		transfers = append(transfers, canonical.NewTokenTransferEvent(sender, poolAddress(first), coin.Amount, "", "", coin.Denom))
	}
	for _, coin := range parseCoins(attributeValue(last, attrTokensOut)) {
		transfers = append(transfers, canonical.NewTokenTransferEvent(poolAddress(last), sender, coin.Amount, "", "", coin.Denom))
	}
	return transfers
}

func poolTransfers(eventType, attrKey string, events []LogMessageEvent, toPool bool) []canonical.Event {
	var transfers []canonical.Event
	for _, evt := range events {
		if evt.Type != eventType {
			continue
		}
		sender := attributeValue(evt, attrSender)
		for _, coin := range parseCoins(attributeValue(evt, attrKey)) {
			if toPool {
				transfers = append(transfers, canonical.NewTokenTransferEvent(sender, poolAddress(evt), coin.Amount, "", "", coin.Denom))
			} else {
				transfers = append(transfers, canonical.NewTokenTransferEvent(poolAddress(evt), sender, coin.Amount, "", "", coin.Denom))
			}
		}
	}
	return transfers
}

func poolAddress(evt LogMessageEvent) string {
	return "pool:" + attributeValue(evt, attrPoolID)
}

func attributeValue(evt LogMessageEvent, key string) string {
	for _, attr := range evt.Attributes {
		if attr.Key == key {
			return attr.Value
		}
	}
	return ""
}

// messageEvents returns the events emitted by the message at index. SDK 0.50 dropped per-message logs
// and tags top-level events with msg_index instead.
func messageEvents(resp TxResponse, index int) []LogMessageEvent {
	if len(resp.Logs) > 0 {
		for _, log := range resp.Logs {
			if log.MessageIndex == index {
				return log.Events
			}
		}
		return nil
	}

	want := strconv.Itoa(index)
	var events []LogMessageEvent
	for _, evt := range resp.Events {
		if attributeValue(evt, attrMsgIndex) == want {
			events = append(events, evt)
		}
	}
	return events
}

func allEvents(resp TxResponse) []LogMessageEvent {
	if len(resp.Logs) == 0 {
		return resp.Events
	}
	var events []LogMessageEvent
	for _, log := range resp.Logs {
		events = append(events, log.Events...)
	}
	return events
}

func convertEvents(events []LogMessageEvent) []canonical.Event {
	converted := make([]canonical.Event, 0, len(events))
	for _, evt := range events {
		attrs := make([]canonical.Attribute, 0, len(evt.Attributes))
		for _, attr := range evt.Attributes {
			attrs = append(attrs, canonical.Attribute{Key: attr.Key, Value: attr.Value})
		}
		converted = append(converted, canonical.Event{Type: evt.Type, Attributes: attrs})
	}
	return converted
}
