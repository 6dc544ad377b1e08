package sui

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/epicexcelsior/awaken-long-tail-chains/canonical"
	"github.com/epicexcelsior/awaken-long-tail-chains/providers"
	"github.com/epicexcelsior/awaken-long-tail-chains/util"

	sdkmath "cosmossdk.io/math"
)

const (
	programmableTransaction = "ProgrammableTransaction"
	statusSuccess           = "success"

	stakingModule = "sui_system"
)

var stakingFunctions = map[string]string{
	"request_add_stake":          canonical.KindDelegate,
	"request_add_stake_mul_coin": canonical.KindDelegate,
	"request_withdraw_stake":     canonical.KindUndelegate,
}

func (a *Adapter) ToCanonical(record providers.Record) (*canonical.Transaction, error) {
	block, ok := record.Payload.(TransactionBlock)
	if !ok {
		return nil, &providers.MalformedRecordError{Provider: ProviderName, Reason: fmt.Sprintf("unexpected payload %T", record.Payload)}
	}
	if strings.TrimSpace(block.Digest) == "" {
		return nil, &providers.MalformedRecordError{Provider: ProviderName, Reason: "transaction block without digest"}
	}

	tx := &canonical.Transaction{
		Hash:     block.Digest,
		Chain:    a.chain.Name,
		Provider: ProviderName,
	}

	if checkpoint, err := strconv.ParseUint(block.Checkpoint, 10, 64); err == nil {
		tx.Height = checkpoint
	}
	if ms, err := strconv.ParseInt(block.TimestampMs, 10, 64); err == nil && ms > 0 {
		tx.Timestamp = time.UnixMilli(ms).UTC()
	}
	if block.Effects != nil && block.Effects.Status.Status != statusSuccess {
		tx.StatusCode = 1
	}

	gas := gasCost(block.Effects)
	if gas.IsPositive() {
		tx.Fee = &canonical.Coin{Amount: gas.String(), Denom: a.chain.Native.Denom}
	}

	changes := a.walletChanges(block, record.Address, gas)

	if block.Transaction != nil {
		message := messageFor(block.Transaction.Data)
		if message.Kind == canonical.KindDelegate || message.Kind == canonical.KindUndelegate {
			if native, ok := changes[a.chain.Native.Denom]; ok && !native.IsZero() {
				message.Amount = &canonical.Coin{Amount: native.Abs().String(), Denom: a.chain.Native.Denom}
			}
		}
		tx.Messages = append(tx.Messages, message)
	}

	tx.Events = append(tx.Events, a.transferEvents(block, record.Address, changes)...)

	if record.Branch == BranchTo {
		tx.Events = append(tx.Events, canonical.NewInvocationEvent(canonical.InvocationRecipient, record.Address))
	}

	return tx, nil
}

func messageFor(data TransactionData) canonical.Message {
	message := canonical.Message{Kind: canonical.KindUnknown, Type: data.Transaction.Kind, Sender: data.Sender}
	if data.Transaction.Kind != programmableTransaction {
		return message
	}

	message.Kind = canonical.KindTransfer
	for _, command := range data.Transaction.Transactions {
		raw, ok := command["MoveCall"]
		if !ok {
			continue
		}
		var call MoveCall
		if err := json.Unmarshal(raw, &call); err != nil {
			continue
		}

		message.Type = fmt.Sprintf("%s::%s::%s", call.Package, call.Module, call.Function)
		if kind, ok := stakingFunctions[call.Function]; ok && isSystemPackage(call.Package) && call.Module == stakingModule {
			message.Kind = kind
			return message
		}
		message.Kind = canonical.KindContractCall
	}
	return message
}

// isSystemPackage matches 0x3 in short or fully padded form.
func isSystemPackage(pkg string) bool {
	return strings.TrimLeft(strings.TrimPrefix(pkg, "0x"), "0") == "3"
}

// gasCost is computation plus storage minus the storage rebate. It can be negative.
func gasCost(effects *TransactionEffects) sdkmath.Int {
	if effects == nil {
		return sdkmath.ZeroInt()
	}
	total := sdkmath.ZeroInt()
	for _, part := range []struct {
		value string
		sign  int
	}{
		{effects.GasUsed.ComputationCost, 1},
		{effects.GasUsed.StorageCost, 1},
		{effects.GasUsed.StorageRebate, -1},
	} {
		amount, ok := sdkmath.NewIntFromString(part.value)
		if !ok {
			continue
		}
		if part.sign < 0 {
			total = total.Sub(amount)
		} else {
			total = total.Add(amount)
		}
	}
	return total
}

// walletChanges sums the wallet's balance changes per coin type. Gas is added back to the payer's native
// change so the remaining amount is what actually moved.
func (a *Adapter) walletChanges(block TransactionBlock, wallet string, gas sdkmath.Int) map[string]sdkmath.Int {
	changes := map[string]sdkmath.Int{}
	for _, change := range block.BalanceChanges {
		if !util.SameAddress(change.OwnerAddress(), wallet) {
			continue
		}
		amount, ok := sdkmath.NewIntFromString(change.Amount)
		if !ok {
			continue
		}
		if current, seen := changes[change.CoinType]; seen {
			amount = amount.Add(current)
		}
		changes[change.CoinType] = amount
	}

	if block.Transaction != nil && util.SameAddress(gasPayer(block.Transaction.Data), wallet) {
		if native, ok := changes[a.chain.Native.Denom]; ok {
			changes[a.chain.Native.Denom] = native.Add(gas)
		}
	}
	return changes
}

func gasPayer(data TransactionData) string {
	return util.FirstNonEmpty(data.GasData.Owner, data.Sender)
}

// transferEvents emits one token_transfer per coin type the wallet's balance moved in, in balance change order.
func (a *Adapter) transferEvents(block TransactionBlock, wallet string, changes map[string]sdkmath.Int) []canonical.Event {
	var events []canonical.Event
	emitted := map[string]bool{}

	for _, change := range block.BalanceChanges {
		coinType := change.CoinType
		amount, ok := changes[coinType]
		if !ok || emitted[coinType] || amount.IsZero() {
			continue
		}
		emitted[coinType] = true

		symbol, decimals := a.metadataHints(coinType)
		if amount.IsNegative() {
			to := counterparty(block, wallet, coinType, true)
			events = append(events, canonical.NewTokenTransferEvent(wallet, to, amount.Abs().String(), symbol, decimals, coinType))
		} else {
			from := counterparty(block, wallet, coinType, false)
			events = append(events, canonical.NewTokenTransferEvent(from, wallet, amount.String(), symbol, decimals, coinType))
		}
	}
	return events
}

func (a *Adapter) metadataHints(coinType string) (string, string) {
	if strings.EqualFold(coinType, a.chain.Native.Denom) {
		return a.chain.Native.Symbol, strconv.Itoa(a.chain.Native.Decimals)
	}
	if md, ok := a.tokens.Get(coinType); ok {
		return md.Symbol, strconv.Itoa(md.Decimals)
	}
	return "", ""
}

// counterparty finds the other owner whose balance in coinType moved the opposite way. For an incoming
// transfer with no such owner the transaction sender is used.
func counterparty(block TransactionBlock, wallet, coinType string, outgoing bool) string {
	for _, change := range block.BalanceChanges {
		owner := change.OwnerAddress()
		if change.CoinType != coinType || owner == "" || util.SameAddress(owner, wallet) {
			continue
		}
		amount, ok := sdkmath.NewIntFromString(change.Amount)
		if !ok {
			continue
		}
		if (outgoing && amount.IsPositive()) || (!outgoing && amount.IsNegative()) {
			return owner
		}
	}

	if !outgoing && block.Transaction != nil && !util.SameAddress(block.Transaction.Data.Sender, wallet) {
		return block.Transaction.Data.Sender
	}
	return ""
}
