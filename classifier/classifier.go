package classifier

import (
	"fmt"
	"strings"

	"github.com/epicexcelsior/awaken-long-tail-chains/canonical"
	"github.com/epicexcelsior/awaken-long-tail-chains/denoms"
	"github.com/epicexcelsior/awaken-long-tail-chains/util"

	"github.com/shopspring/decimal"
)

const notesSeparator = " | "

// kindOverrides are message kinds whose chain type tag decides the classification outright.
var kindOverrides = map[string]Type{
	canonical.KindDelegate:     TypeDelegate,
	canonical.KindRedelegate:   TypeDelegate,
	canonical.KindUndelegate:   TypeUndelegate,
	canonical.KindClaimRewards: TypeClaimRewards,
	canonical.KindVote:         TypeGovernanceVote,
	canonical.KindPoolJoin:     TypePoolDeposit,
	canonical.KindPoolExit:     TypePoolWithdraw,
	canonical.KindSwap:         TypeSwap,
}

// Classifier derives wallet-relative meaning. It only reads the resolver, so one value can classify
// every transaction of a session.
type Classifier struct {
	Resolver denoms.Resolver
}

func New(resolver denoms.Resolver) Classifier {
	return Classifier{Resolver: resolver}
}

// leg is one asset movement before scaling.
type leg struct {
	from     string
	to       string
	raw      string
	denom    string
	symbol   string
	decimals string
}

func (l leg) outgoing(wallet string) bool {
	return util.SameAddress(l.from, wallet) && !util.SameAddress(l.to, wallet)
}

func (l leg) incoming(wallet string) bool {
	return util.SameAddress(l.to, wallet) && !util.SameAddress(l.from, wallet)
}

func (l leg) touches(wallet string) bool {
	return util.SameAddress(l.from, wallet) || util.SameAddress(l.to, wallet)
}

func (l leg) sameAsset(other leg) bool {
	return strings.EqualFold(l.denom, other.denom)
}

// ClassifyAll keeps input order.
func (c Classifier) ClassifyAll(txs []canonical.Transaction, wallet string) []ParsedTransaction {
	parsed := make([]ParsedTransaction, 0, len(txs))
	for _, tx := range txs {
		parsed = append(parsed, c.Classify(tx, wallet))
	}
	return parsed
}

// Classify never fails. Rules apply in order: message-kind override, two-asset swap detection, then the
// direction of the primary leg relative to the wallet.
func (c Classifier) Classify(tx canonical.Transaction, wallet string) ParsedTransaction {
	parsed := ParsedTransaction{
		Hash:      tx.Hash,
		Timestamp: tx.Timestamp,
		Status:    StatusSuccess,
	}
	if !tx.Succeeded() {
		parsed.Status = StatusFailed
	}

	native, hasNative := nativeLeg(tx.Messages)
	tokens := tokenLegs(tx.Events, wallet)

	var primary, secondary *leg
	swapped := false

	if out, in, ok := opposingLegs(native, hasNative, tokens, wallet); ok {
		primary, secondary, swapped = &out, &in, true
	} else if hasNative {
		primary = &native
		for i := range tokens {
			if !(tokens[i].sameAsset(native) && tokens[i].raw == native.raw) {
				secondary = &tokens[i]
				break
			}
		}
	} else if len(tokens) > 0 {
		primary = &tokens[0]
		if len(tokens) > 1 {
			secondary = &tokens[1]
		}
	}

	from, to := firstParty(tx.Messages)
	if primary != nil {
		from, to = primary.from, primary.to
	}
	parsed.From, parsed.To = from, to

	switch override, ok := kindOverride(tx.Messages); {
	case ok:
		parsed.Type = override
	case swapped:
		parsed.Type = TypeSwap
	default:
		parsed.Type = direction(tx, from, to, wallet)
	}

	if primary != nil {
		parsed.Amount, parsed.Currency = c.display(*primary)
	}
	if secondary != nil {
		parsed.Amount2, parsed.Currency2 = c.display(*secondary)
	}

	if tx.Fee != nil && parsed.Type != TypeReceive && !denoms.IsZero(tx.Fee.Amount) {
		parsed.Fee, parsed.FeeCurrency = c.display(leg{raw: tx.Fee.Amount, denom: tx.Fee.Denom})
	}

	parsed.Notes = notes(tx, from, to)
	return parsed
}

// nativeLeg sums the amounts of every message sharing the kind and denomination of the first message
// that carries one.
func nativeLeg(messages []canonical.Message) (leg, bool) {
	var first *canonical.Message
	total := decimal.Zero
	for i := range messages {
		msg := messages[i]
		if msg.Amount == nil || strings.TrimSpace(msg.Amount.Amount) == "" {
			continue
		}
		if first == nil {
			first = &messages[i]
		} else if msg.Kind != first.Kind || msg.Amount.Denom != first.Amount.Denom {
			continue
		}
		if amount, err := decimal.NewFromString(msg.Amount.Amount); err == nil {
			total = total.Add(amount)
		}
	}
	if first == nil {
		return leg{}, false
	}

	from, to := first.MessageParty()
	return leg{from: from, to: to, raw: total.String(), denom: first.Amount.Denom}, true
}

// tokenLegs returns the token_transfer events that touch the wallet, or all of them when none does.
func tokenLegs(events []canonical.Event, wallet string) []leg {
	var all, touching []leg
	for i := range events {
		if events[i].Type != canonical.EventTokenTransfer {
			continue
		}
		evt := &events[i]
		l := leg{
			from:     canonical.GetValueForAttribute(canonical.AttrFrom, evt),
			to:       canonical.GetValueForAttribute(canonical.AttrTo, evt),
			raw:      canonical.GetValueForAttribute(canonical.AttrValue, evt),
			denom:    canonical.GetValueForAttribute(canonical.AttrContract, evt),
			symbol:   canonical.GetValueForAttribute(canonical.AttrSymbol, evt),
			decimals: canonical.GetValueForAttribute(canonical.AttrDecimals, evt),
		}
		if l.denom == "" {
			l.denom = l.symbol
		}
		all = append(all, l)
		if l.touches(wallet) {
			touching = append(touching, l)
		}
	}
	if len(touching) > 0 {
		return touching
	}
	return all
}

// opposingLegs finds one leg leaving and one entering the wallet in distinct assets.
func opposingLegs(native leg, hasNative bool, tokens []leg, wallet string) (leg, leg, bool) {
	candidates := make([]leg, 0, len(tokens)+1)
	if hasNative {
		candidates = append(candidates, native)
	}
	candidates = append(candidates, tokens...)

	for _, out := range candidates {
		if !out.outgoing(wallet) {
			continue
		}
		for _, in := range candidates {
			if in.incoming(wallet) && !in.sameAsset(out) {
				return out, in, true
			}
		}
	}
	return leg{}, leg{}, false
}

func kindOverride(messages []canonical.Message) (Type, bool) {
	for _, msg := range messages {
		if override, ok := kindOverrides[msg.Kind]; ok {
			return override, true
		}
	}
	return "", false
}

func firstParty(messages []canonical.Message) (string, string) {
	for _, msg := range messages {
		if from, to := msg.MessageParty(); from != "" || to != "" {
			return from, to
		}
	}
	return "", ""
}

// direction compares the primary leg's parties with the wallet. A self-transfer is a send. When the
// wallet is on neither side the provider's invocation signal decides, then the message kind.
func direction(tx canonical.Transaction, from, to, wallet string) Type {
	isFrom := util.SameAddress(from, wallet)
	isTo := util.SameAddress(to, wallet)

	switch {
	case isFrom:
		return TypeSend
	case isTo:
		return TypeReceive
	}

	if invocation := canonical.GetEventWithType(canonical.EventInvocation, tx.Events); invocation != nil {
		address := canonical.GetValueForAttribute(canonical.AttrAddress, invocation)
		if address == "" || util.SameAddress(address, wallet) {
			switch canonical.GetValueForAttribute(canonical.AttrInvocationType, invocation) {
			case canonical.InvocationSender:
				return TypeSend
			case canonical.InvocationRecipient:
				return TypeReceive
			}
		}
	}

	for _, msg := range tx.Messages {
		if msg.Kind == canonical.KindIBCTransfer {
			return TypeIBCTransfer
		}
		if strings.Contains(strings.ToLower(msg.Type), "bridge") {
			return TypeBridgeTransfer
		}
	}
	return TypeUnknown
}

func (c Classifier) display(l leg) (string, string) {
	md := c.Resolver.ResolveWithHints(l.denom, l.symbol, l.decimals)
	return denoms.ScaleOrRaw(l.raw, md.Decimals), md.Symbol
}

// notes is "[hash]", then the parties, the memo and the failure marker, in that order.
func notes(tx canonical.Transaction, from, to string) string {
	parts := []string{fmt.Sprintf("[%s]", tx.Hash)}

	switch {
	case from != "" && to != "":
		parts = append(parts, fmt.Sprintf("from %s to %s", util.ShortAddress(from), util.ShortAddress(to)))
	case from != "":
		parts = append(parts, fmt.Sprintf("from %s", util.ShortAddress(from)))
	case to != "":
		parts = append(parts, fmt.Sprintf("to %s", util.ShortAddress(to)))
	}

	if memo := strings.TrimSpace(tx.Memo); memo != "" {
		parts = append(parts, "memo: "+memo)
	}
	if !tx.Succeeded() {
		parts = append(parts, "failed")
	}
	if tx.TimestampEstimated {
		parts = append(parts, "timestamp estimated")
	}

	return strings.Join(parts, notesSeparator)
}
