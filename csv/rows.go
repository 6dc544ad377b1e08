package csv

import (
	"github.com/epicexcelsior/awaken-long-tail-chains/classifier"
	"github.com/epicexcelsior/awaken-long-tail-chains/config"
)

// Tag is the tax category column.
type Tag string

const (
	TagTransfer   Tag = "transfer"
	TagTrade      Tag = "trade"
	TagStaking    Tag = "staking"
	TagIncome     Tag = "income"
	TagDeposit    Tag = "deposit"
	TagWithdrawal Tag = "withdrawal"
	TagOther      Tag = "other"
)

var tags = map[classifier.Type]Tag{
	classifier.TypeSend:           TagTransfer,
	classifier.TypeReceive:        TagTransfer,
	classifier.TypeIBCTransfer:    TagTransfer,
	classifier.TypeBridgeTransfer: TagTransfer,
	classifier.TypeSwap:           TagTrade,
	classifier.TypeDelegate:       TagStaking,
	classifier.TypeUndelegate:     TagStaking,
	classifier.TypeClaimRewards:   TagIncome,
	classifier.TypePoolDeposit:    TagDeposit,
	classifier.TypePoolWithdraw:   TagWithdrawal,
	classifier.TypeGovernanceVote: TagOther,
	classifier.TypeUnknown:        TagOther,
}

// TagFor maps every transaction type to exactly one tag. Anything outside the known set is "other".
func TagFor(t classifier.Type) Tag {
	if tag, ok := tags[t]; ok {
		return tag
	}
	return TagOther
}

var headers = []string{
	"Date", "Received Quantity", "Received Currency", "Received Fiat Amount", "Sent Quantity", "Sent Currency",
	"Sent Fiat Amount", "Fee Amount", "Fee Currency", "Transaction Hash", "Notes", "Tag",
}

// Headers returns a copy of the fixed column order.
func Headers() []string {
	return append([]string(nil), headers...)
}

// Row is one line of the tax CSV. Fiat columns are never filled; there is no price source.
type Row struct {
	Date               string
	ReceivedQuantity   string
	ReceivedCurrency   string
	ReceivedFiatAmount string
	SentQuantity       string
	SentCurrency       string
	SentFiatAmount     string
	FeeAmount          string
	FeeCurrency        string
	TransactionHash    string
	Notes              string
	Tag                Tag
}

// GetRowForCsv returns the fields in header order.
func (row Row) GetRowForCsv() []string {
	return []string{
		row.Date,
		row.ReceivedQuantity,
		row.ReceivedCurrency,
		row.ReceivedFiatAmount,
		row.SentQuantity,
		row.SentCurrency,
		row.SentFiatAmount,
		row.FeeAmount,
		row.FeeCurrency,
		row.TransactionHash,
		row.Notes,
		string(row.Tag),
	}
}

// ToRow fills the received and sent columns from the type alone: receive uses the received side, send the
// sent side, and a swap sends its primary leg and receives its secondary leg.
func ToRow(tx classifier.ParsedTransaction) Row {
	row := Row{
		Date:            FormatDatetime(tx.Timestamp),
		FeeAmount:       tx.Fee,
		FeeCurrency:     tx.FeeCurrency,
		TransactionHash: tx.Hash,
		Notes:           tx.Notes,
		Tag:             TagFor(tx.Type),
	}

	switch tx.Type {
	case classifier.TypeReceive:
		row.ReceivedQuantity, row.ReceivedCurrency = tx.Amount, tx.Currency
	case classifier.TypeSend:
		row.SentQuantity, row.SentCurrency = tx.Amount, tx.Currency
	case classifier.TypeSwap:
		row.SentQuantity, row.SentCurrency = tx.Amount, tx.Currency
		row.ReceivedQuantity, row.ReceivedCurrency = tx.Amount2, tx.Currency2
	}

	if row.FeeAmount == "" {
		row.FeeCurrency = ""
	}
	return row
}

// ConvertToRows keeps input order. The wallet is only used for logging; direction was settled by the classifier.
func ConvertToRows(parsed []classifier.ParsedTransaction, wallet string) []Row {
	rows := make([]Row, 0, len(parsed))
	for _, tx := range parsed {
		rows = append(rows, ToRow(tx))
	}
	config.Log.Debugf("Built %d CSV rows for %s", len(rows), wallet)
	return rows
}
