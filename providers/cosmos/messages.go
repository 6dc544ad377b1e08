package cosmos

import "github.com/epicexcelsior/awaken-long-tail-chains/canonical"

const (
	MsgSend      = "/cosmos.bank.v1beta1.MsgSend"
	MsgMultiSend = "/cosmos.bank.v1beta1.MsgMultiSend"

	MsgTransfer        = "/ibc.applications.transfer.v1.MsgTransfer"
	MsgRecvPacket      = "/ibc.core.channel.v1.MsgRecvPacket"
	MsgAcknowledgement = "/ibc.core.channel.v1.MsgAcknowledgement"
	MsgTimeout         = "/ibc.core.channel.v1.MsgTimeout"
	MsgUpdateClient    = "/ibc.core.client.v1.MsgUpdateClient"

	MsgDelegate                    = "/cosmos.staking.v1beta1.MsgDelegate"
	MsgUndelegate                  = "/cosmos.staking.v1beta1.MsgUndelegate"
	MsgBeginRedelegate             = "/cosmos.staking.v1beta1.MsgBeginRedelegate"
	MsgCancelUnbondingDelegation   = "/cosmos.staking.v1beta1.MsgCancelUnbondingDelegation"
	MsgWithdrawDelegatorReward     = "/cosmos.distribution.v1beta1.MsgWithdrawDelegatorReward"
	MsgWithdrawValidatorCommission = "/cosmos.distribution.v1beta1.MsgWithdrawValidatorCommission"
	MsgFundCommunityPool           = "/cosmos.distribution.v1beta1.MsgFundCommunityPool"

	MsgVote           = "/cosmos.gov.v1beta1.MsgVote"
	MsgVoteV1         = "/cosmos.gov.v1.MsgVote"
	MsgVoteWeighted   = "/cosmos.gov.v1beta1.MsgVoteWeighted"
	MsgVoteWeightedV1 = "/cosmos.gov.v1.MsgVoteWeighted"
	MsgDeposit        = "/cosmos.gov.v1beta1.MsgDeposit"
	MsgDepositV1      = "/cosmos.gov.v1.MsgDeposit"
	MsgSubmitProposal = "/cosmos.gov.v1beta1.MsgSubmitProposal"

	MsgExecuteContract = "/cosmwasm.wasm.v1.MsgExecuteContract"

	MsgSwapExactAmountIn             = "/osmosis.gamm.v1beta1.MsgSwapExactAmountIn"
	MsgSwapExactAmountOut            = "/osmosis.gamm.v1beta1.MsgSwapExactAmountOut"
	MsgPoolManagerSwapExactAmountIn  = "/osmosis.poolmanager.v1beta1.MsgSwapExactAmountIn"
	MsgPoolManagerSwapExactAmountOut = "/osmosis.poolmanager.v1beta1.MsgSwapExactAmountOut"
	MsgSplitRouteSwapExactAmountIn   = "/osmosis.poolmanager.v1beta1.MsgSplitRouteSwapExactAmountIn"
	MsgJoinPool                      = "/osmosis.gamm.v1beta1.MsgJoinPool"
	MsgJoinSwapExternAmountIn        = "/osmosis.gamm.v1beta1.MsgJoinSwapExternAmountIn"
	MsgJoinSwapShareAmountOut        = "/osmosis.gamm.v1beta1.MsgJoinSwapShareAmountOut"
	MsgExitPool                      = "/osmosis.gamm.v1beta1.MsgExitPool"
	MsgExitSwapShareAmountIn         = "/osmosis.gamm.v1beta1.MsgExitSwapShareAmountIn"
	MsgExitSwapExternAmountOut       = "/osmosis.gamm.v1beta1.MsgExitSwapExternAmountOut"
)

// messageKinds maps Cosmos message type URLs onto canonical message kinds. Unlisted types are KindUnknown.
var messageKinds = map[string]string{
	MsgSend:      canonical.KindTransfer,
	MsgMultiSend: canonical.KindTransfer,

	MsgTransfer:   canonical.KindIBCTransfer,
	MsgRecvPacket: canonical.KindIBCTransfer,

	MsgDelegate:                    canonical.KindDelegate,
	MsgUndelegate:                  canonical.KindUndelegate,
	MsgBeginRedelegate:             canonical.KindRedelegate,
	MsgWithdrawDelegatorReward:     canonical.KindClaimRewards,
	MsgWithdrawValidatorCommission: canonical.KindClaimRewards,
	MsgFundCommunityPool:           canonical.KindTransfer,

	MsgVote:           canonical.KindVote,
	MsgVoteV1:         canonical.KindVote,
	MsgVoteWeighted:   canonical.KindVote,
	MsgVoteWeightedV1: canonical.KindVote,
	MsgDeposit:        canonical.KindTransfer,
	MsgDepositV1:      canonical.KindTransfer,

	MsgExecuteContract: canonical.KindContractCall,

	MsgSwapExactAmountIn:             canonical.KindSwap,
	MsgSwapExactAmountOut:            canonical.KindSwap,
	MsgPoolManagerSwapExactAmountIn:  canonical.KindSwap,
	MsgPoolManagerSwapExactAmountOut: canonical.KindSwap,
	MsgSplitRouteSwapExactAmountIn:   canonical.KindSwap,
	MsgJoinPool:                      canonical.KindPoolJoin,
	MsgJoinSwapExternAmountIn:        canonical.KindPoolJoin,
	MsgJoinSwapShareAmountOut:        canonical.KindPoolJoin,
	MsgExitPool:                      canonical.KindPoolExit,
	MsgExitSwapShareAmountIn:         canonical.KindPoolExit,
	MsgExitSwapExternAmountOut:       canonical.KindPoolExit,
}

func kindForType(msgType string) string {
	if kind, ok := messageKinds[msgType]; ok {
		return kind
	}
	return canonical.KindUnknown
}
