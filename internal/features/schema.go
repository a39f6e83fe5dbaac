// Package features turns a transfer history into a fixed-schema feature vector.
//
// Column names and order are a contract with the downstream model.
// Changing them requires bumping SchemaVersion.
package features

// SchemaVersion identifies the output column set.
const SchemaVersion = "v1"

// Native feature columns.
const (
	ColAvgMinBetweenSentTnx        = "avg_min_between_sent_tnx"
	ColAvgMinBetweenReceivedTnx    = "avg_min_between_received_tnx"
	ColTimeDiffFirstLast           = "time_diff_between_first_and_last"
	ColSentTnx                     = "sent_tnx"
	ColReceivedTnx                 = "received_tnx"
	ColNumCreatedContracts         = "num_created_contracts"
	ColUniqueReceivedFromAddresses = "unique_received_from_addresses"
	ColUniqueSentToAddresses       = "unique_sent_to_addresses"
	ColMinValueReceived            = "min_value_received"
	ColMaxValueReceived            = "max_value_received"
	ColAvgValReceived              = "avg_val_received"
	ColMinValSent                  = "min_val_sent"
	ColMaxValSent                  = "max_val_sent"
	ColAvgValSent                  = "avg_val_sent"
	ColMinValSentToContract        = "min_val_sent_to_contract"
	ColMaxValSentToContract        = "max_val_sent_to_contract"
	ColAvgValSentToContract        = "avg_val_sent_to_contract"
	ColTotalTransactions           = "total_transactions"
	ColTotalEtherSent              = "total_ether_sent"
	ColTotalEtherReceived          = "total_ether_received"
	ColTotalEtherSentToContract    = "total_ether_sent_to_contract"
	ColTotalEtherBalance           = "total_ether_balance"
)

// NativeColumns is the native feature schema in output order.
var NativeColumns = []string{
	ColAvgMinBetweenSentTnx,
	ColAvgMinBetweenReceivedTnx,
	ColTimeDiffFirstLast,
	ColSentTnx,
	ColReceivedTnx,
	ColNumCreatedContracts,
	ColUniqueReceivedFromAddresses,
	ColUniqueSentToAddresses,
	ColMinValueReceived,
	ColMaxValueReceived,
	ColAvgValReceived,
	ColMinValSent,
	ColMaxValSent,
	ColAvgValSent,
	ColMinValSentToContract,
	ColMaxValSentToContract,
	ColAvgValSentToContract,
	ColTotalTransactions,
	ColTotalEtherSent,
	ColTotalEtherReceived,
	ColTotalEtherSentToContract,
	ColTotalEtherBalance,
}

// Token feature columns.
const (
	ColTokenTotalTnxs                 = "ERC20_total_tnxs"
	ColTokenTotalEtherReceived        = "ERC20_total_ether_received"
	ColTokenTotalEtherSent            = "ERC20_total_ether_sent"
	ColTokenTotalEtherSentToContract  = "ERC20_total_ether_sent_to_contract"
	ColTokenUniqSentAddr              = "ERC20_uniq_sent_addr"
	ColTokenUniqRecAddr               = "ERC20_uniq_rec_addr"
	ColTokenUniqSentContractAddr      = "ERC20_uniq_sent_contract_addr"
	ColTokenUniqRecContractAddr       = "ERC20_uniq_rec_contract_addr"
	ColTokenAvgTimeBetweenSentTnx     = "ERC20_avg_time_between_sent_tnx"
	ColTokenAvgTimeBetweenRecTnx      = "ERC20_avg_time_between_rec_tnx"
	ColTokenAvgTimeBetweenContractTnx = "ERC20_avg_time_between_contract_tnx"
	ColTokenMinValRec                 = "ERC20_min_val_rec"
	ColTokenMaxValRec                 = "ERC20_max_val_rec"
	ColTokenAvgValRec                 = "ERC20_avg_val_rec"
	ColTokenMinValSent                = "ERC20_min_val_sent"
	ColTokenMaxValSent                = "ERC20_max_val sent" // spelling matches the trained model's input
	ColTokenAvgValSent                = "ERC20_avg_val_sent"
	ColTokenMinValSentContract        = "ERC20_min_val_sent_contract"
	ColTokenMaxValSentContract        = "ERC20_max_val_sent_contract"
	ColTokenAvgValSentContract        = "ERC20_avg_val_sent_contract"
	ColTokenUniqSentTokenName         = "ERC20_uniq_sent_token_name"
	ColTokenUniqRecTokenName          = "ERC20_uniq_rec_token_name"
)

// TokenColumns is the quantitative token feature schema in output order.
// Vocabulary indicator columns follow these when available.
var TokenColumns = []string{
	ColTokenTotalTnxs,
	ColTokenTotalEtherReceived,
	ColTokenTotalEtherSent,
	ColTokenTotalEtherSentToContract,
	ColTokenUniqSentAddr,
	ColTokenUniqRecAddr,
	ColTokenUniqSentContractAddr,
	ColTokenUniqRecContractAddr,
	ColTokenAvgTimeBetweenSentTnx,
	ColTokenAvgTimeBetweenRecTnx,
	ColTokenAvgTimeBetweenContractTnx,
	ColTokenMinValRec,
	ColTokenMaxValRec,
	ColTokenAvgValRec,
	ColTokenMinValSent,
	ColTokenMaxValSent,
	ColTokenAvgValSent,
	ColTokenMinValSentContract,
	ColTokenMaxValSentContract,
	ColTokenAvgValSentContract,
	ColTokenUniqSentTokenName,
	ColTokenUniqRecTokenName,
}
