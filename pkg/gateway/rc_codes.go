package gateway

// Response code constants
const (
	RCSuccess             = "0000"
	RCPending             = "0001"
	RCCancelled           = "0003"
	RCSystemError         = "0999"
	RCInProgress          = "2001"
	RCTransactionNotFound = "2002"
	RCReferToIssuer       = "4001"
)

// IsSuccess returns true only for the literal success code. Codes that look
// successful ("00", "000", " 0000") are failures.
func IsSuccess(rc string) bool {
	return rc == RCSuccess
}

// IsPending returns true if rc indicates the payment has not settled yet.
func IsPending(rc string) bool {
	return rc == RCPending || rc == RCInProgress
}

// GetRCDescription returns human-readable description
func GetRCDescription(rc string) string {
	descriptions := map[string]string{
		RCSuccess:             "Transaction successful",
		RCPending:             "Transaction is pending",
		RCCancelled:           "Transaction is cancelled",
		RCSystemError:         "System error",
		RCInProgress:          "Transaction in progress",
		RCTransactionNotFound: "Transaction not found",
		RCReferToIssuer:       "Refer to card issuer",
	}
	if desc, ok := descriptions[rc]; ok {
		return desc
	}
	return "Unknown response code"
}
