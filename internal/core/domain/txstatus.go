package domain

// TxStatus is the network's view of a submitted transaction. A nil
// status from a lookup means the network does not know the signature
// yet; a payment counts as confirmed only when a status exists and
// Failed is false.
type TxStatus struct {
	Slot          uint64 `json:"slot"`
	Confirmations uint64 `json:"confirmations"`
	Status        string `json:"status"` // processed, confirmed, finalized
	Failed        bool   `json:"failed"`
}
