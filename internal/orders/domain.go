package orders

import "errors"

// AccountsStatus is the accounts review stage of an order.
type AccountsStatus string

const (
	AccountsPending        AccountsStatus = "Pending"
	AccountsRecommend      AccountsStatus = "Recommend for Processing"
	AccountsDoNotRecommend AccountsStatus = "Do Not Recommend"
)

// DirectorStatus is the director approval stage of an order.
type DirectorStatus string

const (
	DirectorPending  DirectorStatus = "Pending"
	DirectorApproved DirectorStatus = "Approved"
	DirectorRejected DirectorStatus = "Rejected"
)

// LoadingStatus is the warehouse fulfilment stage of an order.
type LoadingStatus string

const (
	LoadingPending   LoadingStatus = "Pending Loading"
	LoadingLoaded    LoadingStatus = "Loaded"
	LoadingCancelled LoadingStatus = "Cancelled"
)

// ValidAccountsStatus reports whether s is a known accounts stage value.
func ValidAccountsStatus(s AccountsStatus) bool {
	switch s {
	case AccountsPending, AccountsRecommend, AccountsDoNotRecommend:
		return true
	}
	return false
}

// ValidDirectorStatus reports whether s is a known director stage value.
func ValidDirectorStatus(s DirectorStatus) bool {
	switch s {
	case DirectorPending, DirectorApproved, DirectorRejected:
		return true
	}
	return false
}

// ValidLoadingStatus reports whether s is a known loading stage value.
func ValidLoadingStatus(s LoadingStatus) bool {
	switch s {
	case LoadingPending, LoadingLoaded, LoadingCancelled:
		return true
	}
	return false
}

// The three stages gate each other: director review opens once accounts has
// recommended, loading opens once the director has approved. The guards live
// here in the ledger rather than in the callers.

// DirectorStageOpen reports whether the director stage may act.
func DirectorStageOpen(accounts AccountsStatus) bool {
	return accounts == AccountsRecommend
}

// LoadingStageOpen reports whether the loading stage may act.
func LoadingStageOpen(director DirectorStatus) bool {
	return director == DirectorApproved
}

var (
	// ErrUnknownStatus indicates a status value outside the known set.
	ErrUnknownStatus = errors.New("orders: unknown status")
	// ErrStageNotReady indicates a transition attempted before the prior
	// stage has cleared it.
	ErrStageNotReady = errors.New("orders: prior approval stage has not cleared this transition")
	// ErrEmptyOrder indicates an order with no line items.
	ErrEmptyOrder = errors.New("orders: order requires at least one line item")
	// ErrTotalMismatch indicates a caller-supplied total that disagrees with
	// the sum of line totals.
	ErrTotalMismatch = errors.New("orders: total amount does not match line items")
	// ErrUnknownItem indicates a loading update naming an item that does not
	// belong to the order.
	ErrUnknownItem = errors.New("orders: line item does not belong to order")
	// ErrLoadingSettled indicates a loading update on an order the warehouse
	// has already settled. Loading posts stock consumption, so settling twice
	// would double the OUT movements.
	ErrLoadingSettled = errors.New("orders: loading already settled")
)
