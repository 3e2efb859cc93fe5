package notify

import "fmt"

// SyncSummary is the single notification emitted after a drain. abandoned
// counts the failures that hit the retry limit and is included in failed.
// ok is false when the drain neither synced nor failed anything.
func SyncSummary(synced, failed, abandoned int) (Notification, bool) {
	switch {
	case synced > 0:
		msg := fmt.Sprintf("%d ticket(s) synced successfully", synced)
		if failed > 0 {
			msg += fmt.Sprintf(", %d failed", failed)
		}
		if abandoned > 0 {
			msg += fmt.Sprintf(" (%d reached the retry limit)", abandoned)
		}
		return Notification{Kind: KindSuccess, Title: "Sync Complete", Message: msg}, true
	case failed > 0:
		msg := fmt.Sprintf("Failed to sync %d ticket(s). Please try again.", failed)
		if abandoned > 0 {
			msg = fmt.Sprintf("Failed to sync %d ticket(s). %d reached the retry limit and will not be synced automatically.",
				failed, abandoned)
		}
		return Notification{Kind: KindError, Title: "Sync Failed", Message: msg}, true
	}
	return Notification{}, false
}

func NoFailedToRetry() Notification {
	return Notification{Kind: KindInfo, Title: "No failed tickets to retry"}
}

func NothingToSync() Notification {
	return Notification{Kind: KindInfo, Title: "No offline tickets to sync"}
}

func NoConnection() Notification {
	return Notification{
		Kind:    KindError,
		Title:   "No internet connection",
		Message: "Please connect to the internet to sync tickets",
	}
}

func TicketCreated() Notification {
	return Notification{Kind: KindSuccess, Title: "Ticket Created Successfully."}
}

// SavedOffline reports a write that went to the local queue. what is the
// display name of the write, e.g. "Ticket" or "Reply".
func SavedOffline(what string) Notification {
	return Notification{
		Kind:    KindError,
		Title:   "Offline Mode",
		Message: what + " saved locally. It will be synced when you are online.",
	}
}

func EntryAdded(what string) Notification {
	return Notification{Kind: KindSuccess, Title: what + " added successfully"}
}

func StatusUpdated() Notification {
	return Notification{Kind: KindSuccess, Title: "Status updated successfully"}
}

func FillDetails() Notification {
	return Notification{Kind: KindError, Title: "Please Fill the Details."}
}
