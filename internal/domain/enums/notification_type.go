package enums

type NotificationType string

const (
	NotificationProposalReceived NotificationType = "PROPOSAL_RECEIVED"
	NotificationProposalAccepted NotificationType = "PROPOSAL_ACCEPTED"
	NotificationProposalRejected NotificationType = "PROPOSAL_REJECTED"
	NotificationMessageReceived  NotificationType = "MESSAGE_RECEIVED"
	NotificationPhotoApproved    NotificationType = "PHOTO_APPROVED"
	NotificationProfileApproved  NotificationType = "PROFILE_APPROVED"
	NotificationProfileRefused   NotificationType = "PROFILE_REFUSED"
	NotificationSystem           NotificationType = "SYSTEM"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationProposalReceived,
		NotificationProposalAccepted,
		NotificationProposalRejected,
		NotificationMessageReceived,
		NotificationPhotoApproved,
		NotificationProfileApproved,
		NotificationProfileRefused,
		NotificationSystem:
		return true
	default:
		return false
	}
}
